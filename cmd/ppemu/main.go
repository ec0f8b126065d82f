// Command ppemu is the interactive PP5021C emulator: it loads a machine
// configuration, optionally attaches a disk image to the ATA peripheral,
// and drives an SDL2 window until the user quits.
package main

import (
	"flag"
	"fmt"
	"os"

	"nitro-core-dx/internal/ata"
	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/host"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	firmwarePath := flag.String("firmware", "", "Path to firmware image (overrides config)")
	diskPath := flag.String("disk", "", "Path to disk image (overrides config)")
	scale := flag.Int("scale", 2, "Display scale (1-4)")
	cyclesPerFrame := flag.Uint("cycles-per-frame", 200000, "Bus cycles advanced per rendered frame")
	verbose := flag.Bool("verbose", false, "Enable trace-level logging for every component")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadMachine(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *firmwarePath != "" {
		cfg.FirmwarePath = *firmwarePath
	}
	if *diskPath != "" {
		cfg.DiskImagePath = *diskPath
	}
	if cfg.FirmwarePath == "" {
		fmt.Println("Usage: ppemu -config <machine.toml> [-firmware path] [-disk path]")
		os.Exit(1)
	}

	logger := debug.NewLogger(cfg.LogMaxEntries)
	if *verbose {
		for _, c := range []debug.Component{
			debug.ComponentCPU, debug.ComponentBus, debug.ComponentInterrupt, debug.ComponentTimer,
			debug.ComponentSyscon, debug.ComponentGPIO, debug.ComponentI2C, debug.ComponentATA,
			debug.ComponentLCD, debug.ComponentKeypad, debug.ComponentMailbox, debug.ComponentFirmware,
			debug.ComponentHost,
		} {
			logger.SetComponentEnabled(c, true)
		}
		logger.SetMinLevel(debug.LogLevelTrace)
	}

	m := machine.New(cfg, logger)

	if cfg.DiskImagePath != "" {
		disk, err := ata.OpenFileImage(cfg.DiskImagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
			os.Exit(1)
		}
		m.SetBlockDevice(disk)
	}

	if cfg.PatchListPath != "" {
		patches, err := config.LoadPatches(cfg.PatchListPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
			os.Exit(1)
		}
		m.SetPatches(patches)
	}

	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("PP5021C Emulator")
	fmt.Printf("Firmware: %s (load=%#08x entry=%#08x)\n", cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint)
	fmt.Printf("SDRAM: %d MiB  MMAP: %v\n", cfg.SDRAMSizeMiB, cfg.MMAPEnabled)
	fmt.Println("Controls: arrows=wheel/nav  Return=select  Space=play/pause  M=menu  H=hold  Esc=quit")

	h, err := host.New(m, *scale, uint32(*cyclesPerFrame))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
		os.Exit(1)
	}
	if err := h.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ppemu: %v\n", err)
		os.Exit(1)
	}
}
