// Command ppdevkit is a Fyne-based live inspector: it steps a machine in
// the background and shows its register file, a memory hex dump, and the
// tail of the structured log, refreshed a few times a second.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/devkit"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	cyclesPerTick := flag.Uint64("cycles-per-tick", 50000, "Bus cycles advanced per UI refresh")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Usage: ppdevkit -config <machine.toml>")
		os.Exit(1)
	}

	cfg, err := config.LoadMachine(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppdevkit: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(cfg.LogMaxEntries)
	for _, c := range []debug.Component{
		debug.ComponentCPU, debug.ComponentBus, debug.ComponentLCD, debug.ComponentFirmware,
	} {
		logger.SetComponentEnabled(c, true)
	}

	m := machine.New(cfg, logger)
	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "ppdevkit: %v\n", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("PP5021C Devkit")

	regs, updateRegs := devkit.RegisterViewer(m)
	mem, updateMem := devkit.MemoryViewer(m)
	logs, updateLogs := devkit.LogViewer(logger)

	tabs := container.NewAppTabs(
		container.NewTabItem("Registers", regs),
		container.NewTabItem("Memory", mem),
		container.NewTabItem("Log", logs),
	)
	w.SetContent(tabs)
	w.Resize(fyne.NewSize(560, 440))

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			m.Run(*cyclesPerTick, nil)
			updateRegs()
			updateMem()
			updateLogs()
		}
	}()

	w.ShowAndRun()
}
