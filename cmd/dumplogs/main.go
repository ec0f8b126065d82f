// Command dumplogs runs a machine for a fixed cycle budget with full
// logging enabled, then renders the captured entries as an HTML report.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	cycles := flag.Uint64("cycles", 2_000_000, "Bus cycles to run before dumping")
	component := flag.String("component", "", "Restrict to one component (e.g. LCD); empty means all")
	out := flag.String("out", "logs.html", "Output HTML report path")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Usage: dumplogs -config <machine.toml> [-cycles N] [-component NAME] [-out report.html]")
		os.Exit(1)
	}

	cfg, err := config.LoadMachine(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dumplogs: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(100000)
	for _, c := range []debug.Component{
		debug.ComponentCPU, debug.ComponentBus, debug.ComponentInterrupt, debug.ComponentTimer,
		debug.ComponentSyscon, debug.ComponentGPIO, debug.ComponentI2C, debug.ComponentATA,
		debug.ComponentLCD, debug.ComponentKeypad, debug.ComponentMailbox, debug.ComponentFirmware,
	} {
		logger.SetComponentEnabled(c, true)
	}
	logger.SetMinLevel(debug.LogLevelDebug)

	m := machine.New(cfg, logger)
	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "dumplogs: %v\n", err)
		os.Exit(1)
	}

	m.Run(*cycles, nil)

	entries := logger.GetEntries()
	var md strings.Builder
	fmt.Fprintf(&md, "# Machine log report\n\n")
	fmt.Fprintf(&md, "Ran %d cycles from `%s`.\n\n", m.TotalCycles(), cfg.FirmwarePath)
	fmt.Fprintf(&md, "| Timestamp | Component | Level | Message |\n|---|---|---|---|\n")
	written := 0
	for _, e := range entries {
		if *component != "" && string(e.Component) != *component {
			continue
		}
		fmt.Fprintf(&md, "| %s | %s | %s | %s |\n",
			e.Timestamp.Format("15:04:05.000000"), e.Component, e.Level, escapeMD(e.Message))
		written++
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &html); err != nil {
		fmt.Fprintf(os.Stderr, "dumplogs: rendering report: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, html.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "dumplogs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d log entries to %s\n", written, *out)
}

func escapeMD(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
