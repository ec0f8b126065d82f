// Command armtrace runs a machine for a bounded number of instructions and
// prints its recent-instruction ring buffer (spec.md's "stuck-PC diagnostic
// hook") plus a PC-frequency summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	steps := flag.Int("steps", 20000, "Number of CPU steps to execute")
	showRecent := flag.Int("recent", 50, "Number of most recent ring-buffer entries to print")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Usage: armtrace -config <machine.toml> [-steps N] [-recent N]")
		os.Exit(1)
	}

	cfg, err := config.LoadMachine(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "armtrace: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(cfg.LogMaxEntries)
	m := machine.New(cfg, logger)
	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "armtrace: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== ARM execution trace ===\nfirmware=%s entry=%#08x\n\n", cfg.FirmwarePath, cfg.EntryPoint)

	pcHist := make(map[uint32]int)
	for i := 0; i < *steps; i++ {
		pcHist[m.CPU.R[15]]++
		m.Step()
	}

	entries := m.CycleLogger.Entries()
	if len(entries) > *showRecent {
		entries = entries[len(entries)-*showRecent:]
	}
	fmt.Printf("Last %d retired instructions:\n", len(entries))
	for _, e := range entries {
		mode := "ARM"
		if e.Thumb {
			mode = "Thumb"
		}
		fmt.Printf("  pc=%#08x %-5s enc=%#08x %-12s cycles=%d\n", e.PC, mode, e.Instruction, e.Mnemonic, e.Cycles)
	}

	type pcCount struct {
		pc    uint32
		count int
	}
	counts := make([]pcCount, 0, len(pcHist))
	for pc, n := range pcHist {
		counts = append(counts, pcCount{pc, n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	fmt.Printf("\nTop PC locations by visit count (%d unique):\n", len(counts))
	for i, c := range counts {
		if i >= 20 {
			break
		}
		fmt.Printf("  pc=%#08x visits=%d\n", c.pc, c.count)
	}

	fmt.Printf("\nFinal PC=%#08x  total cycles=%d\n", m.CPU.R[15], m.TotalCycles())
}
