// Command armdebug is an interactive breakpoint/step debugger for a
// machine.Machine, driven from stdin. Grounded on the teacher's
// cmd/debugger front end, adapted from CoreLX bank:offset addressing to
// flat 32-bit ARM addresses and register names.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Usage: armdebug -config <machine.toml>")
		os.Exit(1)
	}

	cfg, err := config.LoadMachine(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "armdebug: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(cfg.LogMaxEntries)
	m := machine.New(cfg, logger)
	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "armdebug: %v\n", err)
		os.Exit(1)
	}

	dbg := debug.NewDebugger()
	dbg.Pause()

	fmt.Println("armdebug — type 'help' for commands")
	printState(m)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(armdebug) ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			printHelp()
		case "quit", "q":
			return
		case "regs", "r":
			printState(m)
		case "break", "b":
			if len(fields) < 2 {
				fmt.Println("usage: break <hex-addr>")
				continue
			}
			addr, err := parseHex(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			key := dbg.SetBreakpoint(addr)
			fmt.Printf("breakpoint %s set at %#08x\n", key, addr)
		case "clear":
			dbg.ClearBreakpoints()
			fmt.Println("breakpoints cleared")
		case "step", "s":
			n := 1
			if len(fields) > 1 {
				n, _ = strconv.Atoi(fields[1])
			}
			for i := 0; i < n; i++ {
				m.Step()
			}
			printState(m)
		case "continue", "c":
			runUntilBreak(m, dbg)
			printState(m)
		case "stack":
			for _, f := range dbg.GetCallStack() {
				fmt.Printf("  -> %#08x %s\n", f.ReturnAddress, f.Label)
			}
		default:
			fmt.Printf("unknown command %q (try 'help')\n", fields[0])
		}
	}
}

func runUntilBreak(m *machine.Machine, dbg *debug.Debugger) {
	const maxSteps = 50_000_000
	for i := 0; i < maxSteps; i++ {
		if dbg.ShouldBreak(m.CPU.R[15]) {
			fmt.Printf("stopped at %#08x\n", m.CPU.R[15])
			return
		}
		m.Step()
	}
	fmt.Println("step budget exhausted without hitting a breakpoint")
}

func printState(m *machine.Machine) {
	c := m.CPU
	fmt.Printf("pc=%#08x cpsr=%#08x mode=%s thumb=%v cycles=%d\n", c.R[15], c.CPSR, c.Mode(), c.Thumb(), m.TotalCycles())
	for i := 0; i < 16; i += 4 {
		fmt.Printf("  r%-2d=%#08x r%-2d=%#08x r%-2d=%#08x r%-2d=%#08x\n",
			i, c.R[i], i+1, c.R[i+1], i+2, c.R[i+2], i+3, c.R[i+3])
	}
}

func printHelp() {
	fmt.Println(`commands:
  regs, r              show registers
  break, b <hex-addr>  set a breakpoint
  clear                clear all breakpoints
  step, s [n]          execute n instructions (default 1)
  continue, c          run until a breakpoint is hit
  stack                show the debugger's call-frame stack (stepping records no frames)
  quit, q              exit`)
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex address %q: %w", s, err)
	}
	return uint32(v), nil
}
