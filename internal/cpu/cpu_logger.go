package cpu

// CPULoggerAdapter bridges the CPU's per-step hook to a debug.Logger and a
// debug.CycleLogger without internal/cpu importing internal/debug directly
// (small adapters in internal/machine/adapter.go wrap the debug types to
// satisfy cpu.Logger and cpu.CycleRecorder). Mirrors the
// teacher's NewCPU(mem, log) constructor shape and logging-adapter split
// between "named component log lines" and "raw per-cycle ring buffer".
type CPULoggerAdapter struct {
	logger  Logger
	cycles  CycleRecorder
	level   LogLevel
	traceOn bool
}

// CycleRecorder is the subset of debug.CycleLogger the CPU uses.
type CycleRecorder interface {
	Record(e CycleEntry)
}

// CycleEntry mirrors debug.CycleEntry's field layout so the adapter can
// build one without importing internal/debug.
type CycleEntry struct {
	PC          uint32
	Instruction uint32
	Thumb       bool
	Mnemonic    string
	Cycles      uint32
}

// NewCPULoggerAdapter builds an adapter. Either logger or cycles (or both)
// may be nil; logStep skips whatever sink is absent.
func NewCPULoggerAdapter(logger Logger, cycles CycleRecorder, level LogLevel) *CPULoggerAdapter {
	return &CPULoggerAdapter{logger: logger, cycles: cycles, level: level, traceOn: level >= 5}
}

const componentCPU LogComponent = "CPU"

// logStep is called once per retired instruction from CPU.Step. It fetches
// the raw encoding itself (cheap relative to the instruction it just ran)
// so the hot path in Step stays allocation-free when no logger is attached.
func (a *CPULoggerAdapter) logStep(c *CPU, pc uint32, cycles uint32) {
	thumb := c.Thumb()

	if a.cycles != nil {
		var instr uint32
		if thumb {
			instr = uint32(c.Bus.Read16(pc))
		} else {
			instr = c.Bus.Read32(pc)
		}
		a.cycles.Record(CycleEntry{
			PC:          pc,
			Instruction: instr,
			Thumb:       thumb,
			Cycles:      cycles,
		})
	}

	if a.logger != nil && a.traceOn {
		a.logger.Logf(componentCPU, a.level, "pc=%08x mode=%s thumb=%v cycles=%d", pc, c.Mode(), thumb, cycles)
	}
}
