package machine

import (
	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/debug"
)

// cpuLogger adapts a *debug.Logger to cpu.Logger. internal/cpu keeps its
// Logger interface in terms of its own LogComponent/LogLevel aliases so it
// never imports internal/debug; debug.Component and debug.LogLevel are
// distinct defined types from those aliases, so the two interfaces don't
// satisfy each other structurally and this small shim bridges them.
type cpuLogger struct {
	logger *debug.Logger
}

func (a cpuLogger) Logf(component cpu.LogComponent, level cpu.LogLevel, format string, args ...interface{}) {
	a.logger.Logf(debug.Component(component), debug.LogLevel(level), format, args...)
}

// cpuCycleRecorder adapts a *debug.CycleLogger to cpu.CycleRecorder, for the
// same reason: debug.CycleEntry and cpu.CycleEntry are separately defined
// structs with identical fields, not the same type.
type cpuCycleRecorder struct {
	cycles *debug.CycleLogger
}

func (a cpuCycleRecorder) Record(e cpu.CycleEntry) {
	a.cycles.Record(debug.CycleEntry{
		PC:          e.PC,
		Instruction: e.Instruction,
		Thumb:       e.Thumb,
		Mnemonic:    e.Mnemonic,
		Cycles:      e.Cycles,
	})
}
