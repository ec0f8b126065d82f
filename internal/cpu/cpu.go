// Package cpu implements an ARM7TDMI interpreter: ARM and Thumb decode,
// banked registers, the five exception modes, and a CP15 shim sufficient
// to satisfy PP5021C boot firmware. See SPEC_FULL.md §5.1.
package cpu

import "fmt"

// Mode is one of the ARM7TDMI's five exception modes plus User/System.
type Mode uint8

const (
	ModeUser   Mode = 0x10
	ModeFIQ    Mode = 0x11
	ModeIRQ    Mode = 0x12
	ModeSVC    Mode = 0x13
	ModeAbort  Mode = 0x17
	ModeUndef  Mode = 0x1B
	ModeSystem Mode = 0x1F
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "usr"
	case ModeFIQ:
		return "fiq"
	case ModeIRQ:
		return "irq"
	case ModeSVC:
		return "svc"
	case ModeAbort:
		return "abt"
	case ModeUndef:
		return "und"
	case ModeSystem:
		return "sys"
	default:
		return fmt.Sprintf("0x%02x", uint8(m))
	}
}

// CPSR bit positions.
const (
	FlagN = 31
	FlagZ = 30
	FlagC = 29
	FlagV = 28
	FlagQ = 27
	FlagI = 7
	FlagF = 6
	FlagT = 5
)

const modeMask = 0x1F

// Exception vectors (byte offsets from the base of the vector table).
const (
	VectorReset         uint32 = 0x00
	VectorUndefined     uint32 = 0x04
	VectorSWI           uint32 = 0x08
	VectorPrefetchAbort uint32 = 0x0C
	VectorDataAbort     uint32 = 0x10
	VectorIRQ           uint32 = 0x18
	VectorFIQ           uint32 = 0x1C
)

// Bus is the memory interface the CPU drives. The concrete implementation
// (internal/bus.Bus) performs MMAP translation and region routing; the CPU
// only ever sees flat 32-bit addresses.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// Logger is the subset of debug.Logger the CPU uses, kept as an interface
// so tests can substitute a no-op.
type Logger interface {
	Logf(component LogComponent, level LogLevel, format string, args ...interface{})
}

// LogComponent and LogLevel are plain string and int aliases, which keeps
// internal/cpu free of a dependency on internal/debug. debug's Component and
// LogLevel are distinct named types; internal/machine/adapter.go converts.
type LogComponent = string
type LogLevel = int

// CP15State is the System Control Coprocessor shim state (SPEC_FULL.md §5.1, spec.md §4.1).
type CP15State struct {
	Control uint32 // CRn=1, control register mirror
	TTB     uint32 // CRn=2, translation table base mirror
	Domain  uint32 // CRn=3, domain access control mirror
}

const cp15ID uint32 = 0x41007000 // resembles an ARM720T ID register

// CPU is the emulated ARM7TDMI core.
type CPU struct {
	R    [16]uint32 // current visible register file; R[15] is PC
	CPSR uint32

	// Banked registers, live only while not the active mode.
	rFIQ8_12    [5]uint32 // R8-R12 private bank for FIQ mode
	rShared8_12 [5]uint32 // R8-R12 shared by every other mode
	rUsr13      uint32    // R13 for User/System
	rUsr14   uint32    // R14 for User/System
	rFIQ13   uint32
	rFIQ14   uint32
	rSVC13   uint32
	rSVC14   uint32
	rABT13   uint32
	rABT14   uint32
	rIRQ13   uint32
	rIRQ14   uint32
	rUND13   uint32
	rUND14   uint32

	spsrFIQ uint32
	spsrSVC uint32
	spsrABT uint32
	spsrIRQ uint32
	spsrUND uint32

	IRQLine bool
	FIQLine bool

	Cycles uint64

	CP15 CP15State

	Bus Bus
	Log *CPULoggerAdapter

	lastPC     uint32
	stuckCount int
}

// NewCPU creates a CPU driving the given bus, with optional logging adapter.
func NewCPU(bus Bus, log *CPULoggerAdapter) *CPU {
	c := &CPU{Bus: bus, Log: log}
	c.Reset()
	return c
}

// Reset sets CPSR to supervisor mode, both interrupt lines masked, ARM
// state, and PC = 0 (spec.md §4.1).
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.rFIQ8_12 = [5]uint32{}
	c.rShared8_12 = [5]uint32{}
	c.rUsr13, c.rUsr14 = 0, 0
	c.rFIQ13, c.rFIQ14 = 0, 0
	c.rSVC13, c.rSVC14 = 0, 0
	c.rABT13, c.rABT14 = 0, 0
	c.rIRQ13, c.rIRQ14 = 0, 0
	c.rUND13, c.rUND14 = 0, 0
	c.spsrFIQ, c.spsrSVC, c.spsrABT, c.spsrIRQ, c.spsrUND = 0, 0, 0, 0, 0

	c.CPSR = uint32(ModeSVC) | (1 << FlagI) | (1 << FlagF)
	c.R[15] = 0
	c.IRQLine = false
	c.FIQLine = false
	c.Cycles = 0
	c.lastPC = 0
	c.stuckCount = 0
}

// Mode returns the CPSR's current mode bits.
func (c *CPU) Mode() Mode { return Mode(c.CPSR & modeMask) }

// Thumb reports whether the T bit is set.
func (c *CPU) Thumb() bool { return c.CPSR&(1<<FlagT) != 0 }

func (c *CPU) flag(bit uint) bool { return c.CPSR&(1<<bit) != 0 }

func (c *CPU) setFlag(bit uint, v bool) {
	if v {
		c.CPSR |= 1 << bit
	} else {
		c.CPSR &^= 1 << bit
	}
}

// SetIRQLine and SetFIQLine latch the interrupt controller's aggregated
// lines (spec.md §4.1); they are sampled between instructions in Step.
func (c *CPU) SetIRQLine(asserted bool) { c.IRQLine = asserted }
func (c *CPU) SetFIQLine(asserted bool) { c.FIQLine = asserted }

// EnableIRQ and EnableFIQ clear the corresponding CPSR disable bit.
func (c *CPU) EnableIRQ() { c.setFlag(FlagI, false) }
func (c *CPU) EnableFIQ() { c.setFlag(FlagF, false) }

// GetRegister reads r0-r15 from the currently visible register file. While
// an instruction executes R[15] already points past it, so r15 reads a
// further 4 (ARM) or 2 (Thumb) ahead: the instruction's address plus 8 or 4.
func (c *CPU) GetRegister(n uint8) uint32 {
	if n&0xF == 15 {
		if c.Thumb() {
			return c.R[15] + 2
		}
		return c.R[15] + 4
	}
	return c.R[n&0xF]
}

// SetRegister writes r0-r15 in the currently visible register file.
func (c *CPU) SetRegister(n uint8, v uint32) { c.R[n&0xF] = v }

// SPSR returns the saved program status register for the current mode,
// or the CPSR itself in User/System mode (which has no SPSR).
func (c *CPU) SPSR() uint32 {
	switch c.Mode() {
	case ModeFIQ:
		return c.spsrFIQ
	case ModeSVC:
		return c.spsrSVC
	case ModeAbort:
		return c.spsrABT
	case ModeIRQ:
		return c.spsrIRQ
	case ModeUndef:
		return c.spsrUND
	default:
		return c.CPSR
	}
}

func (c *CPU) setSPSR(v uint32) {
	switch c.Mode() {
	case ModeFIQ:
		c.spsrFIQ = v
	case ModeSVC:
		c.spsrSVC = v
	case ModeAbort:
		c.spsrABT = v
	case ModeIRQ:
		c.spsrIRQ = v
	case ModeUndef:
		c.spsrUND = v
	}
}

// switchMode banks out the current mode's R13/R14 (and R8-R12 across a FIQ
// boundary), changes the CPSR mode bits, and banks in the new mode's
// registers. Only the active mode's banks are ever live in R[], matching
// spec.md's CPU state invariant.
func (c *CPU) switchMode(newMode Mode) {
	oldMode := c.Mode()
	if oldMode == newMode {
		return
	}

	// Bank out R8-R12: FIQ has its own private bank, every other mode
	// shares one. Only the bank becoming inactive needs saving.
	switch {
	case oldMode == ModeFIQ:
		copy(c.rFIQ8_12[:], c.R[8:13])
	case newMode == ModeFIQ:
		copy(c.rShared8_12[:], c.R[8:13])
	}
	// Bank out R13/R14.
	switch oldMode {
	case ModeUser, ModeSystem:
		c.rUsr13, c.rUsr14 = c.R[13], c.R[14]
	case ModeFIQ:
		c.rFIQ13, c.rFIQ14 = c.R[13], c.R[14]
	case ModeSVC:
		c.rSVC13, c.rSVC14 = c.R[13], c.R[14]
	case ModeAbort:
		c.rABT13, c.rABT14 = c.R[13], c.R[14]
	case ModeIRQ:
		c.rIRQ13, c.rIRQ14 = c.R[13], c.R[14]
	case ModeUndef:
		c.rUND13, c.rUND14 = c.R[13], c.R[14]
	}

	c.CPSR = (c.CPSR &^ modeMask) | uint32(newMode)

	// Bank in R8-R12.
	switch {
	case newMode == ModeFIQ:
		copy(c.R[8:13], c.rFIQ8_12[:])
	case oldMode == ModeFIQ:
		copy(c.R[8:13], c.rShared8_12[:])
	}
	// Bank in R13/R14.
	switch newMode {
	case ModeUser, ModeSystem:
		c.R[13], c.R[14] = c.rUsr13, c.rUsr14
	case ModeFIQ:
		c.R[13], c.R[14] = c.rFIQ13, c.rFIQ14
	case ModeSVC:
		c.R[13], c.R[14] = c.rSVC13, c.rSVC14
	case ModeAbort:
		c.R[13], c.R[14] = c.rABT13, c.rABT14
	case ModeIRQ:
		c.R[13], c.R[14] = c.rIRQ13, c.rIRQ14
	case ModeUndef:
		c.R[13], c.R[14] = c.rUND13, c.rUND14
	}
}

// restoreCPSR installs a CPSR value wholesale, performing the bank switch
// implied by its mode bits. Used by exception return (LDM^, SUBS PC,LR,#n)
// and MSR CPSR writes that change mode.
func (c *CPU) restoreCPSR(v uint32) {
	c.switchMode(Mode(v & modeMask))
	c.CPSR = v
}

// enterException performs the common exception-entry sequence: save CPSR
// to SPSR_<mode>, set LR_<mode> = returnPC, switch mode, mask bits, clear
// Thumb, and set PC to the vector (spec.md §3, §4.1).
func (c *CPU) enterException(mode Mode, vector uint32, returnPC uint32, maskFIQ bool) {
	oldCPSR := c.CPSR
	c.switchMode(mode)
	c.setSPSR(oldCPSR)
	c.R[14] = returnPC
	c.setFlag(FlagT, false)
	c.setFlag(FlagI, true)
	if maskFIQ {
		c.setFlag(FlagF, true)
	}
	c.R[15] = vector
}

// StuckFor reports how many consecutive Step calls have left PC unchanged
// — a diagnostic heuristic only (spec.md §7); it never affects execution.
func (c *CPU) StuckFor() int { return c.stuckCount }

// Step fetches, decodes and executes one instruction (or vectors into a
// pending exception instead), returning the bus cycles it consumed.
func (c *CPU) Step() uint32 {
	if c.FIQLine && !c.flag(FlagF) {
		c.enterException(ModeFIQ, VectorFIQ, c.R[15]+4, true)
		return 3
	}
	if c.IRQLine && !c.flag(FlagI) {
		c.enterException(ModeIRQ, VectorIRQ, c.R[15]+4, false)
		return 3
	}

	pc := c.R[15]
	var cycles uint32
	if c.Thumb() {
		cycles = c.stepThumb()
	} else {
		cycles = c.stepARM()
	}
	c.Cycles += uint64(cycles)

	if c.R[15] == pc {
		c.stuckCount++
	} else {
		c.stuckCount = 0
	}
	c.lastPC = pc

	if c.Log != nil {
		c.Log.logStep(c, pc, cycles)
	}
	return cycles
}

// raiseSWI and raiseUndefined are invoked by the ARM/Thumb decoders.
func (c *CPU) raiseSWI(returnPC uint32) {
	c.enterException(ModeSVC, VectorSWI, returnPC, false)
}

func (c *CPU) raiseUndefined(returnPC uint32) {
	c.enterException(ModeUndef, VectorUndefined, returnPC, false)
}
