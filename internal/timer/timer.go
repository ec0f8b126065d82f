// Package timer implements the PP5021C's two down-counter timers.
// See SPEC_FULL.md §5.5, spec.md §4.4.
package timer

import "nitro-core-dx/internal/debug"

const (
	cfgEnable = 1 << 31
	cfgRepeat = 1 << 30
	cfgReload = 0x000FFFFF
)

// Timer is a single down-counter: a configuration register (enable, repeat,
// 20-bit reload) and a live count value.
type Timer struct {
	cfg     uint32
	value   uint32
	elapsed bool
}

func (t *Timer) enabled() bool { return t.cfg&cfgEnable != 0 }
func (t *Timer) repeat() bool  { return t.cfg&cfgRepeat != 0 }
func (t *Timer) reload() uint32 { return t.cfg & cfgReload }

func (t *Timer) setCfg(v uint32) {
	wasEnabled := t.enabled()
	t.cfg = v
	if t.enabled() && !wasEnabled {
		t.value = t.reload()
	}
}

// tick subtracts n from the count if enabled, returning the number of times
// the interrupt source fired (the count wrapped to zero) during this tick —
// counted rather than just observed so a single large tick still satisfies
// the ⌊T/R⌋ interrupt-count invariant (spec.md §8).
func (t *Timer) tick(n uint32) int {
	if !t.enabled() {
		return 0
	}
	if t.reload() == 0 && t.value == 0 {
		// Degenerate reload=0 configuration: avoid spinning forever: fire
		// once per non-empty tick and otherwise behave as disabled.
		if n == 0 {
			return 0
		}
		t.elapsed = true
		if !t.repeat() {
			t.cfg &^= cfgEnable
		}
		return 1
	}
	fired := 0
	for n > 0 {
		if t.value == 0 {
			t.value = t.reload()
		}
		if n >= t.value {
			n -= t.value
			t.value = 0
			t.elapsed = true
			fired++
			if t.repeat() {
				t.value = t.reload()
			} else {
				t.cfg &^= cfgEnable
				break
			}
		} else {
			t.value -= n
			n = 0
		}
	}
	return fired
}

// readValue returns the current count and acknowledges (clears) the
// elapsed flag, matching the real hardware convention firmware relies on
// (spec.md §4.4).
func (t *Timer) readValue() uint32 {
	t.elapsed = false
	return t.value
}

// Timers is the pair of down-counters presented as one register block.
type Timers struct {
	T1, T2 Timer
	logger *debug.Logger
}

// New creates both timers, disabled.
func New() *Timers { return &Timers{} }

// SetLogger attaches a logger for tick tracing.
func (t *Timers) SetLogger(l *debug.Logger) { t.logger = l }

// Fired reports, for the timer sources defined in package irq
// (Timer1 = bit 0, Timer2 = bit 1), how many times each fired during one
// Tick call.
type Fired struct {
	Timer1 int
	Timer2 int
}

// Any reports whether either timer fired at least once.
func (f Fired) Any() bool { return f.Timer1 > 0 || f.Timer2 > 0 }

// Tick advances both timers by n bus cycles (spec.md §4.12 core step loop).
func (t *Timers) Tick(n uint32) Fired {
	f := Fired{
		Timer1: t.T1.tick(n),
		Timer2: t.T2.tick(n),
	}
	if t.logger != nil && f.Any() {
		t.logger.Logf(debug.ComponentTimer, debug.LogLevelDebug, "fired timer1=%d timer2=%d", f.Timer1, f.Timer2)
	}
	return f
}

const (
	regT1Cfg = 0x00
	regT1Val = 0x04
	regT2Cfg = 0x08
	regT2Val = 0x0C
)

func (t *Timers) Read32(offset uint32) uint32 {
	switch offset {
	case regT1Cfg:
		return t.T1.cfg
	case regT1Val:
		return t.T1.readValue()
	case regT2Cfg:
		return t.T2.cfg
	case regT2Val:
		return t.T2.readValue()
	default:
		return 0
	}
}

func (t *Timers) Write32(offset uint32, v uint32) {
	switch offset {
	case regT1Cfg:
		t.T1.setCfg(v)
	case regT2Cfg:
		t.T2.setCfg(v)
	}
}

func (t *Timers) Read8(offset uint32) uint8 {
	return byte(t.Read32(offset &^ 3) >> ((offset & 3) * 8))
}
func (t *Timers) Write8(offset uint32, v uint8) {
	word := t.Read32(offset &^ 3)
	shift := (offset & 3) * 8
	word = (word &^ (0xFF << shift)) | uint32(v)<<shift
	t.Write32(offset&^3, word)
}
func (t *Timers) Read16(offset uint32) uint16 {
	return uint16(t.Read32(offset &^ 3) >> ((offset & 2) * 8))
}
func (t *Timers) Write16(offset uint32, v uint16) {
	word := t.Read32(offset &^ 3)
	shift := (offset & 2) * 8
	word = (word &^ (0xFFFF << shift)) | uint32(v)<<shift
	t.Write32(offset&^3, word)
}
