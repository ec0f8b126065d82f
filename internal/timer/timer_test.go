package timer

import "testing"

func TestDisabledTimerDoesNotFire(t *testing.T) {
	tm := New()
	tm.Write32(regT1Cfg, 100) // reload=100, enable bit clear
	f := tm.Tick(1000)
	if f.Timer1 != 0 {
		t.Fatalf("disabled timer fired %d times, want 0", f.Timer1)
	}
}

// TestFireCountMatchesFloorDivInvariant covers spec.md §8's ⌊T/R⌋ invariant:
// a repeating timer ticked by T cycles with reload R fires floor(T/R) times.
func TestFireCountMatchesFloorDivInvariant(t *testing.T) {
	tm := New()
	const reload = 100
	tm.Write32(regT1Cfg, cfgEnable|cfgRepeat|reload)

	f := tm.Tick(1050)
	want := 1050 / reload
	if f.Timer1 != want {
		t.Fatalf("fired %d times, want %d (floor(1050/100))", f.Timer1, want)
	}
}

func TestNonRepeatingTimerFiresOnceThenDisables(t *testing.T) {
	tm := New()
	tm.Write32(regT1Cfg, cfgEnable|50)

	f := tm.Tick(200)
	if f.Timer1 != 1 {
		t.Fatalf("one-shot timer fired %d times, want 1", f.Timer1)
	}
	if tm.T1.enabled() {
		t.Fatal("one-shot timer should self-disable after firing")
	}

	f2 := tm.Tick(500)
	if f2.Timer1 != 0 {
		t.Fatal("disabled one-shot timer must not fire again")
	}
}

func TestReadValueAcknowledgesElapsedFlag(t *testing.T) {
	tm := New()
	tm.Write32(regT1Cfg, cfgEnable|cfgRepeat|10)
	tm.Tick(25)

	if !tm.T1.elapsed {
		t.Fatal("expected elapsed flag set after firing")
	}
	tm.Read32(regT1Val)
	if tm.T1.elapsed {
		t.Fatal("reading the value register should clear the elapsed flag")
	}
}

func TestTimersAreIndependent(t *testing.T) {
	tm := New()
	tm.Write32(regT1Cfg, cfgEnable|cfgRepeat|10)

	f := tm.Tick(55)
	if f.Timer1 != 5 {
		t.Fatalf("timer1 fired %d, want 5", f.Timer1)
	}
	if f.Timer2 != 0 {
		t.Fatalf("timer2 fired %d, want 0 (never configured)", f.Timer2)
	}
}

func TestEnablingReloadsCount(t *testing.T) {
	tm := New()
	tm.Write32(regT1Cfg, 77) // configure reload while disabled
	tm.Write32(regT1Cfg, cfgEnable|77)
	if got := tm.Read32(regT1Val); got != 77 {
		t.Fatalf("value after enable = %d, want reload value 77", got)
	}
}
