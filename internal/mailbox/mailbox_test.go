package mailbox

import "testing"

func TestSetAndClearBits(t *testing.T) {
	m := New()
	m.Write32(regSet, WakeCPU)
	if got := m.Read32(regStatus); got&WakeCPU == 0 {
		t.Fatalf("status = %#x, want WakeCPU set", got)
	}

	m.Write32(regClear, WakeCPU)
	if got := m.Read32(regStatus); got&WakeCPU != 0 {
		t.Fatalf("status = %#x, want WakeCPU cleared", got)
	}
}

func TestProcIDAlwaysReportsCPU(t *testing.T) {
	var p ProcID
	if got := p.Read32(0); got != ProcIDCPU {
		t.Fatalf("PROC_ID = %#x, want %#x", got, ProcIDCPU)
	}
	p.Write32(0, 0xFF) // writes must be no-ops
	if got := p.Read32(0); got != ProcIDCPU {
		t.Fatalf("PROC_ID after write = %#x, want unchanged %#x", got, ProcIDCPU)
	}
}

// TestWakeCOPAutoClearsAfterConfiguredReads models COP-ack without running a
// second core (spec.md §4.11, §9).
func TestWakeCOPAutoClearsAfterConfiguredReads(t *testing.T) {
	m := New()
	m.SetCOPWakeAutoClear(2)
	m.Write32(regSet, WakeCOP)

	if got := m.Read32(regStatus); got&WakeCOP == 0 {
		t.Fatal("WakeCOP should still be set after the first read")
	}
	if got := m.Read32(regStatus); got&WakeCOP != 0 {
		t.Fatal("WakeCOP should auto-clear by the second read")
	}
}
