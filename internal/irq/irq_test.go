package irq

import "testing"

func TestAssertRequiresEnableToPend(t *testing.T) {
	c := New()
	c.Assert(SourceTimer1)
	if c.HasPendingIRQ(CoreCPU) {
		t.Fatal("source asserted but not enabled should not be pending")
	}

	c.Write32(regCPUEnLo, 1<<SourceTimer1)
	if !c.HasPendingIRQ(CoreCPU) {
		t.Fatal("enabled + asserted source should be pending")
	}
}

func TestFIQSelectRoutesAwayFromIRQ(t *testing.T) {
	c := New()
	c.Assert(SourceTimer1)
	c.Write32(regCPUEnLo, 1<<SourceTimer1)
	c.Write32(regCPUFiqEnLo, 1<<SourceTimer1)

	if c.HasPendingIRQ(CoreCPU) {
		t.Fatal("FIQ-selected source must not also report as IRQ")
	}
	if !c.HasPendingFIQ(CoreCPU) {
		t.Fatal("FIQ-selected, enabled, asserted source should report as FIQ")
	}
}

func TestProtectedSourceSurvivesDisable(t *testing.T) {
	c := New()
	c.Protect(SourceTimer1)
	c.Write32(regCPUEnLo, 1<<SourceTimer1|1<<SourceTimer2)

	c.Write32(regCPUDisLo, 0xFFFFFFFF)

	c.Assert(SourceTimer1)
	if !c.HasPendingIRQ(CoreCPU) {
		t.Fatal("protected source's enable bit must survive a *_DIS write")
	}

	c.Clear(SourceTimer1)
	c.Assert(SourceTimer2)
	if c.HasPendingIRQ(CoreCPU) {
		t.Fatal("unprotected source's enable bit should have been cleared")
	}
}

func TestRawAckIsWriteOneToClear(t *testing.T) {
	c := New()
	c.Assert(SourceTimer1)
	c.Assert(SourceTimer2)

	c.Write32(regRawLo, 1<<SourceTimer1)

	c.Write32(regCPUEnLo, 1<<SourceTimer1|1<<SourceTimer2)
	if c.HasPendingIRQ(CoreCPU) == false {
		t.Fatal("timer2 still asserted, should be pending")
	}
	got := c.Read32(regRawLo)
	if got&(1<<SourceTimer1) != 0 {
		t.Fatalf("acked source still set in raw vector: %#x", got)
	}
	if got&(1<<SourceTimer2) == 0 {
		t.Fatal("un-acked source cleared unexpectedly")
	}
}

func TestForcedVectorContributesIndependentlyOfRaw(t *testing.T) {
	c := New()
	c.Write32(regCPUEnHi, 1<<(SourceGPIOA-32))
	c.Write32(regForcedHi, 1<<(SourceGPIOA-32))

	if !c.HasPendingIRQ(CoreCPU) {
		t.Fatal("forced-pending source should count as pending without Assert")
	}

	c.Write32(regForcedClrHi, 1<<(SourceGPIOA-32))
	if c.HasPendingIRQ(CoreCPU) {
		t.Fatal("forced-clear should remove the forced source")
	}
}

func TestCoresAreIndependent(t *testing.T) {
	c := New()
	c.Assert(SourceTimer1)
	c.Write32(regCOPEnLo, 1<<SourceTimer1)

	if c.HasPendingIRQ(CoreCPU) {
		t.Fatal("CPU core should not see COP's enable mask")
	}
	if !c.HasPendingIRQ(CoreCOP) {
		t.Fatal("COP core should see its own enabled, asserted source")
	}
}
