package syscon

import "testing"

func TestCOPCtlReportsSleepingUntilPollThreshold(t *testing.T) {
	s := New()
	s.SetCOPWakeAfterReads(3)

	for i := 0; i < 2; i++ {
		if got := s.Read32(regCOPCtl); got != procSleep {
			t.Fatalf("poll %d: COP_CTL = %#x, want sleeping (%#x)", i, got, procSleep)
		}
	}
	if got := s.Read32(regCOPCtl); got != 0 {
		t.Fatalf("poll 3: COP_CTL = %#x, want awake (0)", got)
	}
	// Once awake, it should stay awake.
	if got := s.Read32(regCOPCtl); got != 0 {
		t.Fatalf("poll 4: COP_CTL = %#x, want still awake (0)", got)
	}
}

func TestEnterKernelPhaseForcesAwakeImmediately(t *testing.T) {
	s := New()
	s.EnterKernelPhase()
	if got := s.Read32(regCOPCtl); got != 0 {
		t.Fatalf("COP_CTL after EnterKernelPhase = %#x, want 0", got)
	}
}

func TestCPUCtlSleepRequestDoesNotLatch(t *testing.T) {
	s := New()
	s.Write32(regCPUCtl, procSleep)
	if got := s.Read32(regCPUCtl); got != 0 {
		t.Fatalf("CPU_CTL after sleep request = %#x, want 0 (never latches)", got)
	}
}

func TestCPUCtlNonSleepWriteLatches(t *testing.T) {
	s := New()
	s.Write32(regCPUCtl, 0x1234)
	if got := s.Read32(regCPUCtl); got != 0x1234 {
		t.Fatalf("CPU_CTL = %#x, want 0x1234", got)
	}
}

func TestDeviceInitReportsVersionAndConfigurableStatus(t *testing.T) {
	d := NewDeviceInit()
	if got := d.Read32(regPPVer1); got != verPP1 {
		t.Fatalf("PP_VER1 = %#x, want %#x", got, verPP1)
	}
	if got := d.Read32(regStatus); got != 0x80000000 {
		t.Fatalf("default status = %#x, want 0x80000000", got)
	}
	d.Write32(regStatus, 0x1)
	if got := d.Read32(regStatus); got != 1 {
		t.Fatalf("status after write = %#x, want 1", got)
	}
}

func TestHWAccelIsPlainRAMWithoutKickstart(t *testing.T) {
	h := NewHWAccel()
	h.Write32(0, 0xCAFEBABE)
	if got := h.Read32(0); got != 0xCAFEBABE {
		t.Fatalf("HWAccel RAM readback = %#x, want 0xCAFEBABE", got)
	}
}

func TestHWAccelKickstartOverridesRAM(t *testing.T) {
	h := NewHWAccel()
	started := false
	h.SetKickstart(func(offset uint32, width int, write bool, value uint32) (uint32, bool) {
		if write && value != 0 {
			started = true
		}
		if offset == 0 && !write {
			if started {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	})

	if got := h.Read32(0); got != 0 {
		t.Fatalf("before kickstart, offset 0 = %d, want 0", got)
	}
	h.Write32(0, 1)
	if got := h.Read32(0); got != 1 {
		t.Fatalf("after kickstart write, offset 0 = %d, want 1", got)
	}
}

func TestCacheControllerBit15AlwaysClear(t *testing.T) {
	c := NewCacheController()
	c.Write32(0, 0xFFFFFFFF)
	if got := c.Read32(0); got&(1<<15) != 0 {
		t.Fatalf("bit 15 should always read clear, got %#x", got)
	}
}
