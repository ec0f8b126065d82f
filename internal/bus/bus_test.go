package bus

import "testing"

// TestDirectLowWindowExecution covers scenario 1 (spec.md §8): with MMAP
// disabled, code placed at 0x00000000 executes from the low window's own
// flat backing store, not SDRAM.
func TestDirectLowWindowExecution(t *testing.T) {
	b := New(64 * 1024 * 1024)

	b.Write32(0x00000000, 0xE3A00001) // MOV R0, #1 (ARM encoding)
	if got := b.Read32(0x00000000); got != 0xE3A00001 {
		t.Fatalf("low window readback = %#08x, want %#08x", got, 0xE3A00001)
	}

	// SDRAM itself must be unaffected: the low window is a separate backing
	// store while MMAP is disabled.
	if got := b.Read32(SDRAMBase); got != 0 {
		t.Fatalf("SDRAM at base = %#08x, want 0 (untouched)", got)
	}
}

// TestMMAPLowWindowAliasesSDRAM covers scenario 3: once MMAP is enabled, a
// write through the low window is visible by reading SDRAM directly, and
// vice versa.
func TestMMAPLowWindowAliasesSDRAM(t *testing.T) {
	b := New(64 * 1024 * 1024)
	b.MMAP.Enabled = true

	b.Write32(0x00000100, 0xDEADBEEF)
	if got := b.Read32(SDRAMBase + 0x100); got != 0xDEADBEEF {
		t.Fatalf("SDRAM[0x100] = %#08x, want 0xDEADBEEF", got)
	}

	b.Write32(SDRAMBase+0x200, 0xCAFEF00D)
	if got := b.Read32(0x00000200); got != 0xCAFEF00D {
		t.Fatalf("low window[0x200] = %#08x, want 0xCAFEF00D", got)
	}
}

// TestSDRAMSizeWraparound covers the RAM-size probe described in spec.md §9:
// on a 32 MiB machine, an address one byte past the top wraps to offset 0.
func TestSDRAMSizeWraparound(t *testing.T) {
	b := New(32 * 1024 * 1024)

	b.Write8(SDRAMBase, 0x42)
	got := b.Read8(SDRAMBase + 32*1024*1024)
	if got != 0x42 {
		t.Fatalf("wrapped read = %#02x, want 0x42", got)
	}
}

// TestUnmappedAccessIsCountedNotFatal ensures a read from an address with no
// backing region or peripheral returns zero and is merely traced.
func TestUnmappedAccessIsCountedNotFatal(t *testing.T) {
	b := New(64 * 1024 * 1024)

	if got := b.Read32(0x90000000); got != 0 {
		t.Fatalf("unmapped read = %#08x, want 0", got)
	}
	b.Write32(0x90000004, 1)

	reads, writes := b.UnmappedAccessCounts()
	if reads != 1 || writes != 1 {
		t.Fatalf("unmapped counts = (%d,%d), want (1,1)", reads, writes)
	}
}

type stubHandler struct {
	last32  uint32
	lastOff uint32
}

func (s *stubHandler) Read8(uint32) uint8   { return uint8(s.last32) }
func (s *stubHandler) Write8(o uint32, v uint8) {
	s.last32 = uint32(v)
}
func (s *stubHandler) Read16(uint32) uint16   { return uint16(s.last32) }
func (s *stubHandler) Write16(o uint32, v uint16) { s.last32 = uint32(v) }
func (s *stubHandler) Read32(uint32) uint32   { return s.last32 }
func (s *stubHandler) Write32(o uint32, v uint32) { s.last32, s.lastOff = v, o }

// TestAttachRoutesByOffset verifies region dispatch passes an offset
// relative to the peripheral's base address, not the flat bus address.
func TestAttachRoutesByOffset(t *testing.T) {
	b := New(64 * 1024 * 1024)
	h := &stubHandler{}
	b.Attach(0x50000000, 0x100, h)

	b.Write32(0x50000010, 0x1234)
	if h.last32 != 0x1234 {
		t.Fatalf("handler saw %#08x, want 0x1234", h.last32)
	}
	if h.lastOff != 0x10 {
		t.Fatalf("handler saw offset %#x, want 0x10", h.lastOff)
	}
}
