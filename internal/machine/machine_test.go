package machine

import (
	"testing"

	"nitro-core-dx/internal/ata"
	"nitro-core-dx/internal/bus"
	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/irq"
)

func newTestMachine() *Machine {
	cfg := config.Default()
	return New(cfg, nil)
}

// TestLoadFirmwareBytesSetsEntryPointAndRuns covers spec.md §8 scenario 1:
// a raw image loaded into SDRAM, with the entry point at its load address,
// executes instructions when stepped.
func TestLoadFirmwareBytesSetsEntryPointAndRuns(t *testing.T) {
	m := newTestMachine()

	// MOV r0, #0x11 ; B . (branch to self)
	image := []byte{
		0x11, 0x00, 0xA0, 0xE3, // MOV r0, #0x11
		0xFE, 0xFF, 0xFF, 0xEA, // B #-2 (branch to self)
	}
	if err := m.LoadFirmwareBytes(image, 0x10000000, 0x10000000); err != nil {
		t.Fatalf("LoadFirmwareBytes: %v", err)
	}

	m.Step()
	if m.CPU.R[0] != 0x11 {
		t.Fatalf("r0 = %#x, want 0x11", m.CPU.R[0])
	}
}

// TestMMAPEnabledAliasesLowWindowOntoSDRAM covers scenario 3: once MMAP is
// enabled, code fetched from 0x0 executes the bytes staged in SDRAM.
func TestMMAPEnabledAliasesLowWindowOntoSDRAM(t *testing.T) {
	cfg := config.Default()
	cfg.MMAPEnabled = true
	m := New(cfg, nil)

	if err := m.LoadFirmwareBytes([]byte{0x2A, 0x00, 0xA0, 0xE3}, bus.SDRAMBase, 0x00000000); err != nil {
		t.Fatalf("LoadFirmwareBytes: %v", err)
	}

	m.Step()
	if m.CPU.R[0] != 0x2A {
		t.Fatalf("r0 = %#x, want 0x2A (low window should alias SDRAM once MMAP is enabled)", m.CPU.R[0])
	}
}

// TestTimerInterruptFiresAndIsServiced covers the core step loop driving a
// timer IRQ into the CPU: a one-shot timer configured to fire quickly must
// interrupt a tight branch-to-self loop.
func TestTimerInterruptFiresAndIsServiced(t *testing.T) {
	m := newTestMachine()
	m.IRQ.Write32(0x20, 1) // enable CPU IRQ for source bit 0 (Timer1), CPU_INT_EN_LO
	m.Timers.Write32(0x00, uint32(1<<31)|10)

	image := []byte{0xFE, 0xFF, 0xFF, 0xEA} // B . (self loop)
	if err := m.LoadFirmwareBytes(image, 0x10000000, 0x10000000); err != nil {
		t.Fatalf("LoadFirmwareBytes: %v", err)
	}
	m.CPU.EnableIRQ()

	var tookIRQ bool
	for i := 0; i < 100; i++ {
		m.Step()
		if m.CPU.R[15] == 0x18 { // VectorIRQ
			tookIRQ = true
			break
		}
	}
	if !tookIRQ {
		t.Fatal("expected the timer to eventually interrupt the self-loop")
	}
}

// TestATAIdentifyReflectsAttachedDiskImage covers scenario 5: SetBlockDevice
// wires a host-supplied disk image into the machine's owned ATA peripheral,
// and IDENTIFY reports its sector count.
func TestATAIdentifyReflectsAttachedDiskImage(t *testing.T) {
	m := newTestMachine()
	dev := &fakeBlockDevice{sectors: 1234}
	m.SetBlockDevice(dev)

	m.Bus.Write8(bus.ATABase+0x0E, 0xEC) // IDENTIFY, via the bus command port
	// Sector count lands in IDENTIFY words 60/61; drain the preceding 60
	// words of the PIO buffer to reach them, matching real task-file PIO.
	// The 16-bit data port is read directly off the peripheral, through the
	// same Read16 method a bus Read16 at ATABase reaches.
	for i := 0; i < 60; i++ {
		m.ATA.Read16(0x00)
	}
	lo := m.ATA.Read16(0x00)
	hi := m.ATA.Read16(0x00)
	got := uint64(lo) | uint64(hi)<<16
	if got != 1234 {
		t.Fatalf("identify sector count = %d, want 1234", got)
	}
}

type fakeBlockDevice struct {
	sectors uint64
}

func (f *fakeBlockDevice) ReadSector(lba uint64, buf []byte) error  { return nil }
func (f *fakeBlockDevice) WriteSector(lba uint64, buf []byte) error { return nil }
func (f *fakeBlockDevice) SectorCount() uint64                      { return f.sectors }

func TestProtectedTimerSourceSurvivesFirmwareMaskingEverything(t *testing.T) {
	m := newTestMachine()
	m.IRQ.Write32(0x20, 1)          // enable Timer1
	m.IRQ.Write32(0x28, 0xFFFFFFFF) // CPU_INT_DIS_LO: try to mask everything

	m.IRQ.Assert(irq.SourceTimer1)
	if !m.IRQ.HasPendingIRQ(irq.CoreCPU) {
		t.Fatal("protected Timer1 source should remain enabled despite a disable-all write")
	}
}

func TestResetReappliesConfiguredMMAPState(t *testing.T) {
	cfg := config.Default()
	cfg.MMAPEnabled = true
	m := New(cfg, nil)

	m.Bus.MMAP.Enabled = false // simulate firmware having disabled it at runtime
	m.Reset()

	if !m.Bus.MMAP.Enabled {
		t.Fatal("Reset should restore the configured MMAP-enabled state")
	}
}

func TestRunStopsAtCycleBudget(t *testing.T) {
	m := newTestMachine()
	if err := m.LoadFirmwareBytes([]byte{0xFE, 0xFF, 0xFF, 0xEA}, 0x10000000, 0x10000000); err != nil {
		t.Fatalf("LoadFirmwareBytes: %v", err)
	}

	before := m.TotalCycles()
	m.Run(30, nil)
	if m.TotalCycles() <= before {
		t.Fatal("Run should have advanced the cycle count")
	}
	if m.TotalCycles() < 30 {
		t.Fatalf("total cycles = %d, want at least the requested budget of 30", m.TotalCycles())
	}
}

var _ ata.BlockDevice = (*fakeBlockDevice)(nil)
