// Package machine composes the bus and every peripheral into a single
// owning aggregate, and implements the core step loop. See SPEC_FULL.md
// §5.13, spec.md §4.12, §9 ("shared mutable bus").
package machine

import (
	"fmt"

	"nitro-core-dx/internal/ata"
	"nitro-core-dx/internal/bus"
	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/cpu"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/firmware"
	"nitro-core-dx/internal/gpio"
	"nitro-core-dx/internal/i2c"
	"nitro-core-dx/internal/irq"
	"nitro-core-dx/internal/keypad"
	"nitro-core-dx/internal/lcd"
	"nitro-core-dx/internal/mailbox"
	"nitro-core-dx/internal/syscon"
	"nitro-core-dx/internal/timer"
)

// Machine is the single owner of the bus and every peripheral. The CPU
// holds a mutable reference to the bus for the duration of a step;
// peripherals hold no references to one another — interrupt effects are
// applied by the step loop between instructions (spec.md §9).
type Machine struct {
	CPU     *cpu.CPU
	Bus     *bus.Bus
	IRQ     *irq.Controller
	Timers  *timer.Timers
	Syscon  *syscon.Syscon
	Device  *syscon.DeviceInit
	HWAccel *syscon.HWAccel
	Cache   *syscon.CacheController
	GPIO    *gpio.GPIO
	I2C     *i2c.Controller
	ATA     *ata.ATA
	LCD     *lcd.LCD
	Keypad  *keypad.Keypad
	Mailbox *mailbox.Mailbox

	Logger      *debug.Logger
	CycleLogger *debug.CycleLogger

	cfg config.Machine

	patches      []firmware.Patch
	patchApplied []bool

	totalCycles uint64
}

// New builds a Machine per cfg: allocates the bus and every peripheral,
// attaches each to the bus at its region, and wires the CP15/CPU logger.
func New(cfg config.Machine, logger *debug.Logger) *Machine {
	if logger == nil {
		logger = debug.NewLogger(20000)
	}

	sdramSize := cfg.SDRAMSizeMiB
	if sdramSize != 32 && sdramSize != 64 {
		sdramSize = 64
	}
	b := bus.New(sdramSize * 1024 * 1024)
	b.SetLogger(logger)
	b.MMAP.Enabled = cfg.MMAPEnabled

	intCtrl := irq.New()
	intCtrl.SetLogger(logger)
	intCtrl.Protect(irq.SourceTimer1) // keep the scheduler tick alive (spec.md §4.3)

	timers := timer.New()
	timers.SetLogger(logger)

	sys := syscon.New()
	sys.SetLogger(logger)
	if !cfg.EnableCOPShim {
		sys.EnterKernelPhase()
	}

	dev := syscon.NewDeviceInit()
	dev.StatusWord = cfg.DeviceStatusWord

	hwAccel := syscon.NewHWAccel()
	cache := syscon.NewCacheController()

	gp := gpio.New()
	gp.SetLogger(logger)

	i2cCtrl := i2c.New()
	i2cCtrl.SetLogger(logger)
	i2cCtrl.RegisterSlave(0x34, i2c.NewPMU())
	i2cCtrl.RegisterSlave(0x1A, i2c.NewAudioCodec())

	ataCtrl := ata.New(nil)
	ataCtrl.SetLogger(logger)

	lcdBridge := lcd.New()
	lcdBridge.SetLogger(logger)

	kp := keypad.New()
	kp.SetLogger(logger)

	mbox := mailbox.New()
	mbox.SetLogger(logger)

	cycleLogger := debug.NewCycleLogger(4096)
	cpuLog := cpu.NewCPULoggerAdapter(cpuLogger{logger: logger}, cpuCycleRecorder{cycles: cycleLogger}, int(debug.LogLevelTrace))
	core := cpu.NewCPU(b, cpuLog)

	b.Attach(bus.ProcIDBase, 4, mailbox.ProcID{})
	b.Attach(bus.MailboxBase, 0x40, mbox)
	b.Attach(bus.HWAccelBase, bus.HWAccelSize, hwAccel)
	b.Attach(bus.IntCtrlBase, 0x100, intCtrl)
	b.Attach(bus.TimerBase, 0x40, timers)
	b.Attach(bus.SysconBase, 8, sys)
	b.Attach(bus.CacheCtrlBase, 0x10, cache)
	b.Attach(bus.DeviceInitBase, 0x40, dev)
	b.Attach(bus.LCDBase, 0x40, lcdBridge)
	b.Attach(bus.I2CBase, 0x40, i2cCtrl)
	b.Attach(bus.KeypadBase, 0x40, kp)
	b.Attach(bus.ATABase, bus.ATASize, ataCtrl)
	b.Attach(bus.GPIOBase, bus.GPIOSize, gp)

	if cfg.HWAccelKickstart {
		installHWAccelKickstart(hwAccel)
	}

	return &Machine{
		CPU: core, Bus: b, IRQ: intCtrl, Timers: timers, Syscon: sys,
		Device: dev, HWAccel: hwAccel, Cache: cache, GPIO: gp, I2C: i2cCtrl,
		ATA: ataCtrl, LCD: lcdBridge, Keypad: kp, Mailbox: mbox,
		Logger: logger, CycleLogger: cycleLogger, cfg: cfg,
	}
}

// installHWAccelKickstart models the Apple RTOS's use of the hw_accel
// block as task-state rather than scratch RAM (spec.md §9 open question):
// offset 0 reads back as "task complete" once written non-zero, letting
// firmware's polling loop progress without an actual accelerator.
func installHWAccelKickstart(h *syscon.HWAccel) {
	started := false
	h.SetKickstart(func(offset uint32, width int, write bool, value uint32) (uint32, bool) {
		if offset != 0 {
			return 0, false
		}
		if write {
			started = value != 0
			return 0, false // let the write also land in backing RAM
		}
		if started {
			return 1, true
		}
		return 0, false
	})
}

// SetBlockDevice attaches the ATA peripheral's backing block device.
func (m *Machine) SetBlockDevice(dev ata.BlockDevice) { m.ATA.SetDevice(dev) }

// SetPatches installs the optional memory-patch list (spec.md §9).
func (m *Machine) SetPatches(patches []firmware.Patch) {
	m.patches = patches
	m.patchApplied = make([]bool, len(patches))
}

// LoadFirmware strips a `.ipod` header if present and writes the payload at
// addr, then sets CPU.R[15] to entryPC.
func (m *Machine) LoadFirmware(path string, addr uint32, entryPC uint32) error {
	_, _, err := firmware.Load(m.Bus, addr, path, m.Logger)
	if err != nil {
		return fmt.Errorf("machine: loading firmware: %w", err)
	}
	m.CPU.R[15] = entryPC
	return nil
}

// LoadFirmwareBytes is LoadFirmware for an in-memory image.
func (m *Machine) LoadFirmwareBytes(data []byte, addr uint32, entryPC uint32) error {
	_, _, err := firmware.LoadBytes(m.Bus, addr, data, m.Logger)
	if err != nil {
		return err
	}
	m.CPU.R[15] = entryPC
	return nil
}

// Step performs one core step-loop iteration per spec.md §4.12:
// (1) refresh CPU IRQ/FIQ lines from the interrupt controller,
// (2) execute one CPU instruction,
// (3) tick the timers with the reported cycle count, asserting their
//     interrupt sources on the controller,
// (4) apply any memory patches whose cycle threshold has been reached.
// It returns the number of bus cycles the instruction consumed.
func (m *Machine) Step() uint32 {
	m.CPU.SetIRQLine(m.IRQ.HasPendingIRQ(irq.CoreCPU))
	m.CPU.SetFIQLine(m.IRQ.HasPendingFIQ(irq.CoreCPU))

	cycles := m.CPU.Step()
	m.totalCycles += uint64(cycles)

	fired := m.Timers.Tick(cycles)
	for i := 0; i < fired.Timer1; i++ {
		m.IRQ.Assert(irq.SourceTimer1)
	}
	for i := 0; i < fired.Timer2; i++ {
		m.IRQ.Assert(irq.SourceTimer2)
	}

	if len(m.patches) > 0 {
		m.patchApplied = firmware.ApplyPatches(m.Bus, m.patches, m.totalCycles, m.patchApplied)
	}

	return cycles
}

// Run executes Step until cycleBudget bus cycles have elapsed or stop
// returns true, whichever comes first. stop may be nil.
func (m *Machine) Run(cycleBudget uint64, stop func(m *Machine) bool) {
	var ran uint64
	for ran < cycleBudget {
		if stop != nil && stop(m) {
			return
		}
		ran += uint64(m.Step())
	}
}

// TotalCycles returns the cumulative cycle count since construction.
func (m *Machine) TotalCycles() uint64 { return m.totalCycles }

// Reset resets the CPU and re-enables the configured MMAP state; peripheral
// register state (timers, interrupt masks, etc.) is left as programmed,
// matching real hardware where only the CPU core resets on this path.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.Bus.MMAP.Enabled = m.cfg.MMAPEnabled
}
