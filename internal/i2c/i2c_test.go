package i2c

import "testing"

func TestWriteTransactionDeliversBytesToSlave(t *testing.T) {
	c := New()
	pmu := NewPMU()
	c.RegisterSlave(0x34, pmu)

	c.Write8(regAddr, 0x34<<1) // write bit clear
	c.Write32(regCtrl, ctrlStart|(1<<8))
	c.Write8(regData, 0x7A)

	if pmu.lastWritten != 0x7A {
		t.Fatalf("PMU received %#02x, want 0x7A", pmu.lastWritten)
	}
	if c.status()&statusBusy != 0 {
		t.Fatal("transaction should have completed after the last byte")
	}
}

func TestReadTransactionPullsBytesFromSlave(t *testing.T) {
	c := New()
	pmu := NewPMU()
	c.RegisterSlave(0x34, pmu)

	c.Write8(regAddr, 0x34<<1|1) // read bit set
	c.Write32(regCtrl, ctrlStart|(1<<8))

	got := c.Read8(regData)
	if got != 0x00 { // PMU's first status byte
		t.Fatalf("first read byte = %#02x, want 0x00", got)
	}
}

func TestUnknownAddressNacks(t *testing.T) {
	c := New()
	c.Write8(regAddr, 0x50<<1)
	c.Write32(regCtrl, ctrlStart|(1<<8))

	if got := c.Read8(regStatus); got&statusNack == 0 {
		t.Fatalf("status = %#02x, want NACK bit set for unregistered address", got)
	}
}

func TestStatusReadClearsStopState(t *testing.T) {
	c := New()
	pmu := NewPMU()
	c.RegisterSlave(0x34, pmu)
	c.Write8(regAddr, 0x34<<1)
	c.Write32(regCtrl, ctrlStart|(1<<8))
	c.Write8(regData, 0x01)

	c.Read8(regStatus) // first read should observe Stop and reset to Idle
	if c.state != StateIdle {
		t.Fatalf("state after status read = %d, want StateIdle", c.state)
	}
}

func TestAudioCodecRegistersAreAddressedInOrder(t *testing.T) {
	codec := NewAudioCodec()
	codec.WriteByte(0xAB)
	codec.WriteByte(0xCD)

	if codec.regs[0] != 0xAB || codec.regs[1] != 0xCD {
		t.Fatalf("codec regs = %02x %02x, want AB CD", codec.regs[0], codec.regs[1])
	}
}
