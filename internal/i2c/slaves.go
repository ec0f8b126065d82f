package i2c

// PMU models the power-management-unit I²C slave with constant defaults
// sufficient for firmware init (spec.md §4.7): battery-present, AC absent,
// and a nominal charge level on whichever register offset firmware probes.
type PMU struct {
	lastWritten uint8
	readIndex   int
	status      []uint8
}

// NewPMU creates a PMU stub. status is cycled on successive reads, mimicking
// a small register file addressed implicitly by read order.
func NewPMU() *PMU {
	return &PMU{status: []uint8{0x00, 0x80, 0x64}} // register 0 default, battery-present, ~100% charge
}

func (p *PMU) WriteByte(b uint8) { p.lastWritten = b }

func (p *PMU) ReadByte() uint8 {
	v := p.status[p.readIndex%len(p.status)]
	p.readIndex++
	return v
}

// AudioCodec models the audio DAC/ADC I²C slave with inert register
// defaults; the core never produces audio output, so only enough behavior
// to satisfy firmware's init sequence (ack the transaction, return zeros)
// is modeled.
type AudioCodec struct {
	regs [16]uint8
	addr int
}

func NewAudioCodec() *AudioCodec { return &AudioCodec{} }

func (a *AudioCodec) WriteByte(b uint8) {
	a.regs[a.addr%len(a.regs)] = b
	a.addr++
}

func (a *AudioCodec) ReadByte() uint8 {
	v := a.regs[a.addr%len(a.regs)]
	a.addr++
	return v
}
