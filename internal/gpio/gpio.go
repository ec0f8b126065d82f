// Package gpio implements the PP5021C's GPIO ports: per-port output,
// output-enable, input, and interrupt registers, with externally injected
// input bits standing in for the host façade's button/hold-switch state.
// See SPEC_FULL.md §5.7, spec.md §4.6.
package gpio

import "nitro-core-dx/internal/debug"

// NumPorts is the number of 8-bit GPIO ports modeled (A through H).
const NumPorts = 8

type port struct {
	outputVal    uint8
	outputEnable uint8
	external     uint8 // host-injected input bits; default all-ones (idle-high)
	intStatus    uint8
	intEnable    uint8
	intLevel     uint8
}

// GPIO is the full 8-port register file.
type GPIO struct {
	ports  [NumPorts]port
	logger *debug.Logger
}

// New creates all ports with external input idle-high, matching button
// pull-ups and the hold-switch-off state (spec.md §4.6).
func New() *GPIO {
	g := &GPIO{}
	for i := range g.ports {
		g.ports[i].external = 0xFF
	}
	return g
}

// SetLogger attaches a logger for GPIO write tracing.
func (g *GPIO) SetLogger(l *debug.Logger) { g.logger = l }

// SetExternalInput lets the host façade drive a port's externally observed
// bits (button state, wheel wake lines, hold switch).
func (g *GPIO) SetExternalInput(portIndex int, bits uint8) {
	if portIndex < 0 || portIndex >= NumPorts {
		return
	}
	g.ports[portIndex].external = bits
}

func (p *port) inputValue() uint8 {
	return (p.external &^ p.outputEnable) | (p.outputVal & p.outputEnable)
}

// register offsets within one port's 0x20-byte window.
const (
	regOutputVal = 0x00
	regOutputEn  = 0x04
	regInputVal  = 0x08
	regIntStat   = 0x0C
	regIntEnable = 0x10
	regIntLevel  = 0x14
	portStride   = 0x20
)

func (g *GPIO) Read8(offset uint32) uint8 {
	idx := int(offset / portStride)
	if idx < 0 || idx >= NumPorts {
		return 0
	}
	p := &g.ports[idx]
	switch offset % portStride {
	case regOutputVal:
		return p.outputVal
	case regOutputEn:
		return p.outputEnable
	case regInputVal:
		return p.inputValue()
	case regIntStat:
		return p.intStatus
	case regIntEnable:
		return p.intEnable
	case regIntLevel:
		return p.intLevel
	default:
		return 0
	}
}

func (g *GPIO) Write8(offset uint32, v uint8) {
	idx := int(offset / portStride)
	if idx < 0 || idx >= NumPorts {
		return
	}
	p := &g.ports[idx]
	switch offset % portStride {
	case regOutputVal:
		p.outputVal = v
	case regOutputEn:
		p.outputEnable = v
	case regIntStat:
		p.intStatus &^= v // write-one-to-clear
	case regIntEnable:
		p.intEnable = v
	case regIntLevel:
		p.intLevel = v
	}
	if g.logger != nil {
		g.logger.Logf(debug.ComponentGPIO, debug.LogLevelTrace, "port=%d offset=%02x value=%02x", idx, offset%portStride, v)
	}
}

func (g *GPIO) Read16(offset uint32) uint16 {
	return uint16(g.Read8(offset)) | uint16(g.Read8(offset+1))<<8
}
func (g *GPIO) Write16(offset uint32, v uint16) {
	g.Write8(offset, uint8(v))
	g.Write8(offset+1, uint8(v>>8))
}
func (g *GPIO) Read32(offset uint32) uint32 {
	return uint32(g.Read16(offset)) | uint32(g.Read16(offset+2))<<16
}
func (g *GPIO) Write32(offset uint32, v uint32) {
	g.Write16(offset, uint16(v))
	g.Write16(offset+2, uint16(v>>16))
}
