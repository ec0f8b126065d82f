package gpio

import "testing"

func TestDefaultExternalInputIsIdleHigh(t *testing.T) {
	g := New()
	if got := g.Read8(regInputVal); got != 0xFF {
		t.Fatalf("port A input = %#02x, want 0xFF idle-high", got)
	}
}

func TestOutputEnableBitsSelectBetweenExternalAndDrivenValue(t *testing.T) {
	g := New()
	g.Write8(regOutputEn, 0x0F)  // low nibble driven, high nibble input
	g.Write8(regOutputVal, 0x05) // drive 0101 on the low nibble

	got := g.Read8(regInputVal)
	want := uint8(0xF0 | 0x05) // external idle-high for undriven bits, driven value for the rest
	if got != want {
		t.Fatalf("input value = %#02x, want %#02x", got, want)
	}
}

func TestSetExternalInputFeedsUndrivenBits(t *testing.T) {
	g := New()
	g.SetExternalInput(0, 0x00) // simulate all buttons pressed (active low)
	if got := g.Read8(regInputVal); got != 0x00 {
		t.Fatalf("input value = %#02x, want 0x00", got)
	}
}

func TestInterruptStatusIsWriteOneToClear(t *testing.T) {
	g := New()
	g.ports[0].intStatus = 0xFF

	g.Write8(regIntStat, 0x0F)
	if got := g.ports[0].intStatus; got != 0xF0 {
		t.Fatalf("int status after ack = %#02x, want 0xF0", got)
	}
}

func TestPortsAreIndependentByStride(t *testing.T) {
	g := New()
	g.Write8(1*portStride+regOutputVal, 0xAA)
	if got := g.Read8(0 * portStride + regOutputVal); got != 0 {
		t.Fatalf("port 0 output = %#02x, want 0 (untouched)", got)
	}
	if got := g.Read8(1*portStride + regOutputVal); got != 0xAA {
		t.Fatalf("port 1 output = %#02x, want 0xAA", got)
	}
}

func TestOutOfRangePortIsIgnored(t *testing.T) {
	g := New()
	g.Write8(uint32(NumPorts)*portStride+regOutputVal, 0xFF) // one port past the end
	if got := g.Read8(uint32(NumPorts)*portStride + regOutputVal); got != 0 {
		t.Fatalf("out-of-range port read = %#02x, want 0", got)
	}
}
