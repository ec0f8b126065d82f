package keypad

import "testing"

func TestReadWithEmptyFIFOReturnsIdlePacket(t *testing.T) {
	k := New()
	if got := k.Read32(0); got != IdlePacket {
		t.Fatalf("empty FIFO read = %#08x, want idle packet %#08x", got, IdlePacket)
	}
}

func TestPushButtonEnqueuesPacketWithChecksum(t *testing.T) {
	k := New()
	k.PushButton(ButtonSelect, true)

	got := k.Read32(0)
	sync := uint8(got)
	wheel := uint8(got >> 8)
	buttons := uint8(got >> 16)
	checksum := uint8(got >> 24)

	if buttons != ButtonSelect {
		t.Fatalf("buttons = %#02x, want %#02x", buttons, ButtonSelect)
	}
	if want := sync ^ wheel ^ buttons; checksum != want {
		t.Fatalf("checksum = %#02x, want %#02x", checksum, want)
	}

	// FIFO should now be drained.
	if got := k.Read32(0); got != IdlePacket {
		t.Fatal("FIFO should be empty after draining the single queued packet")
	}
}

func TestPushWheelDeltaWrapsCircularly(t *testing.T) {
	k := New()
	k.PushWheelDelta(-1)
	got := k.Read32(0)
	wheel := uint8(got >> 8)
	if wheel != wheelPositions-1 {
		t.Fatalf("wheel position = %d, want %d (wrapped backward)", wheel, wheelPositions-1)
	}
}

func TestFIFOPreservesOrder(t *testing.T) {
	k := New()
	k.PushButton(ButtonMenu, true)
	k.PushButton(ButtonPlay, true)

	first := uint8(k.Read32(0) >> 16)
	second := uint8(k.Read32(0) >> 16)

	if first != ButtonMenu {
		t.Fatalf("first dequeued buttons = %#02x, want Menu", first)
	}
	if second != ButtonMenu|ButtonPlay {
		t.Fatalf("second dequeued buttons = %#02x, want Menu|Play", second)
	}
}

func TestWriteResetsChannel(t *testing.T) {
	k := New()
	k.PushButton(ButtonSelect, true)
	k.Write32(0, 0)
	if got := k.Read32(0); got != IdlePacket {
		t.Fatal("writing the channel register should clear the pending FIFO")
	}
}
