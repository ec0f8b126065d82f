package syscon

// DeviceInit models the device-init/version block at 0x70000000: PP_VER1,
// PP_VER2, and a status word at offset 0x30 whose exact expected value for
// stock Apple firmware is undocumented (spec.md §9 open question) and is
// therefore left configurable rather than hard-coded.
type DeviceInit struct {
	StatusWord uint32
}

// HWAccelSize is the size of the hardware-accel task-state scratch block at
// 0x60003000, modeled as ordinary RAM by default (spec.md §9).
const HWAccelSize = 0x40

const (
	verPP1 = 0x32314300 // "21C\0"
	verPP2 = 0x50503530 // "PP50"
)

const (
	regPPVer1  = 0x00
	regPPVer2  = 0x04
	regStatus  = 0x30
)

// NewDeviceInit creates the block with the spec's documented default status
// word (0x80000000), overridable via StatusWord.
func NewDeviceInit() *DeviceInit {
	return &DeviceInit{StatusWord: 0x80000000}
}

func (d *DeviceInit) Read32(offset uint32) uint32 {
	switch offset {
	case regPPVer1:
		return verPP1
	case regPPVer2:
		return verPP2
	case regStatus:
		return d.StatusWord
	default:
		return 0
	}
}

func (d *DeviceInit) Write32(offset uint32, v uint32) {
	if offset == regStatus {
		d.StatusWord = v
	}
}

func (d *DeviceInit) Read8(offset uint32) uint8 {
	return byte(d.Read32(offset &^ 3) >> ((offset & 3) * 8))
}
func (d *DeviceInit) Write8(offset uint32, v uint8) {
	word := d.Read32(offset &^ 3)
	shift := (offset & 3) * 8
	word = (word &^ (0xFF << shift)) | uint32(v)<<shift
	d.Write32(offset&^3, word)
}
func (d *DeviceInit) Read16(offset uint32) uint16 {
	return uint16(d.Read32(offset &^ 3) >> ((offset & 2) * 8))
}
func (d *DeviceInit) Write16(offset uint32, v uint16) {
	word := d.Read32(offset &^ 3)
	shift := (offset & 2) * 8
	word = (word &^ (0xFFFF << shift)) | uint32(v)<<shift
	d.Write32(offset&^3, word)
}

// HWAccel is a plain-RAM peripheral for the 0x60003000 scratch block, with
// an optional "kickstart" override hook for the Apple RTOS task-state path
// (spec.md §9, SPEC_FULL.md §6).
type HWAccel struct {
	bytes     [HWAccelSize]byte
	kickstart func(offset uint32, width int, write bool, value uint32) (uint32, bool)
}

// NewHWAccel creates the scratch block as ordinary RAM.
func NewHWAccel() *HWAccel { return &HWAccel{} }

// SetKickstart installs an override hook consulted before the plain-RAM
// behavior; returning ok=true substitutes its value/effect.
func (h *HWAccel) SetKickstart(fn func(offset uint32, width int, write bool, value uint32) (uint32, bool)) {
	h.kickstart = fn
}

func (h *HWAccel) Read8(offset uint32) uint8 {
	if h.kickstart != nil {
		if v, ok := h.kickstart(offset, 8, false, 0); ok {
			return uint8(v)
		}
	}
	if offset < HWAccelSize {
		return h.bytes[offset]
	}
	return 0
}

func (h *HWAccel) Write8(offset uint32, v uint8) {
	if h.kickstart != nil {
		if _, ok := h.kickstart(offset, 8, true, uint32(v)); ok {
			return
		}
	}
	if offset < HWAccelSize {
		h.bytes[offset] = v
	}
}

func (h *HWAccel) Read16(offset uint32) uint16 {
	return uint16(h.Read8(offset)) | uint16(h.Read8(offset+1))<<8
}
func (h *HWAccel) Write16(offset uint32, v uint16) {
	h.Write8(offset, uint8(v))
	h.Write8(offset+1, uint8(v>>8))
}
func (h *HWAccel) Read32(offset uint32) uint32 {
	return uint32(h.Read16(offset)) | uint32(h.Read16(offset+2))<<16
}
func (h *HWAccel) Write32(offset uint32, v uint32) {
	h.Write16(offset, uint16(v))
	h.Write16(offset+2, uint16(v>>16))
}

// CacheController is the 0x6000C000 stub. Bit 15 must always read clear
// (spec.md §4.5); no actual cache is modeled.
type CacheController struct {
	reg uint32
}

func NewCacheController() *CacheController { return &CacheController{} }

func (c *CacheController) Read32(offset uint32) uint32 {
	if offset == 0 {
		return c.reg &^ (1 << 15)
	}
	return 0
}

func (c *CacheController) Write32(offset uint32, v uint32) {
	if offset == 0 {
		c.reg = v
	}
}

func (c *CacheController) Read8(offset uint32) uint8 {
	return byte(c.Read32(offset &^ 3) >> ((offset & 3) * 8))
}
func (c *CacheController) Write8(offset uint32, v uint8) {
	word := c.Read32(offset &^ 3)
	shift := (offset & 3) * 8
	word = (word &^ (0xFF << shift)) | uint32(v)<<shift
	c.Write32(offset&^3, word)
}
func (c *CacheController) Read16(offset uint32) uint16 {
	return uint16(c.Read32(offset &^ 3) >> ((offset & 2) * 8))
}
func (c *CacheController) Write16(offset uint32, v uint16) {
	word := c.Read32(offset &^ 3)
	shift := (offset & 2) * 8
	word = (word &^ (0xFFFF << shift)) | uint32(v)<<shift
	c.Write32(offset&^3, word)
}
