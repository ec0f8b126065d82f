// Package lcd implements the PP5021C LCD bridge: command/data FIFO ports
// driving a 320x240 RGB565 framebuffer. See SPEC_FULL.md §5.10, spec.md §4.9.
package lcd

import "nitro-core-dx/internal/debug"

const (
	Width  = 320
	Height = 240
)

// Commands recognized on the command port. Real PP5021C LCD controllers
// (the Samsung/Renesas-style bridge Rockbox and Apple firmware both drive)
// use vendor-specific opcodes; this models the window-and-cursor contract
// spec.md describes rather than a specific silicon part's exact opcodes.
const (
	cmdSetColumn = 0x2A
	cmdSetRow    = 0x2B
	cmdWriteMem  = 0x2C
)

// LCD is the command/data FIFO and the framebuffer it drives.
type LCD struct {
	Framebuffer [Width * Height]uint16 // RGB565

	startCol, endCol uint16
	startRow, endRow uint16
	cursorCol        uint16
	cursorRow        uint16

	pendingCmd  uint8
	cmdArgIndex int
	cmdArgs     [4]uint8

	inMemWrite bool

	updateCount uint64

	logger *debug.Logger
	onUpdate func(fb []uint16)
}

// New creates an LCD bridge with the whole 320x240 window selected.
func New() *LCD {
	l := &LCD{endCol: Width - 1, endRow: Height - 1}
	return l
}

// SetLogger attaches a logger for command tracing.
func (l *LCD) SetLogger(lg *debug.Logger) { l.logger = lg }

// SetUpdateHandler installs a callback invoked on Update() with the current
// framebuffer contents, standing in for the host façade's LCD sink.
func (l *LCD) SetUpdateHandler(fn func(fb []uint16)) { l.onUpdate = fn }

// UpdateCount reports how many times Update has flushed the framebuffer,
// used by tests to confirm LCD activity (spec.md §4.9).
func (l *LCD) UpdateCount() uint64 { return l.updateCount }

// Update flushes the framebuffer to the host façade.
func (l *LCD) Update() {
	l.updateCount++
	if l.onUpdate != nil {
		l.onUpdate(l.Framebuffer[:])
	}
}

func (l *LCD) writeCommand(cmd uint8) {
	l.pendingCmd = cmd
	l.cmdArgIndex = 0
	l.inMemWrite = cmd == cmdWriteMem
	if cmd == cmdWriteMem {
		l.cursorCol = l.startCol
		l.cursorRow = l.startRow
	}
}

func (l *LCD) writeCommandData(v uint8) {
	switch l.pendingCmd {
	case cmdSetColumn:
		if l.cmdArgIndex < len(l.cmdArgs) {
			l.cmdArgs[l.cmdArgIndex] = v
			l.cmdArgIndex++
		}
		if l.cmdArgIndex == 4 {
			l.startCol = uint16(l.cmdArgs[0])<<8 | uint16(l.cmdArgs[1])
			l.endCol = uint16(l.cmdArgs[2])<<8 | uint16(l.cmdArgs[3])
		}
	case cmdSetRow:
		if l.cmdArgIndex < len(l.cmdArgs) {
			l.cmdArgs[l.cmdArgIndex] = v
			l.cmdArgIndex++
		}
		if l.cmdArgIndex == 4 {
			l.startRow = uint16(l.cmdArgs[0])<<8 | uint16(l.cmdArgs[1])
			l.endRow = uint16(l.cmdArgs[2])<<8 | uint16(l.cmdArgs[3])
		}
	}
}

// writePixel deposits one RGB565 pixel at the cursor and advances it in
// raster order within the active window, wrapping at row end (spec.md §4.9).
func (l *LCD) writePixel(px uint16) {
	if !l.inMemWrite {
		return
	}
	if l.cursorRow <= l.endRow && l.cursorCol <= l.endCol &&
		int(l.cursorRow) < Height && int(l.cursorCol) < Width {
		l.Framebuffer[int(l.cursorRow)*Width+int(l.cursorCol)] = px
	}
	l.cursorCol++
	if l.cursorCol > l.endCol {
		l.cursorCol = l.startCol
		l.cursorRow++
		if l.cursorRow > l.endRow {
			l.cursorRow = l.startRow
		}
	}
}

const (
	portCommand = 0x00
	portData    = 0x04
)

func (l *LCD) Read8(offset uint32) uint8  { return 0 }
func (l *LCD) Write8(offset uint32, v uint8) {
	switch offset {
	case portCommand:
		l.writeCommand(v)
	case portCommand + 1:
		l.writeCommandData(v)
	case portData, portData + 1:
		l.writePixel(uint16(v))
	}
	if l.logger != nil {
		l.logger.Logf(debug.ComponentLCD, debug.LogLevelTrace, "write8 offset=%02x value=%02x", offset, v)
	}
}

func (l *LCD) Read16(offset uint32) uint16 { return 0 }
func (l *LCD) Write16(offset uint32, v uint16) {
	switch offset {
	case portCommand:
		l.writeCommand(uint8(v))
	case portData:
		l.writePixel(v)
	}
	if l.logger != nil {
		l.logger.Logf(debug.ComponentLCD, debug.LogLevelTrace, "write16 offset=%02x value=%04x", offset, v)
	}
}

func (l *LCD) Read32(offset uint32) uint32 { return 0 }
func (l *LCD) Write32(offset uint32, v uint32) {
	l.Write16(offset, uint16(v))
	l.Write16(offset+2, uint16(v>>16))
}
