// Package devkit provides Fyne panels for inspecting a running
// machine.Machine: live CPU registers, a scrollable memory hex dump, and
// the tail of the structured log. Grounded on the teacher's
// internal/ui/panels register/memory/log viewers, adapted from the CoreLX
// 65816-style register set to the ARM7TDMI's 16-register file and CPSR.
package devkit

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/machine"
)

// RegisterViewer builds a panel showing the CPU's register file, CPSR
// flags, and mode, refreshed by calling the returned update function.
func RegisterViewer(m *machine.Machine) (fyne.CanvasObject, func()) {
	text := widget.NewMultiLineEntry()
	text.Wrapping = fyne.TextWrapOff
	text.Disable()
	scroll := container.NewScroll(text)
	scroll.SetMinSize(fyne.NewSize(340, 360))

	update := func() {
		c := m.CPU
		var b strings.Builder
		fmt.Fprintf(&b, "=== ARM7TDMI registers ===\n\n")
		for i := 0; i < 16; i += 4 {
			fmt.Fprintf(&b, "r%-2d=%08x  r%-2d=%08x  r%-2d=%08x  r%-2d=%08x\n",
				i, c.R[i], i+1, c.R[i+1], i+2, c.R[i+2], i+3, c.R[i+3])
		}
		fmt.Fprintf(&b, "\ncpsr=%08x mode=%s thumb=%v\n", c.CPSR, c.Mode(), c.Thumb())
		fmt.Fprintf(&b, "N=%v Z=%v C=%v V=%v I=%v F=%v\n",
			c.CPSR&(1<<31) != 0, c.CPSR&(1<<30) != 0, c.CPSR&(1<<29) != 0,
			c.CPSR&(1<<28) != 0, c.CPSR&(1<<7) != 0, c.CPSR&(1<<6) != 0)
		fmt.Fprintf(&b, "\ntotal cycles=%d\n", m.TotalCycles())
		text.SetText(b.String())
	}
	update()
	return scroll, update
}

// MemoryViewer builds a scrollable hex dump panel rooted at a
// user-editable address, refreshed by calling the returned update function.
func MemoryViewer(m *machine.Machine) (fyne.CanvasObject, func()) {
	addrEntry := widget.NewEntry()
	addrEntry.SetText("10000000")
	addrEntry.SetPlaceHolder("hex address")

	dump := widget.NewMultiLineEntry()
	dump.Wrapping = fyne.TextWrapOff
	dump.Disable()
	scroll := container.NewScroll(dump)
	scroll.SetMinSize(fyne.NewSize(460, 360))

	render := func() {
		base, err := strconv.ParseUint(strings.TrimSpace(addrEntry.Text), 16, 32)
		if err != nil {
			dump.SetText(fmt.Sprintf("invalid address: %v", err))
			return
		}
		var b strings.Builder
		addr := uint32(base) &^ 0xF
		for row := 0; row < 32; row++ {
			fmt.Fprintf(&b, "%08x: ", addr)
			for col := uint32(0); col < 16; col++ {
				fmt.Fprintf(&b, "%02x ", m.Bus.Read8(addr+col))
			}
			b.WriteByte('\n')
			addr += 16
		}
		dump.SetText(b.String())
	}
	addrEntry.OnSubmitted = func(string) { render() }
	render()

	top := container.NewBorder(nil, nil, widget.NewLabel("Address:"), nil, addrEntry)
	return container.NewBorder(top, nil, nil, nil, scroll), render
}

// LogViewer builds a panel showing the most recent log entries from a
// debug.Logger, refreshed by calling the returned update function.
func LogViewer(logger *debug.Logger) (fyne.CanvasObject, func()) {
	text := widget.NewMultiLineEntry()
	text.Wrapping = fyne.TextWrapOff
	text.Disable()
	scroll := container.NewScroll(text)
	scroll.SetMinSize(fyne.NewSize(520, 360))

	update := func() {
		entries := logger.GetRecentEntries(200)
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
		text.SetText(b.String())
	}
	update()
	return scroll, update
}
