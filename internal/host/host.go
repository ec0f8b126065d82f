// Package host is the SDL2 window façade that drives a machine.Machine:
// it renders the LCD bridge's framebuffer, maps keyboard input onto the
// click-wheel keypad, and paces emulation to real time. Grounded on the
// teacher's internal/ui SDL2 window/renderer/texture loop, adapted from a
// fixed 320x200 tile display to the iPod 5g's 320x240 RGB565 panel and the
// click wheel instead of a D-pad/face-button controller.
package host

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/keypad"
	"nitro-core-dx/internal/lcd"
	"nitro-core-dx/internal/machine"
)

// Host owns the SDL window/renderer/texture and the Machine it drives.
type Host struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	m       *machine.Machine
	running bool
	scale   int

	cyclesPerFrame uint32
}

// New opens an SDL window sized to the LCD panel at the given integer
// scale and wires the LCD bridge's update callback to push into the
// window's texture.
func New(m *machine.Machine, scale int, cyclesPerFrame uint32) (*Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("host: sdl init: %w", err)
	}

	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0") // nearest-neighbor, pixel-perfect

	width := int32(lcd.Width * scale)
	height := int32(lcd.Height * scale)

	window, err := sdl.CreateWindow(
		"PP5021C Emulator",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("host: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB565,
		sdl.TEXTUREACCESS_STREAMING,
		int32(lcd.Width), int32(lcd.Height),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("host: create texture: %w", err)
	}

	h := &Host{
		window: window, renderer: renderer, texture: texture,
		m: m, running: true, scale: scale, cyclesPerFrame: cyclesPerFrame,
	}
	m.LCD.SetUpdateHandler(h.onLCDUpdate)
	return h, nil
}

// onLCDUpdate is invoked synchronously from the core step loop whenever the
// LCD bridge completes a memory-write burst (lcd.LCD.Update). It copies the
// panel's RGB565 framebuffer straight into the SDL texture.
func (h *Host) onLCDUpdate(fb []uint16) {
	pixels := (*[lcd.Width * lcd.Height * 2]byte)(unsafe.Pointer(&fb[0]))[:]
	pitch := lcd.Width * 2
	if err := h.texture.Update(nil, unsafe.Pointer(&pixels[0]), pitch); err != nil {
		h.m.Logger.Logf(debug.ComponentHost, debug.LogLevelError, "texture update failed: %v", err)
	}
}

// Run pumps SDL events, advances the machine by cyclesPerFrame bus cycles
// each pass, and presents the framebuffer, until the window is closed or
// Escape is pressed.
func (h *Host) Run() error {
	defer h.Cleanup()

	for h.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			h.handleEvent(event)
		}

		h.m.Run(uint64(h.cyclesPerFrame), nil)

		h.renderer.Clear()
		if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
			return fmt.Errorf("host: render: %w", err)
		}
		h.renderer.Present()

		sdl.Delay(1)
	}
	return nil
}

func (h *Host) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		h.running = false
	case *sdl.KeyboardEvent:
		pressed := e.Type == sdl.KEYDOWN
		switch e.Keysym.Sym {
		case sdl.K_ESCAPE:
			if pressed {
				h.running = false
			}
		case sdl.K_UP:
			h.m.Keypad.PushWheelDelta(1)
		case sdl.K_DOWN:
			h.m.Keypad.PushWheelDelta(-1)
		case sdl.K_RETURN:
			h.m.Keypad.PushButton(keypad.ButtonSelect, pressed)
		case sdl.K_LEFT:
			h.m.Keypad.PushButton(keypad.ButtonPrev, pressed)
		case sdl.K_RIGHT:
			h.m.Keypad.PushButton(keypad.ButtonNext, pressed)
		case sdl.K_SPACE:
			h.m.Keypad.PushButton(keypad.ButtonPlay, pressed)
		case sdl.K_m:
			h.m.Keypad.PushButton(keypad.ButtonMenu, pressed)
		case sdl.K_h:
			h.m.Keypad.PushButton(keypad.ButtonHold, pressed)
		}
	}
}

// Cleanup releases SDL resources. Safe to call multiple times.
func (h *Host) Cleanup() {
	if h.texture != nil {
		h.texture.Destroy()
		h.texture = nil
	}
	if h.renderer != nil {
		h.renderer.Destroy()
		h.renderer = nil
	}
	if h.window != nil {
		h.window.Destroy()
		h.window = nil
	}
	sdl.Quit()
}
