// Command ppshot runs a machine headlessly for a fixed cycle budget and
// writes the LCD bridge's final framebuffer out as a BMP, optionally
// upscaled with a resize filter for easier inspection.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/jsummers/gobmp"
	"github.com/nfnt/resize"

	"nitro-core-dx/internal/config"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/lcd"
	"nitro-core-dx/internal/machine"
)

func main() {
	configPath := flag.String("config", "", "Path to machine TOML config")
	cycles := flag.Uint64("cycles", 5_000_000, "Bus cycles to run before capturing")
	scale := flag.Uint("scale", 2, "Integer upscale factor for the output image")
	out := flag.String("out", "screenshot.bmp", "Output BMP path")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("Usage: ppshot -config <machine.toml> [-cycles N] [-scale N] [-out shot.bmp]")
		os.Exit(1)
	}

	cfg, err := config.LoadMachine(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppshot: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(cfg.LogMaxEntries)
	m := machine.New(cfg, logger)
	if err := m.LoadFirmware(cfg.FirmwarePath, cfg.LoadAddress, cfg.EntryPoint); err != nil {
		fmt.Fprintf(os.Stderr, "ppshot: %v\n", err)
		os.Exit(1)
	}

	m.Run(*cycles, nil)

	img := image.NewRGBA(image.Rect(0, 0, lcd.Width, lcd.Height))
	for y := 0; y < lcd.Height; y++ {
		for x := 0; x < lcd.Width; x++ {
			img.Set(x, y, rgb565ToColor(m.LCD.Framebuffer[y*lcd.Width+x]))
		}
	}

	var outImg image.Image = img
	if *scale > 1 {
		outImg = resize.Resize(uint(lcd.Width)*(*scale), uint(lcd.Height)*(*scale), img, resize.NearestNeighbor)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppshot: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := gobmp.Encode(f, outImg); err != nil {
		fmt.Fprintf(os.Stderr, "ppshot: encoding bmp: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s after %d cycles\n", *out, m.TotalCycles())
}

// rgb565ToColor expands a 5-6-5 packed pixel to 8-bit-per-channel RGBA.
func rgb565ToColor(px uint16) color.RGBA {
	r := uint8(px>>11&0x1F) << 3
	g := uint8(px>>5&0x3F) << 2
	b := uint8(px&0x1F) << 3
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
