package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

var (
	iconOnce sync.Once
	iconPNG  []byte
)

// iconBytes draws the tray icon: a playhead over two clip bars.
func iconBytes() []byte {
	iconOnce.Do(func() {
		const size = 22
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		bar := color.NRGBA{R: 0x33, G: 0x88, B: 0xff, A: 0xff}
		head := color.NRGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}

		for x := 2; x < size-2; x++ {
			for y := 5; y < 9; y++ {
				img.Set(x, y, bar)
			}
			for y := 13; y < 17; y++ {
				if x > 7 {
					img.Set(x, y, bar)
				}
			}
		}
		for y := 2; y < size-2; y++ {
			img.Set(11, y, head)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err == nil {
			iconPNG = buf.Bytes()
		}
	})
	return iconPNG
}
