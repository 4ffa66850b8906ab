package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 16

var (
	iconOnce sync.Once
	iconPNG  []byte
)

// Icon returns the tray icon: a dashed selection rectangle, blue when
// enabled. The PNG is rendered once.
func Icon() []byte {
	iconOnce.Do(func() {
		iconPNG = renderIcon(color.NRGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff})
	})
	return iconPNG
}

func renderIcon(stroke color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	// dashes: two on, one off
	for i := 2; i <= 13; i++ {
		if i%3 == 1 {
			continue
		}
		img.SetNRGBA(i, 3, stroke)
		img.SetNRGBA(i, 12, stroke)
		img.SetNRGBA(2, i, stroke)
		img.SetNRGBA(13, i, stroke)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
