package sstv

import (
	"image/color"
	"math"
)

/*
 * YCrCb <-> RGB colorimetry, ITU-R BT.601, 0-255 ranges, 128 chroma
 * midpoint. Shared by the line scanner (decode direction) and the
 * synthesizer (encode direction).
 */

// YCrCbToRGB converts a luma/chroma triple into clamped 8-bit RGB.
func YCrCbToRGB(y, cr, cb uint8) (r, g, b uint8) {
	Y := float64(y)
	Cr := float64(cr) - 128
	Cb := float64(cb) - 128

	r = clamp8(Y + 1.402*Cr)
	g = clamp8(Y - 0.714*Cr - 0.344*Cb)
	b = clamp8(Y + 1.772*Cb)
	return r, g, b
}

// RGBToYCrCb converts 8-bit RGB into a luma/chroma triple for encoding.
func RGBToYCrCb(r, g, b uint8) (y, cr, cb uint8) {
	R, G, B := float64(r), float64(g), float64(b)
	Y := 0.299*R + 0.587*G + 0.114*B
	Cr := (R-Y)*0.713 + 128
	Cb := (B-Y)*0.564 + 128
	return clamp8(Y), clamp8(Cr), clamp8(Cb)
}

// rgba builds an opaque color.RGBA (alpha always 255 for decoder
// output, per §3).
func rgba(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
