package sstv

import "image"

// newUniformImage builds a solid-color RGBA raster for test fixtures.
func newUniformImage(width, height int, r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, rgba(r, g, b))
		}
	}
	return img
}
