package sstv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestYCrCbToRGB_GrayMidpoint(t *testing.T) {
	r, g, b := YCrCbToRGB(128, 128, 128)
	assert.Equal(t, uint8(128), r)
	assert.Equal(t, uint8(128), g)
	assert.Equal(t, uint8(128), b)
}

func TestRGBYCrCbRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := rapid.Uint8().Draw(t, "r")
		g := rapid.Uint8().Draw(t, "g")
		b := rapid.Uint8().Draw(t, "b")

		y, cr, cb := RGBToYCrCb(r, g, b)
		r2, g2, b2 := YCrCbToRGB(y, cr, cb)

		assert.InDelta(t, int(r), int(r2), 2)
		assert.InDelta(t, int(g), int(g2), 2)
		assert.InDelta(t, int(b), int(b2), 2)
	})
}
