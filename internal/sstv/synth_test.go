package sstv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestSynthesizer_PhaseContinuousAtToneBoundary(t *testing.T) {
	const fs = 48000.0
	synth := NewSynthesizer()
	out := synth.EmitTones([]Tone{
		{FreqHz: 1900, DurationMS: 10},
		{FreqHz: 1100, DurationMS: 10},
	}, fs)

	boundary := int(0.010 * fs)
	// The jump at the tone boundary should be no larger than the
	// largest step seen elsewhere in either tone (no arcsin-induced
	// discontinuity).
	maxStepBefore := maxAdjacentDelta(out[:boundary])
	jump := math.Abs(out[boundary] - out[boundary-1])
	assert.LessOrEqual(t, jump, maxStepBefore*1.5)
}

func TestSynthesizer_SpectralSelfTest(t *testing.T) {
	const fs = 48000.0
	const n = 4096
	synth := NewSynthesizer()
	target := 1900.0
	out := synth.EmitTone(target, float64(n)/fs, fs)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, out)

	bestBin, bestMag := 0, 0.0
	for i, c := range coeffs {
		mag := math.Hypot(real(c), imag(c))
		if mag > bestMag {
			bestMag = mag
			bestBin = i
		}
	}
	gotHz := float64(bestBin) * fs / n
	assert.InDelta(t, target, gotHz, fs/float64(n)+1)
}

func TestSynthesizer_EncodeImageProducesNonEmptyBuffer(t *testing.T) {
	mode := ModeByVIS(0x08)
	img := newUniformImage(mode.Width, mode.Height, 128, 128, 128)
	synth := NewSynthesizer()
	out := synth.EncodeImage(img, mode, 48000.0)
	assert.Greater(t, len(out), 0)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func maxAdjacentDelta(samples []float64) float64 {
	max := 0.0
	for i := 1; i < len(samples); i++ {
		d := math.Abs(samples[i] - samples[i-1])
		if d > max {
			max = d
		}
	}
	return max
}
