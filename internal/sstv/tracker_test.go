package sstv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_SlantNeutralUntilEnoughPulses(t *testing.T) {
	tr := NewTracker()
	tr.SetMode(ModeByVIS(0x08))
	for i := 0; i < 5; i++ {
		tr.OnSync(float64(i) * 0.150)
	}
	assert.Equal(t, 1.0, tr.Slant(), "fewer than 10 pulses: slant stays neutral")
}

func TestTracker_SlantTracksLineTimeDrift(t *testing.T) {
	tr := NewTracker()
	mode := ModeByVIS(0x08) // Robot 36, LineTime = 0.150s
	tr.SetMode(mode)

	measured := 0.153 // receiver running slightly slow
	ts := 0.0
	for i := 0; i < 20; i++ {
		tr.OnSync(ts)
		ts += measured
	}

	want := mode.LineTime / measured
	assert.InDelta(t, want, tr.Slant(), 1e-6)
	assert.Greater(t, tr.SlantConfidence(), 0.9)
}

func TestTracker_SlantClamped(t *testing.T) {
	tr := NewTracker()
	mode := ModeByVIS(0x08)
	tr.SetMode(mode)

	measured := mode.LineTime * 2 // wildly off
	ts := 0.0
	for i := 0; i < 20; i++ {
		tr.OnSync(ts)
		ts += measured
	}
	assert.Equal(t, slantMin, tr.Slant())
}

func TestTracker_DriftBelowConfidenceGateReturnsZero(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0.0, tr.DriftHz())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.SetMode(ModeByVIS(0x08))
	tr.OnSync(0)
	tr.OnSync(0.150)
	tr.Reset()
	assert.Equal(t, 0, tr.SampleCount())
	assert.Equal(t, 1.0, tr.Slant())
}

func TestApplySlantCorrection_IdentityAtSlantOne(t *testing.T) {
	mode := ModeByVIS(0x08)
	synth := NewSynthesizer()
	_ = synth
	img := newUniformImage(mode.Width, mode.Height, 10, 20, 30)
	out := ApplySlantCorrection(img, 1.0)
	for y := 0; y < mode.Height; y += 37 {
		for x := 0; x < mode.Width; x += 29 {
			r1, g1, b1, _ := img.At(x, y).RGBA()
			r2, g2, b2, _ := out.At(x, y).RGBA()
			assert.Equal(t, r1, r2)
			assert.Equal(t, g1, g2)
			assert.Equal(t, b1, b2)
		}
	}
}

func TestSweepSyncTone_FindsPeak(t *testing.T) {
	const fs = 48000.0
	n := int(0.010 * fs)
	samples := make([]float64, n)
	target := 1210.0
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * target * float64(i) / fs)
	}
	hz, power := sweepSyncTone(samples, fs)
	assert.InDelta(t, target, hz, 2.0)
	assert.Greater(t, power, 0.0)
}
