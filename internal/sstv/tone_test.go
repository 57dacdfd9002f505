package sstv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPowerAt_PureSineBinCenter(t *testing.T) {
	const fs = 48000.0
	const n = 2048
	k := 80.0
	f := k * fs / n // exact bin center

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * f * float64(i) / fs)
	}

	got := PowerAt(samples, f, fs)
	want := math.Pow(n/2.0, 2)
	assert.InEpsilonf(t, want, got, 0.01, "Goertzel power at bin center should match (N/2)^2 within 1%%")
}

func TestDominantFrequency_FindsPureTone(t *testing.T) {
	const fs = 48000.0
	const n = 1024
	target := 1900.0

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * target * float64(i) / fs)
	}

	hz, power := DominantFrequency(samples, fs)
	assert.InDelta(t, target, hz, 5.0)
	assert.Greater(t, power, 0.0)
}

func TestFreqToLuminance_Endpoints(t *testing.T) {
	assert.Equal(t, uint8(0), FreqToLuminance(1500))
	assert.Equal(t, uint8(255), FreqToLuminance(2300))
	assert.Equal(t, uint8(0), FreqToLuminance(1000), "saturates below range")
	assert.Equal(t, uint8(255), FreqToLuminance(3000), "saturates above range")
}

func TestLuminanceFreqRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		luma := rapid.Uint8().Draw(t, "luma")
		hz := LuminanceToFreq(luma)
		back := FreqToLuminance(hz)
		assert.InDelta(t, int(luma), int(back), 1)
	})
}
