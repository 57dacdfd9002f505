package sstv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVIS_GenerateDetectRoundTrip(t *testing.T) {
	const fs = 48000.0

	for i := range Modes {
		mode := &Modes[i]
		t.Run(mode.ShortName, func(t *testing.T) {
			synth := NewSynthesizer()
			tones := GenerateVIS(mode)
			samples := synth.EmitTones(tones, fs)

			det := NewVISDetector(nil)
			got, found, needMore := det.Detect(samples, fs)

			assert.True(t, found)
			assert.False(t, needMore)
			if assert.NotNil(t, got) {
				assert.Equal(t, mode.VIS, got.VIS)
				assert.Equal(t, mode.Name, got.Name)
			}
		})
	}
}

func TestVIS_SilenceNeedsMore(t *testing.T) {
	const fs = 48000.0
	silence := make([]float64, int(0.050*fs))
	det := NewVISDetector(nil)
	_, found, needMore := det.Detect(silence, fs)
	assert.False(t, found)
	assert.True(t, needMore)
}
