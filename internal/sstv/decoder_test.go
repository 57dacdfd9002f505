package sstv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	cfg := DefaultDecoderConfig()
	return NewDecoder(cfg, nil, nil)
}

func TestDecoder_SilenceStaysIdle(t *testing.T) {
	d := newTestDecoder(t)
	silence := make([]float64, int(2.5*d.cfg.SampleRate))
	events := d.Feed(silence)
	assert.Empty(t, events)
	assert.Equal(t, PhaseIdle, d.State().Phase)
}

func TestDecoder_Scenario1_VISForRobot36(t *testing.T) {
	d := newTestDecoder(t)
	mode := ModeByVIS(0x08)

	synth := NewSynthesizer()
	visTones := synth.EmitTones(GenerateVIS(mode), d.cfg.SampleRate)

	events := d.Feed(visTones)
	var gotModeDetected bool
	for _, ev := range events {
		if md, ok := ev.(ModeDetectedEvent); ok {
			gotModeDetected = true
			assert.Equal(t, "Robot 36", md.Mode.Name)
		}
	}
	assert.True(t, gotModeDetected, "expected a ModeDetectedEvent")

	state := d.State()
	assert.Equal(t, PhaseReceiving, state.Phase)
	assert.Equal(t, 320, state.Raster.Bounds().Dx())
	assert.Equal(t, 240, state.Raster.Bounds().Dy())
}

func TestDecoder_Scenario2_LineCountingRobot36(t *testing.T) {
	d := newTestDecoder(t)
	mode := ModeByVIS(0x08)
	img := newUniformImage(mode.Width, mode.Height, 128, 128, 128)

	synth := NewSynthesizer()
	buf := synth.EncodeImage(img, mode, d.cfg.SampleRate)

	events := d.Feed(buf)

	completeCount := 0
	var finalEntry *HistoryEntry
	for _, ev := range events {
		if ic, ok := ev.(ImageCompleteEvent); ok {
			completeCount++
			finalEntry = ic.Entry
		}
	}
	assert.Equal(t, 1, completeCount, "image_complete must be emitted exactly once")
	if assert.NotNil(t, finalEntry) {
		assert.Equal(t, mode.Width, finalEntry.Width)
		assert.Equal(t, mode.Height, finalEntry.Height)
		for i := 0; i+3 < len(finalEntry.Pixels); i += 4 {
			assert.InDelta(t, 128, int(finalEntry.Pixels[i]), 2)
			assert.InDelta(t, 128, int(finalEntry.Pixels[i+1]), 2)
			assert.InDelta(t, 128, int(finalEntry.Pixels[i+2]), 2)
		}
	}
}

func TestDecoder_Scenario3_PD90LinePairAdvance(t *testing.T) {
	d := newTestDecoder(t)
	mode := ModeByVIS(0x63) // PD-90
	assert.Equal(t, 256, mode.Height)

	img := newUniformImage(mode.Width, mode.Height, 200, 100, 50)
	synth := NewSynthesizer()
	buf := synth.EncodeImage(img, mode, d.cfg.SampleRate)

	events := d.Feed(buf)

	var finalEntry *HistoryEntry
	for _, ev := range events {
		if ic, ok := ev.(ImageCompleteEvent); ok {
			finalEntry = ic.Entry
		}
	}
	if assert.NotNil(t, finalEntry) {
		assert.Equal(t, 256, finalEntry.Height)
		assert.Equal(t, 128, finalEntry.SyncCount, "128 syncs must fill 256 rows (2 per sync)")
	}
}
