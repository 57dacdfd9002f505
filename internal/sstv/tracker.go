package sstv

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

/*
 * Slant and drift tracker (§4.E).
 *
 * The source derives slant/drift from a bespoke Hough-transform sync
 * image; this tracker instead works directly off sync-pulse timestamps
 * and sync-tone frequency measurements, using gonum/stat for the
 * median/outlier-rejection and stddev arithmetic the formulas need.
 */

const (
	trackerWindow       = 50 // pulses; ring holds up to 2*trackerWindow
	trackerMinPulses    = 10
	trackerOutlierFrac  = 0.20
	slantMin, slantMax  = 0.95, 1.05
	driftMin, driftMax  = -50.0, 50.0
	driftWindowSec      = 5.0
	driftMinSamples     = 5
	driftLowPassAlpha   = 0.1
	driftConfidenceGate = 0.3
)

// Tracker holds the rolling sync-pulse and sync-frequency history used
// to estimate slant and drift for the decoder currently in progress.
type Tracker struct {
	mode *ModeSpec

	syncTimestamps []float64 // seconds

	slant            float64
	slantConfidence  float64
	measuredLineTime float64

	driftTimestamps []float64
	driftSamples    []float64
	drift           float64
	driftConfidence float64
	measuredSyncHz  float64
}

// NewTracker returns a tracker with neutral slant/drift.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset clears all accumulated history and returns slant/drift to
// their neutral values. Called on mode change (§3).
func (t *Tracker) Reset() {
	t.syncTimestamps = t.syncTimestamps[:0]
	t.driftTimestamps = t.driftTimestamps[:0]
	t.driftSamples = t.driftSamples[:0]
	t.slant = 1.0
	t.slantConfidence = 0
	t.measuredLineTime = 0
	t.drift = 0
	t.driftConfidence = 0
	t.measuredSyncHz = 0
}

// SetMode installs the mode whose nominal line time anchors the slant
// calculation, resetting tracker history.
func (t *Tracker) SetMode(mode *ModeSpec) {
	t.mode = mode
	t.Reset()
}

// OnSync records a detected sync pulse at timestampSec and recomputes
// the slant estimate.
func (t *Tracker) OnSync(timestampSec float64) {
	t.syncTimestamps = append(t.syncTimestamps, timestampSec)
	if over := len(t.syncTimestamps) - 2*trackerWindow; over > 0 {
		t.syncTimestamps = t.syncTimestamps[over:]
	}
	t.recomputeSlant()
}

func (t *Tracker) recomputeSlant() {
	if t.mode == nil || len(t.syncTimestamps) < trackerMinPulses {
		return
	}
	intervals := make([]float64, 0, len(t.syncTimestamps)-1)
	for i := 1; i < len(t.syncTimestamps); i++ {
		intervals = append(intervals, t.syncTimestamps[i]-t.syncTimestamps[i-1])
	}

	sorted := append([]float64(nil), intervals...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if median <= 0 {
		return
	}

	var survivors []float64
	for _, iv := range intervals {
		if math.Abs(iv-median) <= trackerOutlierFrac*median {
			survivors = append(survivors, iv)
		}
	}
	if len(survivors) == 0 {
		return
	}

	measured := stat.Mean(survivors, nil)
	if measured <= 0 {
		return
	}
	factor := t.mode.LineTime / measured
	t.slant = clampFloat(factor, slantMin, slantMax)
	t.slantConfidence = float64(len(survivors)) / float64(len(intervals))
	t.measuredLineTime = measured
}

// Slant returns the current slant factor: nominal over measured line
// time, clamped to [0.95, 1.05].
func (t *Tracker) Slant() float64 { return t.slant }

// ExpectedLineTime returns the mode's nominal line time, or 0 if no
// mode is installed.
func (t *Tracker) ExpectedLineTime() float64 {
	if t.mode == nil {
		return 0
	}
	return t.mode.LineTime
}

// MeasuredLineTime returns the mean surviving inter-sync interval
// backing the current slant estimate.
func (t *Tracker) MeasuredLineTime() float64 { return t.measuredLineTime }

// SlantConfidence returns the survivor fraction backing the last slant
// estimate, in [0, 1].
func (t *Tracker) SlantConfidence() float64 { return t.slantConfidence }

// SampleCount returns the number of sync pulses currently held.
func (t *Tracker) SampleCount() int { return len(t.syncTimestamps) }

// OnSyncTone measures the sync-tone peak frequency in samples (taken
// from the 1150-1250 Hz band at a detected sync) and, if its power
// exceeds the 1800 Hz reference by 3x, folds it into the drift
// estimate.
func (t *Tracker) OnSyncTone(samples []float64, fs, timestampSec float64) {
	peakHz, peakPower := sweepSyncTone(samples, fs)
	refPower := PowerAt(samples, 1800, fs)
	if peakPower <= 3*refPower {
		return
	}

	t.driftSamples = append(t.driftSamples, peakHz)
	t.driftTimestamps = append(t.driftTimestamps, timestampSec)

	cutoff := timestampSec - driftWindowSec
	start := 0
	for start < len(t.driftTimestamps) && t.driftTimestamps[start] < cutoff {
		start++
	}
	if start > 0 {
		t.driftTimestamps = t.driftTimestamps[start:]
		t.driftSamples = t.driftSamples[start:]
	}

	if len(t.driftSamples) < driftMinSamples {
		return
	}

	sorted := append([]float64(nil), t.driftSamples...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	sample := median - 1200.0
	t.drift = driftLowPassAlpha*sample + (1-driftLowPassAlpha)*t.drift
	t.drift = clampFloat(t.drift, driftMin, driftMax)
	t.measuredSyncHz = median

	sd := stat.StdDev(t.driftSamples, nil)
	t.driftConfidence = 1 - math.Min(1, sd/20.0)
}

// MeasuredSyncHz returns the median sync-tone frequency backing the
// current drift estimate.
func (t *Tracker) MeasuredSyncHz() float64 { return t.measuredSyncHz }

// DriftSampleCount returns the number of sync-tone measurements
// currently held in the drift window.
func (t *Tracker) DriftSampleCount() int { return len(t.driftSamples) }

// DriftHz returns the drift compensation to subtract from Goertzel
// dominant-frequency results, or 0 while confidence is below the gate
// (§4.E: "only while confidence >= 0.3").
func (t *Tracker) DriftHz() float64 {
	if t.driftConfidence >= driftConfidenceGate {
		return t.drift
	}
	return 0
}

// DriftConfidence returns the current drift confidence in [0, 1].
func (t *Tracker) DriftConfidence() float64 { return t.driftConfidence }

func sweepSyncTone(samples []float64, fs float64) (hz, power float64) {
	// PowerAt snaps to the nearest DFT bin (100 Hz wide on a 10 ms
	// window); evaluate the Goertzel recurrence at the exact frequency so
	// the 2 Hz and 0.5 Hz steps resolve.
	powerAt := func(f float64) float64 {
		coeff := 2 * math.Cos(2*math.Pi*f/fs)
		var s1, s2 float64
		for _, x := range samples {
			s1, s2 = x+coeff*s1-s2, s1
		}
		return s1*s1 + s2*s2 - coeff*s1*s2
	}

	bestHz, bestPower := 1150.0, -1.0
	for f := 1150.0; f <= 1250.0; f += 2.0 {
		p := powerAt(f)
		if p > bestPower {
			bestPower = p
			bestHz = f
		}
	}
	for f := bestHz - 2.0; f <= bestHz+2.0; f += 0.5 {
		p := powerAt(f)
		if p > bestPower {
			bestPower = p
			bestHz = f
		}
	}
	return bestHz, bestPower
}

// ApplySlantCorrection reslants a completed raster (§4.E "Slant
// correction"): for each row y, source column (x+shift) mod W is
// copied into destination column x, where shift =
// round((1-slant)*H*y/H).
func ApplySlantCorrection(img *image.RGBA, slant float64) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(bounds)
	for y := 0; y < h; y++ {
		shift := int(math.Round((1 - slant) * float64(h) * float64(y) / float64(h)))
		for x := 0; x < w; x++ {
			srcX := ((x+shift)%w + w) % w
			out.Set(x, y, img.At(srcX, y))
		}
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
