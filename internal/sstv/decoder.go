package sstv

import (
	"image"
	"log"
	"math"
	"time"
)

/*
 * Frame assembler (§3, §4.D).
 *
 * Adapted from the source's SSTVDecoder/decodeLoop state machine, but
 * driven by an explicit Feed call over an internally accumulated
 * buffer rather than a goroutine pulling from an audio channel -- see
 * receive.go for the channel-driven wrapper built on top of this.
 */

// Phase is one of the four decoder states (§3).
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseVISDetect
	PhaseReceiving
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseVISDetect:
		return "VIS_DETECT"
	case PhaseReceiving:
		return "RECEIVING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// DecoderConfig carries the receive-side tunables (§6, §9's "each core
// is a value type owned by the caller" note).
type DecoderConfig struct {
	SampleRate        float64 `yaml:"sample_rate"`
	AutoSlantCorrect  bool    `yaml:"auto_slant_correct"`
	DriftCompensation bool    `yaml:"drift_compensation"`
	VisTimeoutSec     float64 `yaml:"vis_timeout_sec"`
	CarrierFactor     float64 `yaml:"carrier_factor"` // power(1900)/power(2000) threshold
	SyncFactor        float64 `yaml:"sync_factor"`    // power(1200)/power(1800) threshold
}

// DefaultDecoderConfig matches §4.D's thresholds and §6's 48 kHz default.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		SampleRate:        48000,
		AutoSlantCorrect:  true,
		DriftCompensation: true,
		VisTimeoutSec:     2.0,
		CarrierFactor:     5.0,
		SyncFactor:        3.0,
	}
}

const carrierWindowSec = 0.010

// DecoderState is a read-only snapshot of the decoder, for GetState (§6).
type DecoderState struct {
	Phase          Phase
	Mode           *ModeSpec
	Line           int
	SyncCount      int
	SignalStrength float64
	Raster         *image.RGBA
}

// Decoder is the SSTV receive state machine (§3, §4.D). Not safe for
// concurrent use; callers own one instance per in-progress receive
// session, matching §9's "no hidden globals" design note.
type Decoder struct {
	cfg     DecoderConfig
	logger  *log.Logger
	tracker *Tracker
	vis     *VISDetector
	history *History

	metrics *Metrics

	phase          Phase
	mode           *ModeSpec
	raster         *image.RGBA
	lineIndex      int
	syncCount      int
	signalStrength float64

	buf []float64 // accumulated, not-yet-consumed samples for the current phase

	// pendingY/pendingCr cache a Robot-36 even line's luma/Cr until its
	// paired odd line's Cb arrives (§4.C "written as grayscale
	// provisionally... rewritten in full color").
	pendingY  map[int][]uint8
	pendingCr map[int][]uint8
}

// NewDecoder returns an idle decoder. history may be nil if the caller
// does not want completed images persisted.
func NewDecoder(cfg DecoderConfig, logger *log.Logger, history *History) *Decoder {
	if logger == nil {
		logger = log.Default()
	}
	return &Decoder{
		cfg:       cfg,
		logger:    logger,
		tracker:   NewTracker(),
		vis:       NewVISDetector(logger),
		history:   history,
		phase:     PhaseIdle,
		pendingY:  make(map[int][]uint8),
		pendingCr: make(map[int][]uint8),
	}
}

// SetMetrics attaches a Prometheus collector the decoder should update
// as it runs. Passing nil disables metrics without otherwise changing
// behavior.
func (d *Decoder) SetMetrics(m *Metrics) { d.metrics = m }

// State returns a snapshot of the current decoder state.
func (d *Decoder) State() DecoderState {
	return DecoderState{
		Phase:          d.phase,
		Mode:           d.mode,
		Line:           d.lineIndex,
		SyncCount:      d.syncCount,
		SignalStrength: d.signalStrength,
		Raster:         d.raster,
	}
}

// Reset returns the decoder to IDLE, discarding any image in progress.
func (d *Decoder) Reset() {
	d.phase = PhaseIdle
	d.mode = nil
	d.raster = nil
	d.lineIndex = 0
	d.syncCount = 0
	d.buf = d.buf[:0]
	d.pendingY = make(map[int][]uint8)
	d.pendingCr = make(map[int][]uint8)
}

// Feed advances the decoder with a new chunk of samples, appending as
// many events as the new data makes possible. It never blocks and
// never returns an error for bad sample data (§7): invalid VIS codes
// and malformed sync windows are absorbed and the state machine either
// advances or keeps waiting.
func (d *Decoder) Feed(samples []float64) []Event {
	d.buf = append(d.buf, samples...)
	var events []Event

	for {
		switch d.phase {
		case PhaseIdle:
			if !d.stepIdle() {
				return events
			}
		case PhaseVISDetect:
			ev, more := d.stepVisDetect()
			events = append(events, ev...)
			if !more {
				return events
			}
		case PhaseReceiving:
			ev, more := d.stepReceiving()
			events = append(events, ev...)
			if !more {
				return events
			}
		default:
			d.Reset()
		}
	}
}

// stepIdle looks for the carrier tone that opens VIS_DETECT (§4.D).
// Returns true if it transitioned (caller should loop again).
func (d *Decoder) stepIdle() bool {
	fs := d.cfg.SampleRate
	winLen := int(carrierWindowSec * fs)
	if winLen <= 0 || len(d.buf) < winLen {
		return false
	}

	for i := 0; i+winLen <= len(d.buf); i += winLen {
		win := d.buf[i : i+winLen]
		p1900 := PowerAt(win, 1900, fs)
		p2000 := PowerAt(win, 2000, fs)
		if p2000 > 0 && p1900/p2000 >= d.cfg.CarrierFactor {
			d.buf = append([]float64(nil), d.buf[i:]...)
			d.phase = PhaseVISDetect
			return true
		}
	}
	// No carrier anywhere in the buffer yet; keep only the most recent
	// window so a transition spanning two Feed calls is not missed.
	if len(d.buf) > winLen {
		d.buf = append([]float64(nil), d.buf[len(d.buf)-winLen:]...)
	}
	return false
}

func (d *Decoder) stepVisDetect() ([]Event, bool) {
	fs := d.cfg.SampleRate
	visSeconds := float64(len(d.buf)) / fs
	if visSeconds > d.cfg.VisTimeoutSec {
		d.logger.Printf("[SSTV] VIS_DETECT timed out after %.2fs", visSeconds)
		if d.metrics != nil {
			d.metrics.VisTimeouts.Inc()
		}
		d.Reset()
		return nil, true
	}

	mode, found, needMore := d.vis.Detect(d.buf, fs)
	if needMore {
		return nil, false
	}
	if !found {
		return nil, false
	}
	if mode == nil {
		// Unsupported code: stay in VIS_DETECT and keep scanning (§4.D).
		d.buf = d.buf[:0]
		return nil, true
	}

	d.mode = mode
	d.raster = image.NewRGBA(image.Rect(0, 0, mode.Width, mode.Height))
	d.lineIndex = 0
	d.syncCount = 0
	d.tracker.SetMode(mode)
	d.phase = PhaseReceiving
	d.buf = d.buf[:0]
	d.logger.Printf("[SSTV] mode detected: %s", mode.Name)
	return []Event{ModeDetectedEvent{Mode: mode}}, true
}

func (d *Decoder) stepReceiving() ([]Event, bool) {
	fs := d.cfg.SampleRate
	mode := d.mode
	lineLen := int(mode.LineTime * fs)
	if lineLen <= 0 || len(d.buf) < lineLen {
		return nil, false
	}

	syncWinLen := int(carrierWindowSec * fs)
	if syncWinLen > 0 && syncWinLen <= len(d.buf) {
		syncWin := d.buf[:syncWinLen]
		p1200 := PowerAt(syncWin, 1200, fs)
		p1800 := PowerAt(syncWin, 1800, fs)
		if p1800 == 0 || p1200/p1800 <= d.cfg.SyncFactor {
			// Not aligned on a sync pulse; nudge forward a millisecond
			// and try again on the next iteration of Feed's loop.
			step := int(0.001 * fs)
			if step <= 0 || step >= len(d.buf) {
				return nil, false
			}
			d.buf = d.buf[step:]
			return nil, true
		}
		d.signalStrength = p1200
	}

	line := d.buf[:lineLen]
	d.buf = d.buf[lineLen:]
	d.syncCount++
	timestamp := float64(d.syncCount) * mode.LineTime
	d.tracker.OnSync(timestamp)
	if d.cfg.DriftCompensation && syncWinLen <= len(line) {
		d.tracker.OnSyncTone(line[:syncWinLen], fs, timestamp)
	}
	driftHz := 0.0
	if d.cfg.DriftCompensation {
		driftHz = d.tracker.DriftHz()
	}

	linesBefore := d.lineIndex
	d.decodeLine(line, fs, driftHz)
	if d.metrics != nil {
		d.metrics.DecodeLineTotal.WithLabelValues(mode.Name).Add(float64(d.lineIndex - linesBefore))
	}

	events := []Event{ProgressEvent{Line: d.lineIndex, Total: mode.Height, Raster: d.raster}}

	if d.lineIndex >= mode.Height {
		completeEvents := d.finishImage(timestamp)
		events = append(events, completeEvents...)
		return events, true
	}
	return events, true
}

func (d *Decoder) decodeLine(line []float64, fs, driftHz float64) {
	mode := d.mode
	switch {
	case mode.Color == ColorGBR || mode.Color == ColorRGB:
		first, second, third := ScanGBR(line, mode, fs, driftHz)
		var r, g, b []uint8
		if mode.Color == ColorGBR {
			g, b, r = first, second, third
		} else {
			r, g, b = first, second, third
		}
		writeRGBRow(d.raster, d.lineIndex, r, g, b)
		d.lineIndex++

	case mode.ChromaPaired:
		Y, Cr, Cb := ScanRobot(line, mode, fs, driftHz, d.lineIndex)
		switch {
		case mode.ChromaBothPerLine:
			writeYCrCbRow(d.raster, d.lineIndex, Y, Cr, Cb)
		case d.lineIndex%2 == 0:
			writeGrayRow(d.raster, d.lineIndex, Y)
			d.pendingY[d.lineIndex] = Y
			d.pendingCr[d.lineIndex] = Cr
		default:
			prevLine := d.lineIndex - 1
			prevY := d.pendingY[prevLine]
			prevCr := d.pendingCr[prevLine]
			if prevY != nil {
				writeYCrCbRow(d.raster, prevLine, prevY, prevCr, Cb)
				writeYCrCbRow(d.raster, d.lineIndex, Y, prevCr, Cb)
				delete(d.pendingY, prevLine)
				delete(d.pendingCr, prevLine)
			} else {
				writeGrayRow(d.raster, d.lineIndex, Y)
			}
		}
		d.lineIndex++

	case mode.LinePair:
		Y0, Y1, Cr, Cb := ScanPD(line, mode, fs, driftHz)
		writeYCrCbRow(d.raster, d.lineIndex, Y0, Cr, Cb)
		writeYCrCbRow(d.raster, d.lineIndex+1, Y1, Cr, Cb)
		d.lineIndex += 2
	}
}

func (d *Decoder) finishImage(durationSec float64) []Event {
	mode := d.mode
	final := d.raster
	slantCorrected := false
	slant := d.tracker.Slant()
	if d.cfg.AutoSlantCorrect && math.Abs(slant-1.0) > 0.002 {
		final = ApplySlantCorrection(final, slant)
		slantCorrected = true
	}

	entry := HistoryEntry{
		ModeName:       mode.Name,
		Timestamp:      time.Now().UTC(),
		Width:          mode.Width,
		Height:         mode.Height,
		Pixels:         append([]byte(nil), final.Pix...),
		SyncCount:      d.syncCount,
		DurationSec:    durationSec,
		SlantCorrected: slantCorrected,
	}
	if d.history != nil {
		saved, err := d.history.Append(entry)
		if err == nil {
			entry = saved
		} else {
			d.logger.Printf("[SSTV] history append failed: %v", err)
		}
	}

	d.logger.Printf("[SSTV] image complete: %s (%d syncs)", mode.Name, d.syncCount)
	d.phase = PhaseComplete

	if d.metrics != nil {
		d.metrics.ImagesDecoded.WithLabelValues(mode.Name).Inc()
		d.metrics.SlantFactor.Set(slant)
		d.metrics.DriftHz.Set(d.tracker.DriftHz())
	}

	events := []Event{ImageCompleteEvent{Entry: &entry}}
	if measured := d.tracker.MeasuredLineTime(); measured > 0 {
		events = append(events, SlantAnalysisEvent{
			ExpectedLineTime: d.tracker.ExpectedLineTime(),
			MeasuredLineTime: measured,
			Factor:           slant,
			PercentOfNominal: 100 * slant,
			SampleCount:      d.tracker.SampleCount(),
		})
	}
	if count := d.tracker.DriftSampleCount(); count > 0 {
		events = append(events, DriftAnalysisEvent{
			DriftHz:      d.tracker.DriftHz(),
			Confidence:   d.tracker.DriftConfidence(),
			MeasuredSync: d.tracker.MeasuredSyncHz(),
			ExpectedSync: 1200,
			SampleCount:  count,
		})
	}

	d.Reset()
	return events
}

func writeRGBRow(img *image.RGBA, y int, r, g, b []uint8) {
	for x := range r {
		img.SetRGBA(x, y, rgba(r[x], g[x], b[x]))
	}
}

func writeYCrCbRow(img *image.RGBA, y int, Y, Cr, Cb []uint8) {
	if Y == nil {
		return
	}
	for x := range Y {
		var cr, cb uint8 = 128, 128
		if Cr != nil {
			cr = Cr[x]
		}
		if Cb != nil {
			cb = Cb[x]
		}
		r, g, b := YCrCbToRGB(Y[x], cr, cb)
		img.SetRGBA(x, y, rgba(r, g, b))
	}
}

func writeGrayRow(img *image.RGBA, y int, Y []uint8) {
	for x, v := range Y {
		img.SetRGBA(x, y, rgba(v, v, v))
	}
}
