package sstv

import "log"

/*
 * VIS unit: leader/break detection and 8-bit mode code decode, plus the
 * tone sequence for code generation. Ported in spirit from the source's
 * VISDetector windowing loop, but the live detector here uses the
 * Goertzel-based DominantFrequency rather than an FFT sweep.
 */

const (
	visLeaderLowHz, visLeaderHighHz = 1850.0, 1950.0
	visBreakLowHz, visBreakHighHz   = 1150.0, 1250.0
	visBitThresholdHz               = 1200.0

	visWindowSec = 0.010
	visBitSec    = 0.030
)

// VISDetector scans an accumulated sample buffer for a leader/break
// pair followed by 8 data bits, and resolves the result to a mode.
type VISDetector struct {
	Logger *log.Logger
}

// NewVISDetector returns a detector that logs to log.Default() unless
// logger is overridden by the caller.
func NewVISDetector(logger *log.Logger) *VISDetector {
	if logger == nil {
		logger = log.Default()
	}
	return &VISDetector{Logger: logger}
}

// visOutcome is what one scan attempt over an accumulated buffer found.
type visOutcome int

const (
	visNeedMore visOutcome = iota
	visNoMatch
	visDecoded
)

// Detect scans buf (accumulated since entering VIS_DETECT) for the
// leader/break/8-bit pattern. It returns the resolved mode (nil if the
// code has no table entry), whether a full pattern was found at all,
// and whether more samples are needed before a conclusive answer is
// possible.
func (d *VISDetector) Detect(buf []float64, fs float64) (mode *ModeSpec, found bool, needMore bool) {
	windowLen := int(visWindowSec * fs)
	bitLen := int(visBitSec * fs)
	if windowLen <= 0 || bitLen <= 0 {
		return nil, false, true
	}

	for i := 0; i+3*windowLen <= len(buf); i += windowLen {
		leaderHz, _ := DominantFrequency(buf[i:i+windowLen], fs)
		if leaderHz < visLeaderLowHz || leaderHz > visLeaderHighHz {
			continue
		}
		breakHz, _ := DominantFrequency(buf[i+windowLen:i+2*windowLen], fs)
		if breakHz < visBreakLowHz || breakHz > visBreakHighHz {
			continue
		}
		// The 10 ms break between the two leaders fills one window; the
		// 30 ms start bit that precedes the data bits fills more than one.
		startHz, _ := DominantFrequency(buf[i+2*windowLen:i+3*windowLen], fs)
		if startHz < visBreakLowHz || startHz > visBreakHighHz {
			continue
		}

		// Data bits begin right after the 30 ms start bit.
		bitStart := i + windowLen + bitLen
		if bitStart+8*bitLen > len(buf) {
			return nil, false, true
		}

		var code uint8
		var parity uint8
		for b := 0; b < 8; b++ {
			seg := buf[bitStart+b*bitLen : bitStart+(b+1)*bitLen]
			hz, _ := DominantFrequency(seg, fs)
			var bit uint8
			if hz < visBitThresholdHz {
				bit = 1
			}
			code |= bit << uint(b)
			parity ^= bit
		}
		d.Logger.Printf("[SSTV VIS] code=0x%02X parity=%d leader=%.1fHz break=%.1fHz", code, parity, leaderHz, breakHz)

		m := ModeByVIS(code)
		return m, true, false
	}
	return nil, false, true
}

// GenerateVIS returns the tone sequence for the VIS preamble plus the
// 8-bit LSB-first code for mode (§4.B Generation).
func GenerateVIS(mode *ModeSpec) []Tone {
	tones := []Tone{
		{FreqHz: 1900, DurationMS: 300},
		{FreqHz: 1200, DurationMS: 10},
		{FreqHz: 1900, DurationMS: 300},
		{FreqHz: 1200, DurationMS: 30}, // start bit
	}
	for b := 0; b < 8; b++ {
		bit := (mode.VIS >> uint(b)) & 1
		if bit == 1 {
			tones = append(tones, Tone{FreqHz: 1100, DurationMS: 30})
		} else {
			tones = append(tones, Tone{FreqHz: 1300, DurationMS: 30})
		}
	}
	tones = append(tones, Tone{FreqHz: 1200, DurationMS: 30}) // stop bit
	return tones
}
