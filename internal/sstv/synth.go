package sstv

import (
	"image"
	"math"
)

/*
 * Tone synthesizer (§4.F).
 *
 * Phase continuity is kept by advancing a running scalar theta one
 * sample at a time regardless of which tone is active, rather than
 * re-deriving phase at tone boundaries via arcsin(last_sample) as the
 * source does (§9 explicitly rules the arcsin approach out).
 */

// Tone is one (frequency, duration) segment in a synthesized sequence.
type Tone struct {
	FreqHz     float64
	DurationMS float64
}

// Synthesizer emits phase-continuous audio from tone sequences or
// whole images. Zero value is ready to use.
type Synthesizer struct {
	theta float64
}

// NewSynthesizer returns a synthesizer with phase reset to zero.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Reset zeroes the running phase. Callers encoding a fresh, independent
// signal (rather than continuing one in progress) should call this first.
func (s *Synthesizer) Reset() {
	s.theta = 0
}

// EmitTone appends durationSec worth of samples at freqHz, advancing
// the running phase sample-by-sample.
func (s *Synthesizer) EmitTone(freqHz, durationSec, fs float64) []float64 {
	n := int(math.Round(durationSec * fs))
	out := make([]float64, n)
	dtheta := 2 * math.Pi * freqHz / fs
	for i := range out {
		out[i] = math.Sin(s.theta)
		s.theta += dtheta
		s.theta = math.Mod(s.theta, 2*math.Pi)
		if s.theta < 0 {
			s.theta += 2 * math.Pi
		}
	}
	return out
}

// EmitTones concatenates EmitTone over a tone sequence, e.g. the VIS
// preamble from GenerateVIS.
func (s *Synthesizer) EmitTones(tones []Tone, fs float64) []float64 {
	out := make([]float64, 0, len(tones)*int(fs*0.05))
	for _, t := range tones {
		out = append(out, s.EmitTone(t.FreqHz, t.DurationMS/1000.0, fs)...)
	}
	return out
}

// emitScanRow emits one channel's worth of pixels as `width` tones of
// near-equal length spanning scanTime seconds total. Pixel boundaries are
// rounded to whole samples, so rounding does not accumulate along the row.
func (s *Synthesizer) emitScanRow(values []uint8, scanTime float64, fs float64) []float64 {
	width := len(values)
	if width == 0 {
		return nil
	}
	total := scanTime * fs
	out := make([]float64, 0, int(total)+width)
	emitted := 0
	for i, v := range values {
		end := int(math.Round(float64(i+1) * total / float64(width)))
		out = append(out, s.EmitTone(LuminanceToFreq(v), float64(end-emitted)/fs, fs)...)
		emitted = end
	}
	return out
}

// EncodeImage drives a full VIS preamble plus per-line frame emission
// for img under mode, at sample rate fs. img must be mode.Width x
// mode.Height.
func (s *Synthesizer) EncodeImage(img *image.RGBA, mode *ModeSpec, fs float64) []float64 {
	s.Reset()
	out := s.EmitTones(GenerateVIS(mode), fs)

	width, height := mode.Width, mode.Height

	switch {
	case mode.Color == ColorGBR || mode.Color == ColorRGB:
		for y := 0; y < height; y++ {
			r, g, b := rgbRow(img, y, width)
			out = append(out, s.EmitTone(1200, mode.SyncTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.PorchTime, fs)...)

			var first, second, third []uint8
			if mode.Color == ColorGBR {
				first, second, third = g, b, r
			} else {
				first, second, third = r, g, b
			}
			out = append(out, s.emitScanRow(first, mode.YScanTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.SeparatorTime, fs)...)
			out = append(out, s.emitScanRow(second, mode.YScanTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.SeparatorTime, fs)...)
			out = append(out, s.emitScanRow(third, mode.YScanTime, fs)...)
		}

	case mode.ChromaPaired:
		for y := 0; y < height; y++ {
			Y, Cr, Cb := ycrcbRow(img, y, width)
			out = append(out, s.EmitTone(1200, mode.SyncTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.PorchTime, fs)...)
			out = append(out, s.emitScanRow(Y, mode.YScanTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.SeparatorTime, fs)...)

			if mode.ChromaBothPerLine {
				out = append(out, s.emitScanRow(Cr, mode.ChromaScanTime, fs)...)
				out = append(out, s.EmitTone(1500, mode.SeparatorTime, fs)...)
				out = append(out, s.emitScanRow(Cb, mode.ChromaScanTime, fs)...)
			} else if y%2 == 0 {
				out = append(out, s.emitScanRow(Cr, mode.ChromaScanTime, fs)...)
			} else {
				out = append(out, s.emitScanRow(Cb, mode.ChromaScanTime, fs)...)
			}
		}

	case mode.LinePair:
		for y := 0; y+1 < height; y += 2 {
			Y0, Cr0, Cb0 := ycrcbRow(img, y, width)
			Y1, Cr1, Cb1 := ycrcbRow(img, y+1, width)
			Cr := averageRows(Cr0, Cr1)
			Cb := averageRows(Cb0, Cb1)

			out = append(out, s.EmitTone(1200, mode.SyncTime, fs)...)
			out = append(out, s.EmitTone(1500, mode.PorchTime, fs)...)
			out = append(out, s.emitScanRow(Y0, mode.YScanTime, fs)...)
			out = append(out, s.emitScanRow(Y1, mode.YScanTime, fs)...)
			out = append(out, s.emitScanRow(Cr, mode.ChromaScanTime, fs)...)
			out = append(out, s.emitScanRow(Cb, mode.ChromaScanTime, fs)...)
		}
	}

	return out
}

// rgbRow extracts the R, G, B channels of row y from img.
func rgbRow(img *image.RGBA, y, width int) (r, g, b []uint8) {
	r = make([]uint8, width)
	g = make([]uint8, width)
	b = make([]uint8, width)
	for x := 0; x < width; x++ {
		c := img.RGBAAt(x, y)
		r[x], g[x], b[x] = c.R, c.G, c.B
	}
	return r, g, b
}

// ycrcbRow extracts row y of img converted to Y/Cr/Cb.
func ycrcbRow(img *image.RGBA, y, width int) (Y, Cr, Cb []uint8) {
	Y = make([]uint8, width)
	Cr = make([]uint8, width)
	Cb = make([]uint8, width)
	for x := 0; x < width; x++ {
		c := img.RGBAAt(x, y)
		Y[x], Cr[x], Cb[x] = RGBToYCrCb(c.R, c.G, c.B)
	}
	return Y, Cr, Cb
}

func averageRows(a, b []uint8) []uint8 {
	out := make([]uint8, len(a))
	for i := range a {
		out[i] = uint8((int(a[i]) + int(b[i])) / 2)
	}
	return out
}
