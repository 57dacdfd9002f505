package sstv

/*
 * SSTV Mode Specifications
 *
 * Timing derived from the well-known per-pixel rates of each protocol
 * family (Martin, Scottie, Robot, PD, Wraase SC2), cross-checked so that
 * sync + porch + (scan channels) + separators sums to the documented
 * line time for every mode. VIS codes per the authoritative table in
 * the project's mode specification; where community references disagree
 * on the PD-160/PD-240/PD-180 codes, the values below are the ones this
 * package treats as ground truth.
 */

// ColorModel is the pixel color encoding carried by a mode's video signal.
type ColorModel int

const (
	ColorYCrCb ColorModel = iota
	ColorGBR
	ColorRGB
)

func (c ColorModel) String() string {
	switch c {
	case ColorYCrCb:
		return "YCrCb"
	case ColorGBR:
		return "GBR"
	case ColorRGB:
		return "RGB"
	default:
		return "unknown"
	}
}

// ModeSpec is an immutable description of one SSTV transmission mode.
type ModeSpec struct {
	Name      string
	ShortName string
	VIS       uint8

	Width  int
	Height int
	Color  ColorModel

	SyncTime  float64 // seconds
	PorchTime float64

	// YScanTime is the per-channel scan duration: the single luma scan
	// for YCrCb modes, or the scan duration of each of the three G/B/R
	// (resp. R/G/B) sub-scans for GBR/RGB modes.
	YScanTime float64

	// ChromaScanTime is the scan duration of one chroma (Cr or Cb) row;
	// zero for GBR/RGB modes.
	ChromaScanTime float64

	SeparatorTime   float64
	ChromaPorchTime float64

	// ChromaPaired marks the Robot family: chroma is sent once per
	// sync, and paired with the previous/next Y row rather than with
	// its own Y row.
	ChromaPaired bool

	// ChromaBothPerLine distinguishes Robot 72 (Cr and Cb both sent
	// every sync) from Robot 36 (Cr/Cb alternate across line pairs).
	// Only meaningful when ChromaPaired is true.
	ChromaBothPerLine bool

	// LinePair marks the PD family: each sync carries two Y rows plus
	// one shared Cr/Cb pair, and advances the line pointer by 2.
	LinePair bool

	// LineTime is the time from the start of one sync pulse to the
	// start of the next.
	LineTime float64

	// TotalTime is the nominal whole-image transmission time in
	// seconds, including the VIS preamble. Computed by initModes.
	TotalTime float64
}

// visPreambleTime is the fixed duration of the VIS header (§4.B):
// 300ms leader, 10ms break, 300ms leader, 30ms start bit, 8*30ms data
// bits, 30ms stop bit.
const visPreambleTime = 0.300 + 0.010 + 0.300 + 0.030 + 8*0.030 + 0.030

// syncCount returns the number of sync pulses transmitted for a full
// image of this mode.
func (m *ModeSpec) syncCount() int {
	if m.LinePair {
		return m.Height / 2
	}
	return m.Height
}

// Modes is the closed set of SSTV modes this codec supports, keyed by
// their VIS code below. Order matches the presentation order in the
// project's mode specification.
var Modes = []ModeSpec{
	{
		Name: "Robot 36", ShortName: "Robot36", VIS: 0x08,
		Width: 320, Height: 240, Color: ColorYCrCb,
		SyncTime: 9e-3, PorchTime: 3e-3,
		YScanTime: 88e-3, ChromaScanTime: 44e-3, SeparatorTime: 6e-3,
		ChromaPaired: true, ChromaBothPerLine: false,
	},
	{
		Name: "Robot 72", ShortName: "Robot72", VIS: 0x0C,
		Width: 320, Height: 240, Color: ColorYCrCb,
		SyncTime: 9e-3, PorchTime: 3e-3,
		YScanTime: 138e-3, ChromaScanTime: 69e-3, SeparatorTime: 6e-3,
		ChromaPaired: true, ChromaBothPerLine: true,
	},
	{
		Name: "Martin M1", ShortName: "MartinM1", VIS: 0x2C,
		Width: 320, Height: 256, Color: ColorGBR,
		SyncTime: 4.862e-3, PorchTime: 0.572e-3,
		YScanTime: 146.432e-3, SeparatorTime: 0.572e-3,
	},
	{
		Name: "Martin M2", ShortName: "MartinM2", VIS: 0x28,
		Width: 320, Height: 256, Color: ColorGBR,
		SyncTime: 4.862e-3, PorchTime: 0.572e-3,
		YScanTime: 73.216e-3, SeparatorTime: 0.572e-3,
	},
	{
		Name: "Scottie S1", ShortName: "ScottieS1", VIS: 0x3C,
		Width: 320, Height: 256, Color: ColorGBR,
		SyncTime: 9e-3, PorchTime: 1.5e-3,
		YScanTime: 138.244e-3, SeparatorTime: 1.5e-3,
	},
	{
		Name: "Scottie S2", ShortName: "ScottieS2", VIS: 0x38,
		Width: 320, Height: 256, Color: ColorGBR,
		SyncTime: 9e-3, PorchTime: 1.5e-3,
		YScanTime: 88.064e-3, SeparatorTime: 1.5e-3,
	},
	{
		Name: "Scottie DX", ShortName: "ScottieDX", VIS: 0x71,
		Width: 320, Height: 256, Color: ColorGBR,
		SyncTime: 9e-3, PorchTime: 1.5e-3,
		YScanTime: 345.6e-3, SeparatorTime: 1.5e-3,
	},
	{
		Name: "PD-50", ShortName: "PD50", VIS: 0x5D,
		Width: 320, Height: 256, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 91.52e-3, ChromaScanTime: 91.52e-3,
		LinePair: true,
	},
	{
		Name: "PD-90", ShortName: "PD90", VIS: 0x63,
		Width: 320, Height: 256, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 170.24e-3, ChromaScanTime: 170.24e-3,
		LinePair: true,
	},
	{
		Name: "PD-120", ShortName: "PD120", VIS: 0x5F,
		Width: 640, Height: 496, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 121.6e-3, ChromaScanTime: 121.6e-3,
		LinePair: true,
	},
	{
		Name: "PD-160", ShortName: "PD160", VIS: 0x61,
		Width: 512, Height: 400, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 195.584e-3, ChromaScanTime: 195.584e-3,
		LinePair: true,
	},
	{
		Name: "PD-180", ShortName: "PD180", VIS: 0x60,
		Width: 640, Height: 496, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 183.04e-3, ChromaScanTime: 183.04e-3,
		LinePair: true,
	},
	{
		Name: "PD-240", ShortName: "PD240", VIS: 0x62,
		Width: 640, Height: 496, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 244.48e-3, ChromaScanTime: 244.48e-3,
		LinePair: true,
	},
	{
		Name: "PD-290", ShortName: "PD290", VIS: 0x64,
		Width: 800, Height: 616, Color: ColorYCrCb,
		SyncTime: 20e-3, PorchTime: 2.08e-3,
		YScanTime: 228.8e-3, ChromaScanTime: 228.8e-3,
		LinePair: true,
	},
	{
		Name: "Wraase SC2-180", ShortName: "SC2-180", VIS: 0x55,
		Width: 320, Height: 256, Color: ColorRGB,
		SyncTime: 5.5437e-3, PorchTime: 0.5e-3,
		YScanTime: 235.0e-3, SeparatorTime: 0,
	},
}

// visTable maps an 8-bit VIS code to its mode, built once by initModes.
var visTable = map[uint8]*ModeSpec{}

func init() {
	initModes()
}

// initModes computes each mode's derived LineTime/TotalTime and
// populates visTable. Run once from init; code inside this package
// (e.g. tests) may call it again to re-initialize deterministically.
func initModes() {
	visTable = make(map[uint8]*ModeSpec, len(Modes))
	for i := range Modes {
		m := &Modes[i]
		m.LineTime = lineTime(m)
		m.TotalTime = visPreambleTime + m.LineTime*float64(m.syncCount())
		visTable[m.VIS] = m
	}
}

func lineTime(m *ModeSpec) float64 {
	switch {
	case m.Color == ColorGBR || m.Color == ColorRGB:
		return m.SyncTime + m.PorchTime + 3*m.YScanTime + 2*m.SeparatorTime
	case m.ChromaPaired && m.ChromaBothPerLine:
		// Robot 72: Sync -> Porch -> Y -> Sep -> Cr -> Sep -> Cb
		return m.SyncTime + m.PorchTime + m.YScanTime + 2*m.SeparatorTime + 2*m.ChromaScanTime
	case m.ChromaPaired:
		// Robot 36: Sync -> Porch -> Y -> Sep -> (Cr or Cb)
		return m.SyncTime + m.PorchTime + m.YScanTime + m.SeparatorTime + m.ChromaScanTime
	case m.LinePair:
		// PD family: Sync -> Porch -> Y0 -> Y1 -> Cr -> Cb
		return m.SyncTime + m.PorchTime + 2*m.YScanTime + 2*m.ChromaScanTime
	default:
		return m.SyncTime + m.PorchTime + m.YScanTime
	}
}

// ModeByVIS looks up a mode by its 8-bit VIS code. Returns nil for
// unsupported or unknown codes (spec §7 UnsupportedMode).
func ModeByVIS(vis uint8) *ModeSpec {
	return visTable[vis]
}

// ModeByShortName looks up a mode by its short display name, used by
// the synthesizer's public encode entry point.
func ModeByShortName(name string) *ModeSpec {
	for i := range Modes {
		if Modes[i].ShortName == name {
			return &Modes[i]
		}
	}
	return nil
}
