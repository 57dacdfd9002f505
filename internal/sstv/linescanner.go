package sstv

/*
 * Line scanner (§4.C).
 *
 * Each Scan* function is handed the samples for one line starting at
 * the start of its sync pulse, and slices out the mode's channel scans
 * by offset/duration, skipping sync/porch/separator spans rather than
 * decoding them (sync timing itself is the tracker's concern, §4.E).
 */

// sliceAt returns the fs*dur samples beginning offsetSec into samples,
// or nil if the buffer is too short.
func sliceAt(samples []float64, fs, offsetSec, durSec float64) []float64 {
	start := int(offsetSec * fs)
	n := int(durSec * fs)
	if start < 0 || n <= 0 || start+n > len(samples) {
		return nil
	}
	return samples[start : start+n]
}

// scanChannel slices a channel's samples into `width` equal pixels,
// finds each pixel's dominant frequency, subtracts driftHz, and maps
// the result to luminance (§4.A/§4.C "Pixel extraction").
func scanChannel(channel []float64, width int, fs, driftHz float64) []uint8 {
	out := make([]uint8, width)
	if channel == nil || width == 0 {
		return out
	}
	pixelLen := len(channel) / width
	if pixelLen == 0 {
		return out
	}
	for x := 0; x < width; x++ {
		a := x * pixelLen
		b := a + pixelLen
		if x == width-1 {
			b = len(channel)
		}
		hz, _ := DominantFrequency(channel[a:b], fs)
		out[x] = FreqToLuminance(hz - driftHz)
	}
	return out
}

// ScanGBR decodes a Martin/Scottie-family (GBR) or Wraase (RGB) line.
// first/second/third are in the mode's native scan order: G,B,R for
// GBR modes, R,G,B for RGB modes.
func ScanGBR(samples []float64, mode *ModeSpec, fs, driftHz float64) (first, second, third []uint8) {
	offset := mode.SyncTime + mode.PorchTime
	firstCh := sliceAt(samples, fs, offset, mode.YScanTime)
	offset += mode.YScanTime + mode.SeparatorTime
	secondCh := sliceAt(samples, fs, offset, mode.YScanTime)
	offset += mode.YScanTime + mode.SeparatorTime
	thirdCh := sliceAt(samples, fs, offset, mode.YScanTime)

	return scanChannel(firstCh, mode.Width, fs, driftHz),
		scanChannel(secondCh, mode.Width, fs, driftHz),
		scanChannel(thirdCh, mode.Width, fs, driftHz)
}

// ScanRobot decodes one Robot-family line: luma always, plus one
// chroma channel (Robot 36, alternating by lineIndex parity) or both
// (Robot 72, mode.ChromaBothPerLine). The unused return channel is nil.
func ScanRobot(samples []float64, mode *ModeSpec, fs, driftHz float64, lineIndex int) (Y, Cr, Cb []uint8) {
	offset := mode.SyncTime + mode.PorchTime
	yCh := sliceAt(samples, fs, offset, mode.YScanTime)
	Y = scanChannel(yCh, mode.Width, fs, driftHz)
	offset += mode.YScanTime + mode.SeparatorTime

	if mode.ChromaBothPerLine {
		crCh := sliceAt(samples, fs, offset, mode.ChromaScanTime)
		Cr = scanChannel(crCh, mode.Width, fs, driftHz)
		offset += mode.ChromaScanTime + mode.SeparatorTime
		cbCh := sliceAt(samples, fs, offset, mode.ChromaScanTime)
		Cb = scanChannel(cbCh, mode.Width, fs, driftHz)
		return Y, Cr, Cb
	}

	chromaCh := sliceAt(samples, fs, offset, mode.ChromaScanTime)
	chroma := scanChannel(chromaCh, mode.Width, fs, driftHz)
	if lineIndex%2 == 0 {
		return Y, chroma, nil
	}
	return Y, nil, chroma
}

// ScanPD decodes one PD-family sync: two luma rows plus a shared
// Cr/Cb pair.
func ScanPD(samples []float64, mode *ModeSpec, fs, driftHz float64) (Y0, Y1, Cr, Cb []uint8) {
	offset := mode.SyncTime + mode.PorchTime
	y0Ch := sliceAt(samples, fs, offset, mode.YScanTime)
	offset += mode.YScanTime
	y1Ch := sliceAt(samples, fs, offset, mode.YScanTime)
	offset += mode.YScanTime
	crCh := sliceAt(samples, fs, offset, mode.ChromaScanTime)
	offset += mode.ChromaScanTime
	cbCh := sliceAt(samples, fs, offset, mode.ChromaScanTime)

	return scanChannel(y0Ch, mode.Width, fs, driftHz),
		scanChannel(y1Ch, mode.Width, fs, driftHz),
		scanChannel(crCh, mode.Width, fs, driftHz),
		scanChannel(cbCh, mode.Width, fs, driftHz)
}
