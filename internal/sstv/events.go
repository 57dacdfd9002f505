package sstv

import (
	"image"
	"time"
)

/*
 * Notification events (§6, §9).
 *
 * The source emits ad-hoc string-keyed events; this package replaces
 * that with a closed sum type. Event is implemented only by the
 * variants below — callers type-switch on the concrete type.
 */

// Event is the sealed interface implemented by every notification
// variant this package emits.
type Event interface {
	isEvent()
}

// ModeDetectedEvent fires on VIS_DETECT -> RECEIVING.
type ModeDetectedEvent struct {
	Mode *ModeSpec
}

// ProgressEvent fires on each completed line (or line pair) while
// RECEIVING. Raster is a reference to the in-progress image; callers
// must not retain it across calls without copying.
type ProgressEvent struct {
	Line      int
	Total     int
	Raster    *image.RGBA
}

// ImageCompleteEvent fires exactly once per image, on RECEIVING -> COMPLETE.
type ImageCompleteEvent struct {
	Entry *HistoryEntry
}

// ReceiveStartedEvent and ReceiveStoppedEvent bracket a receive session.
type ReceiveStartedEvent struct{}
type ReceiveStoppedEvent struct{}

// TransmitStartedEvent and TransmitCompleteEvent bracket a transmit.
type TransmitStartedEvent struct {
	Mode     *ModeSpec
	Duration time.Duration
}
type TransmitCompleteEvent struct {
	Mode *ModeSpec
}

// SlantAnalysisEvent reports the tracker's current slant estimate.
type SlantAnalysisEvent struct {
	ExpectedLineTime float64
	MeasuredLineTime float64
	Factor           float64
	PercentOfNominal float64
	SampleCount      int
}

// DriftAnalysisEvent reports the tracker's current drift estimate.
type DriftAnalysisEvent struct {
	DriftHz       float64
	Confidence    float64
	MeasuredSync  float64
	ExpectedSync  float64
	SampleCount   int
}

func (ModeDetectedEvent) isEvent()     {}
func (ProgressEvent) isEvent()         {}
func (ImageCompleteEvent) isEvent()    {}
func (ReceiveStartedEvent) isEvent()   {}
func (ReceiveStoppedEvent) isEvent()   {}
func (TransmitStartedEvent) isEvent()  {}
func (TransmitCompleteEvent) isEvent() {}
func (SlantAnalysisEvent) isEvent()    {}
func (DriftAnalysisEvent) isEvent()    {}
