package sstv

import "errors"

// Error kinds per the decoder's error handling contract (§7). VisTimeout
// is recovered locally by the state machine and never surfaced as a
// caller-visible failure; it is exported so tests and logging can name it.
var (
	ErrUnsupportedMode = errors.New("sstv: unsupported VIS mode code")
	ErrVisTimeout      = errors.New("sstv: VIS detect timed out")
	ErrLicenseMissing  = errors.New("sstv: transmit requires a license acknowledgment")
	ErrCallsignMissing = errors.New("sstv: transmit requires a callsign")
	ErrAudioUnavailable = errors.New("sstv: audio input unavailable")
)
