package sstv

import (
	"errors"
	"image"
	"log"
	"sync"
	"time"
)

/*
 * Codec: the public library facade named in §6 (start_receive,
 * stop_receive, transmit, get_state). Reintroduces the source's
 * goroutine-driven receive loop (mutex + WaitGroup guarding Start/Stop)
 * on top of Decoder.Feed, which itself stays synchronous and
 * single-threaded per §5.
 */

var errReceiveAlreadyRunning = errors.New("sstv: receive already running")

// Codec owns one decoder, synthesizer, and settings/history pair --
// the SSTV core's whole lifetime, per §9's "each core is a value type
// owned by the caller".
type Codec struct {
	mu      sync.Mutex
	decoder *Decoder
	synth   *Synthesizer
	history *History
	store   KVStore
	logger  *log.Logger

	settings Settings

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewCodec loads settings and history from store and returns a ready,
// idle Codec.
func NewCodec(cfg DecoderConfig, store KVStore, logger *log.Logger) (*Codec, error) {
	if logger == nil {
		logger = log.Default()
	}
	history, err := NewHistory(store)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(store)
	if err != nil {
		return nil, err
	}
	return &Codec{
		decoder:  NewDecoder(cfg, logger, history),
		synth:    NewSynthesizer(),
		history:  history,
		store:    store,
		logger:   logger,
		settings: settings,
	}, nil
}

// StartReceive spins up the coroutine-style audio loop (§9): one task
// pulling from audioIn, yielding whenever it is empty, feeding every
// chunk to the decoder and forwarding resulting events to out.
// Non-blocking sends to out mirror the source's best-effort delivery.
func (c *Codec) StartReceive(audioIn <-chan []float64, out chan<- Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errReceiveAlreadyRunning
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	go c.receiveLoop(audioIn, out)
	return nil
}

// StopReceive signals the receive loop to exit and waits for it.
func (c *Codec) StopReceive() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	close(c.stopCh)
	c.running = false
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Codec) receiveLoop(audioIn <-chan []float64, out chan<- Event) {
	defer c.wg.Done()
	emitEvent(out, ReceiveStartedEvent{})
	for {
		select {
		case <-c.stopCh:
			emitEvent(out, ReceiveStoppedEvent{})
			return
		case samples, ok := <-audioIn:
			if !ok {
				emitEvent(out, ReceiveStoppedEvent{})
				return
			}
			c.mu.Lock()
			events := c.decoder.Feed(samples)
			c.mu.Unlock()
			for _, ev := range events {
				emitEvent(out, ev)
			}
		}
	}
}

// emitEvent sends ev to out without blocking if the receiver is slow,
// matching the source's select/default delivery discipline.
func emitEvent(out chan<- Event, ev Event) {
	if out == nil {
		return
	}
	select {
	case out <- ev:
	default:
	}
}

// State returns a snapshot of the decoder's current state (get_state, §6).
func (c *Codec) State() DecoderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decoder.State()
}

// Transmit synthesizes the full audio buffer for img under modeName in
// one shot (§5: "transmit is a one-shot synthesis that produces the
// full audio buffer up-front"), gated on license/callsign prerequisites
// (§7).
func (c *Codec) Transmit(img *image.RGBA, modeName string, out chan<- Event) ([]float64, error) {
	c.mu.Lock()
	settings := c.settings
	fs := c.decoder.cfg.SampleRate
	c.mu.Unlock()

	if !settings.LicenseAcknowledged {
		return nil, ErrLicenseMissing
	}
	if settings.Callsign == "" {
		return nil, ErrCallsignMissing
	}

	mode := ModeByShortName(modeName)
	if mode == nil {
		return nil, ErrUnsupportedMode
	}

	duration := time.Duration(mode.TotalTime * float64(time.Second))
	emitEvent(out, TransmitStartedEvent{Mode: mode, Duration: duration})
	samples := c.synth.EncodeImage(img, mode, fs)
	emitEvent(out, TransmitCompleteEvent{Mode: mode})
	return samples, nil
}

// UpdateSettings replaces and persists the codec's settings record.
func (c *Codec) UpdateSettings(s Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	return SaveSettings(c.store, s)
}

// History returns the bounded image history, most recent first.
func (c *Codec) History() []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

// SetMetrics attaches a Prometheus collector to the codec's decoder.
func (c *Codec) SetMetrics(m *Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decoder.SetMetrics(m)
}
