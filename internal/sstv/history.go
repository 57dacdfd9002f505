package sstv

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

/*
 * Persisted settings and image history (§6).
 *
 * The concrete key-value backend is an external collaborator; this
 * package only depends on the minimal KVStore interface below, mirrors
 * the teacher's config.go YAML-tagged struct convention for the blobs
 * it persists.
 */

const (
	settingsKey       = "sstv_settings"
	historyKey        = "sstv_history"
	maxHistoryEntries = 50
)

// KVStore is the persistence collaborator settings and history are
// read from and written to. Implementations are out of scope (§1).
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Settings is the sstv_settings record (§6).
type Settings struct {
	Callsign            string   `yaml:"callsign"`
	GridSquare          string   `yaml:"grid_square"`
	DefaultMode         string   `yaml:"default_mode"`
	Overlay             bool     `yaml:"overlay"`
	LicenseAcknowledged bool     `yaml:"license_acknowledged"`
	DeviceIDs           []string `yaml:"device_ids,omitempty"`
	Gain                float64  `yaml:"gain"`
	VOX                 bool     `yaml:"vox"`
}

// LoadSettings reads Settings from store, returning defaults if absent.
func LoadSettings(store KVStore) (Settings, error) {
	raw, ok, err := store.Get(settingsKey)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return Settings{}, nil
	}
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SaveSettings writes s to store under sstv_settings.
func SaveSettings(store KVStore, s Settings) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return store.Put(settingsKey, raw)
}

// HistoryEntry is one completed image record (§6 sstv_history).
type HistoryEntry struct {
	ID             string    `yaml:"id"`
	ModeName       string    `yaml:"mode_name"`
	Timestamp      time.Time `yaml:"timestamp"`
	Width          int       `yaml:"width"`
	Height         int       `yaml:"height"`
	Pixels         []byte    `yaml:"pixels"` // raw RGBA raster bytes
	SyncCount      int       `yaml:"sync_count"`
	DurationSec    float64   `yaml:"duration_sec"`
	SlantCorrected bool      `yaml:"slant_corrected"`
}

// History is the bounded, most-recent-first image history (§3, §4.D,
// §8: capped at 50, FIFO).
type History struct {
	store   KVStore
	entries []HistoryEntry
}

// NewHistory loads existing history from store, if any.
func NewHistory(store KVStore) (*History, error) {
	h := &History{store: store}
	raw, ok, err := store.Get(historyKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := yaml.Unmarshal(raw, &h.entries); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Append inserts entry at the head of the history, assigning it a
// fresh ID, dropping the oldest entry once the cap of 50 is exceeded.
func (h *History) Append(entry HistoryEntry) (HistoryEntry, error) {
	entry.ID = uuid.NewString()
	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > maxHistoryEntries {
		h.entries = h.entries[:maxHistoryEntries]
	}
	return entry, h.persist()
}

// Entries returns the history, most recent first.
func (h *History) Entries() []HistoryEntry { return h.entries }

// Len returns the current number of stored entries.
func (h *History) Len() int { return len(h.entries) }

func (h *History) persist() error {
	raw, err := yaml.Marshal(h.entries)
	if err != nil {
		return err
	}
	return h.store.Put(historyKey, raw)
}
