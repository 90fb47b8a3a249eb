package logic

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxLabelLen is the display width available for a preset label.
const MaxLabelLen = 16

// Storage layout for the persisted preset selection.
const (
	AddrMarker uint8 = 0
	AddrIndex  uint8 = 1

	// Marker is written next to the index once a selection has been saved.
	Marker byte = 0xA5
)

// Preset is a named pump schedule.
type Preset struct {
	Label         string
	OnDuration    time.Duration
	CycleInterval time.Duration
}

// DefaultPresets is the built-in catalog. Index 0 is the default.
var DefaultPresets = []Preset{
	{Label: "60s / 30min", OnDuration: 60 * time.Second, CycleInterval: 30 * time.Minute},
	{Label: "30s / 10min", OnDuration: 30 * time.Second, CycleInterval: 10 * time.Minute},
	{Label: "2min / 1h", OnDuration: 2 * time.Minute, CycleInterval: time.Hour},
	{Label: "5min / 4h", OnDuration: 5 * time.Minute, CycleInterval: 4 * time.Hour},
}

// ValidatePresets checks that a catalog can be used by the controller.
func ValidatePresets(presets []Preset) error {
	if len(presets) == 0 {
		return fmt.Errorf("preset catalog is empty")
	}
	if len(presets) > 255 {
		return fmt.Errorf("preset catalog has %d entries, max 255", len(presets))
	}
	for i, p := range presets {
		if p.Label == "" {
			return fmt.Errorf("preset %d: empty label", i)
		}
		if n := utf8.RuneCountInString(p.Label); n > MaxLabelLen {
			return fmt.Errorf("preset %d: label %q is %d chars, max %d", i, p.Label, n, MaxLabelLen)
		}
		if p.OnDuration <= 0 || p.CycleInterval <= 0 {
			return fmt.Errorf("preset %d: durations must be positive", i)
		}
		if ToMillis(p.CycleInterval) == 0 || p.CycleInterval >= time.Duration(1<<32)*time.Millisecond {
			return fmt.Errorf("preset %d: cycle interval %v out of range", i, p.CycleInterval)
		}
		if p.OnDuration >= time.Duration(1<<32)*time.Millisecond {
			return fmt.Errorf("preset %d: on duration %v out of range", i, p.OnDuration)
		}
	}
	return nil
}

// PresetStore loads and saves the selected preset index.
type PresetStore struct {
	store ByteStore
	count int
}

// NewPresetStore creates a store for a catalog of count presets.
func NewPresetStore(store ByteStore, count int) *PresetStore {
	return &PresetStore{store: store, count: count}
}

// LoadResult describes how the boot-time selection was obtained.
type LoadResult int

const (
	LoadedSaved LoadResult = iota
	LoadedFirstRun
	LoadedOutOfRange
)

// Load returns the saved index. A marker mismatch is treated as a first run
// and an index outside the catalog falls back to the default; neither is an
// error. A read error is returned together with index 0.
func (s *PresetStore) Load() (int, LoadResult, error) {
	marker, err := s.store.LoadByte(AddrMarker)
	if err != nil {
		return 0, LoadedFirstRun, fmt.Errorf("load marker: %w", err)
	}
	if marker != Marker {
		return 0, LoadedFirstRun, nil
	}
	idx, err := s.store.LoadByte(AddrIndex)
	if err != nil {
		return 0, LoadedFirstRun, fmt.Errorf("load index: %w", err)
	}
	if int(idx) >= s.count {
		return 0, LoadedOutOfRange, nil
	}
	return int(idx), LoadedSaved, nil
}

// Save persists index. Rewriting the same value is harmless.
func (s *PresetStore) Save(index int) error {
	if err := s.store.StoreByte(AddrIndex, byte(index)); err != nil {
		return fmt.Errorf("store index: %w", err)
	}
	if err := s.store.StoreByte(AddrMarker, Marker); err != nil {
		return fmt.Errorf("store marker: %w", err)
	}
	return nil
}

// Presets cycles through the catalog.
type Presets struct {
	catalog []Preset
	index   int
}

// NewPresets starts the cycler at index, clamping out-of-range values to 0.
func NewPresets(catalog []Preset, index int) *Presets {
	if index < 0 || index >= len(catalog) {
		index = 0
	}
	return &Presets{catalog: catalog, index: index}
}

// Next advances to the following preset, wrapping to index 0.
func (p *Presets) Next() (int, Preset) {
	p.index = (p.index + 1) % len(p.catalog)
	return p.index, p.catalog[p.index]
}

// Current returns the active index and preset.
func (p *Presets) Current() (int, Preset) {
	return p.index, p.catalog[p.index]
}

// Len returns the catalog size.
func (p *Presets) Len() int {
	return len(p.catalog)
}
