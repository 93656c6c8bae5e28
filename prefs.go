package wordclock

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// BrightnessMode selects how the global brightness is chosen.
type BrightnessMode string

const (
	// BrightnessAuto follows the night schedule.
	BrightnessAuto BrightnessMode = "auto"
	// BrightnessAlwaysHigh keeps the display at day brightness.
	BrightnessAlwaysHigh BrightnessMode = "high"
	// BrightnessAlwaysLow keeps the display at night brightness.
	BrightnessAlwaysLow BrightnessMode = "low"
)

// Next returns the mode after m in the cycle auto, high, low.
func (m BrightnessMode) Next() BrightnessMode {
	switch m {
	case BrightnessAuto:
		return BrightnessAlwaysHigh
	case BrightnessAlwaysHigh:
		return BrightnessAlwaysLow
	default:
		return BrightnessAuto
	}
}

// Valid returns true if m is a known mode.
func (m BrightnessMode) Valid() bool {
	switch m {
	case BrightnessAuto, BrightnessAlwaysHigh, BrightnessAlwaysLow:
		return true
	default:
		return false
	}
}

// Preferences are the settings changed with the buttons. They survive
// restarts.
type Preferences struct {
	// Color is the palette index of the display color.
	Color int `toml:"color"`
	// Brightness is the brightness mode.
	Brightness BrightnessMode `toml:"brightness"`
	// Offset is added to the system time, as set with the time button.
	Offset TOMLDuration `toml:"offset"`
}

// DefaultPreferences returns the preferences of a fresh clock.
func DefaultPreferences() Preferences {
	return Preferences{Brightness: BrightnessAuto}
}

// normalize brings out of range values back into range.
func (p *Preferences) normalize(paletteSize int) {
	if paletteSize > 0 {
		p.Color = ((p.Color % paletteSize) + paletteSize) % paletteSize
	}
	if !p.Brightness.Valid() {
		p.Brightness = BrightnessAuto
	}
}

// PreferenceStore loads and saves preferences.
type PreferenceStore interface {
	// Load returns the stored preferences, or the defaults if none were
	// stored yet.
	Load() (Preferences, error)
	// Save stores the preferences.
	Save(Preferences) error
}

// FileStore stores preferences as a TOML file.
type FileStore struct {
	Path string
}

var _ PreferenceStore = FileStore{}

// Load implements PreferenceStore.
func (s FileStore) Load() (Preferences, error) {
	prefs := DefaultPreferences()

	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, errors.Wrap(err, "failed to read preferences")
	}

	if err := toml.Unmarshal(b, &prefs); err != nil {
		return DefaultPreferences(), errors.Wrapf(err, "failed to parse preferences %s", s.Path)
	}

	return prefs, nil
}

// Save implements PreferenceStore. The file is replaced atomically.
func (s FileStore) Save(prefs Preferences) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(prefs); err != nil {
		return errors.Wrap(err, "failed to encode preferences")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create preferences file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write preferences")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write preferences")
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return errors.Wrap(err, "failed to replace preferences")
	}

	return nil
}

// MemoryStore keeps preferences in memory.
type MemoryStore struct {
	Prefs *Preferences
	Saves int
}

var _ PreferenceStore = (*MemoryStore)(nil)

// Load implements PreferenceStore.
func (s *MemoryStore) Load() (Preferences, error) {
	if s.Prefs == nil {
		return DefaultPreferences(), nil
	}
	return *s.Prefs, nil
}

// Save implements PreferenceStore.
func (s *MemoryStore) Save(p Preferences) error {
	s.Prefs = &p
	s.Saves++
	return nil
}

func (p Preferences) String() string {
	return fmt.Sprintf("color=%d brightness=%s offset=%s", p.Color, p.Brightness, p.Offset)
}
