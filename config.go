package wordclock

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/wordclock/button"
	"libdb.so/wordclock/display"
	"libdb.so/wordclock/internal/led"
)

// Config is the configuration for the word clock daemon.
type Config struct {
	// Device is the path to the device file of the controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Lights is the number of LEDs on the bus.
	Lights int `toml:"lights"`
	// Unused lists the LED indices that are physically unpopulated.
	Unused []int `toml:"unused"`
	// PollInterval is the period of the main loop.
	PollInterval TOMLDuration `toml:"poll_interval"`
	// Preferences is the path of the preference file.
	Preferences string `toml:"preferences"`
	// Palette is the list of colors the color button cycles through, as
	// #rrggbb strings.
	Palette []string `toml:"palette"`

	Button    ButtonConfig    `toml:"button"`
	Animation AnimationConfig `toml:"animation"`
	Night     NightConfig     `toml:"night"`
	Segments  []SegmentConfig `toml:"segment"`
	Layout    LayoutConfig    `toml:"layout"`
}

// ButtonConfig configures the two buttons.
type ButtonConfig struct {
	// Time is the controller's button number of the time button.
	Time uint8 `toml:"time"`
	// Color is the controller's button number of the color button.
	Color uint8 `toml:"color"`
	// Debounce is the debounce threshold.
	Debounce TOMLDuration `toml:"debounce"`
	// Click is the double click window.
	Click TOMLDuration `toml:"click"`
}

// Thresholds returns the button thresholds.
func (c ButtonConfig) Thresholds() button.Thresholds {
	return button.Thresholds{
		Debounce: time.Duration(c.Debounce),
		Click:    time.Duration(c.Click),
	}
}

// AnimationConfig configures transitions.
type AnimationConfig struct {
	Duration  TOMLDuration `toml:"duration"`
	StepDelay TOMLDuration `toml:"step_delay"`
}

// NightConfig configures night mode. Night covers [Start, End) in hours.
type NightConfig struct {
	Start int   `toml:"start"`
	End   int   `toml:"end"`
	Low   uint8 `toml:"low"`
	High  uint8 `toml:"high"`
}

// Schedule returns the night schedule.
func (c NightConfig) Schedule() display.NightSchedule {
	return display.NightSchedule{
		Start: c.Start,
		End:   c.End,
		Low:   c.Low,
		High:  c.High,
	}
}

// SegmentConfig names a range of LEDs forming one word.
type SegmentConfig struct {
	Name  string `toml:"name"`
	Range [2]int `toml:"range"`
}

// LayoutConfig describes which segments spell the time.
type LayoutConfig struct {
	// Always lists segments lit at all times, such as "IT IS".
	Always []string `toml:"always"`
	// Hours has 12 entries, the first one for 12 o'clock.
	Hours [][]string `toml:"hours"`
	// Minutes has 12 entries, one for each five minutes past the hour.
	Minutes [][]string `toml:"minutes"`
	// Dots lists the segments marking the minutes between two five minute
	// steps, in order.
	Dots []string `toml:"dots"`
	// NextHourFrom is the minute from which the next hour is named, as in
	// "twenty five to three". Zero takes the default of 35; 60 always names
	// the current hour.
	NextHourFrom int `toml:"next_hour_from"`
}

const (
	defaultBaud         = 115200
	defaultPollInterval = 10 * time.Millisecond
	defaultPreferences  = "wordclock-prefs.toml"
	defaultNextHourFrom = 35
	defaultPaletteSize  = 7
)

// setDefaults fills in zero fields.
func (c *Config) setDefaults() {
	if c.Baud == 0 {
		c.Baud = defaultBaud
	}
	if c.PollInterval == 0 {
		c.PollInterval = TOMLDuration(defaultPollInterval)
	}
	if c.Preferences == "" {
		c.Preferences = defaultPreferences
	}
	if len(c.Palette) == 0 {
		c.Palette = DefaultPalette()
	}
	if c.Button.Time == 0 && c.Button.Color == 0 {
		c.Button.Color = 1
	}
	if c.Button.Debounce == 0 {
		c.Button.Debounce = TOMLDuration(button.DefaultDebounce)
	}
	if c.Button.Click == 0 {
		c.Button.Click = TOMLDuration(button.DefaultClick)
	}
	if c.Animation.Duration == 0 {
		c.Animation.Duration = TOMLDuration(display.DefaultAnimationTime)
	}
	if c.Animation.StepDelay == 0 {
		c.Animation.StepDelay = TOMLDuration(display.DefaultStepDelay)
	}
	night := display.DefaultNightSchedule()
	if c.Night.Start == 0 && c.Night.End == 0 {
		c.Night.Start, c.Night.End = night.Start, night.End
	}
	if c.Night.Low == 0 {
		c.Night.Low = night.Low
	}
	if c.Night.High == 0 {
		c.Night.High = night.High
	}
	if c.Layout.NextHourFrom == 0 {
		c.Layout.NextHourFrom = defaultNextHourFrom
	}
}

// DefaultPalette returns white followed by evenly spaced saturated hues.
func DefaultPalette() []string {
	palette := []string{"#ffffff"}
	hues := defaultPaletteSize - 1
	for i := 0; i < hues; i++ {
		h := float64(i) * 360 / float64(hues)
		palette = append(palette, colorful.Hsv(h, 1, 1).Clamped().Hex())
	}
	return palette
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Lights <= 0 {
		return errors.New("no lights configured")
	}
	if c.Button.Time == c.Button.Color {
		return fmt.Errorf("time and color button share number %d", c.Button.Time)
	}
	if c.Button.Debounce <= 0 || c.Button.Click <= 0 {
		return errors.New("button thresholds must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if err := c.Night.Schedule().Validate(); err != nil {
		return err
	}
	if _, err := c.Colors(); err != nil {
		return err
	}

	for _, i := range c.Unused {
		if i < 0 || i >= c.Lights {
			return fmt.Errorf("unused light %d out of range", i)
		}
	}

	names := make(map[string]bool, len(c.Segments))
	for i, seg := range c.Segments {
		if seg.Name == "" {
			return fmt.Errorf("segment %d has no name", i)
		}
		if names[seg.Name] {
			return fmt.Errorf("duplicate segment %q", seg.Name)
		}
		names[seg.Name] = true

		if seg.Range[0] < 0 || seg.Range[0] >= seg.Range[1] || seg.Range[1] > c.Lights {
			return fmt.Errorf("segment %q range %v out of range", seg.Name, seg.Range)
		}
	}

	// Check for overlapping segments.
	segments := c.LEDSegments()
	for i := range segments {
		for j := i + 1; j < len(segments); j++ {
			if segments[i].Overlaps(segments[j]) {
				return fmt.Errorf(
					"segment %q range %v overlaps with %q range %v",
					c.Segments[i].Name, c.Segments[i].Range,
					c.Segments[j].Name, c.Segments[j].Range)
			}
		}
	}

	return c.Layout.validate(names)
}

func (l LayoutConfig) validate(names map[string]bool) error {
	if len(l.Hours) != 12 {
		return fmt.Errorf("layout needs 12 hours, got %d", len(l.Hours))
	}
	if len(l.Minutes) != 12 {
		return fmt.Errorf("layout needs 12 minute steps, got %d", len(l.Minutes))
	}
	if len(l.Dots) > 4 {
		return fmt.Errorf("layout has %d minute dots, at most 4 are used", len(l.Dots))
	}
	if l.NextHourFrom < 0 || l.NextHourFrom > 60 {
		return fmt.Errorf("next_hour_from %d out of range", l.NextHourFrom)
	}

	check := func(group []string) error {
		for _, name := range group {
			if !names[name] {
				return fmt.Errorf("layout refers to unknown segment %q", name)
			}
		}
		return nil
	}

	groups := [][]string{l.Always, l.Dots}
	groups = append(groups, l.Hours...)
	groups = append(groups, l.Minutes...)
	for _, group := range groups {
		if err := check(group); err != nil {
			return err
		}
	}

	return nil
}

// Colors parses the palette.
func (c *Config) Colors() ([]led.RGBColor, error) {
	if len(c.Palette) == 0 {
		return nil, errors.New("empty palette")
	}
	colors := make([]led.RGBColor, len(c.Palette))
	for i, s := range c.Palette {
		if err := colors[i].UnmarshalText([]byte(s)); err != nil {
			return nil, errors.Wrapf(err, "palette entry %d", i)
		}
	}
	return colors, nil
}

// LEDSegments returns the configured segments in order, skipping unused
// lights.
func (c *Config) LEDSegments() []led.Segment {
	skip := led.SkipIndices(c.Unused...)
	segments := make([]led.Segment, len(c.Segments))
	for i, seg := range c.Segments {
		segments[i] = led.NewSegment(seg.Name, seg.Range[0], seg.Range[1], c.Lights, skip)
	}
	return segments
}

// DisplayOptions returns the options of the display engine.
func (c *Config) DisplayOptions() display.Options {
	return display.Options{
		AnimationTime: time.Duration(c.Animation.Duration),
		StepDelay:     time.Duration(c.Animation.StepDelay),
	}
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d TOMLDuration) String() string {
	return time.Duration(d).String()
}

// ParseConfig parses a configuration from a reader and fills in defaults.
// The returned configuration is not validated.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return &config, nil
}
