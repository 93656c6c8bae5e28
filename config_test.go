package wordclock

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/wordclock/display"
	"libdb.so/wordclock/internal/led"
)

func loadExampleConfig(t *testing.T) *Config {
	t.Helper()

	f, err := os.Open("wordclock.toml")
	require.NoError(t, err)
	defer f.Close()

	cfg, err := ParseConfig(f)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestExampleConfig(t *testing.T) {
	cfg := loadExampleConfig(t)

	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 116, cfg.Lights)
	assert.Equal(t, []int{89}, cfg.Unused)
	assert.Equal(t, 50*time.Millisecond, time.Duration(cfg.Button.Debounce))
	assert.Equal(t, 300*time.Millisecond, time.Duration(cfg.Button.Click))
	assert.Equal(t, uint8(1), cfg.Button.Color)
	assert.Equal(t, display.DefaultNightSchedule(), cfg.Night.Schedule())
	assert.Equal(t, 50, cfg.DisplayOptions().AnimationSteps())
	assert.Len(t, cfg.Segments, 27)
	assert.Equal(t, [2]int{86, 93}, cfg.Segments[21].Range)

	colors, err := cfg.Colors()
	require.NoError(t, err)
	assert.Len(t, colors, 7)
	assert.Equal(t, led.RGB(0xFF, 0xFF, 0xFF), colors[0])
	assert.Equal(t, led.RGB(0xFF, 0, 0), colors[1])
}

func TestExampleConfigSkipsUnusedLight(t *testing.T) {
	cfg := loadExampleConfig(t)

	strip := led.NewStrip(cfg.Lights, nil)
	twelve := cfg.LEDSegments()[21]
	twelve.Paint(strip, led.RGB(1, 1, 1))

	assert.Equal(t, led.Black, strip.LEDs[89])
	assert.Equal(t, led.RGB(1, 1, 1), strip.LEDs[88])
	assert.Equal(t, led.RGB(1, 1, 1), strip.LEDs[90])
}

const minimalConfig = `
lights = 10

[[segment]]
name = "A"
range = [0, 5]

[[segment]]
name = "B"
range = [5, 10]

[layout]
always = ["A"]
hours = [[], [], [], [], [], [], [], [], [], [], [], []]
minutes = [[], [], [], [], [], [], [], [], [], [], [], ["B"]]
`

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(minimalConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, defaultBaud, cfg.Baud)
	assert.Equal(t, defaultPreferences, cfg.Preferences)
	assert.Equal(t, defaultPollInterval, time.Duration(cfg.PollInterval))
	assert.Equal(t, defaultNextHourFrom, cfg.Layout.NextHourFrom)
	assert.Equal(t, uint8(0), cfg.Button.Time)
	assert.Equal(t, uint8(1), cfg.Button.Color)
	assert.Equal(t, DefaultPalette(), cfg.Palette)
	assert.Equal(t, display.DefaultNightSchedule(), cfg.Night.Schedule())
	assert.Equal(t, display.DefaultAnimationTime, time.Duration(cfg.Animation.Duration))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		expect string
	}{
		{
			name:   "no lights",
			modify: func(c *Config) { c.Lights = 0 },
			expect: "no lights configured",
		},
		{
			name:   "overlap",
			modify: func(c *Config) { c.Segments[1].Range = [2]int{4, 10} },
			expect: `segment "A" range [0 5] overlaps with "B" range [4 10]`,
		},
		{
			name:   "out of range",
			modify: func(c *Config) { c.Segments[1].Range = [2]int{5, 11} },
			expect: `segment "B" range [5 11] out of range`,
		},
		{
			name:   "unknown segment",
			modify: func(c *Config) { c.Layout.Dots = []string{"C"} },
			expect: `layout refers to unknown segment "C"`,
		},
		{
			name:   "hours",
			modify: func(c *Config) { c.Layout.Hours = c.Layout.Hours[:11] },
			expect: "layout needs 12 hours, got 11",
		},
		{
			name:   "same buttons",
			modify: func(c *Config) { c.Button.Color = 0 },
			expect: "time and color button share number 0",
		},
		{
			name:   "bad color",
			modify: func(c *Config) { c.Palette = []string{"#zzzzzz"} },
			expect: "palette entry 0",
		},
		{
			name:   "night hour",
			modify: func(c *Config) { c.Night.End = 25 },
			expect: "night end hour 25 out of range",
		},
		{
			name:   "unused light",
			modify: func(c *Config) { c.Unused = []int{10} },
			expect: "unused light 10 out of range",
		},
		{
			name:   "duplicate segment",
			modify: func(c *Config) { c.Segments[1].Name = "A" },
			expect: `duplicate segment "A"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := ParseConfig(strings.NewReader(minimalConfig))
			require.NoError(t, err)

			test.modify(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expect)
		})
	}
}

func TestTOMLDuration(t *testing.T) {
	var d TOMLDuration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
