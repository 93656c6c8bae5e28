package wordclock

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"libdb.so/wordclock/button"
	"libdb.so/wordclock/display"
	"libdb.so/wordclock/internal/led"
)

// WordClock ties the buttons, the preferences and the display together.
// HandleEdge may be called from any goroutine; everything else belongs to
// the main loop.
type WordClock struct {
	logger  *slog.Logger
	clock   button.Clock
	store   PreferenceStore
	layout  *Layout
	palette []led.RGBColor
	night   display.NightSchedule
	engine  *display.Engine

	timeButton  uint8
	colorButton uint8
	levels      map[uint8]*button.Level
	buttons     map[uint8]*button.Button

	prefs   Preferences
	timeSet bool
}

// NewWordClock creates a word clock drawing onto bus. Preferences are loaded
// from store. clock may be nil to use the system clock.
func NewWordClock(cfg *Config, bus led.Bus, store PreferenceStore, clock button.Clock, logger *slog.Logger) (*WordClock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if clock == nil {
		clock = button.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}

	palette, err := cfg.Colors()
	if err != nil {
		return nil, err
	}

	prefs, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load preferences")
	}
	prefs.normalize(len(palette))

	opts := cfg.DisplayOptions()
	opts.Logger = logger

	w := &WordClock{
		logger:      logger,
		clock:       clock,
		store:       store,
		layout:      NewLayout(cfg),
		palette:     palette,
		night:       cfg.Night.Schedule(),
		engine:      display.NewEngine(bus, cfg.LEDSegments(), opts),
		timeButton:  cfg.Button.Time,
		colorButton: cfg.Button.Color,
		levels:      make(map[uint8]*button.Level, 2),
		buttons:     make(map[uint8]*button.Button, 2),
		prefs:       prefs,
	}

	th := cfg.Button.Thresholds()
	w.addButton(w.timeButton, th, w.advanceTime, w.toggleTimeSet)
	w.addButton(w.colorButton, th, w.nextColor, w.nextBrightness)

	logger.Debug("loaded preferences", "prefs", prefs)
	return w, nil
}

func (w *WordClock) addButton(n uint8, th button.Thresholds, single, double func()) {
	level := &button.Level{}
	w.levels[n] = level
	w.buttons[n] = button.New(level, w.clock, th, button.ActionFunc(single), button.ActionFunc(double))
}

// Preferences returns the current preferences.
func (w *WordClock) Preferences() Preferences {
	return w.prefs
}

// TimeSetMode returns true while the time button adjusts the time.
func (w *WordClock) TimeSetMode() bool {
	return w.timeSet
}

// HandleEdge records a level change of button n and updates its debounce
// machine. It returns false if n is not a known button.
func (w *WordClock) HandleEdge(n uint8, pressed bool) bool {
	b, ok := w.buttons[n]
	if !ok {
		return false
	}
	w.levels[n].Set(pressed)
	b.Update()
	return true
}

// Tick runs one main loop iteration: it resolves pending clicks, then
// renders the current time, animating any change.
func (w *WordClock) Tick(ctx context.Context) error {
	for _, n := range []uint8{w.timeButton, w.colorButton} {
		if click := w.buttons[n].Resolve(); click != button.NoClick {
			w.logger.Debug("button clicked", "button", n, "click", click)
		}
	}

	return w.engine.Render(ctx, w.Scene())
}

// Now returns the time shown by the clock.
func (w *WordClock) Now() time.Time {
	return w.clock.Now().Add(time.Duration(w.prefs.Offset))
}

// Scene returns what the display should show now.
func (w *WordClock) Scene() display.Scene {
	hour, minute, _ := w.Now().Clock()

	lit := w.layout.Lit(hour, minute)
	if w.timeSet {
		lit = dedup(append(lit, w.layout.Dots()...))
	}

	return display.Scene{
		Lit:        lit,
		Color:      w.palette[w.prefs.Color],
		Brightness: w.brightness(hour),
	}
}

func (w *WordClock) brightness(hour int) uint8 {
	switch w.prefs.Brightness {
	case BrightnessAlwaysHigh:
		return w.night.High
	case BrightnessAlwaysLow:
		return w.night.Low
	default:
		return w.night.Brightness(hour)
	}
}

// Redraw repaints the current frame, for example after the controller was
// reset.
func (w *WordClock) Redraw() error {
	return w.engine.Redraw()
}

func (w *WordClock) nextColor() {
	w.prefs.Color = (w.prefs.Color + 1) % len(w.palette)
	w.logger.Info("color changed", "color", w.palette[w.prefs.Color])
	w.save()
}

func (w *WordClock) nextBrightness() {
	w.prefs.Brightness = w.prefs.Brightness.Next()
	w.logger.Info("brightness mode changed", "mode", w.prefs.Brightness)
	w.save()
}

func (w *WordClock) toggleTimeSet() {
	w.timeSet = !w.timeSet
	w.logger.Info("time set mode toggled", "enabled", w.timeSet)
}

func (w *WordClock) advanceTime() {
	if !w.timeSet {
		w.logger.Debug("time button clicked outside time set mode, ignoring")
		return
	}

	offset := (time.Duration(w.prefs.Offset) + time.Minute) % (24 * time.Hour)
	w.prefs.Offset = TOMLDuration(offset)
	w.logger.Info("time advanced", "now", w.Now().Format("15:04"))
	w.save()
}

func (w *WordClock) save() {
	if err := w.store.Save(w.prefs); err != nil {
		w.logger.Warn(
			"failed to save preferences",
			"error", err)
	}
}
