// Package button implements debouncing and single/double click
// classification for momentary push buttons.
//
// A Button is fed from two contexts. Update is called whenever the pin level
// may have changed, usually from the goroutine that receives edge events.
// Resolve is called once per main loop iteration and dispatches at most one
// classified click to the registered actions.
package button

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultDebounce is the default debounce threshold.
	DefaultDebounce = 50 * time.Millisecond
	// DefaultClick is the default double click window.
	DefaultClick = 300 * time.Millisecond
)

// Clock is a monotonic clock source.
type Clock interface {
	Now() time.Time
}

// ClockFunc is a function that implements Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the Clock backed by time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// Pin reads the current logical level of a button.
type Pin interface {
	// Pressed returns true if the button is currently held down.
	Pressed() bool
}

// Level is a Pin whose level is set by whoever observes the edges. It is safe
// for concurrent use.
type Level struct {
	pressed atomic.Bool
}

var _ Pin = (*Level)(nil)

// Set sets the level.
func (l *Level) Set(pressed bool) { l.pressed.Store(pressed) }

// Pressed implements Pin.
func (l *Level) Pressed() bool { return l.pressed.Load() }

// Action is invoked when a click is resolved.
type Action interface {
	Click()
}

// ActionFunc is a function that implements Action.
type ActionFunc func()

// Click implements Action.
func (f ActionFunc) Click() { f() }

// Click is the result of resolving a button.
type Click uint8

const (
	NoClick Click = iota
	SingleClick
	DoubleClick
)

// String returns a string representation of the click.
func (c Click) String() string {
	switch c {
	case NoClick:
		return "none"
	case SingleClick:
		return "single"
	case DoubleClick:
		return "double"
	default:
		return fmt.Sprintf("Click(%d)", c)
	}
}

// State is the state of the debounce machine.
type State uint8

const (
	Released State = iota
	Pressed
	ClickedSingle
	ClickedDouble
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case ClickedSingle:
		return "clicked-single"
	case ClickedDouble:
		return "clicked-double"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Thresholds configures the timing of a Button.
type Thresholds struct {
	// Debounce is the minimum time a level must be held to be trusted.
	Debounce time.Duration
	// Click is the window after the first press in which a second press
	// still makes a double click.
	Click time.Duration
}

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Debounce: DefaultDebounce,
		Click:    DefaultClick,
	}
}

// Button is a debounced push button.
type Button struct {
	pin    Pin
	clock  Clock
	th     Thresholds
	single Action
	double Action

	// mu guards everything below. It stands in for masking the button's
	// interrupt.
	mu            sync.Mutex
	state         State
	start         time.Time
	stop          time.Time
	singleClicked bool
	doubleClicked bool
}

// New creates a new button reading pin. Either action may be nil. A zero
// threshold takes its default.
func New(pin Pin, clock Clock, th Thresholds, single, double Action) *Button {
	if clock == nil {
		clock = SystemClock
	}
	if th.Debounce <= 0 {
		th.Debounce = DefaultDebounce
	}
	if th.Click <= 0 {
		th.Click = DefaultClick
	}
	return &Button{
		pin:    pin,
		clock:  clock,
		th:     th,
		single: single,
		double: double,
	}
}

// State returns the current state of the button.
func (b *Button) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Update samples the pin and advances the debounce machine. It never blocks
// for longer than a concurrent Resolve holds the button.
func (b *Button) Update() {
	b.mu.Lock()
	b.update()
	b.mu.Unlock()
}

func (b *Button) update() {
	now := b.clock.Now()
	pressed := b.pin.Pressed()

	switch b.state {
	case Released:
		// Pending clicks must be consumed before a new press is recognized.
		if pressed && !b.singleClicked && !b.doubleClicked {
			b.state = Pressed
			b.start = now
		}

	case Pressed:
		if pressed {
			break
		}
		if now.Sub(b.start) < b.th.Debounce {
			b.state = Released
		} else {
			b.state = ClickedSingle
			b.stop = now
		}

	case ClickedSingle:
		if now.Sub(b.start) > b.th.Click {
			b.singleClicked = true
			b.state = Released
		} else if pressed && now.Sub(b.stop) > b.th.Debounce {
			b.state = ClickedDouble
			b.start = now
		}

	case ClickedDouble:
		if !pressed && now.Sub(b.start) > b.th.Debounce {
			b.singleClicked = false
			b.doubleClicked = true
			b.state = Released
		}
	}
}

// Resolve advances the machine, then consumes any pending click and invokes
// its action. The action runs after the button is unlocked, so it may take
// arbitrarily long without holding back Update.
func (b *Button) Resolve() Click {
	b.mu.Lock()
	b.update()

	click := NoClick
	switch {
	case b.doubleClicked:
		click = DoubleClick
	case b.singleClicked:
		click = SingleClick
	}
	b.singleClicked = false
	b.doubleClicked = false

	b.mu.Unlock()

	switch click {
	case SingleClick:
		if b.single != nil {
			b.single.Click()
		}
	case DoubleClick:
		if b.double != nil {
			b.double.Click()
		}
	}

	return click
}
