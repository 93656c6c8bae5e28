package button

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var epoch = time.Date(2023, 9, 1, 12, 0, 0, 0, time.UTC)

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(ms int) {
	c.mu.Lock()
	c.now = epoch.Add(time.Duration(ms) * time.Millisecond)
	c.mu.Unlock()
}

type counter struct {
	single int
	double int
}

type harness struct {
	clock   *fakeClock
	level   *Level
	button  *Button
	counter *counter
}

func newHarness() *harness {
	h := &harness{
		clock:   &fakeClock{now: epoch},
		level:   &Level{},
		counter: &counter{},
	}
	h.button = New(h.level, h.clock,
		Thresholds{Debounce: 50 * time.Millisecond, Click: 300 * time.Millisecond},
		ActionFunc(func() { h.counter.single++ }),
		ActionFunc(func() { h.counter.double++ }),
	)
	return h
}

// edge sets the pin level at the given millisecond and runs Update, like an
// edge interrupt would.
func (h *harness) edge(ms int, pressed bool) {
	h.clock.set(ms)
	h.level.Set(pressed)
	h.button.Update()
}

func (h *harness) poll(ms int) Click {
	h.clock.set(ms)
	return h.button.Resolve()
}

func TestSingleClickTimeline(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	assert.Equal(t, Pressed, h.button.State())
	h.edge(60, false)
	assert.Equal(t, ClickedSingle, h.button.State())

	assert.Equal(t, SingleClick, h.poll(400))
	assert.Equal(t, Released, h.button.State())
	assert.Equal(t, &counter{single: 1}, h.counter)

	assert.Equal(t, NoClick, h.poll(500))
	assert.Equal(t, &counter{single: 1}, h.counter)
}

func TestDoubleClickTimeline(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(60, false)
	h.edge(120, true)
	assert.Equal(t, ClickedDouble, h.button.State())
	h.edge(180, false)
	assert.Equal(t, Released, h.button.State())

	assert.Equal(t, DoubleClick, h.poll(400))
	assert.Equal(t, NoClick, h.poll(800))
	assert.Equal(t, &counter{double: 1}, h.counter)
}

func TestSingleClickWaitsForClickWindow(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(100, false)

	assert.Equal(t, NoClick, h.poll(200))
	assert.Equal(t, NoClick, h.poll(300))
	assert.Equal(t, SingleClick, h.poll(301))
	assert.Equal(t, &counter{single: 1}, h.counter)
}

func TestBounceAbsorbed(t *testing.T) {
	h := newHarness()

	ms := 0
	pressed := true
	for i := 0; i < 40; i++ {
		h.edge(ms, pressed)
		pressed = !pressed
		ms += 10 + i%3*10 // gaps of 10, 20 and 30ms
	}
	h.edge(ms, false)

	for _, at := range []int{ms, ms + 100, ms + 1000} {
		assert.Equal(t, NoClick, h.poll(at))
	}
	assert.Equal(t, &counter{}, h.counter)
}

func TestReleaseBounceIsNotSecondPress(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(60, false)
	h.edge(80, true) // 20ms after release: bounce
	h.edge(90, false)
	assert.Equal(t, ClickedSingle, h.button.State())

	assert.Equal(t, SingleClick, h.poll(400))
	assert.Equal(t, &counter{single: 1}, h.counter)
}

func TestShortSecondPressStaysArmed(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(60, false)
	h.edge(120, true)
	h.edge(150, false) // only 30ms after the second press
	assert.Equal(t, ClickedDouble, h.button.State())

	h.edge(200, false)
	assert.Equal(t, DoubleClick, h.poll(400))
	assert.Equal(t, &counter{double: 1}, h.counter)
}

func TestResolveWithoutClick(t *testing.T) {
	h := newHarness()
	assert.Equal(t, NoClick, h.poll(0))
	assert.Equal(t, NoClick, h.poll(10000))
	assert.Equal(t, &counter{}, h.counter)
}

func TestPressIgnoredWhileClickPending(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(60, false)
	h.edge(400, false) // click window over, single click now pending

	h.edge(450, true)
	assert.Equal(t, Released, h.button.State(), "press must be dropped while a click is pending")

	assert.Equal(t, SingleClick, h.poll(460))
	// Still held: the next update arms the button again.
	h.edge(470, true)
	assert.Equal(t, Pressed, h.button.State())
}

func TestFlagsMutuallyExclusive(t *testing.T) {
	h := newHarness()
	h.edge(0, true)
	h.edge(60, false)
	h.edge(120, true)
	h.edge(180, false)

	h.button.mu.Lock()
	single, double := h.button.singleClicked, h.button.doubleClicked
	h.button.mu.Unlock()
	assert.False(t, single)
	assert.True(t, double)

	h.poll(400)
	h.button.mu.Lock()
	defer h.button.mu.Unlock()
	assert.False(t, h.button.singleClicked)
	assert.False(t, h.button.doubleClicked)
}

func TestNilActions(t *testing.T) {
	clock := &fakeClock{now: epoch}
	level := &Level{}
	b := New(level, clock, Thresholds{}, nil, nil)

	level.Set(true)
	b.Update()
	clock.set(100)
	level.Set(false)
	b.Update()

	clock.set(1000)
	assert.Equal(t, SingleClick, b.Resolve())
}

func TestActionRunsUnlocked(t *testing.T) {
	clock := &fakeClock{now: epoch}
	level := &Level{}

	var b *Button
	var observed State
	b = New(level, clock, DefaultThresholds(), ActionFunc(func() {
		// Would deadlock if the button were still locked.
		b.Update()
		observed = b.State()
	}), nil)

	level.Set(true)
	b.Update()
	clock.set(60)
	level.Set(false)
	b.Update()

	clock.set(400)
	assert.Equal(t, SingleClick, b.Resolve())
	assert.Equal(t, Released, observed)
}

func TestConcurrentUpdateResolve(t *testing.T) {
	h := newHarness()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.level.Set(i%2 == 0)
			h.button.Update()
		}
	}()

	for i := 0; i < 1000; i++ {
		h.button.Resolve()
	}
	wg.Wait()
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "double", DoubleClick.String())
	assert.Equal(t, "clicked-single", ClickedSingle.String())
	assert.Equal(t, "Click(9)", Click(9).String())
}
