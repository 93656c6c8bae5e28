// Package display animates the word segments of the clock between what was
// last shown and what should be shown now.
package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"libdb.so/wordclock/internal/led"
)

const (
	// DefaultAnimationTime is the default duration of a transition.
	DefaultAnimationTime = 200 * time.Millisecond
	// DefaultStepDelay is the default delay between two animation steps.
	DefaultStepDelay = 4 * time.Millisecond
)

// Scene describes what should be lit.
type Scene struct {
	// Lit lists the indices of the lit segments.
	Lit []int
	// Color is the base color of lit segments.
	Color led.RGBColor
	// Brightness scales Color before it is shown.
	Brightness uint8
}

// Frame returns the segment colors of the scene. Indices outside
// [0, numSegments) are dropped.
func (s Scene) Frame(numSegments int) Frame {
	c := s.Color.Scale(s.Brightness)
	f := make(Frame, len(s.Lit))
	for _, i := range s.Lit {
		if i < 0 || i >= numSegments {
			continue
		}
		f[i] = c
	}
	return f
}

// Options configures an Engine.
type Options struct {
	// AnimationTime is the total duration of a transition.
	AnimationTime time.Duration
	// StepDelay is the delay after each animation step.
	StepDelay time.Duration
	// Logger is optional.
	Logger *slog.Logger
}

// AnimationSteps returns the number of steps of a transition, which is at
// least 1.
func (o Options) AnimationSteps() int {
	if o.StepDelay <= 0 {
		return 1
	}
	steps := int(o.AnimationTime / o.StepDelay)
	if steps < 1 {
		return 1
	}
	return steps
}

// Engine renders scenes onto a bus, animating every change.
type Engine struct {
	bus      led.Bus
	segments []led.Segment
	steps    int
	delay    time.Duration
	logger   *slog.Logger

	rendered Frame
	sleep    func(context.Context, time.Duration) error
}

// NewEngine creates a new engine painting the given segments onto bus. The
// display is assumed to be dark initially.
func NewEngine(bus led.Bus, segments []led.Segment, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		bus:      bus,
		segments: segments,
		steps:    opts.AnimationSteps(),
		delay:    opts.StepDelay,
		logger:   logger,
		rendered: Frame{},
		sleep:    sleepContext,
	}
}

// Rendered returns a copy of the frame currently shown.
func (e *Engine) Rendered() Frame {
	return e.rendered.Clone()
}

// Render shows the scene. If it differs from what is shown, Render blocks
// while animating towards it. If ctx is canceled mid-animation, the scene is
// shown at once and the context error is returned.
func (e *Engine) Render(ctx context.Context, scene Scene) error {
	next := scene.Frame(len(e.segments))
	if next.Equal(e.rendered) {
		return nil
	}

	plan := NewTransitionPlan(e.rendered, next, e.steps)
	e.logger.Debug(
		"animating transition",
		"changed", len(plan.Changed()),
		"steps", plan.Steps)

	for !plan.Done() {
		e.paint(plan.Next())
		if err := e.bus.Show(); err != nil {
			// The bus may have taken the step; the next Render starts from it.
			e.rendered = plan.Current()
			return errors.Wrap(err, "failed to show frame")
		}

		if plan.Done() {
			break
		}

		if err := e.sleep(ctx, e.delay); err != nil {
			e.paint(plan.At(plan.Steps))
			e.rendered = next
			if showErr := e.bus.Show(); showErr != nil {
				return errors.Wrap(showErr, "failed to show final frame")
			}
			return err
		}
	}

	e.rendered = next
	return nil
}

// Redraw paints the rendered frame again without animating, for example
// after the lights were reset.
func (e *Engine) Redraw() error {
	for i, seg := range e.segments {
		seg.Paint(e.bus, e.rendered.Color(i))
	}
	return e.bus.Show()
}

func (e *Engine) paint(f Frame) {
	for i, c := range f {
		if i < 0 || i >= len(e.segments) {
			continue
		}
		e.segments[i].Paint(e.bus, c)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
