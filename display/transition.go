package display

import (
	"sort"

	"libdb.so/wordclock/internal/led"
)

// Frame maps segment indices to the color they are lit with. Segments absent
// from the frame are dark.
type Frame map[int]led.RGBColor

// Color returns the color of segment i, which is black if i is not lit.
func (f Frame) Color(i int) led.RGBColor {
	if c, ok := f[i]; ok {
		return c
	}
	return led.Black
}

// Equal returns true if both frames light the same segments with the same
// colors. Segments lit in black count as dark.
func (f Frame) Equal(other Frame) bool {
	for i, c := range f {
		if other.Color(i) != c {
			return false
		}
	}
	for i, c := range other {
		if f.Color(i) != c {
			return false
		}
	}
	return true
}

// Clone returns a copy of the frame.
func (f Frame) Clone() Frame {
	clone := make(Frame, len(f))
	for i, c := range f {
		clone[i] = c
	}
	return clone
}

// TransitionPlan animates the segments that differ between two frames.
type TransitionPlan struct {
	From    Frame
	To      Frame
	Steps   int
	Elapsed int

	changed []int
}

// NewTransitionPlan plans a transition over the given number of steps. steps
// is at least 1.
func NewTransitionPlan(from, to Frame, steps int) *TransitionPlan {
	if steps < 1 {
		steps = 1
	}

	seen := make(map[int]struct{}, len(from)+len(to))
	var changed []int
	for _, f := range []Frame{from, to} {
		for i := range f {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			if from.Color(i) != to.Color(i) {
				changed = append(changed, i)
			}
		}
	}
	sort.Ints(changed)

	return &TransitionPlan{
		From:    from,
		To:      to,
		Steps:   steps,
		changed: changed,
	}
}

// Changed returns the sorted segment indices that the plan animates.
func (p *TransitionPlan) Changed() []int {
	return p.changed
}

// Done returns true once every step has been taken.
func (p *TransitionPlan) Done() bool {
	return p.Elapsed >= p.Steps
}

// At returns the colors of the changed segments at step i.
func (p *TransitionPlan) At(i int) Frame {
	f := make(Frame, len(p.changed))
	for _, seg := range p.changed {
		f[seg] = led.Shift(i, p.Steps, p.From.Color(seg), p.To.Color(seg))
	}
	return f
}

// Current returns the frame shown after the steps taken so far.
func (p *TransitionPlan) Current() Frame {
	f := p.From.Clone()
	for seg, c := range p.At(p.Elapsed) {
		f[seg] = c
	}
	return f
}

// Next advances the plan by one step and returns the colors of the changed
// segments at that step. It returns nil once the plan is done.
func (p *TransitionPlan) Next() Frame {
	if p.Done() {
		return nil
	}
	p.Elapsed++
	return p.At(p.Elapsed)
}
