package led

import "unsafe"

// Bus is a light bus addressed by a fixed-size index space. Colors written
// with SetPixelColor become visible after Show.
type Bus interface {
	// SetPixelColor sets the color of the light at index i. Indices outside
	// the bus are ignored.
	SetPixelColor(i int, c RGBColor)
	// Show flushes the pending colors to the lights.
	Show() error
}

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// AsPixels returns the LED strip as a slice of uint8 values. Each LED is
// represented by three values, one for each color channel. The returned slice
// aliases l.
func (l LEDs) AsPixels() []uint8 {
	if len(l) == 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(&l[0])), 3*len(l))
}

// SetPixelColor sets the color of the LED at the given index. Out of range
// indices are dropped.
func (l LEDs) SetPixelColor(i int, c RGBColor) {
	if i < 0 || i >= len(l) {
		return
	}
	l[i] = c
}

// SetRange sets the color of the LEDs in the given range. The range is
// clamped to the strip.
func (l LEDs) SetRange(start, end int, c RGBColor) {
	start, end = clampRange(start, end, len(l))
	for i := start; i < end; i++ {
		l[i] = c
	}
}

// Clear turns off all LEDs.
func (l LEDs) Clear() {
	l.SetRange(0, len(l), Black)
}

// Strip is a Bus that keeps colors in an LEDs buffer and hands the whole
// buffer to a flush function on Show.
type Strip struct {
	LEDs  LEDs
	flush func(LEDs) error
}

var _ Bus = (*Strip)(nil)

// NewStrip creates a new strip of numLEDs black LEDs. flush may be nil.
func NewStrip(numLEDs int, flush func(LEDs) error) *Strip {
	return &Strip{
		LEDs:  NewLEDs(numLEDs),
		flush: flush,
	}
}

// SetPixelColor implements Bus.
func (s *Strip) SetPixelColor(i int, c RGBColor) {
	s.LEDs.SetPixelColor(i, c)
}

// Show implements Bus.
func (s *Strip) Show() error {
	if s.flush == nil {
		return nil
	}
	return s.flush(s.LEDs)
}

func clampRange(start, end, n int) (int, int) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	if start > n {
		start, end = n, n
	}
	return start, end
}
