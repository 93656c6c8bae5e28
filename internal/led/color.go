package led

import (
	"encoding"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor is a color in component form. The component form is canonical;
// the packed 0xRRGGBB form is derived on demand.
type RGBColor [3]uint8

// Black is the color of an unlit LED.
var Black = RGBColor{}

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = RGBColor{}
)

// RGB creates a new RGBColor from its components.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// Extract splits a packed 24-bit 0xRRGGBB value into its components. Bits
// above the lower 24 are ignored.
func Extract(packed uint32) RGBColor {
	return RGBColor{
		uint8(packed >> 16),
		uint8(packed >> 8),
		uint8(packed),
	}
}

// R returns the red channel.
func (c RGBColor) R() uint8 { return c[0] }

// G returns the green channel.
func (c RGBColor) G() uint8 { return c[1] }

// B returns the blue channel.
func (c RGBColor) B() uint8 { return c[2] }

// Packed returns the color as a 24-bit 0xRRGGBB value.
func (c RGBColor) Packed() uint32 {
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// Scale scales every channel by brightness/255.
func (c RGBColor) Scale(brightness uint8) RGBColor {
	b := uint(brightness)
	return RGBColor{
		uint8(uint(c[0]) * b / 0xFF),
		uint8(uint(c[1]) * b / 0xFF),
		uint8(uint(c[2]) * b / 0xFF),
	}
}

// String returns the color as #rrggbb.
func (c RGBColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// MarshalText implements encoding.TextMarshaler.
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts #rrggbb and
// the #rgb shorthand.
func (c *RGBColor) UnmarshalText(text []byte) error {
	col, err := colorful.Hex(string(text))
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	r, g, b := col.RGB255()
	*c = RGBColor{r, g, b}
	return nil
}
