package led

import "math"

// SmoothStep maps step i of n into [min, max] along the cubic smooth-step
// curve t²(3-2t) where t = i/n. i is clamped to [0, n]. For n <= 0 the
// transition is considered finished and max is returned.
func SmoothStep(i, n int, min, max float64) float64 {
	if n <= 0 {
		return max
	}
	switch {
	case i <= 0:
		return min
	case i >= n:
		return max
	}

	t := float64(i) / float64(n)
	return min + (max-min)*t*t*(3-2*t)
}

// Shift returns the color at step i of n on the way from one color to
// another, easing each channel with SmoothStep and rounding to the nearest
// integer. Shift(0, n, from, to) == from and Shift(n, n, from, to) == to.
func Shift(i, n int, from, to RGBColor) RGBColor {
	s := SmoothStep(i, n, 0, 1)

	var c RGBColor
	for ch := range c {
		old := float64(from[ch])
		v := math.Round(old + s*(float64(to[ch])-old))
		c[ch] = uint8(math.Max(0, math.Min(0xFF, v)))
	}
	return c
}
