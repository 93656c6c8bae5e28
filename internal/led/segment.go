package led

// Segment is a contiguous range [Start, End) of lights forming one word or
// marker on the display. Indices for which Skip returns true are physically
// unpopulated and never written.
type Segment struct {
	Name  string
	Start int
	End   int
	Skip  func(int) bool
}

// NewSegment creates a segment over [start, end) inside a strip of numLEDs
// lights. The range is swapped if reversed and clamped to the strip. skip may
// be nil.
func NewSegment(name string, start, end, numLEDs int, skip func(int) bool) Segment {
	start, end = clampRange(start, end, numLEDs)
	return Segment{
		Name:  name,
		Start: start,
		End:   end,
		Skip:  skip,
	}
}

// Len returns the number of indices in the segment, including skipped ones.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Contains returns true if i lies within the segment.
func (s Segment) Contains(i int) bool {
	return i >= s.Start && i < s.End
}

// Overlaps returns true if the two segments share at least one index.
func (s Segment) Overlaps(other Segment) bool {
	return s.Start < other.End && other.Start < s.End
}

// Paint sets every populated light of the segment to c.
func (s Segment) Paint(bus Bus, c RGBColor) {
	for i := s.Start; i < s.End; i++ {
		if s.Skip != nil && s.Skip(i) {
			continue
		}
		bus.SetPixelColor(i, c)
	}
}

// SkipIndices returns a skip predicate matching any of the given indices.
func SkipIndices(indices ...int) func(int) bool {
	if len(indices) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	return func(i int) bool {
		_, ok := set[i]
		return ok
	}
}
