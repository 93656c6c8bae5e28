package wordclock

import "sort"

// Layout looks up which segments spell a time. It is built from the layout
// table in the configuration.
type Layout struct {
	always       []int
	hours        [12][]int
	minutes      [12][]int
	dots         []int
	nextHourFrom int
}

// NewLayout resolves the segment names of cfg.Layout into segment indices.
// The configuration must be valid.
func NewLayout(cfg *Config) *Layout {
	index := make(map[string]int, len(cfg.Segments))
	for i, seg := range cfg.Segments {
		index[seg.Name] = i
	}

	resolve := func(names []string) []int {
		indices := make([]int, 0, len(names))
		for _, name := range names {
			if i, ok := index[name]; ok {
				indices = append(indices, i)
			}
		}
		return indices
	}

	l := &Layout{
		always:       resolve(cfg.Layout.Always),
		dots:         resolve(cfg.Layout.Dots),
		nextHourFrom: cfg.Layout.NextHourFrom,
	}
	for i := 0; i < 12 && i < len(cfg.Layout.Hours); i++ {
		l.hours[i] = resolve(cfg.Layout.Hours[i])
	}
	for i := 0; i < 12 && i < len(cfg.Layout.Minutes); i++ {
		l.minutes[i] = resolve(cfg.Layout.Minutes[i])
	}
	return l
}

// Lit returns the sorted indices of the segments spelling hour:minute.
func (l *Layout) Lit(hour, minute int) []int {
	hour = ((hour % 24) + 24) % 24
	minute = ((minute % 60) + 60) % 60

	if minute >= l.nextHourFrom {
		hour++
	}

	var lit []int
	lit = append(lit, l.always...)
	lit = append(lit, l.hours[hour%12]...)
	lit = append(lit, l.minutes[minute/5]...)

	dots := minute % 5
	if dots > len(l.dots) {
		dots = len(l.dots)
	}
	lit = append(lit, l.dots[:dots]...)

	return dedup(lit)
}

// Dots returns the indices of all minute dot segments.
func (l *Layout) Dots() []int {
	return append([]int(nil), l.dots...)
}

func dedup(indices []int) []int {
	sort.Ints(indices)
	out := indices[:0]
	for i, v := range indices {
		if i > 0 && v == indices[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
