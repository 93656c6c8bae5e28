package display

import "fmt"

const (
	// BrightnessLow is the night brightness, about 1/8.
	BrightnessLow uint8 = 0x20
	// BrightnessHigh is full brightness.
	BrightnessHigh uint8 = 0xFF
)

// NightSchedule decides the global brightness from the hour of day. Night
// covers hours in [Start, End), wrapping past midnight when Start > End.
type NightSchedule struct {
	Start int
	End   int
	Low   uint8
	High  uint8
}

// DefaultNightSchedule dims the display from 22:00 until 08:00.
func DefaultNightSchedule() NightSchedule {
	return NightSchedule{
		Start: 22,
		End:   8,
		Low:   BrightnessLow,
		High:  BrightnessHigh,
	}
}

// Validate validates the schedule.
func (n NightSchedule) Validate() error {
	if n.Start < 0 || n.Start > 23 {
		return fmt.Errorf("night start hour %d out of range", n.Start)
	}
	if n.End < 0 || n.End > 23 {
		return fmt.Errorf("night end hour %d out of range", n.End)
	}
	return nil
}

// IsNight returns true if the given hour is within the night.
func (n NightSchedule) IsNight(hour int) bool {
	hour = ((hour % 24) + 24) % 24
	if n.Start <= n.End {
		return hour >= n.Start && hour < n.End
	}
	return hour >= n.Start || hour < n.End
}

// Brightness returns the brightness for the given hour.
func (n NightSchedule) Brightness(hour int) uint8 {
	if n.IsNight(hour) {
		return n.Low
	}
	return n.High
}
