package model

import (
	"fmt"
	"time"
)

// GridStep is the base slot granularity in minutes. All slot boundaries and
// range edges must be whole multiples of it.
const GridStep = 30

const minutesPerDay = 24 * 60

// TimeRange is a half-open [StartMin, EndMin) window within one day.
type TimeRange struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

// Validate checks grid alignment and ordering of the range edges.
func (r TimeRange) Validate() error {
	if r.StartMin < 0 || r.EndMin > minutesPerDay {
		return fmt.Errorf("time range %s-%s outside of day", ClockFromMinutes(r.StartMin), ClockFromMinutes(r.EndMin))
	}
	if r.StartMin%GridStep != 0 || r.EndMin%GridStep != 0 {
		return fmt.Errorf("time range %s-%s not aligned to %d-minute grid", ClockFromMinutes(r.StartMin), ClockFromMinutes(r.EndMin), GridStep)
	}
	if r.StartMin >= r.EndMin {
		return fmt.Errorf("time range start %s not before end %s", ClockFromMinutes(r.StartMin), ClockFromMinutes(r.EndMin))
	}
	return nil
}

// Enumerate returns every grid boundary t with StartMin <= t < EndMin.
func (r TimeRange) Enumerate() []int {
	var mins []int
	for t := r.StartMin; t < r.EndMin; t += GridStep {
		mins = append(mins, t)
	}
	return mins
}

// MinutesFromClock parses "HH:MM" into minutes from midnight.
func MinutesFromClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return h*60 + m, nil
}

// ClockFromMinutes formats minutes from midnight as "HH:MM".
func ClockFromMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
