package utils

import "time"

const (
	// DateLayout is the calendar date format used by events and memories.
	DateLayout = "2006-01-02"
	// ClockLayout is the time-of-day format used by event start and end times.
	ClockLayout = "15:04"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock returns the current UTC time.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// DateOf formats t as a calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockOf formats t as a time of day.
func ClockOf(t time.Time) string {
	return t.Format(ClockLayout)
}
