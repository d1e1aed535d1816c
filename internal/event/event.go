// Package event defines the normalized activity record shared by every
// collector, the gatherer and the timeline.
package event

import "time"

// Event is a single timestamped piece of user activity from one source.
// Events are values: collectors create them, later stages copy them and
// never modify one in place.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	// DurationMinutes is zero on raw events. Summarized events always carry
	// a value of at least 1.
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	URL             string `json:"url,omitempty"`
}

// Summarized reports whether e was produced by the summarizer.
func (e Event) Summarized() bool {
	return e.DurationMinutes > 0
}

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Day returns the window covering the whole calendar day of t in t's
// location: midnight up to one nanosecond before the next midnight.
func Day(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}
