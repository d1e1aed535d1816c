package timeline

import (
	"time"

	"github.com/fakeyudi/recall/internal/event"
)

// GapThreshold is the largest gap, exclusive, allowed between two
// consecutive events of one activity.
const GapThreshold = 5 * time.Minute

// sameActivity reports whether next continues the activity ending at prev.
func sameActivity(prev, next event.Event) bool {
	return prev.Source == next.Source &&
		prev.Description == next.Description &&
		prev.URL == next.URL &&
		next.Timestamp.Sub(prev.Timestamp) < GapThreshold
}

// group splits sorted events into runs of the same activity. Each event is
// compared with the last member of the current run, so a run can span any
// length of time as long as no single gap reaches GapThreshold.
func group(events []event.Event) [][]event.Event {
	if len(events) == 0 {
		return nil
	}
	var groups [][]event.Event
	current := []event.Event{events[0]}
	for _, e := range events[1:] {
		if sameActivity(current[len(current)-1], e) {
			current = append(current, e)
			continue
		}
		groups = append(groups, current)
		current = []event.Event{e}
	}
	return append(groups, current)
}

// collapse turns a non-empty run into one event stamped with the run's
// start. Duration is whole elapsed minutes, floored, never below 1.
func collapse(run []event.Event) event.Event {
	first, last := run[0], run[len(run)-1]
	minutes := int(last.Timestamp.Sub(first.Timestamp) / time.Minute)
	return event.Event{
		Timestamp:       first.Timestamp,
		Source:          first.Source,
		Description:     first.Description,
		URL:             first.URL,
		DurationMinutes: max(1, minutes),
	}
}

// Summarize collapses consecutive same-activity events into single entries
// with a duration. events must already be sorted by timestamp; the input is
// not modified.
func Summarize(events []event.Event) []event.Event {
	groups := group(events)
	out := make([]event.Event, 0, len(groups))
	for _, g := range groups {
		out = append(out, collapse(g))
	}
	return out
}
