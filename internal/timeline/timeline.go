// Package timeline turns gathered events into the ordered, summarized
// sequence that is shown to the user.
package timeline

import (
	"context"
	"errors"
	"slices"

	"github.com/fakeyudi/recall/internal/collector"
	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/gather"
)

// ErrNoActivity is returned by Build when no collector produced an event.
var ErrNoActivity = errors.New("no activity found")

// Build gathers events from collectors for window, orders them by time and
// summarizes them. Collector failures only show up as notices on sink.
func Build(ctx context.Context, collectors []collector.Collector, window event.Window, sink gather.Sink) ([]event.Event, error) {
	events := gather.Gather(ctx, collectors, window, sink)
	if len(events) == 0 {
		return nil, ErrNoActivity
	}
	Sort(events)
	return Summarize(events), nil
}

// Sort orders events by timestamp, oldest first. Equal timestamps keep
// their relative order.
func Sort(events []event.Event) {
	slices.SortStableFunc(events, func(a, b event.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
