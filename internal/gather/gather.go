// Package gather runs every collector concurrently against one window and
// merges whatever they return. A failing collector is reported, never
// escalated.
package gather

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/recall/internal/collector"
	"github.com/fakeyudi/recall/internal/event"
)

// Notice is the outcome of one collector's call.
type Notice struct {
	Collector string
	Count     int   // events returned; zero on failure
	Err       error // nil on success
	Elapsed   time.Duration
}

// OK reports whether the collector succeeded.
func (n Notice) OK() bool { return n.Err == nil }

// String renders the notice the way it is shown to the user.
func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("    - ❌ Error in %s collector: %v", n.Collector, n.Err)
	}
	return fmt.Sprintf("    - ✅ %s collector found %d events.", n.Collector, n.Count)
}

// Sink receives one Notice per collector.
type Sink interface {
	Notify(n Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notice)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notice) { f(n) }

// MultiSink forwards every notice to each non-nil sink in order.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(n Notice) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}

// result is one collector's slot; each goroutine writes only its own.
type result struct {
	events  []event.Event
	err     error
	elapsed time.Duration
}

// Gather calls Collect on every collector at once and waits for all of them.
// Successful results are concatenated in collector order; failures
// contribute nothing. Notices are delivered to sink (which may be nil) in
// collector order after all calls have returned. Gather never fails: an
// empty slice is a valid result.
func Gather(ctx context.Context, collectors []collector.Collector, window event.Window, sink Sink) []event.Event {
	results := make([]result, len(collectors))

	var g errgroup.Group
	for i, c := range collectors {
		g.Go(func() error {
			results[i] = run(ctx, c, window)
			return nil
		})
	}
	_ = g.Wait()

	var all []event.Event
	for i, r := range results {
		n := Notice{Collector: collectors[i].Name(), Err: r.err, Elapsed: r.elapsed}
		if r.err == nil {
			n.Count = len(r.events)
			all = append(all, r.events...)
		}
		if sink != nil {
			sink.Notify(n)
		}
	}
	return all
}

// run invokes one collector, turning a panic into an error so a broken
// adapter cannot take the others down with it.
func run(ctx context.Context, c collector.Collector, window event.Window) (r result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r = result{err: fmt.Errorf("panic: %v", p)}
		}
		r.elapsed = time.Since(start)
	}()
	events, err := c.Collect(ctx, window)
	return result{events: events, err: err}
}
