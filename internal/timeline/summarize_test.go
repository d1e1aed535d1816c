package timeline

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/recall/internal/event"
)

var base = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// makeTime returns base shifted by minutes and seconds.
func makeTime(minutes, seconds int) time.Time {
	return base.Add(time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second)
}

func ev(ts time.Time, source, description, url string) event.Event {
	return event.Event{Timestamp: ts, Source: source, Description: description, URL: url}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); len(got) != 0 {
		t.Errorf("Summarize(nil) = %v, want empty", got)
	}
	if got := Summarize([]event.Event{}); len(got) != 0 {
		t.Errorf("Summarize([]) = %v, want empty", got)
	}
}

func TestSummarizeSingleEvent(t *testing.T) {
	e := ev(makeTime(10, 0), "Firefox", "Example.com", "https://example.com")
	got := Summarize([]event.Event{e})
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	want := e
	want.DurationMinutes = 1
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestSummarizeScenario(t *testing.T) {
	events := []event.Event{
		ev(makeTime(10, 0), "S", "D", ""),
		ev(makeTime(12, 0), "S", "D", ""),
		ev(makeTime(19, 0), "F", "D2", ""),
	}
	got := Summarize(events)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(got), got)
	}
	if got[0].DurationMinutes != 2 || !got[0].Timestamp.Equal(makeTime(10, 0)) {
		t.Errorf("first group = %+v, want start 09:10 duration 2", got[0])
	}
	if got[1].DurationMinutes != 1 || got[1].Source != "F" {
		t.Errorf("second group = %+v, want source F duration 1", got[1])
	}
}

func TestSummarizeChainsOnPreviousEvent(t *testing.T) {
	events := []event.Event{
		ev(makeTime(0, 0), "S", "D", "u"),
		ev(makeTime(4, 0), "S", "D", "u"),
		ev(makeTime(8, 0), "S", "D", "u"),
	}
	got := Summarize(events)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].DurationMinutes != 8 {
		t.Errorf("duration = %d, want 8", got[0].DurationMinutes)
	}
}

func TestSummarizeSubMinuteGroup(t *testing.T) {
	got := Summarize([]event.Event{
		ev(makeTime(0, 0), "Slack", "Message", ""),
		ev(makeTime(0, 10), "Slack", "Message", ""),
	})
	if len(got) != 1 || got[0].DurationMinutes != 1 {
		t.Errorf("got %+v, want one event of 1 minute", got)
	}
}

func TestSummarizeDurationIsFloored(t *testing.T) {
	got := Summarize([]event.Event{
		ev(makeTime(0, 0), "S", "D", ""),
		ev(makeTime(2, 59), "S", "D", ""),
	})
	if len(got) != 1 || got[0].DurationMinutes != 2 {
		t.Errorf("got %+v, want one event of 2 minutes", got)
	}
}

func TestSummarizeBreaks(t *testing.T) {
	first := ev(makeTime(0, 0), "S", "D", "u")
	cases := []struct {
		name string
		next event.Event
	}{
		{"gap of exactly five minutes", ev(makeTime(5, 0), "S", "D", "u")},
		{"gap over five minutes", ev(makeTime(7, 0), "S", "D", "u")},
		{"different source", ev(makeTime(1, 0), "T", "D", "u")},
		{"different description", ev(makeTime(1, 0), "S", "d", "u")},
		{"different url", ev(makeTime(1, 0), "S", "D", "v")},
		{"url missing on one side", ev(makeTime(1, 0), "S", "D", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize([]event.Event{first, tc.next})
			if len(got) != 2 {
				t.Fatalf("got %d events, want 2", len(got))
			}
		})
	}
}

func TestSummarizeJoinsJustUnderThreshold(t *testing.T) {
	got := Summarize([]event.Event{
		ev(makeTime(0, 0), "S", "D", ""),
		ev(makeTime(0, 0).Add(GapThreshold-time.Nanosecond), "S", "D", ""),
	})
	if len(got) != 1 || got[0].DurationMinutes != 4 {
		t.Errorf("got %+v, want one event of 4 minutes", got)
	}
}

func TestSummarizeDoesNotModifyInput(t *testing.T) {
	in := []event.Event{
		ev(makeTime(0, 0), "S", "D", ""),
		ev(makeTime(1, 0), "S", "D", ""),
	}
	Summarize(in)
	for i, e := range in {
		if e.DurationMinutes != 0 {
			t.Errorf("input event %d was modified: %+v", i, e)
		}
	}
}

// drawSortedEvents produces events in timestamp order drawn from a small
// alphabet so that runs actually form.
func drawSortedEvents(t *rapid.T) []event.Event {
	n := rapid.IntRange(0, 30).Draw(t, "n")
	offset := 0
	events := make([]event.Event, n)
	for i := range events {
		offset += rapid.IntRange(0, 420).Draw(t, fmt.Sprintf("gap%d", i))
		events[i] = event.Event{
			Timestamp:   base.Add(time.Duration(offset) * time.Second),
			Source:      rapid.SampledFrom([]string{"Firefox", "Slack"}).Draw(t, "source"),
			Description: rapid.SampledFrom([]string{"a", "b"}).Draw(t, "description"),
			URL:         rapid.SampledFrom([]string{"", "https://x"}).Draw(t, "url"),
		}
	}
	return events
}

// Feature: recall, Property: grouping partitions the input into maximal runs
// of the same activity.
func TestGroupingPartitionsInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := drawSortedEvents(t)
		groups := group(events)

		var flat []event.Event
		for gi, g := range groups {
			if len(g) == 0 {
				t.Fatalf("group %d is empty", gi)
			}
			for i := 1; i < len(g); i++ {
				if !sameActivity(g[i-1], g[i]) {
					t.Fatalf("group %d: members %d and %d are not the same activity", gi, i-1, i)
				}
			}
			if gi > 0 {
				prev := groups[gi-1]
				if sameActivity(prev[len(prev)-1], g[0]) {
					t.Fatalf("groups %d and %d should have been merged", gi-1, gi)
				}
			}
			flat = append(flat, g...)
		}
		if len(flat) != len(events) {
			t.Fatalf("groups hold %d events, input has %d", len(flat), len(events))
		}
		for i := range events {
			if flat[i] != events[i] {
				t.Fatalf("event %d reordered or changed", i)
			}
		}
	})
}

// Feature: recall, Property: every summarized event starts its group and
// carries the floored span in minutes, at least 1.
func TestSummarizedEventsMatchGroups(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := drawSortedEvents(t)
		groups := group(events)
		got := Summarize(events)

		if len(got) != len(groups) {
			t.Fatalf("got %d summarized events for %d groups", len(got), len(groups))
		}
		for i, g := range groups {
			s := got[i]
			first, last := g[0], g[len(g)-1]
			if !s.Timestamp.Equal(first.Timestamp) || s.Source != first.Source ||
				s.Description != first.Description || s.URL != first.URL {
				t.Fatalf("summary %d = %+v does not match group start %+v", i, s, first)
			}
			want := int(last.Timestamp.Sub(first.Timestamp).Seconds()) / 60
			if want < 1 {
				want = 1
			}
			if s.DurationMinutes != want {
				t.Fatalf("summary %d duration = %d, want %d", i, s.DurationMinutes, want)
			}
			if i > 0 && got[i-1].Timestamp.After(s.Timestamp) {
				t.Fatalf("summaries out of order at %d", i)
			}
		}
	})
}
