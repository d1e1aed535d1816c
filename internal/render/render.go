// Package render turns a summarized timeline into console text, Markdown
// or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fakeyudi/recall/internal/event"
)

// Timeline is one day's summarized activity.
type Timeline struct {
	Date   time.Time
	Events []event.Event
}

// Renderer serializes a Timeline to bytes.
type Renderer interface {
	Render(t *Timeline) ([]byte, error)
}

// Formats lists the accepted --format values.
var Formats = []string{"console", "markdown", "json"}

// ForFormat returns the renderer for name. interactive only affects the
// console format.
func ForFormat(name string, interactive bool) (Renderer, error) {
	switch name {
	case "", "console":
		return &ConsoleRenderer{Interactive: interactive}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (expected console, markdown or json)", name)
}

// JSONRenderer renders a Timeline as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(t *Timeline) ([]byte, error) {
	events := t.Events
	if events == nil {
		events = []event.Event{}
	}
	out, err := json.MarshalIndent(struct {
		Date   string        `json:"date"`
		Events []event.Event `json:"events"`
	}{t.Date.Format(time.DateOnly), events}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// durationSuffix is " (N min)" for events spanning more than a minute.
func durationSuffix(e event.Event) string {
	if e.DurationMinutes > 1 {
		return fmt.Sprintf(" (%d min)", e.DurationMinutes)
	}
	return ""
}
