package collector

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/shell"
)

// Shell reads the timestamped command log written by the shell plugin.
type Shell struct {
	path string
}

func init() {
	Register("shell", func(s Settings) (Collector, error) {
		return NewShell(s)
	})
}

// NewShell builds a Shell collector reading the "path" setting, or the
// default log location.
func NewShell(s Settings) (*Shell, error) {
	path := s.Get("path")
	if path == "" {
		p, err := shell.DefaultLogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Shell{path: path}, nil
}

func (s *Shell) Name() string { return "Shell" }

// Collect returns the commands run inside window. A missing log is logged
// and yields no events.
func (s *Shell) Collect(ctx context.Context, window event.Window) ([]event.Event, error) {
	entries, err := shell.ReadLog(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("shell history log not found", "path", s.path)
			return nil, nil
		}
		return nil, err
	}

	var events []event.Event
	for _, e := range entries {
		if !window.Contains(e.Time) {
			continue
		}
		events = append(events, event.Event{
			Timestamp:   e.Time,
			Source:      s.Name(),
			Description: e.Command,
		})
	}
	return events, ctx.Err()
}
