// Package logging configures the process-wide slog logger used for
// diagnostics. The timeline itself is written to stdout, never logged.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Init creates and sets the package-level default slog logger writing to w.
// When asJSON is true a JSONHandler is used (the timeline is JSON too);
// otherwise a TextHandler for human readability. Every record carries a
// fresh run id, which is returned.
func Init(w io.Writer, asJSON bool, level slog.Level) string {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	runID := uuid.NewString()
	slog.SetDefault(slog.New(handler).With("run", runID))
	return runID
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelWarn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
