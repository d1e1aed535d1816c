package collector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fakeyudi/recall/internal/event"
)

// Collector gathers one source's activity for a time window.
type Collector interface {
	// Name returns a stable, human-readable identifier such as "Firefox".
	Name() string

	// Collect returns every event from this source whose timestamp lies in
	// window. An empty result is not an error. Records that cannot be
	// normalized are skipped rather than failing the whole call.
	Collect(ctx context.Context, window event.Window) ([]event.Event, error)
}

// ErrMissingSetting is returned by constructors when a required setting is
// absent from both the source config and the environment.
var ErrMissingSetting = errors.New("missing required setting")

// Settings holds the adapter-specific key/value settings of one source.
type Settings map[string]string

// Get returns the value for key, then the first non-empty environment
// variable in envs, then "".
func (s Settings) Get(key string, envs ...string) string {
	if v := s[key]; v != "" {
		return v
	}
	for _, name := range envs {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// GetOr is Get with a fallback value.
func (s Settings) GetOr(key, fallback string, envs ...string) string {
	if v := s.Get(key, envs...); v != "" {
		return v
	}
	return fallback
}

// Require is Get that fails with ErrMissingSetting when nothing is found.
func (s Settings) Require(key string, envs ...string) (string, error) {
	v := s.Get(key, envs...)
	if v == "" {
		if len(envs) > 0 {
			return "", fmt.Errorf("%w: %s (or $%s)", ErrMissingSetting, key, envs[0])
		}
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	return v, nil
}

// filterWindow drops events outside window, keeping order.
func filterWindow(events []event.Event, window event.Window) []event.Event {
	out := events[:0]
	for _, e := range events {
		if window.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}
