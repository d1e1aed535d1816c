package collector

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/fakeyudi/recall/internal/config"
)

// Constructor builds a configured Collector from its settings.
type Constructor func(settings Settings) (Collector, error)

var registry = map[string]Constructor{}

// Register adds a collector constructor under the given source type.
func Register(sourceType string, ctor Constructor) {
	registry[sourceType] = ctor
}

// Lookup returns the constructor registered for sourceType.
func Lookup(sourceType string) (Constructor, error) {
	ctor, ok := registry[sourceType]
	if !ok {
		return nil, fmt.Errorf("unknown collector type '%s'", sourceType)
	}
	return ctor, nil
}

// Types returns the registered source types, sorted.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig builds a collector for every enabled source, in declaration
// order. Unknown types and constructor failures are skipped and reported
// as warnings.
func FromConfig(sources []config.SourceConfig) ([]Collector, []string) {
	var (
		collectors []Collector
		warnings   []string
	)
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		ctor, err := Lookup(src.Type)
		if err != nil {
			slog.Debug("skipping source", "id", src.Label(), "err", err)
			warnings = append(warnings, fmt.Sprintf("Unknown collector type '%s'", src.Type))
			continue
		}
		c, err := ctor(Settings(src.Config))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Skipping %s source %q: %v", src.Type, src.Label(), err))
			continue
		}
		collectors = append(collectors, c)
	}
	return collectors, warnings
}
