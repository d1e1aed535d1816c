package collector

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fakeyudi/recall/internal/event"
)

// ErrFirefoxDatabaseNotFound is returned when no profile has a places.sqlite.
var ErrFirefoxDatabaseNotFound = errors.New("could not find a valid Firefox places.sqlite database from profiles.ini")

const historyQuery = `
SELECT h.visit_date, p.title, p.url
FROM moz_historyvisits AS h
JOIN moz_places AS p ON h.place_id = p.id
WHERE h.visit_date BETWEEN ? AND ?
AND p.title IS NOT NULL AND p.title != ''`

// Firefox reads browsing history from the local places.sqlite database.
type Firefox struct {
	profilesDirs []string
	dbPath       string
}

func init() {
	Register("firefox", func(s Settings) (Collector, error) {
		return NewFirefox(s), nil
	})
}

// NewFirefox builds a Firefox collector. The "db_path" setting names the
// database directly; "profiles_dir" replaces the per-OS search locations.
func NewFirefox(s Settings) *Firefox {
	f := &Firefox{dbPath: s.Get("db_path")}
	if dir := s.Get("profiles_dir"); dir != "" {
		f.profilesDirs = []string{dir}
	} else {
		f.profilesDirs = firefoxBaseDirs()
	}
	return f
}

func (f *Firefox) Name() string { return "Firefox" }

func firefoxBaseDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	switch runtime.GOOS {
	case "linux":
		return []string{
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
			filepath.Join(home, ".mozilla", "firefox"),
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "Firefox")}
	case "windows":
		return []string{filepath.Join(home, "AppData", "Roaming", "Mozilla", "Firefox")}
	}
	return nil
}

// profile is one [Profile*] section of profiles.ini.
type profile struct {
	name string
	path string
}

// parseProfiles reads the [Profile*] sections of a profiles.ini file.
// Sections without both Path and Name are ignored.
func parseProfiles(baseDir string) ([]profile, error) {
	fh, err := os.Open(filepath.Join(baseDir, "profiles.ini"))
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var (
		profiles  []profile
		inProfile bool
		cur       map[string]string
	)
	flush := func() {
		if !inProfile {
			return
		}
		p, name := cur["path"], cur["name"]
		if p == "" || name == "" {
			return
		}
		if cur["isrelative"] != "0" {
			p = filepath.Join(baseDir, filepath.FromSlash(p))
		}
		profiles = append(profiles, profile{name: name, path: p})
	}

	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			flush()
			section := line[1 : len(line)-1]
			inProfile = strings.HasPrefix(section, "Profile")
			cur = map[string]string{}
		case inProfile:
			k, v, ok := strings.Cut(line, "=")
			if ok {
				cur[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
			}
		}
	}
	flush()
	return profiles, sc.Err()
}

// sortProfiles orders nightly profiles first, then by name.
func sortProfiles(profiles []profile) {
	rank := func(p profile) int {
		if strings.Contains(strings.ToLower(p.name), "nightly") {
			return 0
		}
		return 1
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		ri, rj := rank(profiles[i]), rank(profiles[j])
		if ri != rj {
			return ri < rj
		}
		return profiles[i].name < profiles[j].name
	})
}

func (f *Firefox) findDatabase() (string, error) {
	if f.dbPath != "" {
		if _, err := os.Stat(f.dbPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrFirefoxDatabaseNotFound, f.dbPath)
		}
		return f.dbPath, nil
	}
	for _, dir := range f.profilesDirs {
		profiles, err := parseProfiles(dir)
		if err != nil {
			continue
		}
		sortProfiles(profiles)
		for _, p := range profiles {
			db := filepath.Join(p.path, "places.sqlite")
			if _, err := os.Stat(db); err == nil {
				return db, nil
			}
		}
	}
	return "", ErrFirefoxDatabaseNotFound
}

// Collect queries every visit inside window. Visits with no title are
// skipped.
func (f *Firefox) Collect(ctx context.Context, window event.Window) ([]event.Event, error) {
	dbPath, err := f.findDatabase()
	if err != nil {
		return nil, err
	}

	// Firefox holds a lock on the live database; immutable mode reads it anyway.
	dsn := (&url.URL{Scheme: "file", Path: dbPath, RawQuery: "mode=ro&immutable=1"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to query Firefox history: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, historyQuery, window.Start.UnixMicro(), window.End.UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("failed to query Firefox history: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			visit      int64
			title, raw string
		)
		if err := rows.Scan(&visit, &title, &raw); err != nil {
			return nil, fmt.Errorf("failed to query Firefox history: %w", err)
		}
		events = append(events, event.Event{
			Timestamp:   time.UnixMicro(visit).UTC(),
			Source:      f.Name(),
			Description: title,
			URL:         raw,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query Firefox history: %w", err)
	}
	return events, nil
}
