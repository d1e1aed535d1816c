package collector

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fakeyudi/recall/internal/event"
)

// writePlaces creates a minimal places.sqlite with the given visits.
func writePlaces(t *testing.T, path string, visits map[time.Time][2]string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE moz_places (id INTEGER PRIMARY KEY, url TEXT NOT NULL, title TEXT)`,
		`CREATE TABLE moz_historyvisits (id INTEGER PRIMARY KEY, place_id INTEGER, visit_date INTEGER)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	id := 1
	for ts, tu := range visits {
		var title any = tu[0]
		if tu[0] == "" {
			title = nil
		}
		if _, err := db.Exec(`INSERT INTO moz_places (id, url, title) VALUES (?, ?, ?)`, id, tu[1], title); err != nil {
			t.Fatal(err)
		}
		if _, err := db.Exec(`INSERT INTO moz_historyvisits (place_id, visit_date) VALUES (?, ?)`, id, ts.UnixMicro()); err != nil {
			t.Fatal(err)
		}
		id++
	}
}

func TestFirefoxCollect(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "places.sqlite")
	day := event.Day(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	in := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	writePlaces(t, db, map[time.Time][2]string{
		in:                   {"Go docs", "https://go.dev/doc"},
		in.Add(time.Minute):  {"", "https://untitled.example"},
		in.AddDate(0, 0, -1): {"Yesterday", "https://old.example"},
	})

	f := NewFirefox(Settings{"db_path": db})
	events, err := f.Collect(context.Background(), day)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	e := events[0]
	if !e.Timestamp.Equal(in) || e.Source != "Firefox" || e.Description != "Go docs" || e.URL != "https://go.dev/doc" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestFirefoxMissingDatabase(t *testing.T) {
	f := NewFirefox(Settings{"profiles_dir": t.TempDir()})
	_, err := f.Collect(context.Background(), event.Day(time.Now()))
	if !errors.Is(err, ErrFirefoxDatabaseNotFound) {
		t.Fatalf("expected ErrFirefoxDatabaseNotFound, got %v", err)
	}
}

func TestFirefoxProfileDiscovery(t *testing.T) {
	base := t.TempDir()
	abs := t.TempDir()
	ini := `[General]
StartWithLastProfile=1

[Profile0]
Name=default-release
IsRelative=1
Path=abc.default-release

[Profile1]
Name=Nightly
IsRelative=0
Path=` + abs + `

[Profile2]
Name=broken
`
	if err := os.WriteFile(filepath.Join(base, "profiles.ini"), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	profiles, err := parseProfiles(base)
	if err != nil {
		t.Fatalf("parseProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %+v", profiles)
	}
	if profiles[0].path != filepath.Join(base, "abc.default-release") {
		t.Errorf("relative path not joined: %q", profiles[0].path)
	}

	sortProfiles(profiles)
	if profiles[0].name != "Nightly" {
		t.Errorf("nightly profile should come first, got %q", profiles[0].name)
	}

	// Only the release profile has a database, so it is chosen.
	release := filepath.Join(base, "abc.default-release")
	if err := os.MkdirAll(release, 0o755); err != nil {
		t.Fatal(err)
	}
	writePlaces(t, filepath.Join(release, "places.sqlite"), nil)

	f := NewFirefox(Settings{"profiles_dir": base})
	got, err := f.findDatabase()
	if err != nil {
		t.Fatalf("findDatabase: %v", err)
	}
	if got != filepath.Join(release, "places.sqlite") {
		t.Errorf("findDatabase = %q", got)
	}

	// Once the nightly profile has one too, it wins.
	writePlaces(t, filepath.Join(abs, "places.sqlite"), nil)
	got, err = f.findDatabase()
	if err != nil {
		t.Fatalf("findDatabase: %v", err)
	}
	if got != filepath.Join(abs, "places.sqlite") {
		t.Errorf("expected nightly database, got %q", got)
	}
}
