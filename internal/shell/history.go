package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// archiveLayout names rotated logs: <path>.<YYYYMMDDTHHMMSS>.zst
const archiveLayout = "20060102T150405"

// naiveLayout matches timestamps without a zone, which are read as local time.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Entry is one recorded command.
type Entry struct {
	Time    time.Time
	Command string
}

// DefaultLogPath returns $RECALL_SHELL_LOG or ~/.recall_shell_history.log.
func DefaultLogPath() (string, error) {
	if p := os.Getenv("RECALL_SHELL_LOG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".recall_shell_history.log"), nil
}

// ParseLine splits "<ISO-8601 timestamp> <command>". It reports false for
// lines without both parts or with an unreadable timestamp.
func ParseLine(line string) (Entry, bool) {
	stamp, cmd, ok := strings.Cut(strings.TrimRight(line, "\r\n"), " ")
	cmd = strings.TrimSpace(cmd)
	if !ok || cmd == "" {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		ts, err = time.ParseInLocation(naiveLayout, stamp, time.Local)
		if err != nil {
			return Entry{}, false
		}
	}
	return Entry{Time: ts, Command: cmd}, true
}

func scan(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		e, ok := ParseLine(sc.Text())
		if !ok {
			slog.Debug("skipping malformed history line", "line", line)
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// Archives lists the rotated archives of path, oldest first.
func Archives(path string) ([]string, error) {
	matches, err := filepath.Glob(path + ".*.zst")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func readArchive(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	return scan(dec)
}

// ReadLog returns the entries of every archive of path followed by the live
// log. The error wraps fs.ErrNotExist only when neither exists.
func ReadLog(path string) ([]Entry, error) {
	archives, err := Archives(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, a := range archives {
		got, err := readArchive(a)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", a, err)
		}
		entries = append(entries, got...)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && len(archives) > 0 {
			return entries, nil
		}
		return nil, err
	}
	defer f.Close()

	live, err := scan(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return append(entries, live...), nil
}

// Rotate compresses the live log into <path>.<stamp>.zst and truncates it.
// It returns the archive path, or "" when there was nothing to rotate.
func Rotate(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer src.Close()

	dest := path + "." + now.UTC().Format(archiveLayout) + ".zst"
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}
	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		os.Remove(dest)
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	if err := out.Sync(); err != nil {
		return "", err
	}

	if err := os.Truncate(path, 0); err != nil {
		return "", fmt.Errorf("truncate log: %w", err)
	}
	return dest, nil
}
