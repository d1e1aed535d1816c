package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SetupResult is the outcome of the interactive setup wizard.
type SetupResult struct {
	Config Config
	// PluginShell is "zsh" or "bash" when the user asked for the shell
	// plugin to be installed, "" otherwise.
	PluginShell string
}

// sourcePrompts describes each source type in the wizard.
var sourcePrompts = map[string]string{
	"firefox":  "Firefox browsing history",
	"calendar": "Google Calendar meetings",
	"gitlab":   "GitLab activity",
	"shell":    "Shell commands",
	"slack":    "Slack messages",
}

// RunSetup runs the interactive setup wizard, reading answers from r and
// writing prompts to w. If existing is non-nil it supplies the defaults
// (edit mode).
func RunSetup(r io.Reader, w io.Writer, existing *Config) (*SetupResult, error) {
	br := bufio.NewReader(r)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(w, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(w, "%s: ", prompt)
		}
		line, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		ans = strings.ToLower(ans)
		return ans == "y" || ans == "yes", nil
	}

	cfg := Defaults()
	if existing != nil {
		cfg = *existing
		cfg.Sources = append([]SourceConfig(nil), existing.Sources...)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(w, "  │     recall — source setup       │")
	fmt.Fprintln(w, "  └─────────────────────────────────┘")
	fmt.Fprintln(w)

	for _, t := range SourceTypes {
		idx := indexOfType(cfg.Sources, t)
		enabled := idx < 0 || cfg.Sources[idx].Enabled
		on, err := askBool("  Collect "+sourcePrompts[t], enabled)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			cfg.Sources = append(cfg.Sources, SourceConfig{ID: t, Type: t, Enabled: on})
		} else {
			cfg.Sources[idx].Enabled = on
		}
	}

	format, err := ask("  Output format (console/markdown/json)", cfg.Format)
	if err != nil {
		return nil, err
	}
	switch format {
	case "markdown", "json":
		cfg.Format = format
	default:
		cfg.Format = "console"
	}

	res := &SetupResult{Config: cfg}
	if i := indexOfType(cfg.Sources, "shell"); i >= 0 && cfg.Sources[i].Enabled {
		install, err := askBool("  Install the shell plugin that records commands", true)
		if err != nil {
			return nil, err
		}
		if install {
			shell, err := ask("  Shell (zsh/bash)", detectShell())
			if err != nil {
				return nil, err
			}
			res.PluginShell = shell
		}
	}

	fmt.Fprintln(w)
	return res, nil
}

func indexOfType(sources []SourceConfig, t string) int {
	for i, s := range sources {
		if s.Type == t {
			return i
		}
	}
	return -1
}

// detectShell returns the base name of the current shell.
func detectShell() string {
	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "zsh" || shell == "bash" {
		return shell
	}
	return "zsh"
}
