package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable recall settings.
type Config struct {
	LogLevel        string         `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	Format          string         `yaml:"format,omitempty" toml:"format,omitempty"` // "console" | "markdown" | "json"
	MetricsTextfile string         `yaml:"metrics_textfile,omitempty" toml:"metrics_textfile,omitempty"`
	Sources         []SourceConfig `yaml:"sources" toml:"sources"`
}

// SourceConfig configures one collector instance.
type SourceConfig struct {
	ID      string            `yaml:"id,omitempty" toml:"id,omitempty"`
	Type    string            `yaml:"type" toml:"type"`
	Enabled bool              `yaml:"enabled" toml:"enabled"`
	Config  map[string]string `yaml:"config,omitempty" toml:"config,omitempty"`
}

// Label returns the source's ID, or its type when no ID is set.
func (s SourceConfig) Label() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Type
}

// SourceTypes lists the built-in source types in display order.
var SourceTypes = []string{"firefox", "calendar", "gitlab", "shell", "slack"}

// Defaults returns a configuration with every built-in source enabled.
func Defaults() Config {
	cfg := Config{
		LogLevel: "warn",
		Format:   "console",
	}
	for _, t := range SourceTypes {
		cfg.Sources = append(cfg.Sources, SourceConfig{ID: t, Type: t, Enabled: true})
	}
	return cfg
}

// fileNames are tried in order inside each config directory.
var fileNames = []string{"config.yaml", "config.yml", "config.toml"}

// Dir returns the recall config directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recall"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recall"), nil
}

// DefaultPath is where setup writes a new config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileNames[0]), nil
}

// candidatePaths returns every location searched by Load, in order.
func candidatePaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "recall"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "recall"))
	}
	var paths []string
	for _, d := range dirs {
		for _, name := range fileNames {
			paths = append(paths, filepath.Join(d, name))
		}
	}
	return paths
}

// Load reads the config at path. When path is empty the standard locations
// are searched and the first existing file wins. Returns *NotFoundError if
// there is no file and *ParseError if it cannot be decoded.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, p := range candidatePaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			def, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			return nil, &NotFoundError{Path: def}
		}
	}
	return loadFile(path)
}

// loadFile decodes path as TOML or YAML depending on its extension.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err = toml.Decode(string(data), &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.Format == "" {
		cfg.Format = d.Format
	}
}

// Enabled returns the enabled sources in declaration order.
func (c Config) Enabled() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Write marshals cfg to YAML (or TOML for a .toml path) and replaces path
// atomically via a temp file in the same directory.
func Write(path string, cfg Config) (err error) {
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.NewEncoder(&buf).Encode(cfg)
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "config-*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = errors.New("configuration file not found")

// NotFoundError is returned when no config file exists.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "Configuration file not found at " + e.Path
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "Error loading or parsing config file at " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
