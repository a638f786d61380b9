package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"stackwalker/internal/tags"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
	// StateDir holds the move journal and target lock files.
	StateDir string `toml:"state_dir"`
}

// Tag is the persisted form of one tag definition. List order is nesting
// order; Enabled defaults to true when omitted.
type Tag struct {
	Name    string `toml:"name"`
	Marker  string `toml:"marker"`
	Enabled *bool  `toml:"enabled,omitempty"`
}

// IsEnabled reports whether the tag participates in parsing.
func (t Tag) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// Scan contains directory walk settings.
type Scan struct {
	Recursive  bool     `toml:"recursive"`
	Workers    int      `toml:"workers"`
	SkipHidden bool     `toml:"skip_hidden"`
	Extensions []string `toml:"extensions"`
	MatchScope string   `toml:"match_scope"`
}

// Check contains consistency check settings.
type Check struct {
	MaxMissing int `toml:"max_missing"`
}

// Move contains relocation settings.
type Move struct {
	LockTarget  bool `toml:"lock_target"`
	PruneEmpty  bool `toml:"prune_empty"`
	Journal     bool `toml:"journal"`
	CrossDevice bool `toml:"cross_device"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for stackwalker.
//
// Configuration sections:
//   - Paths: log and state directories
//   - Tags: ordered tag definitions (the registry)
//   - Scan: recursion, worker count, filters and match scope
//   - Check: consistency report limits
//   - Move: locking, journaling, cross-device and pruning behaviour
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tags    []Tag   `toml:"tags"`
	Scan    Scan    `toml:"scan"`
	Check   Check   `toml:"check"`
	Move    Move    `toml:"move"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stackwalker/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stackwalker.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir, c.LockDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the location of the move journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockDir returns the directory holding per-target lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// TagDefinitions converts the configured tags into registry definitions.
func (c *Config) TagDefinitions() []tags.Definition {
	defs := make([]tags.Definition, 0, len(c.Tags))
	for _, tag := range c.Tags {
		defs = append(defs, tags.Definition{Name: tag.Name, Marker: tag.Marker, Enabled: tag.IsEnabled()})
	}
	return defs
}

// Registry builds a tag registry from the configured tags.
func (c *Config) Registry() (*tags.Registry, error) {
	return tags.NewRegistry(c.TagDefinitions()...)
}

// SetTags replaces the configured tags with the registry's current order.
func (c *Config) SetTags(defs []tags.Definition) {
	out := make([]Tag, 0, len(defs))
	for _, def := range defs {
		out = append(out, Tag{Name: def.Name, Marker: def.Marker, Enabled: boolPtr(def.Enabled)})
	}
	c.Tags = out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Save writes c to path as TOML. The file is replaced atomically.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
