package config

import (
	"errors"
	"fmt"
	"strings"

	"stackwalker/internal/filerecord"
)

// Validate ensures the configuration is usable. It reports the first
// violation found.
func (c *Config) Validate() error {
	if err := c.validateTags(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if c.Check.MaxMissing < 0 {
		return errors.New("check.max_missing must be >= 0")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTags() error {
	seen := make(map[string]struct{}, len(c.Tags))
	enabled := 0
	for i, tag := range c.Tags {
		if tag.Name == "" {
			return fmt.Errorf("tags[%d].name must be set", i)
		}
		if _, dup := seen[tag.Name]; dup {
			return fmt.Errorf("tags[%d]: duplicate tag name %q", i, tag.Name)
		}
		seen[tag.Name] = struct{}{}
		if tag.Marker == "" {
			return fmt.Errorf("tags[%d] (%s): marker must be set", i, tag.Name)
		}
		if strings.ContainsAny(tag.Marker, "/\\") {
			return fmt.Errorf("tags[%d] (%s): marker %q must not contain a path separator", i, tag.Name, tag.Marker)
		}
		if tag.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.New("tags: at least one tag must be enabled")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 1 || c.Scan.Workers > maxWorkers {
		return fmt.Errorf("scan.workers must be between 1 and %d", maxWorkers)
	}
	if _, err := filerecord.ParseScope(c.Scan.MatchScope); err != nil {
		return fmt.Errorf("scan.match_scope: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
