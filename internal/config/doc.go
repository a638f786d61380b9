// Package config loads, normalizes, and validates stackwalker configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the STACKWALKER_LOG_LEVEL and STACKWALKER_STATE_DIR
// environment overrides. The ordered [[tags]] list is the persisted form of
// the tag registry; Registry converts it into the in-memory form the engine
// consumes.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
