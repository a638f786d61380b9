package config

import "runtime"

const (
	defaultLogDir           = "~/.local/share/stackwalker/logs"
	defaultStateDir         = "~/.local/share/stackwalker"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultMatchScope       = "path"
	defaultMaxMissing       = 1000
	maxWorkers              = 64
)

// DefaultTags returns the tag list used when a configuration file defines none.
func DefaultTags() []Tag {
	return []Tag{
		{Name: "time", Marker: "_t", Enabled: boolPtr(true)},
		{Name: "channel", Marker: "_c", Enabled: boolPtr(true)},
		{Name: "z", Marker: "_z", Enabled: boolPtr(true)},
		{Name: "tile", Marker: "_tile", Enabled: boolPtr(false)},
	}
}

// Default returns a Config populated with repository defaults. Tags stay empty
// until normalize fills in DefaultTags so a file's [[tags]] list replaces
// them instead of being appended.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Scan: Scan{
			Recursive:  true,
			Workers:    defaultWorkers(),
			SkipHidden: true,
			MatchScope: defaultMatchScope,
		},
		Check: Check{
			MaxMissing: defaultMaxMissing,
		},
		Move: Move{
			LockTarget:  true,
			PruneEmpty:  false,
			Journal:     true,
			CrossDevice: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultWorkers() int {
	return min(max(runtime.NumCPU(), 1), maxWorkers)
}

func boolPtr(v bool) *bool {
	return &v
}
