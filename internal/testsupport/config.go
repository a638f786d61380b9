package testsupport

import (
	"path/filepath"
	"testing"

	"stackwalker/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Tags = config.DefaultTags()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Scan.Workers = 2
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithTags replaces the tag list; each pair is name then marker, all enabled.
func WithTags(pairs ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(pairs)%2 != 0 {
			b.t.Fatalf("WithTags needs name/marker pairs, got %d values", len(pairs))
		}
		tags := make([]config.Tag, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			tags = append(tags, config.Tag{Name: pairs[i], Marker: pairs[i+1]})
		}
		b.cfg.Tags = tags
	}
}

// WithMatchScope sets scan.match_scope.
func WithMatchScope(scope string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.MatchScope = scope
	}
}

// WithMove overrides the [move] section.
func WithMove(move config.Move) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Move = move
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
