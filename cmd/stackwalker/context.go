package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stackwalker/internal/config"
	"stackwalker/internal/engine"
	"stackwalker/internal/journal"
	"stackwalker/internal/logging"
)

type commandContext struct {
	configFlag     *string
	logLevelFlag   *string
	matchScopeFlag *string
	jsonFlag       *bool
	tagOverrides   *tagFlag

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, matchScopeFlag *string, jsonFlag *bool, tagOverrides *tagFlag) *commandContext {
	return &commandContext{
		configFlag:     configFlag,
		logLevelFlag:   logLevelFlag,
		matchScopeFlag: matchScopeFlag,
		jsonFlag:       jsonFlag,
		tagOverrides:   tagOverrides,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if c.matchScopeFlag != nil && strings.TrimSpace(*c.matchScopeFlag) != "" {
			cfg.Scan.MatchScope = strings.ToLower(strings.TrimSpace(*c.matchScopeFlag))
		}
		if c.tagOverrides != nil && len(*c.tagOverrides) > 0 {
			cfg.Tags = append([]config.Tag(nil), (*c.tagOverrides)...)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the run logger once and prunes expired log files.
func (c *commandContext) ensureLogger(stderr io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, stderr)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, "")
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// newEngine builds an engine for cmd. When withJournal is set and journaling
// is enabled the move journal is attached; the returned close function
// releases it.
func (c *commandContext) newEngine(cmd *cobra.Command, withJournal bool, opts ...engine.Option) (*engine.Engine, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	closer := func() {}
	base := []engine.Option{engine.WithLogger(logger)}
	if withJournal && cfg.Move.Journal {
		store, err := journal.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		base = append(base, engine.WithJournal(store))
		closer = func() { _ = store.Close() }
	}
	eng, err := engine.New(cfg, append(base, opts...)...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return eng, closer, nil
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
