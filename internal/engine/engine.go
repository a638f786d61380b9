package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"stackwalker/internal/config"
	"stackwalker/internal/dataset"
	"stackwalker/internal/filerecord"
	"stackwalker/internal/hierarchy"
	"stackwalker/internal/journal"
	"stackwalker/internal/logging"
	"stackwalker/internal/scanner"
	"stackwalker/internal/services"
	"stackwalker/internal/tags"
)

// ErrUnknownDataSet is returned when a requested data set is not in a scan result.
var ErrUnknownDataSet = errors.New("unknown data set")

// Engine runs the core operations against one configuration.
type Engine struct {
	cfg          *config.Config
	set          tags.Set
	scope        filerecord.Scope
	logger       *slog.Logger
	journal      *journal.Store
	scanProgress func(done, total int)
	moveProgress func(done, total int, entry hierarchy.Entry)
	newRunID     func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithJournal records executed moves in store. The caller keeps ownership.
func WithJournal(store *journal.Store) Option {
	return func(e *Engine) { e.journal = store }
}

// WithScanProgress reports parse progress during Scan.
func WithScanProgress(fn func(done, total int)) Option {
	return func(e *Engine) { e.scanProgress = fn }
}

// WithMoveProgress reports per-entry progress during ExecuteMove.
func WithMoveProgress(fn func(done, total int, entry hierarchy.Entry)) Option {
	return func(e *Engine) { e.moveProgress = fn }
}

// New validates cfg and snapshots its enabled tags.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "init", "config is nil", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "validate config", "", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "build tag registry", "", err)
	}
	set, err := reg.Snapshot()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "snapshot tags", "", err)
	}
	scope, err := filerecord.ParseScope(cfg.Scan.MatchScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "match scope", "", err)
	}

	e := &Engine{
		cfg:      cfg,
		set:      set,
		scope:    scope,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "engine")
	return e, nil
}

// Tags returns the enabled tag definitions in level order.
func (e *Engine) Tags() tags.Set {
	out := make(tags.Set, len(e.set))
	copy(out, e.set)
	return out
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) begin(ctx context.Context, operation string) (context.Context, string) {
	id := e.newRunID()
	ctx = services.WithRunID(ctx, id)
	ctx = services.WithOperation(ctx, operation)
	return ctx, id
}

// Scan lists root and groups its valid files into data sets. Files that fail
// to parse are counted in the result; only an unreachable root or storage
// aborts the scan.
func (e *Engine) Scan(ctx context.Context, root string, recursive bool) (*scanner.Result, error) {
	ctx, _ = e.begin(ctx, "scan")
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("scan started",
		logging.String("root", root),
		logging.Bool("recursive", recursive),
		logging.Int("tags", len(e.set)),
	)

	result, err := scanner.Scan(ctx, root, e.set, scanner.Options{
		Recursive:  recursive,
		Workers:    e.cfg.Scan.Workers,
		SkipHidden: e.cfg.Scan.SkipHidden,
		Extensions: e.cfg.Scan.Extensions,
		Scope:      e.scope,
		Progress:   e.scanProgress,
		Logger:     e.logger,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, scanner.ErrRootInaccessible), filerecord.IsFatal(err):
			return nil, services.Wrap(services.ErrFatalIO, "scan", "list root", root, err)
		default:
			return nil, services.Wrap(services.ErrConfiguration, "scan", "prepare parser", root, err)
		}
	}
	return result, nil
}

// CheckConsistency compares ds against its dense grid.
func (e *Engine) CheckConsistency(ds *dataset.DataSet) dataset.Report {
	report := dataset.CheckConsistency(ds, e.set, e.cfg.Check.MaxMissing)
	if !report.Consistent {
		e.logger.Debug("data set inconsistent",
			logging.String(logging.FieldDataSet, report.DataSet),
			logging.Uint64("missing", report.MissingCount()),
			logging.Int("duplicates", len(report.Duplicates)),
			logging.String(logging.FieldEventType, "consistency_failure"),
		)
	}
	return report
}

// PlanMove computes destinations for ds below targetRoot without touching
// the filesystem.
func (e *Engine) PlanMove(ds *dataset.DataSet, targetRoot string) (*hierarchy.MovePlan, error) {
	plan, err := hierarchy.Plan(ds, e.set, targetRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "plan", "", "", err)
	}
	return plan, nil
}

// SelectDataSets returns the data sets of result in name order, or only the
// named one when name is set.
func SelectDataSets(result *scanner.Result, name string) ([]*dataset.DataSet, error) {
	if result == nil {
		return nil, nil
	}
	if name = strings.TrimSpace(name); name != "" {
		ds, ok := result.DataSets[name]
		if !ok {
			known := dataset.Names(result.DataSets)
			return nil, fmt.Errorf("%w: %q (found: %s)", ErrUnknownDataSet, name, strings.Join(known, ", "))
		}
		return []*dataset.DataSet{ds}, nil
	}
	return dataset.Sorted(result.DataSets), nil
}
