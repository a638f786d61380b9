package engine

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"stackwalker/internal/cleanup"
	"stackwalker/internal/hierarchy"
	"stackwalker/internal/journal"
	"stackwalker/internal/logging"
	"stackwalker/internal/mover"
	"stackwalker/internal/preflight"
	"stackwalker/internal/services"
)

// MoveReport is the itemized outcome of ExecuteMove.
type MoveReport struct {
	RunID string `json:"run_id"`
	mover.Result
	Preflight preflight.Results `json:"preflight"`
	Pruned    []string          `json:"pruned,omitempty"`
	// Journaled is false when journaling is off or the record failed.
	Journaled  bool      `json:"journaled"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// OK reports whether every entry was moved.
func (r *MoveReport) OK() bool {
	return r != nil && len(r.Failed) == 0 && len(r.Cancelled) == 0
}

// ExecuteMove relocates every entry of plan. Per-entry failures and
// cancellation are reported in the MoveReport; the error is reserved for
// failed preflight checks and a locked target.
func (e *Engine) ExecuteMove(ctx context.Context, plan *hierarchy.MovePlan) (*MoveReport, error) {
	if plan == nil {
		return nil, services.Wrap(services.ErrValidation, "move", "", "plan is nil", nil)
	}
	ctx, runID := e.begin(ctx, "move")
	ctx = services.WithDataSet(ctx, plan.DataSet)
	logger := logging.WithContext(ctx, e.logger)

	report := &MoveReport{RunID: runID, StartedAt: time.Now()}
	if plan.SourceRoot != "" {
		report.Preflight = preflight.ForMove(plan.SourceRoot, plan.TargetRoot)
	} else {
		report.Preflight = preflight.Results{preflight.CheckCreatable("Target root", plan.TargetRoot)}
	}
	if err := report.Preflight.Err(); err != nil {
		logging.ErrorWithContext(logger, "move preflight failed", "move_preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the source and target directories exist and are writable"),
		)
		return report, services.Wrap(services.ErrFatalIO, "move", "preflight", "", err)
	}

	opts := mover.Options{
		CrossDevice: e.cfg.Move.CrossDevice,
		Progress:    e.moveProgress,
		Logger:      e.logger,
	}
	if e.cfg.Move.LockTarget {
		opts.LockDir = e.cfg.LockDir()
	}

	logger.Info("move started",
		logging.String("target_root", plan.TargetRoot),
		logging.Int("entries", plan.Len()),
	)
	result, err := mover.Execute(ctx, plan, opts)
	if err != nil {
		if errors.Is(err, mover.ErrTargetLocked) {
			return report, services.Wrap(services.ErrMove, "move", "lock target", plan.TargetRoot, err)
		}
		return report, services.Wrap(services.ErrFatalIO, "move", "execute", "", err)
	}
	report.Result = result
	report.FinishedAt = time.Now()

	if e.journal != nil && e.cfg.Move.Journal {
		if err := e.journal.RecordRun(context.WithoutCancel(ctx), journalRun(runID, plan, report)); err != nil {
			logging.WarnWithContext(logger, "failed to journal move run", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions and free space"),
				logging.String(logging.FieldImpact, "run missing from history"),
			)
		} else {
			report.Journaled = true
		}
	}

	if e.cfg.Move.PruneEmpty && plan.SourceRoot != "" && len(result.Moved) > 0 {
		dirs := make([]string, 0, len(result.Moved))
		for _, entry := range result.Moved {
			dirs = append(dirs, filepath.Dir(entry.Source))
		}
		report.Pruned = cleanup.PruneEmpty(plan.SourceRoot, dirs, logger).Removed
	}

	logger.Info("move finished",
		logging.Int("moved", len(result.Moved)),
		logging.Int("failed", len(result.Failed)),
		logging.Int("cancelled", len(result.Cancelled)),
		logging.Int64("bytes", result.Bytes),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
		logging.String(logging.FieldEventType, "move_complete"),
	)
	return report, nil
}

func journalRun(runID string, plan *hierarchy.MovePlan, report *MoveReport) journal.Run {
	run := journal.Run{
		ID:         runID,
		DataSet:    plan.DataSet,
		SourceRoot: plan.SourceRoot,
		TargetRoot: plan.TargetRoot,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Bytes:      report.Bytes,
	}
	// Journal entries keep plan order whatever the outcome.
	outcomes := make(map[string]journal.Entry, plan.Len())
	for _, entry := range report.Moved {
		outcomes[entry.Source] = journal.Entry{Source: entry.Source, Destination: entry.Destination, Outcome: journal.OutcomeMoved}
	}
	for _, failure := range report.Failed {
		msg := ""
		if failure.Err != nil {
			msg = failure.Err.Error()
		}
		outcomes[failure.Entry.Source] = journal.Entry{
			Source:      failure.Entry.Source,
			Destination: failure.Entry.Destination,
			Outcome:     journal.OutcomeFailed,
			Reason:      string(failure.Reason),
			Error:       msg,
		}
	}
	for _, entry := range report.Cancelled {
		outcomes[entry.Source] = journal.Entry{Source: entry.Source, Destination: entry.Destination, Outcome: journal.OutcomeCancelled}
	}
	for i, entry := range plan.Entries {
		if rec, ok := outcomes[entry.Source]; ok {
			rec.Seq = i
			run.Entries = append(run.Entries, rec)
		}
	}
	return run
}
