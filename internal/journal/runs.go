package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix matches more than one run")
)

// Outcome is the recorded fate of one planned entry.
type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Entry is one journaled file.
type Entry struct {
	Seq         int     `json:"seq"`
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Outcome     Outcome `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Run is one executed move plan.
type Run struct {
	ID         string    `json:"id"`
	DataSet    string    `json:"data_set"`
	SourceRoot string    `json:"source_root"`
	TargetRoot string    `json:"target_root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Moved      int       `json:"moved"`
	Failed     int       `json:"failed"`
	Cancelled  int       `json:"cancelled"`
	Bytes      int64     `json:"bytes"`
	// Entries is only populated by GetRun.
	Entries []Entry `json:"entries,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout is fixed-width so started_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordRun stores run and its entries in one transaction. Outcome counts
// are derived from the entries.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("record run: empty run id")
	}
	run.Moved, run.Failed, run.Cancelled = 0, 0, 0
	for _, entry := range run.Entries {
		switch entry.Outcome {
		case OutcomeMoved:
			run.Moved++
		case OutcomeFailed:
			run.Failed++
		case OutcomeCancelled:
			run.Cancelled++
		default:
			return fmt.Errorf("record run %s: unknown outcome %q", run.ID, entry.Outcome)
		}
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, data_set, source_root, target_root, started_at, finished_at, moved, failed, cancelled, bytes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.DataSet, run.SourceRoot, run.TargetRoot,
			run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
			run.Moved, run.Failed, run.Cancelled, run.Bytes,
		); err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO entries (run_id, seq, source, destination, outcome, reason, error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for i, entry := range run.Entries {
			if _, err := stmt.ExecContext(ctx, run.ID, i, entry.Source, entry.Destination, string(entry.Outcome), entry.Reason, entry.Error); err != nil {
				return fmt.Errorf("insert entry %d of run %s: %w", i, run.ID, err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = `id, data_set, source_root, target_root, started_at, finished_at, moved, failed, cancelled, bytes`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run and its entries. id may be a unique prefix of a run
// id; an exact match wins over longer ids sharing the prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? ORDER BY (id = ?) DESC, id LIMIT 2`, len(id), id, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) == 1, matches[0].ID == id:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}
	run := matches[0]

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT seq, source, destination, outcome, reason, error FROM entries WHERE run_id = ? ORDER BY seq`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer entryRows.Close()
	run.Entries = []Entry{}
	for entryRows.Next() {
		var entry Entry
		var outcome string
		if err := entryRows.Scan(&entry.Seq, &entry.Source, &entry.Destination, &outcome, &entry.Reason, &entry.Error); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Outcome = Outcome(outcome)
		run.Entries = append(run.Entries, entry)
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
	)
	if err := row.Scan(&run.ID, &run.DataSet, &run.SourceRoot, &run.TargetRoot, &started, &finished,
		&run.Moved, &run.Failed, &run.Cancelled, &run.Bytes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, ErrRunNotFound
		}
		return run, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return run, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return run, fmt.Errorf("parse finished_at for run %s: %w", run.ID, err)
	}
	return run, nil
}
