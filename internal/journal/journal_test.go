package journal_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stackwalker/internal/journal"
	"stackwalker/internal/testsupport"
)

func sampleRun(id string, started time.Time) journal.Run {
	return journal.Run{
		ID:         id,
		DataSet:    "cell01",
		SourceRoot: "/data",
		TargetRoot: "/sorted",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Bytes:      42,
		Entries: []journal.Entry{
			{Source: "/data/a_t1.tif", Destination: "/sorted/_t1/a_t1.tif", Outcome: journal.OutcomeMoved},
			{Source: "/data/a_t2.tif", Destination: "/sorted/_t2/a_t2.tif", Outcome: journal.OutcomeFailed, Reason: "destination_conflict", Error: "exists"},
			{Source: "/data/a_t3.tif", Destination: "/sorted/_t3/a_t3.tif", Outcome: journal.OutcomeCancelled},
		},
	}
}

func TestRecordAndGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.RecordRun(ctx, sampleRun("5f0c7a52-1111-4000-8000-000000000001", started)); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	run, err := store.GetRun(ctx, "5f0c7a52")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Moved != 1 || run.Failed != 1 || run.Cancelled != 1 {
		t.Fatalf("unexpected counts %+v", run)
	}
	if !run.StartedAt.Equal(started) || run.Duration() != 2*time.Second {
		t.Fatalf("unexpected timestamps %v %v", run.StartedAt, run.Duration())
	}
	if len(run.Entries) != 3 || run.Entries[1].Reason != "destination_conflict" || run.Entries[2].Seq != 2 {
		t.Fatalf("unexpected entries %+v", run.Entries)
	}
	if run.Bytes != 42 {
		t.Fatalf("bytes = %d", run.Bytes)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaa", "bbb", "ccc"} {
		// Sub-second offsets exercise the fixed-width timestamp ordering.
		started := base.Add(time.Duration(i) * 500 * time.Millisecond)
		if err := store.RecordRun(ctx, sampleRun(id, started)); err != nil {
			t.Fatalf("RecordRun %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "ccc" || runs[2].ID != "aaa" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if runs[0].Entries != nil {
		t.Fatal("ListRuns must not load entries")
	}
	limited, err := store.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limited list: %v %d", err, len(limited))
	}
}

func TestGetRunErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"abc-1", "abc-2"} {
		if err := store.RecordRun(ctx, sampleRun(id, now)); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	if _, err := store.GetRun(ctx, "zzz"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.GetRun(ctx, "abc"); !errors.Is(err, journal.ErrAmbiguousRun) {
		t.Fatalf("expected ErrAmbiguousRun, got %v", err)
	}
	if _, err := store.GetRun(ctx, "abc-2"); err != nil {
		t.Fatalf("exact id: %v", err)
	}
}

func TestRecordRunRejectsBadInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	if err := store.RecordRun(ctx, journal.Run{}); err == nil {
		t.Fatal("expected error for empty id")
	}
	run := sampleRun("x", time.Now())
	run.Entries[0].Outcome = "lost"
	if err := store.RecordRun(ctx, run); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
	if err := store.RecordRun(ctx, sampleRun("dup", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(ctx, sampleRun("dup", time.Now())); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordRun(context.Background(), sampleRun("keep", time.Now())); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.StateDir, "journal.db")); err != nil {
		t.Fatalf("journal file missing: %v", err)
	}

	reopened := testsupport.MustOpenJournal(t, cfg)
	if _, err := reopened.GetRun(context.Background(), "keep"); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}
