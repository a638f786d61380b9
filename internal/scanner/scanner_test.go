package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"

	"stackwalker/internal/filerecord"
	"stackwalker/internal/scanner"
	"stackwalker/internal/tags"
	"stackwalker/internal/testsupport"
)

func timeChannelSet(t *testing.T) tags.Set {
	t.Helper()
	reg, err := tags.NewRegistry(
		tags.Definition{Name: "time", Marker: "_t", Enabled: true},
		tags.Definition{Name: "channel", Marker: "_c", Enabled: true},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	set, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return set
}

func populate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testsupport.Grid(t, root,
		"embryo_t1_c1.tif", "embryo_t1_c2.tif", "embryo_t2_c1.tif", "embryo_t2_c2.tif",
		"sub/larva_t1_c1.tif",
		"notes.txt",
		"embryo_t3.tif",
		".hidden_t1_c1.tif",
		".cache/embryo_t9_c9.tif",
	)
	return root
}

func TestScanGroupsAndCountsInvalid(t *testing.T) {
	root := populate(t)
	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{
		Recursive:  true,
		Workers:    4,
		SkipHidden: true,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.DataSets) != 2 {
		t.Fatalf("expected 2 data sets, got %v", len(result.DataSets))
	}
	if result.DataSets["embryo"].Len() != 4 {
		t.Fatalf("expected 4 embryo members, got %d", result.DataSets["embryo"].Len())
	}
	if result.DataSets[filepath.Join("sub", "larva")].Len() != 1 {
		t.Fatal("expected nested data set sub/larva")
	}
	if result.InvalidCount() != 2 {
		t.Fatalf("expected 2 invalid files, got %+v", result.Invalid)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 hidden file skipped, got %d", result.Skipped)
	}
	var perr *filerecord.ParseError
	if !errors.As(result.Invalid[0].Err, &perr) {
		t.Fatalf("expected ParseError, got %T", result.Invalid[0].Err)
	}
	members := result.DataSets["embryo"].Members
	for i := 1; i < len(members); i++ {
		if members[i-1].Comparable >= members[i].Comparable {
			t.Fatalf("members not sorted: %q before %q", members[i-1].Comparable, members[i].Comparable)
		}
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := populate(t)
	set := timeChannelSet(t)
	opts := scanner.Options{Recursive: true, Workers: 8, SkipHidden: true}

	first, err := scanner.Scan(context.Background(), root, set, opts)
	if err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	second, err := scanner.Scan(context.Background(), root, set, opts)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if !reflect.DeepEqual(first.DataSets, second.DataSets) {
		t.Fatal("data sets differ between identical scans")
	}
	if first.InvalidCount() != second.InvalidCount() {
		t.Fatalf("invalid counts differ: %d vs %d", first.InvalidCount(), second.InvalidCount())
	}
}

func TestScanNonRecursive(t *testing.T) {
	root := populate(t)
	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{Workers: 1, SkipHidden: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.DataSets) != 1 || result.DataSets["embryo"] == nil {
		t.Fatalf("expected only the top-level data set, got %v", result.DataSets)
	}
}

func TestScanFilters(t *testing.T) {
	root := populate(t)
	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{
		Recursive:  true,
		Workers:    2,
		Extensions: []string{".txt"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.DataSets) != 0 || result.InvalidCount() != 1 {
		t.Fatalf("expected only notes.txt to be parsed, got %d sets %d invalid", len(result.DataSets), result.InvalidCount())
	}
	if result.Skipped != 8 {
		t.Fatalf("expected 8 skipped, got %d", result.Skipped)
	}

	withHidden, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{Recursive: true, Workers: 2})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := withHidden.DataSets[".hidden"]; !ok {
		t.Fatalf("expected hidden file to be parsed when not skipped, got %v", withHidden.DataSets)
	}
}

func TestScanRootInaccessible(t *testing.T) {
	set := timeChannelSet(t)
	_, err := scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), set, scanner.Options{})
	if !errors.Is(err, scanner.ErrRootInaccessible) {
		t.Fatalf("expected ErrRootInaccessible, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "plain.tif")
	testsupport.Touch(t, file)
	if _, err := scanner.Scan(context.Background(), file, set, scanner.Options{}); !errors.Is(err, scanner.ErrRootInaccessible) {
		t.Fatalf("expected ErrRootInaccessible for file root, got %v", err)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	root := populate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := scanner.Scan(ctx, root, timeChannelSet(t), scanner.Options{Recursive: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanReportsProgress(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		testsupport.Touch(t, filepath.Join(root, fmt.Sprintf("s_t%d_c0.tif", i)))
	}
	var calls, last atomic.Int64
	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{
		Workers: 4,
		Progress: func(done, total int) {
			calls.Add(1)
			last.Store(int64(done))
			if total != 20 {
				t.Errorf("total = %d", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if calls.Load() != 20 || last.Load() != 20 {
		t.Fatalf("progress calls=%d last=%d", calls.Load(), last.Load())
	}
	if result.DataSets["s"].Ranges["time"].Max != 19 {
		t.Fatalf("unexpected range %+v", result.DataSets["s"].Ranges["time"])
	}
}

func TestScanDanglingLinkIsInvalid(t *testing.T) {
	root := t.TempDir()
	testsupport.Grid(t, root, "embryo_t1_c1.tif", "embryo_t1_c2.tif")
	dangling := filepath.Join(root, "embryo_t2_c1.tif")
	if err := os.Symlink(filepath.Join(root, "gone.tif"), dangling); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{Recursive: true, Workers: 2})
	if err != nil {
		t.Fatalf("one dangling link must not abort the scan: %v", err)
	}
	if result.InvalidCount() != 1 || filepath.Base(result.Invalid[0].Path) != filepath.Base(dangling) {
		t.Fatalf("expected the link to be the only invalid file, got %+v", result.Invalid)
	}
	if !errors.Is(result.Invalid[0].Err, filerecord.ErrUnresolvedPath) || filerecord.IsFatal(result.Invalid[0].Err) {
		t.Fatalf("unexpected invalid error %v", result.Invalid[0].Err)
	}
	if ds := result.DataSets["embryo"]; ds == nil || ds.Len() != 2 {
		t.Fatalf("expected the two real files in embryo, got %+v", result.DataSets)
	}
}

func TestScanCollapsesSymlinkAliases(t *testing.T) {
	root := t.TempDir()
	paths := testsupport.Grid(t, root, "embryo_t1_c1.tif", "embryo_t1_c2.tif")
	if err := os.Symlink(paths[0], filepath.Join(root, "alias_link.tif")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	result, err := scanner.Scan(context.Background(), root, timeChannelSet(t), scanner.Options{Recursive: true, Workers: 2})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	ds := result.DataSets["embryo"]
	if ds == nil || ds.Len() != 2 || len(result.Records) != 2 {
		t.Fatalf("expected the alias to collapse into its target, got %+v", result.DataSets)
	}
	if result.Skipped != 1 || result.InvalidCount() != 0 {
		t.Fatalf("expected the alias counted as skipped, got skipped=%d invalid=%d", result.Skipped, result.InvalidCount())
	}
	if ds.Members[0].Path == ds.Members[1].Path {
		t.Fatalf("members share a path: %s", ds.Members[0].Path)
	}
}
