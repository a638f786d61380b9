package filerecord_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stackwalker/internal/filerecord"
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

func TestParseResolvesTimeValue(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "cell01_tag_t003_c01.tif")
	testsupport.Touch(t, file)

	reg, err := tags.NewRegistry(tags.Definition{Name: "time", Marker: "_t", Enabled: true})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	set, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// "_t" also occurs in "_tag", so the whole file name is ambiguous.
	if _, err := filerecord.Parse(root, true, file, set); !errors.Is(err, filerecord.ErrTagAbsent) {
		t.Fatalf("expected ambiguous marker to be absent, got %v", err)
	}

	unique := filepath.Join(root, "cell01_t003_c01.tif")
	testsupport.Touch(t, unique)
	rec, err := filerecord.Parse(root, true, unique, set)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, ok := rec.Value("time"); !ok || v != 3 {
		t.Fatalf("time = %d %v, want 3", v, ok)
	}
	if rec.DataSet != "cell01" {
		t.Fatalf("data set = %q, want cell01", rec.DataSet)
	}
	if rec.Digits["time"] != 3 {
		t.Fatalf("digit width = %d, want 3", rec.Digits["time"])
	}
}

func TestParseExampleWithDistinctMarker(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "cell01_tag_t003_c01.tif")
	testsupport.Touch(t, file)

	reg, err := tags.NewRegistry(tags.Definition{Name: "time", Marker: "_t0", Enabled: true})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	set, _ := reg.Snapshot()
	rec, err := filerecord.Parse(root, true, file, set)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Values["time"] != 3 {
		t.Fatalf("time = %d, want 3", rec.Values["time"])
	}
	if rec.DataSet != "cell01_tag" {
		t.Fatalf("data set = %q, want cell01_tag", rec.DataSet)
	}
}

func TestParseValidity(t *testing.T) {
	set := timeChannelSet(t)
	cases := []struct {
		name    string
		file    string
		wantErr error
		time    int
		channel int
	}{
		{name: "valid", file: "embryo_t12_c2.tif", time: 12, channel: 2},
		{name: "leading zeros", file: "embryo_t0007_c00.tif", time: 7, channel: 0},
		{name: "missing channel", file: "embryo_t12.tif", wantErr: filerecord.ErrTagAbsent},
		{name: "no digits", file: "embryo_t12_cX.tif", wantErr: filerecord.ErrTagAbsent},
		{name: "duplicate marker", file: "embryo_t1_t2_c1.tif", wantErr: filerecord.ErrTagAbsent},
		{name: "missing outermost", file: "embryo_c1.tif", wantErr: filerecord.ErrMissingOutermostTag},
		{name: "overflow", file: "embryo_t99999999999999999999999_c1.tif", wantErr: filerecord.ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, tc.file)
			testsupport.Touch(t, path)

			rec, err := filerecord.Parse(root, true, path, set)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v (record %+v)", tc.wantErr, err, rec)
				}
				if rec != nil {
					t.Fatalf("expected no partial record, got %+v", rec)
				}
				var perr *filerecord.ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if rec.Values["time"] != tc.time || rec.Values["channel"] != tc.channel {
				t.Fatalf("values = %v, want time=%d channel=%d", rec.Values, tc.time, tc.channel)
			}
		})
	}
}

func TestOutOfRangeIsAlsoAbsent(t *testing.T) {
	set := timeChannelSet(t)
	root := t.TempDir()
	path := filepath.Join(root, "x_t99999999999999999999999_c1.tif")
	testsupport.Touch(t, path)
	_, err := filerecord.Parse(root, true, path, set)
	if !errors.Is(err, filerecord.ErrTagAbsent) || !errors.Is(err, filerecord.ErrOutOfRange) {
		t.Fatalf("expected absent and out-of-range, got %v", err)
	}
}

func TestParseRejectsFilesOutsideRoot(t *testing.T) {
	set := timeChannelSet(t)
	base := t.TempDir()
	root := filepath.Join(base, "data")
	sibling := filepath.Join(base, "database")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(sibling, "e_t1_c1.tif")
	testsupport.Touch(t, file)

	_, err := filerecord.Parse(root, true, file, set)
	if !errors.Is(err, filerecord.ErrNotUnderRoot) {
		t.Fatalf("expected ErrNotUnderRoot, got %v", err)
	}
	if filerecord.IsFatal(err) {
		t.Fatal("not-under-root must not be fatal")
	}
}

func TestParseNonRecursiveRejectsNestedFiles(t *testing.T) {
	set := timeChannelSet(t)
	root := t.TempDir()
	nested := filepath.Join(root, "sub", "e_t1_c1.tif")
	testsupport.Touch(t, nested)

	if _, err := filerecord.Parse(root, false, nested, set); !errors.Is(err, filerecord.ErrNestedFile) {
		t.Fatalf("expected ErrNestedFile, got %v", err)
	}
	rec, err := filerecord.Parse(root, true, nested, set)
	if err != nil {
		t.Fatalf("recursive Parse: %v", err)
	}
	if rec.DataSet != filepath.Join("sub", "e") {
		t.Fatalf("data set = %q, want sub/e", rec.DataSet)
	}
}

func TestParseMissingFileIsNotFatal(t *testing.T) {
	set := timeChannelSet(t)
	root := t.TempDir()
	cases := map[string]string{
		"removed after listing": filepath.Join(root, "gone_t1_c1.tif"),
		"dangling link":         filepath.Join(root, "link_t1_c1.tif"),
	}
	if err := os.Symlink(filepath.Join(root, "missing.tif"), cases["dangling link"]); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := filerecord.Parse(root, true, path, set)
			if !errors.Is(err, filerecord.ErrUnresolvedPath) {
				t.Fatalf("expected ErrUnresolvedPath, got %v", err)
			}
			if filerecord.IsFatal(err) {
				t.Fatalf("missing target must not be fatal: %v", err)
			}
			var perr *filerecord.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestCanonicalizeEmptyPathIsFatal(t *testing.T) {
	_, err := filerecord.Canonicalize("  ")
	if !filerecord.IsFatal(err) {
		t.Fatalf("expected ErrCanonicalPath, got %v", err)
	}
}

func TestParseResolvesSymlinkedRoot(t *testing.T) {
	set := timeChannelSet(t)
	base := t.TempDir()
	real := filepath.Join(base, "real")
	file := filepath.Join(real, "e_t4_c2.tif")
	testsupport.Touch(t, file)
	link := filepath.Join(base, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	rec, err := filerecord.Parse(link, true, filepath.Join(link, "e_t4_c2.tif"), set)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Comparable != "e_t4_c2.tif" {
		t.Fatalf("comparable = %q", rec.Comparable)
	}
}

func TestNameScopeIgnoresDirectories(t *testing.T) {
	set := timeChannelSet(t)
	root := t.TempDir()
	file := filepath.Join(root, "_t003", "_c01", "e_t003_c01.tif")
	testsupport.Touch(t, file)

	if _, err := filerecord.Parse(root, true, file, set); !errors.Is(err, filerecord.ErrTagAbsent) {
		t.Fatalf("expected path scope to see duplicate markers, got %v", err)
	}

	p, err := filerecord.NewParser(root, set, filerecord.Options{Recursive: true, Scope: filerecord.ScopeName})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	rec, err := p.Parse(file)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.DataSet != "e" || rec.Values["time"] != 3 || rec.Values["channel"] != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]filerecord.Scope{"": filerecord.ScopePath, "PATH": filerecord.ScopePath, " name ": filerecord.ScopeName} {
		got, err := filerecord.ParseScope(in)
		if err != nil || got != want {
			t.Fatalf("ParseScope(%q) = %q %v, want %q", in, got, err, want)
		}
	}
	if _, err := filerecord.ParseScope("dir"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestNewParserRequiresDefinitions(t *testing.T) {
	if _, err := filerecord.NewParser(t.TempDir(), nil, filerecord.Options{}); !errors.Is(err, tags.ErrNoEnabledDefinitions) {
		t.Fatalf("expected ErrNoEnabledDefinitions, got %v", err)
	}
}

func TestTupleOrdering(t *testing.T) {
	a := filerecord.Tuple{0, 1}
	b := filerecord.Tuple{1, 0}
	if !a.Less(b) || b.Less(a) {
		t.Fatal("unexpected tuple order")
	}
	if a.Key() != "0,1" || a.String() != "(0,1)" {
		t.Fatalf("unexpected key %q / %q", a.Key(), a.String())
	}
	if !a.Equal(filerecord.Tuple{0, 1}) || a.Equal(b) {
		t.Fatal("unexpected equality")
	}
}
