package hierarchy_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"stackwalker/internal/dataset"
	"stackwalker/internal/filerecord"
	"stackwalker/internal/hierarchy"
	"stackwalker/internal/tags"
)

func timeChannelSet(t *testing.T) tags.Set {
	t.Helper()
	reg, err := tags.NewRegistry(
		tags.Definition{Name: "time", Marker: "_t", Enabled: true},
		tags.Definition{Name: "channel", Marker: "_c", Enabled: true},
		tags.Definition{Name: "z", Marker: "_z", Enabled: false},
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

func rec(name string, tv, tw, cv, cw int) *filerecord.Record {
	return &filerecord.Record{
		Path:       "/src/" + name,
		Name:       name,
		Comparable: name,
		DataSet:    "cell",
		Values:     map[string]int{"time": tv, "channel": cv},
		Digits:     map[string]int{"time": tw, "channel": cw},
	}
}

func TestPlanBuildsPaddedHierarchy(t *testing.T) {
	set := timeChannelSet(t)
	target := t.TempDir()
	sets := dataset.Aggregate([]*filerecord.Record{
		rec("cell_t9_c1.tif", 9, 1, 1, 1),
		rec("cell_t010_c2.tif", 10, 3, 2, 1),
	})

	plan, err := hierarchy.Plan(sets["cell"], set, target)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", plan.Len())
	}
	want := filepath.Join(target, "_t009", "_c1", "cell_t9_c1.tif")
	if plan.Entries[0].Destination != want {
		t.Fatalf("destination = %q, want %q", plan.Entries[0].Destination, want)
	}
	if plan.Entries[1].Destination != filepath.Join(target, "_t010", "_c2", "cell_t010_c2.tif") {
		t.Fatalf("unexpected destination %q", plan.Entries[1].Destination)
	}
	if plan.Entries[0].Source != "/src/cell_t9_c1.tif" {
		t.Fatalf("unexpected source %q", plan.Entries[0].Source)
	}
	if !reflect.DeepEqual(plan.Tags, []string{"time", "channel"}) {
		t.Fatalf("unexpected tags %v", plan.Tags)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	set := timeChannelSet(t)
	sets := dataset.Aggregate([]*filerecord.Record{
		rec("cell_t1_c1.tif", 1, 1, 1, 1),
		rec("cell_t2_c1.tif", 2, 1, 1, 1),
	})
	first, err := hierarchy.Plan(sets["cell"], set, "/target")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := hierarchy.Plan(sets["cell"], set, "/target")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ:\n%+v\n%+v", first, second)
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	set := timeChannelSet(t)
	if _, err := hierarchy.Plan(nil, set, "/target"); err == nil {
		t.Fatal("expected error for nil data set")
	}
	ds := &dataset.DataSet{Name: "cell"}
	if _, err := hierarchy.Plan(ds, nil, "/target"); !errors.Is(err, tags.ErrNoEnabledDefinitions) {
		t.Fatalf("expected ErrNoEnabledDefinitions, got %v", err)
	}
	if _, err := hierarchy.Plan(ds, set, "  "); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestFolderName(t *testing.T) {
	cases := map[string]string{
		hierarchy.FolderName("_t", 3, 3):  "_t003",
		hierarchy.FolderName("_c", 12, 1): "_c12",
		hierarchy.FolderName("_z", 0, 0):  "_z0",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("FolderName = %q, want %q", got, want)
		}
	}
}
