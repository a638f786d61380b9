package tags_test

import (
	"errors"
	"testing"

	"stackwalker/internal/tags"
)

func newTestRegistry(t *testing.T) *tags.Registry {
	t.Helper()
	reg, err := tags.NewRegistry(
		tags.Definition{Name: "time", Marker: "_t", Enabled: true},
		tags.Definition{Name: "channel", Marker: "_c", Enabled: true},
		tags.Definition{Name: "tile", Marker: "_tile", Enabled: false},
		tags.Definition{Name: "z", Marker: "_z", Enabled: true},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func requireLevels(t *testing.T, reg *tags.Registry, want map[string]int) {
	t.Helper()
	for _, def := range reg.Definitions() {
		expected, ok := want[def.Name]
		if !ok {
			expected = tags.NoLevel
		}
		if def.Level != expected {
			t.Fatalf("level of %s = %d, want %d (definitions %v)", def.Name, def.Level, expected, reg.Definitions())
		}
	}
}

func TestLevelsAreDenseAmongEnabled(t *testing.T) {
	reg := newTestRegistry(t)
	requireLevels(t, reg, map[string]int{"time": 0, "channel": 1, "z": 2})
	if got := reg.EnabledCount(); got != 3 {
		t.Fatalf("EnabledCount = %d, want 3", got)
	}
}

func TestToggleRederivesLevels(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Toggle("channel"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	requireLevels(t, reg, map[string]int{"time": 0, "z": 1})

	if err := reg.SetEnabled("tile", true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	requireLevels(t, reg, map[string]int{"time": 0, "tile": 1, "z": 2})
}

func TestAtLevel(t *testing.T) {
	reg := newTestRegistry(t)

	def, ok := reg.AtLevel(true, 2)
	if !ok || def.Name != "z" {
		t.Fatalf("AtLevel(true, 2) = %v %v, want z", def, ok)
	}
	def, ok = reg.AtLevel(false, 2)
	if !ok || def.Name != "tile" {
		t.Fatalf("AtLevel(false, 2) = %v %v, want tile", def, ok)
	}
	if _, ok := reg.AtLevel(true, 3); ok {
		t.Fatal("expected no enabled definition at level 3")
	}
	if _, ok := reg.AtLevel(true, -1); ok {
		t.Fatal("expected no definition at negative level")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Add(tags.Definition{Name: "time", Marker: "_T", Enabled: true})
	if !errors.Is(err, tags.ErrDuplicateDefinition) {
		t.Fatalf("expected ErrDuplicateDefinition, got %v", err)
	}
	if _, err := tags.NewRegistry(
		tags.Definition{Name: "a", Marker: "_a"},
		tags.Definition{Name: " a ", Marker: "_b"},
	); !errors.Is(err, tags.ErrDuplicateDefinition) {
		t.Fatalf("expected duplicate after trimming, got %v", err)
	}
}

func TestAddRejectsInvalidDefinitions(t *testing.T) {
	reg := newTestRegistry(t)
	cases := []tags.Definition{
		{Name: "", Marker: "_x"},
		{Name: "x", Marker: ""},
		{Name: "x", Marker: "a/b"},
	}
	for _, def := range cases {
		if err := reg.Add(def); !errors.Is(err, tags.ErrInvalidDefinition) {
			t.Fatalf("Add(%v) = %v, want ErrInvalidDefinition", def, err)
		}
	}
}

func TestRemoveAndUnknown(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Remove("time"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	requireLevels(t, reg, map[string]int{"channel": 0, "z": 1})
	if err := reg.Remove("time"); !errors.Is(err, tags.ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition, got %v", err)
	}
	if err := reg.Toggle("nope"); !errors.Is(err, tags.ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition from Toggle, got %v", err)
	}
}

func TestMoveReorders(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Move("z", 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	requireLevels(t, reg, map[string]int{"z": 0, "time": 1, "channel": 2})

	if err := reg.Move("z", 99); err != nil {
		t.Fatalf("Move clamp: %v", err)
	}
	defs := reg.Definitions()
	if defs[len(defs)-1].Name != "z" {
		t.Fatalf("expected z last, got %v", defs)
	}
}

func TestSnapshotRequiresEnabled(t *testing.T) {
	reg, err := tags.NewRegistry(tags.Definition{Name: "time", Marker: "_t"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := reg.Snapshot(); !errors.Is(err, tags.ErrNoEnabledDefinitions) {
		t.Fatalf("expected ErrNoEnabledDefinitions, got %v", err)
	}

	reg = newTestRegistry(t)
	set, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	outer, ok := set.Outermost()
	if !ok || outer.Name != "time" {
		t.Fatalf("unexpected outermost %v", outer)
	}
	// Mutating the registry afterwards must not leak into the snapshot.
	if err := reg.Toggle("time"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if set[0].Name != "time" || len(set) != 3 {
		t.Fatalf("snapshot changed after registry mutation: %v", set)
	}
}

func TestAssignLevelsIsPure(t *testing.T) {
	input := []tags.Definition{
		{Name: "a", Marker: "_a", Enabled: false},
		{Name: "b", Marker: "_b", Enabled: true},
	}
	out := tags.AssignLevels(input)
	if out[1].Level != 0 || out[0].Level != tags.NoLevel {
		t.Fatalf("unexpected levels %v", out)
	}
	if input[1].Level != 0 || input[0].Level != 0 {
		t.Fatalf("input mutated: %v", input)
	}
}
