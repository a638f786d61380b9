package tags

import (
	"fmt"
	"strings"
)

// Registry is the ordered list of tag definitions.
type Registry struct {
	defs []Definition
}

// NewRegistry builds a registry from defs in the given order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{}
	for _, def := range defs {
		if err := r.Add(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Definitions returns every definition in order with levels assigned.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	return AssignLevels(r.defs)
}

// Enabled returns the enabled definitions ordered by level.
func (r *Registry) Enabled() []Definition {
	if r == nil {
		return nil
	}
	return EnabledOnly(r.defs)
}

// EnabledCount reports how many definitions are enabled.
func (r *Registry) EnabledCount() int {
	count := 0
	if r == nil {
		return count
	}
	for _, def := range r.defs {
		if def.Enabled {
			count++
		}
	}
	return count
}

// AtLevel returns the definition at level. With enabledOnly the level is the
// dense rank among enabled definitions; otherwise it is the list position.
func (r *Registry) AtLevel(enabledOnly bool, level int) (Definition, bool) {
	if r == nil || level < 0 {
		return Definition{}, false
	}
	list := r.Definitions()
	if enabledOnly {
		list = r.Enabled()
	}
	if level >= len(list) {
		return Definition{}, false
	}
	return list[level], true
}

// Lookup finds a definition by name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	idx := r.index(name)
	if idx < 0 {
		return Definition{}, false
	}
	return r.Definitions()[idx], true
}

// Add appends def. Names must be unique.
func (r *Registry) Add(def Definition) error {
	normalized, err := normalizeDefinition(def)
	if err != nil {
		return err
	}
	if r.index(normalized.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateDefinition, normalized.Name)
	}
	r.defs = append(r.defs, normalized)
	return nil
}

// Remove deletes the named definition.
func (r *Registry) Remove(name string) error {
	idx := r.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDefinition, name)
	}
	r.defs = append(r.defs[:idx], r.defs[idx+1:]...)
	return nil
}

// SetEnabled enables or disables the named definition.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	idx := r.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDefinition, name)
	}
	r.defs[idx].Enabled = enabled
	return nil
}

// Toggle flips the enabled flag of the named definition.
func (r *Registry) Toggle(name string) error {
	idx := r.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDefinition, name)
	}
	r.defs[idx].Enabled = !r.defs[idx].Enabled
	return nil
}

// Move relocates the named definition to position (clamped to the list).
func (r *Registry) Move(name string, position int) error {
	idx := r.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDefinition, name)
	}
	if position < 0 {
		position = 0
	}
	if position >= len(r.defs) {
		position = len(r.defs) - 1
	}
	def := r.defs[idx]
	rest := append(append([]Definition{}, r.defs[:idx]...), r.defs[idx+1:]...)
	out := make([]Definition, 0, len(r.defs))
	out = append(out, rest[:position]...)
	out = append(out, def)
	out = append(out, rest[position:]...)
	r.defs = out
	return nil
}

// Snapshot captures the enabled definitions for one operation. It fails with
// ErrNoEnabledDefinitions when nothing is enabled.
func (r *Registry) Snapshot() (Set, error) {
	enabled := r.Enabled()
	if len(enabled) == 0 {
		return nil, ErrNoEnabledDefinitions
	}
	return Set(enabled), nil
}

func (r *Registry) index(name string) int {
	if r == nil {
		return -1
	}
	name = strings.TrimSpace(name)
	for i, def := range r.defs {
		if def.Name == name {
			return i
		}
	}
	return -1
}
