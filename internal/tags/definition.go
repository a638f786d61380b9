package tags

import (
	"errors"
	"fmt"
	"strings"

	"stackwalker/internal/textutil"
)

var (
	ErrDuplicateDefinition  = errors.New("duplicate tag definition")
	ErrUnknownDefinition    = errors.New("unknown tag definition")
	ErrInvalidDefinition    = errors.New("invalid tag definition")
	ErrNoEnabledDefinitions = errors.New("no enabled tag definitions")
)

// NoLevel is the level reported for disabled definitions.
const NoLevel = -1

// Definition describes one tag: the marker that precedes its value in a file
// name and whether it participates in parsing.
type Definition struct {
	Name    string `json:"name"`
	Marker  string `json:"marker"`
	Enabled bool   `json:"enabled"`
	// Level is the nesting order among enabled definitions. It is filled in
	// by AssignLevels and is NoLevel for disabled definitions.
	Level int `json:"level"`
}

// Label returns a display form of the definition name.
func (d Definition) Label() string {
	return textutil.DisplayLabel(d.Name)
}

func (d Definition) String() string {
	state := "disabled"
	if d.Enabled {
		state = fmt.Sprintf("level %d", d.Level)
	}
	return fmt.Sprintf("%s(%q, %s)", d.Name, d.Marker, state)
}

func normalizeDefinition(def Definition) (Definition, error) {
	def.Name = strings.TrimSpace(def.Name)
	def.Marker = textutil.NormalizeNFC(def.Marker)
	if def.Name == "" {
		return def, fmt.Errorf("%w: name is empty", ErrInvalidDefinition)
	}
	if def.Marker == "" {
		return def, fmt.Errorf("%w: %s: marker is empty", ErrInvalidDefinition, def.Name)
	}
	if strings.ContainsAny(def.Marker, "/\\") {
		return def, fmt.Errorf("%w: %s: marker %q contains a path separator", ErrInvalidDefinition, def.Name, def.Marker)
	}
	def.Level = NoLevel
	return def, nil
}

// AssignLevels returns a copy of defs with levels derived from list order:
// enabled definitions are ranked 0..n-1, disabled ones get NoLevel.
func AssignLevels(defs []Definition) []Definition {
	out := make([]Definition, len(defs))
	level := 0
	for i, def := range defs {
		if def.Enabled {
			def.Level = level
			level++
		} else {
			def.Level = NoLevel
		}
		out[i] = def
	}
	return out
}

// EnabledOnly returns the enabled definitions of defs in level order.
func EnabledOnly(defs []Definition) []Definition {
	leveled := AssignLevels(defs)
	out := make([]Definition, 0, len(leveled))
	for _, def := range leveled {
		if def.Enabled {
			out = append(out, def)
		}
	}
	return out
}
