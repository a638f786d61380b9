package tags

// Set is an immutable, level-ordered list of enabled definitions taken from a
// registry at the start of an operation.
type Set []Definition

// Outermost returns the level-0 definition.
func (s Set) Outermost() (Definition, bool) {
	if len(s) == 0 {
		return Definition{}, false
	}
	return s[0], true
}

// Names returns the definition names in level order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, def := range s {
		names[i] = def.Name
	}
	return names
}

// Markers returns the definition markers in level order.
func (s Set) Markers() []string {
	markers := make([]string, len(s))
	for i, def := range s {
		markers[i] = def.Marker
	}
	return markers
}
