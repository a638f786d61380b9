package filerecord

import (
	"strconv"
	"strings"
)

// Tuple is one coordinate in level order.
type Tuple []int

// Key returns a compact string usable as a map key.
func (t Tuple) Key() string {
	var b strings.Builder
	for i, v := range t {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Equal reports whether t and other hold the same values.
func (t Tuple) Equal(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Less orders tuples lexicographically.
func (t Tuple) Less(other Tuple) bool {
	for i := 0; i < len(t) && i < len(other); i++ {
		if t[i] != other[i] {
			return t[i] < other[i]
		}
	}
	return len(t) < len(other)
}

func (t Tuple) String() string {
	return "(" + t.Key() + ")"
}
