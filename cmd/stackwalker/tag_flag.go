package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"stackwalker/internal/config"
)

var _ pflag.Value = (*tagFlag)(nil)

// tagFlag collects repeated --tag name=marker values in order.
type tagFlag []config.Tag

func (f *tagFlag) String() string {
	if f == nil || len(*f) == 0 {
		return ""
	}
	parts := make([]string, len(*f))
	for i, tag := range *f {
		parts[i] = tag.Name + "=" + tag.Marker
	}
	return strings.Join(parts, ",")
}

func (f *tagFlag) Set(value string) error {
	name, marker, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || marker == "" {
		return fmt.Errorf("expected name=marker, got %q", value)
	}
	*f = append(*f, config.Tag{Name: name, Marker: marker})
	return nil
}

func (f *tagFlag) Type() string {
	return "name=marker"
}
