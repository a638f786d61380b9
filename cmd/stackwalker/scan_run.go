package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stackwalker/internal/dataset"
	"stackwalker/internal/engine"
	"stackwalker/internal/scanner"
	"stackwalker/internal/tags"
)

// scanRun holds an engine and the scan it produced for one command.
type scanRun struct {
	engine *engine.Engine
	result *scanner.Result
	close  func()
}

// addRecursiveFlag registers --recursive; the config value applies unless
// the flag is given.
func addRecursiveFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVarP(target, "recursive", "r", true, "Descend into sub-directories (default from scan.recursive)")
}

func resolveRecursive(cmd *cobra.Command, ctx *commandContext, flagValue bool) bool {
	if cmd.Flags().Changed("recursive") {
		return flagValue
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return flagValue
	}
	return cfg.Scan.Recursive
}

func runScan(cmd *cobra.Command, ctx *commandContext, root string, recursive, withJournal bool, opts ...engine.Option) (*scanRun, error) {
	progress := newProgressReporter(cmd.ErrOrStderr(), "Scanning", !ctx.jsonOutput() && shouldColorize(cmd.ErrOrStderr()))
	opts = append([]engine.Option{engine.WithScanProgress(progress.update)}, opts...)
	eng, closer, err := ctx.newEngine(cmd, withJournal, opts...)
	if err != nil {
		return nil, err
	}
	result, err := eng.Scan(cmd.Context(), root, recursive)
	progress.finish()
	if err != nil {
		closer()
		return nil, err
	}
	return &scanRun{engine: eng, result: result, close: closer}, nil
}

func describeTags(set tags.Set) string {
	parts := make([]string, len(set))
	for i, def := range set {
		parts[i] = fmt.Sprintf("%s (%s)", def.Name, def.Marker)
	}
	return strings.Join(parts, " > ")
}

func formatRange(r dataset.Range) string {
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func dataSetLabel(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}
