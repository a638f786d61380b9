package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stackwalker/internal/engine"
	"stackwalker/internal/filerecord"
	"stackwalker/internal/hierarchy"
	"stackwalker/internal/services"
)

type moveOutput struct {
	DataSet string             `json:"data_set"`
	Report  *engine.MoveReport `json:"report"`
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var target moveTarget
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "move <root>",
		Short: "Move files into a nested folder per tag level",
		Long: `Move files into a nested folder per tag level.

The folders are named after the tag markers (for example _t01/_c2), so a
path-scoped scan of the target finds every marker twice. Re-scan an
organized target with --match-scope name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				run, plans, err := target.plans(cmd, ctx, args[0], false)
				if err != nil {
					return err
				}
				defer run.close()
				if ctx.jsonOutput() {
					return writeJSON(cmd, plans)
				}
				renderPlans(cmd, plans)
				return nil
			}

			progress := newProgressReporter(cmd.ErrOrStderr(), "Moving", !ctx.jsonOutput() && shouldColorize(cmd.ErrOrStderr()))
			run, plans, err := target.plans(cmd, ctx, args[0], true,
				engine.WithMoveProgress(func(done, total int, _ hierarchy.Entry) { progress.update(done, total) }),
			)
			if err != nil {
				return err
			}
			defer run.close()

			outputs := make([]moveOutput, 0, len(plans))
			failed, cancelled := 0, 0
			for _, plan := range plans {
				progress = newProgressReporter(cmd.ErrOrStderr(), "Moving "+dataSetLabel(plan.DataSet), progress.enabled)
				report, err := run.engine.ExecuteMove(cmd.Context(), plan)
				progress.finish()
				if err != nil {
					return err
				}
				failed += len(report.Failed)
				cancelled += len(report.Cancelled)
				outputs = append(outputs, moveOutput{DataSet: plan.DataSet, Report: report})
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, outputs); err != nil {
					return err
				}
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				renderMoves(cmd, outputs, cfg.Scan.MatchScope)
			}
			switch {
			case cancelled > 0:
				return fmt.Errorf("move interrupted, %d entries not attempted: %w", cancelled, context.Canceled)
			case failed > 0:
				return services.Wrap(services.ErrMove, "move", "", fmt.Sprintf("%d entries failed", failed), nil)
			}
			return nil
		},
	}

	target.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without moving anything")
	return cmd
}

func renderMoves(cmd *cobra.Command, outputs []moveOutput, scope string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if len(outputs) == 0 {
		fmt.Fprintln(out, "No data sets found")
		return
	}
	printLines(out, renderSectionHeader("Move", colorize)...)
	for _, output := range outputs {
		report := output.Report
		total := len(report.Moved) + len(report.Failed) + len(report.Cancelled)
		kind := statusOK
		if !report.OK() {
			kind = statusWarn
		}
		msg := fmt.Sprintf("moved %d of %d (%s)", len(report.Moved), total, humanize.Bytes(uint64(max(report.Bytes, 0))))
		fmt.Fprintln(out, renderStatusLine(dataSetLabel(output.DataSet), kind, msg, colorize))
		if len(report.Failed) > 0 {
			rows := make([][]string, 0, len(report.Failed))
			for _, failure := range report.Failed {
				reason := ""
				if failure.Err != nil {
					reason = failure.Err.Error()
				}
				rows = append(rows, []string{failure.Entry.Source, string(failure.Reason), reason})
			}
			fmt.Fprintln(out, renderTable("Failed", []string{"Source", "Reason", "Error"}, rows, nil))
		}
		if len(report.Cancelled) > 0 {
			fmt.Fprintln(out, renderStatusLine("Cancelled", statusWarn, fmt.Sprintf("%d entries not attempted", len(report.Cancelled)), colorize))
		}
		if len(report.Pruned) > 0 {
			fmt.Fprintln(out, renderStatusLine("Pruned", statusInfo, fmt.Sprintf("%d empty directories", len(report.Pruned)), colorize))
		}
		if report.Journaled {
			fmt.Fprintf(out, "%sRun: %s\n", statusIndent, report.RunID)
		}
	}
	if scope != string(filerecord.ScopeName) && movedAny(outputs) {
		fmt.Fprintln(out, "Target folders repeat the tag markers; re-scan it with --match-scope name")
	}
}

func movedAny(outputs []moveOutput) bool {
	for _, output := range outputs {
		if len(output.Report.Moved) > 0 {
			return true
		}
	}
	return false
}
