package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stackwalker/internal/dataset"
	"stackwalker/internal/engine"
	"stackwalker/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var dataSetName string
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <root>",
		Short: "Report missing and duplicate tag combinations per data set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScan(cmd, ctx, args[0], resolveRecursive(cmd, ctx, recursive), false)
			if err != nil {
				return err
			}
			defer run.close()

			sets, err := engine.SelectDataSets(run.result, dataSetName)
			if err != nil {
				return err
			}
			reports := make([]dataset.Report, 0, len(sets))
			inconsistent := 0
			for _, ds := range sets {
				report := run.engine.CheckConsistency(ds)
				if !report.Consistent {
					inconsistent++
				}
				reports = append(reports, report)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, reports); err != nil {
					return err
				}
			} else {
				renderReports(cmd, reports, run.result.InvalidCount())
			}
			if strict && inconsistent > 0 {
				return services.Wrap(services.ErrValidation, "check", "", fmt.Sprintf("%d of %d data sets inconsistent", inconsistent, len(reports)), nil)
			}
			return nil
		},
	}

	addRecursiveFlag(cmd, &recursive)
	cmd.Flags().StringVar(&dataSetName, "data-set", "", "Only check the named data set")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any data set is inconsistent")
	return cmd
}

func renderReports(cmd *cobra.Command, reports []dataset.Report, invalid int) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	printLines(out, renderSectionHeader("Consistency", colorize)...)
	if len(reports) == 0 {
		fmt.Fprintln(out, "No data sets found")
	}
	for _, report := range reports {
		label := dataSetLabel(report.DataSet)
		if report.Consistent {
			fmt.Fprintln(out, renderStatusLine(label, statusOK, fmt.Sprintf("%d of %d combinations", report.Observed, report.Expected), colorize))
			continue
		}
		msg := fmt.Sprintf("%d missing, %d duplicated (%d of %d combinations)",
			report.MissingCount(), len(report.Duplicates), report.Observed, report.Expected)
		fmt.Fprintln(out, renderStatusLine(label, statusWarn, msg, colorize))
		if len(report.Missing) > 0 {
			cells := make([]string, len(report.Missing))
			for i, tuple := range report.Missing {
				cells[i] = tuple.String()
			}
			line := fmt.Sprintf("%s  missing %s: %s", statusIndent, strings.Join(report.Tags, ","), strings.Join(cells, " "))
			if report.Truncated {
				line += fmt.Sprintf(" ... (%d more)", report.MissingCount()-uint64(len(report.Missing)))
			}
			fmt.Fprintln(out, line)
		}
		for _, dup := range report.Duplicates {
			fmt.Fprintf(out, "%s  duplicate %s: %s\n", statusIndent, dup.Tuple.String(), strings.Join(dup.Paths, ", "))
		}
	}
	if invalid > 0 {
		fmt.Fprintln(out, renderStatusLine("Invalid files", statusInfo, fmt.Sprintf("%d excluded", invalid), colorize))
	}
}
