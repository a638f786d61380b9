package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stackwalker/internal/dataset"
	"stackwalker/internal/engine"
	"stackwalker/internal/scanner"
)

type dataSetSummary struct {
	Name   string                   `json:"name"`
	Files  int                      `json:"files"`
	Ranges map[string]dataset.Range `json:"ranges"`
}

type scanOutput struct {
	Root         string                `json:"root"`
	Tags         []string              `json:"tags"`
	DataSets     []dataSetSummary      `json:"data_sets"`
	InvalidCount int                   `json:"invalid_count"`
	Invalid      []scanner.InvalidFile `json:"invalid,omitempty"`
	Skipped      int                   `json:"skipped"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var showInvalid bool

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "List the data sets and invalid files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScan(cmd, ctx, args[0], resolveRecursive(cmd, ctx, recursive), false)
			if err != nil {
				return err
			}
			defer run.close()

			sets, _ := engine.SelectDataSets(run.result, "")
			output := scanOutput{
				Root:         run.result.Root,
				Tags:         run.engine.Tags().Names(),
				DataSets:     make([]dataSetSummary, 0, len(sets)),
				InvalidCount: run.result.InvalidCount(),
				Skipped:      run.result.Skipped,
			}
			for _, ds := range sets {
				output.DataSets = append(output.DataSets, dataSetSummary{Name: ds.Name, Files: ds.Len(), Ranges: ds.Ranges})
			}
			if showInvalid {
				output.Invalid = run.result.Invalid
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, output)
			}
			renderScan(cmd, run, output)
			return nil
		},
	}

	addRecursiveFlag(cmd, &recursive)
	cmd.Flags().BoolVar(&showInvalid, "show-invalid", false, "List every file that failed to parse")
	return cmd
}

func renderScan(cmd *cobra.Command, run *scanRun, output scanOutput) {
	out := cmd.OutOrStdout()
	set := run.engine.Tags()
	fmt.Fprintf(out, "Root: %s\n", output.Root)
	fmt.Fprintf(out, "Tags: %s\n", describeTags(set))

	if len(output.DataSets) == 0 {
		fmt.Fprintln(out, "No data sets found")
	} else {
		headers := []string{"Data set", "Files"}
		aligns := []columnAlignment{alignLeft, alignRight}
		for _, def := range set {
			headers = append(headers, def.Label())
			aligns = append(aligns, alignRight)
		}
		rows := make([][]string, 0, len(output.DataSets))
		for _, ds := range output.DataSets {
			row := []string{dataSetLabel(ds.Name), strconv.Itoa(ds.Files)}
			for _, def := range set {
				row = append(row, formatRange(ds.Ranges[def.Name]))
			}
			rows = append(rows, row)
		}
		fmt.Fprintln(out, renderTable("", headers, rows, aligns))
	}

	fmt.Fprintf(out, "Invalid files: %d\n", output.InvalidCount)
	if output.Skipped > 0 {
		fmt.Fprintf(out, "Skipped files: %d\n", output.Skipped)
	}
	if len(output.Invalid) > 0 {
		rows := make([][]string, 0, len(output.Invalid))
		for _, inv := range output.Invalid {
			reason := ""
			if inv.Err != nil {
				reason = inv.Err.Error()
			}
			rows = append(rows, []string{inv.Path, reason})
		}
		fmt.Fprintln(out, renderTable("Invalid files", []string{"Path", "Reason"}, rows, nil))
	}
}
