package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stackwalker/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect journaled move runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func withJournal(ctx *commandContext, fn func(*journal.Store) error) error {
	store, err := ctx.openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent move runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No move runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						dataSetLabel(run.DataSet),
						strconv.Itoa(run.Moved),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.Cancelled),
						humanize.Bytes(uint64(max(run.Bytes, 0))),
						run.TargetRoot,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("",
					[]string{"Run", "Started", "Data set", "Moved", "Failed", "Cancelled", "Size", "Target"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show every entry of a move run (id prefixes accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Data set: %s\n", dataSetLabel(run.DataSet))
				fmt.Fprintf(out, "Source:   %s\n", run.SourceRoot)
				fmt.Fprintf(out, "Target:   %s\n", run.TargetRoot)
				fmt.Fprintf(out, "Duration: %s\n", run.Duration())
				fmt.Fprintf(out, "Outcome:  %d moved, %d failed, %d cancelled\n", run.Moved, run.Failed, run.Cancelled)
				rows := make([][]string, 0, len(run.Entries))
				for _, entry := range run.Entries {
					rows = append(rows, []string{strconv.Itoa(entry.Seq), string(entry.Outcome), entry.Source, entry.Destination, entry.Reason})
				}
				fmt.Fprintln(out, renderTable("", []string{"#", "Outcome", "Source", "Destination", "Reason"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
