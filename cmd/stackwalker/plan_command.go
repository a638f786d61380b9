package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stackwalker/internal/config"
	"stackwalker/internal/engine"
	"stackwalker/internal/hierarchy"
)

type moveTarget struct {
	recursive   bool
	dataSetName string
	target      string
}

func (m *moveTarget) register(cmd *cobra.Command) {
	addRecursiveFlag(cmd, &m.recursive)
	cmd.Flags().StringVar(&m.dataSetName, "data-set", "", "Only handle the named data set")
	cmd.Flags().StringVarP(&m.target, "target", "t", "", "Root directory of the organized hierarchy")
	_ = cmd.MarkFlagRequired("target")
}

// plans scans root and plans every selected data set into the target.
func (m *moveTarget) plans(cmd *cobra.Command, ctx *commandContext, root string, withJournal bool, opts ...engine.Option) (*scanRun, []*hierarchy.MovePlan, error) {
	target, err := config.ExpandPath(strings.TrimSpace(m.target))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve target: %w", err)
	}
	run, err := runScan(cmd, ctx, root, resolveRecursive(cmd, ctx, m.recursive), withJournal, opts...)
	if err != nil {
		return nil, nil, err
	}
	sets, err := engine.SelectDataSets(run.result, m.dataSetName)
	if err != nil {
		run.close()
		return nil, nil, err
	}
	plans := make([]*hierarchy.MovePlan, 0, len(sets))
	for _, ds := range sets {
		plan, err := run.engine.PlanMove(ds, target)
		if err != nil {
			run.close()
			return nil, nil, err
		}
		plans = append(plans, plan)
	}
	return run, plans, nil
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var target moveTarget

	cmd := &cobra.Command{
		Use:   "plan <root>",
		Short: "Preview where each file would be moved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
		},
	}
	target.register(cmd)
	return cmd
}

func renderPlans(cmd *cobra.Command, plans []*hierarchy.MovePlan) {
	out := cmd.OutOrStdout()
	if len(plans) == 0 {
		fmt.Fprintln(out, "No data sets found")
		return
	}
	for _, plan := range plans {
		rows := make([][]string, 0, plan.Len())
		for _, entry := range plan.Entries {
			rows = append(rows, []string{relativeTo(plan.SourceRoot, entry.Source), relativeTo(plan.TargetRoot, entry.Destination)})
		}
		title := fmt.Sprintf("%s: %d files -> %s", dataSetLabel(plan.DataSet), plan.Len(), plan.TargetRoot)
		fmt.Fprintln(out, renderTable(title, []string{"Source", "Destination"}, rows, nil))
	}
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
