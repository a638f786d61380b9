package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var matchScopeFlag string
	var jsonFlag bool
	var tagOverrides tagFlag

	ctx := newCommandContext(&configFlag, &logLevelFlag, &matchScopeFlag, &jsonFlag, &tagOverrides)

	rootCmd := &cobra.Command{
		Use:           "stackwalker",
		Short:         "Check and organize tagged microscopy image stacks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	flags.StringVar(&matchScopeFlag, "match-scope", "", "Override scan.match_scope (path, or name to re-scan an organized tree)")
	flags.BoolVar(&jsonFlag, "json", false, "Write machine-readable JSON to stdout")
	flags.Var(&tagOverrides, "tag", "Use tag name=marker for this run instead of the configured tags (repeatable, outermost first)")

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newMoveCommand(ctx))
	rootCmd.AddCommand(newTagsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
