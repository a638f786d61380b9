package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stackwalker/internal/tags"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Show and edit the tag definitions stored in the config file",
	}

	tagsCmd.AddCommand(newTagsListCommand(ctx))
	tagsCmd.AddCommand(newTagsAddCommand(ctx))
	tagsCmd.AddCommand(newTagsEditCommand(ctx, "remove", "Delete a tag definition", func(reg *tags.Registry, name string) error {
		return reg.Remove(name)
	}))
	tagsCmd.AddCommand(newTagsEditCommand(ctx, "enable", "Enable a tag definition", func(reg *tags.Registry, name string) error {
		return reg.SetEnabled(name, true)
	}))
	tagsCmd.AddCommand(newTagsEditCommand(ctx, "disable", "Disable a tag definition", func(reg *tags.Registry, name string) error {
		return reg.SetEnabled(name, false)
	}))
	tagsCmd.AddCommand(newTagsEditCommand(ctx, "toggle", "Flip the enabled flag of a tag definition", func(reg *tags.Registry, name string) error {
		return reg.Toggle(name)
	}))
	tagsCmd.AddCommand(newTagsMoveCommand(ctx))
	return tagsCmd
}

func newTagsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tag definitions with their nesting levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			defs := reg.Definitions()
			if ctx.jsonOutput() {
				return writeJSON(cmd, defs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTags(defs))
			return nil
		},
	}
}

func renderTags(defs []tags.Definition) string {
	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		level := "-"
		if def.Level != tags.NoLevel {
			level = strconv.Itoa(def.Level)
		}
		rows = append(rows, []string{level, def.Name, def.Marker, yesNo(def.Enabled)})
	}
	return renderTable("", []string{"Level", "Name", "Marker", "Enabled"}, rows, []columnAlignment{alignRight})
}

// editTags applies fn to the configured registry and saves the result back
// to the config file.
func editTags(cmd *cobra.Command, ctx *commandContext, fn func(*tags.Registry) error) error {
	if ctx.tagOverrides != nil && len(*ctx.tagOverrides) > 0 {
		return errors.New("--tag overrides cannot be combined with tag edits")
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	if _, err := reg.Snapshot(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	cfg.SetTags(reg.Definitions())
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	if err := cfg.Save(ctx.configPath); err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, reg.Definitions())
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %s\n", ctx.configPath)
	fmt.Fprintln(out, renderTags(reg.Definitions()))
	return nil
}

func newTagsEditCommand(ctx *commandContext, use, short string, fn func(*tags.Registry, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editTags(cmd, ctx, func(reg *tags.Registry) error {
				return fn(reg, args[0])
			})
		},
	}
}

func newTagsAddCommand(ctx *commandContext) *cobra.Command {
	var disabled bool
	var position int

	cmd := &cobra.Command{
		Use:   "add <name> <marker>",
		Short: "Add a tag definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editTags(cmd, ctx, func(reg *tags.Registry) error {
				if err := reg.Add(tags.Definition{Name: args[0], Marker: args[1], Enabled: !disabled}); err != nil {
					return err
				}
				if cmd.Flags().Changed("position") {
					return reg.Move(args[0], position)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Add the tag disabled")
	cmd.Flags().IntVar(&position, "position", 0, "List position (0 = outermost); appended when omitted")
	return cmd
}

func newTagsMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <name> <position>",
		Short: "Reorder a tag definition (0 = outermost)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}
			return editTags(cmd, ctx, func(reg *tags.Registry) error {
				return reg.Move(args[0], position)
			})
		},
	}
}
