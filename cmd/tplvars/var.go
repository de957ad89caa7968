package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/spf13/cobra"
)

var varListFlags struct {
	filter string
	sort   string
}

var optionFlags struct {
	label string
}

var varCmd = &cobra.Command{
	Use:     "var",
	Aliases: []string{"vars", "v"},
	Short:   "Inspect and configure template variables",
}

var varListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variables with their mode, default and sync group",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runVarList),
}

var varShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one variable's configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(runVarShow),
}

var varModeCmd = &cobra.Command{
	Use:   "mode NAME text|dropdown",
	Short: "Switch a variable between free text and dropdown",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		mode, err := workspace.ParseMode(args[1])
		if err != nil {
			return err
		}
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.SetMode(args[0], mode)
		})
	}),
}

var varDefaultCmd = &cobra.Command{
	Use:   "default NAME VALUE",
	Short: "Set a variable's default value",
	Long: `Set the value substituted for NAME when rendering.

For dropdown variables VALUE must be one of the option values. Synced
dropdowns pick the option with the same label.`,
	Args: cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		changed, err := a.eng.SetDefault(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if len(changed) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", theme.Current().S().Title.Render("Synced:"), strings.Join(changed, ", "))
		}
		return showVariable(cmd.OutOrStdout(), a.eng.Snapshot(), args[0])
	}),
}

var varOptionCmd = &cobra.Command{
	Use:   "option",
	Short: "Manage dropdown options",
}

var varOptionAddCmd = &cobra.Command{
	Use:   "add NAME VALUE",
	Short: "Add an option to a dropdown",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.AddOption(args[0], optionFlags.label, args[1])
		})
	}),
}

var varOptionEditCmd = &cobra.Command{
	Use:   "edit NAME VALUE NEW_VALUE",
	Short: "Change an option's value and label",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.EditOption(args[0], args[1], optionFlags.label, args[2])
		})
	}),
}

var varOptionRemoveCmd = &cobra.Command{
	Use:   "remove NAME VALUE",
	Short: "Remove an option from a dropdown",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.RemoveOption(args[0], args[1])
		})
	}),
}

var varOptionMoveCmd = &cobra.Command{
	Use:   "move NAME VALUE POSITION",
	Short: "Move an option to a zero-based position",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], err)
		}
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.MoveOption(args[0], args[1], to)
		})
	}),
}

var varSyncCmd = &cobra.Command{
	Use:   "sync NAME OTHER",
	Short: "Sync two dropdowns so selecting a label in one selects it in the other",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.Link(args[0], args[1], time.Now())
		})
	}),
}

var varUnsyncCmd = &cobra.Command{
	Use:   "unsync NAME OTHER",
	Short: "Remove the sync link between two dropdowns",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return updateAndShow(ctx, cmd, a, args[0], func(s *workspace.State) error {
			return s.Unlink(args[0], args[1], time.Now())
		})
	}),
}

var varResetSyncCmd = &cobra.Command{
	Use:   "reset-sync NAME|GROUP_KEY",
	Short: "Dissolve a sync group",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		return a.eng.Update(ctx, func(s *workspace.State) error {
			key := args[0]
			if _, ok := s.Configs[key]; ok {
				key = s.GroupKeyOf(key)
			}
			return s.ResetGroup(key)
		})
	}),
}

func init() {
	varListCmd.Flags().StringVar(&varListFlags.filter, "filter", workspace.FilterAll, "all, text, dropdown or a sync group key")
	varListCmd.Flags().StringVar(&varListFlags.sort, "sort", workspace.SortDefault, "default, name_asc, name_desc, group_asc or group_desc")

	varOptionAddCmd.Flags().StringVar(&optionFlags.label, "label", "", "Display label (defaults to the value)")
	varOptionEditCmd.Flags().StringVar(&optionFlags.label, "label", "", "Display label (defaults to the new value)")

	varOptionCmd.AddCommand(varOptionAddCmd, varOptionEditCmd, varOptionRemoveCmd, varOptionMoveCmd)
	varCmd.AddCommand(varListCmd, varShowCmd, varModeCmd, varDefaultCmd, varOptionCmd,
		varSyncCmd, varUnsyncCmd, varResetSyncCmd)
}

func updateAndShow(ctx context.Context, cmd *cobra.Command, a *app, name string, fn func(*workspace.State) error) error {
	if err := a.eng.Update(ctx, fn); err != nil {
		return err
	}
	return showVariable(cmd.OutOrStdout(), a.eng.Snapshot(), name)
}

func runVarList(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	s := a.eng.Snapshot()
	names, err := s.ListVariables(varListFlags.filter, varListFlags.sort)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, theme.Current().S().Muted.Render("No variables"))
		return nil
	}

	if err := printMarkdown(out, variablesTable(s, names)); err != nil {
		return err
	}
	printGroups(out, s)
	return nil
}

// variablesTable renders names as a markdown table. Display names shared
// by several variables are starred.
func variablesTable(s *workspace.State, names []string) string {
	shared := workspace.SharedDisplayNames(s.OrderedNames())

	var b strings.Builder
	b.WriteString("| Variable | Name | Mode | Default | Sync group |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, n := range names {
		c := s.Configs[n]
		display := workspace.DisplayName(n)
		if shared[n] {
			display += " \\*"
		}
		group := ""
		if g := s.SyncGroups[s.GroupKeyOf(n)]; g != nil {
			group = g.Name
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", display, cell(n), c.Mode, cell(c.Default), group)
	}
	if len(shared) > 0 {
		b.WriteString("\n\\* the same name is used by more than one variable\n")
	}
	return b.String()
}

// printGroups prints each sync group as a colour chip with its members.
func printGroups(w io.Writer, s *workspace.State) {
	keys := make([]string, 0, len(s.SyncGroups))
	for k := range s.SyncGroups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Compare(s.SyncGroups[a].CreatedAt, s.SyncGroups[b].CreatedAt)
	})

	t := theme.Current()
	for _, k := range keys {
		g := s.SyncGroups[k]
		fmt.Fprintf(w, "%s %s\n", t.GroupChip(g.Name, g.Color), strings.ReplaceAll(k, ",", ", "))
	}
}

func runVarShow(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	return showVariable(cmd.OutOrStdout(), a.eng.Snapshot(), args[0])
}

func showVariable(w io.Writer, s *workspace.State, name string) error {
	c, err := s.Config(name)
	if err != nil {
		return err
	}
	st := theme.Current().S()

	badge := st.TextBadge.Render(string(c.Mode))
	if c.Mode == workspace.ModeDropdown {
		badge = st.DropdownBadge.Render(string(c.Mode))
	}
	fmt.Fprintf(w, "%s %s\n", st.Name.Render(name), badge)
	fmt.Fprintf(w, "%s %s\n", st.Muted.Render("default:"), c.Default)

	if key := s.GroupKeyOf(name); key != "" {
		label := key
		if g := s.SyncGroups[key]; g != nil {
			label = theme.Current().GroupChip(g.Name, g.Color)
		}
		fmt.Fprintf(w, "%s %s %s\n", st.Muted.Render("synced:"), label, strings.Join(c.SyncWith, ", "))
	}

	if c.Mode != workspace.ModeDropdown || len(c.Options) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("| # | Label | Value |\n|---|---|---|\n")
	for i, o := range c.Options {
		label := o.Name
		if o.Value == c.Default {
			label += " (default)"
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i, cell(label), cell(o.Value))
	}
	return printMarkdown(w, b.String())
}
