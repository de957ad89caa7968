package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/tplvars/internal/prompt"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Answer a pending rename question",
	Long: `When one variable disappears from the template and another appears in
the same edit, tplvars asks whether it was renamed. Accepting keeps the old
configuration under the new name; rejecting starts the new name fresh.

Without a subcommand the question is shown interactively.`,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if a.eng.PendingRename() == nil {
			fmt.Fprintln(cmd.OutOrStdout(), theme.Current().S().Muted.Render("No rename is pending"))
			return nil
		}
		return askRename(ctx, cmd, a)
	}),
}

var renameAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Keep the old configuration under the new name",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(resolveRename(true)),
}

var renameRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Drop the old configuration and start the new name fresh",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(resolveRename(false)),
}

func init() {
	renameCmd.AddCommand(renameAcceptCmd)
	renameCmd.AddCommand(renameRejectCmd)
}

func resolveRename(accept bool) func(context.Context, *cobra.Command, []string, *app) error {
	return func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.eng.ResolveRename(ctx, accept)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}
}

// askRename shows the interactive prompt for the pending rename, or explains
// how to answer it when there is no terminal.
func askRename(ctx context.Context, cmd *cobra.Command, a *app) error {
	p := a.eng.PendingRename()
	if p == nil {
		return nil
	}
	if !isInteractive(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), theme.Current().S().Muted.Render("Run 'tplvars rename accept' or 'tplvars rename reject' to answer"))
		return nil
	}

	decision, err := prompt.Ask(*p, os.Stdin, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	switch decision {
	case prompt.Accept:
		return resolveRename(true)(ctx, cmd, nil, a)
	case prompt.Reject:
		return resolveRename(false)(ctx, cmd, nil, a)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), theme.Current().S().Muted.Render("Rename left pending"))
		return nil
	}
}
