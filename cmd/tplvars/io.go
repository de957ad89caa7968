package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/spf13/cobra"
)

var resetFlags struct {
	yes bool
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the workspace as JSON",
	Long: `Export the template, variables, code blocks and preferences as JSON.

FILE defaults to template_config_<date>.json; use - for stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		path := workspace.ExportFileName(time.Now())
		if len(args) == 1 {
			path = args[0]
		}

		s := a.eng.Snapshot()
		if path == "-" {
			return workspace.Export(cmd.OutOrStdout(), s)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		if err := workspace.Export(f, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the workspace with an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		s, err := workspace.Import(f)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", args[0], err)
		}
		res, err := a.eng.Replace(ctx, s)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every setting and restore the sample template",
	Long: `Reset the workspace to the sample template. Variables, code blocks and sync
groups are discarded; saved tag templates are kept.`,
	Args: cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if !resetFlags.yes && !confirm(cmd, "Reset all settings?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
		res, err := a.eng.Reset(ctx)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

func init() {
	resetCmd.Flags().BoolVarP(&resetFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
