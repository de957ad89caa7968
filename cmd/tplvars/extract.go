package main

import (
	"context"
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"
)

var extractFlags struct {
	diff bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sync the variable registry with the template",
	Long: `Scan the template for {{variable}} placeholders and update the registry.

Duplicate placeholders are renumbered and reserved instance names without a
live instance are disabled; both rewrite the template file. When exactly one
variable appeared and one disappeared you are asked whether it was a rename.`,
	RunE: runWithApp(runExtract),
}

func init() {
	extractCmd.Flags().BoolVar(&extractFlags.diff, "diff", false, "Show a diff of any rewrites made to the template")
}

func runExtract(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	before := a.eng.Text()

	res, err := a.eng.Reconcile(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printResult(out, res)

	if extractFlags.diff {
		if after := a.eng.Text(); after != before {
			fmt.Fprint(out, udiff.Unified(a.buf.Path(), a.buf.Path(), before, after))
		}
	}

	if res.PendingRename != nil {
		return askRename(ctx, cmd, a)
	}
	return nil
}
