package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/watch"
	"github.com/spf13/cobra"
)

var watchFlags struct {
	output string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile and render every time the template file is saved",
	Long: `Watch the template file and reconcile the registry after each save.

With realtime rendering on (the default, see 'tplvars pref realtime'), the
template is also rendered after every change, to --output when given or to
stdout otherwise. Press Ctrl+C to stop.`,
	RunE: runWithApp(runWatch),
}

func init() {
	watchCmd.Flags().StringVarP(&watchFlags.output, "output", "o", "", "Write the rendered HTML to this file")
	watchCmd.Flags().Duration("debounce", engine.DefaultDebounce, "Quiet period after a change before reconciling")
	watchCmd.Flags().Bool("realtime", true, "Render after every change (overrides the workspace preference)")
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	realtime := a.eng.Snapshot().RealtimeEnabled()
	if cmd.Flags().Changed("realtime") {
		realtime = a.cfg.Realtime
	}

	out := cmd.OutOrStdout()
	renames := make(chan struct{}, 1)

	w, err := watch.New(a.eng, a.buf.Path(), watch.Options{
		Delay:    a.cfg.Debounce,
		Realtime: realtime,
		OnReconcile: func(res *engine.Result, err error) {
			if err != nil {
				logger.Error("Reconcile failed: %v", err)
				return
			}
			if res.Changed {
				printResult(out, res)
			}
			if res.PendingRename != nil {
				select {
				case renames <- struct{}{}:
				default:
				}
			}
		},
		OnRender: func(html string, err error) {
			if err != nil {
				logger.Warn("Rendering without formatting: %v", err)
			}
			if err := writeRendered(cmd, watchFlags.output, false, html); err != nil {
				logger.Error("Failed to write rendered output: %v", err)
			}
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	fmt.Fprintln(cmd.ErrOrStderr(), theme.Current().S().Muted.Render(
		fmt.Sprintf("Watching %s (Ctrl+C to stop)", a.buf.Path())))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Done():
			return nil
		case <-renames:
			if err := askRename(ctx, cmd, a); err != nil {
				logger.Error("Rename prompt failed: %v", err)
			}
		}
	}
}
