package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/mcpserver"
	"github.com/mark3labs/tplvars/internal/watch"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr  string
	watch bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace as MCP tools over HTTP",
	Long: `Start an MCP server exposing the workspace: reading and writing the
template, configuring variables, code blocks and rendering.

Unless --watch=false is given, saves to the template file are reconciled
while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runWithApp(runServe),
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "127.0.0.1:7420", "Listen address")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", true, "Reconcile when the template file changes")
}

func runServe(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveFlags.watch {
		w, err := watch.New(a.eng, a.buf.Path(), watch.Options{
			Delay: a.cfg.Debounce,
			OnReconcile: func(res *engine.Result, err error) {
				if err != nil {
					logger.Error("Reconcile failed: %v", err)
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
	}

	srv := mcpserver.New(a.eng).WithAddr(serveFlags.addr)
	if _, err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("Failed to stop MCP server: %v", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s (Ctrl+C to stop)\n", srv.URL())
	<-ctx.Done()
	return nil
}
