package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/tplvars/internal/config"
	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/render"
	"github.com/mark3labs/tplvars/internal/store"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/spf13/cobra"
)

// app is an opened workspace: config, store and the engine over them.
type app struct {
	cfg        *config.Config
	eng        *engine.Engine
	buf        *engine.FileBuffer
	closeStore func() error
}

// runWithApp adapts fn into a cobra RunE that opens the workspace first and
// closes it afterwards.
func runWithApp(fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.close(); err != nil {
				logger.Warn("Failed to close store: %v", err)
			}
		}()
		return fn(ctx, cmd, args, a)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	st, closeStore, err := store.Open(ctx, cfg.Store, cfg.DataDir, cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	notifier := notify.Multi(notify.Log{}, notify.NewTerminal(cmd.ErrOrStderr()))

	state, err := store.LoadOrNew(ctx, st, notifier, func() *workspace.State {
		fresh := workspace.New("")
		fresh.Theme = cfg.Theme
		fresh.SetRealtime(cfg.Realtime)
		return fresh
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	if err := theme.Set(state.Theme); err != nil {
		logger.Warn("Unknown workspace theme %q: %v", state.Theme, err)
	}

	formatter, err := render.FormatterByName(cfg.Formatter)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	// The template file is the source of truth once it exists
	buf := engine.NewFileBuffer(cfg.Template)
	if _, statErr := os.Stat(cfg.Template); errors.Is(statErr, os.ErrNotExist) {
		if err := buf.SetValue(state.Template); err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	eng := engine.New(state,
		engine.WithBuffer(buf),
		engine.WithStore(st),
		engine.WithNotifier(notifier),
		engine.WithFormatter(formatter),
	)
	logger.Debug("Opened workspace %s (%s store, template %s)", cfg.Workspace, cfg.Store, cfg.Template)

	return &app{cfg: cfg, eng: eng, buf: buf, closeStore: closeStore}, nil
}

func (a *app) close() error {
	return a.closeStore()
}
