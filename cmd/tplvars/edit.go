package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the template in $EDITOR and reconcile afterwards",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if err := openEditor(cmd, a.buf.Path()); err != nil {
			return err
		}
		return runExtract(ctx, cmd, args, a)
	}),
}

// openEditor runs the user's editor on path and waits for it to exit.
func openEditor(cmd *cobra.Command, path string) error {
	c, err := editor.Command("tplvars", path)
	if err != nil {
		return fmt.Errorf("failed to prepare editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

// editText lets the user edit initial in a temporary file and returns the
// saved content.
func editText(cmd *cobra.Command, pattern, initial string) (string, error) {
	dir, err := os.MkdirTemp("", "tplvars-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, pattern)
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := openEditor(cmd, path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
