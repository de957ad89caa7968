package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/spf13/cobra"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tplvars",
	Short: "Extract, configure and render {{variables}} in HTML templates",
	Long: `tplvars keeps a registry of the {{variable}} placeholders in an HTML
template. Each variable is free text or a dropdown with options and a
default value; rendering substitutes the defaults.

Reusable code blocks can be inserted into the template as isolated
instances whose variables are namespaced per instance.

The template lives in a plain file (template.html by default) so any
editor works; run 'tplvars watch' to reconcile on every save.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("data-dir", "", "Data directory (default: .tplvars)")
	pf.StringP("workspace", "w", "", "Workspace name (default: default)")
	pf.String("store", "", "Persistence backend: file or nats")
	pf.StringP("template", "t", "", "Template file (default: template.html)")
	pf.String("formatter", "", "Output formatter: none or minify")
	pf.String("theme", "", "Colour theme for new workspaces: light or dark")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(varCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(prefCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
}
