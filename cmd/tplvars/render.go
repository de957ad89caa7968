package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/render"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/spf13/cobra"
)

var renderFlags struct {
	output    string
	highlight bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the template with every variable's default value",
	RunE:  runWithApp(runRender),
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlags.output, "output", "o", "", "Write the rendered HTML to this file")
	renderCmd.Flags().BoolVar(&renderFlags.highlight, "highlight", false, "Syntax highlight the HTML for the terminal")
}

func runRender(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	if _, err := a.eng.Reconcile(ctx); err != nil {
		return err
	}

	// A formatter failure still yields the unformatted HTML
	html, renderErr := a.eng.Render(ctx)
	if renderErr != nil {
		logger.Warn("Rendering without formatting: %v", renderErr)
	}

	if err := writeRendered(cmd, renderFlags.output, renderFlags.highlight, html); err != nil {
		return err
	}
	return renderErr
}

func writeRendered(cmd *cobra.Command, output string, highlight bool, html string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(html), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Rendered to %s\n", output)
		return nil
	}

	if highlight {
		colored, err := render.Highlight(html, theme.Current().CodeStyle)
		if err != nil {
			return err
		}
		html = colored
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
	return err
}
