package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/term"
	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/spf13/cobra"
)

// markdownWidth is the wrap width for glamour output.
const markdownWidth = 100

// printResult summarises a reconciliation pass.
func printResult(w io.Writer, res *engine.Result) {
	if res == nil {
		return
	}
	s := theme.Current().S()

	if len(res.Added) > 0 {
		fmt.Fprintf(w, "%s %s\n", s.Title.Render("Added:"), strings.Join(res.Added, ", "))
	}
	if len(res.Removed) > 0 {
		fmt.Fprintf(w, "%s %s\n", s.Title.Render("Removed:"), strings.Join(res.Removed, ", "))
	}
	for _, r := range res.Deduplicated {
		fmt.Fprintf(w, "%s %s → %s\n", s.Title.Render("Renamed duplicate:"), r.From, r.To)
	}
	for _, v := range res.Neutralized {
		fmt.Fprintf(w, "%s %s\n", s.Title.Render("Disabled:"), v.Name)
	}
	if p := res.PendingRename; p != nil {
		fmt.Fprintf(w, "%s %s → %s\n", s.Title.Render("Possible rename:"), p.From, p.To)
	}
	if !res.Changed {
		fmt.Fprintln(w, s.Muted.Render("No changes"))
	}
}

// renderMarkdown renders md with the glamour style matching the active theme.
func renderMarkdown(md string) (string, error) {
	style := "light"
	if theme.Current().IsDark {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func printMarkdown(w io.Writer, md string) error {
	out, err := renderMarkdown(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// cell escapes a value for a markdown table cell.
func cell(v string) string {
	if v == "" {
		return "_(empty)_"
	}
	v = strings.ReplaceAll(v, "|", `\|`)
	v = strings.ReplaceAll(v, "\n", " ")
	return "`" + strings.ReplaceAll(v, "`", "'") + "`"
}

// isInteractive reports whether stdin is a terminal and the command reads
// from os.Stdin.
func isInteractive(cmd *cobra.Command) bool {
	if cmd.InOrStdin() != os.Stdin {
		return false
	}
	return term.IsTerminal(os.Stdin.Fd())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
