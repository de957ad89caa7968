package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/theme"
	"github.com/mark3labs/tplvars/internal/token"
	"github.com/spf13/cobra"
)

var blockFlags struct {
	template string
	file     string
	name     string
	at       int
	line     int
}

var blockCmd = &cobra.Command{
	Use:     "block",
	Aliases: []string{"blocks", "b"},
	Short:   "Manage reusable code blocks and their instances",
	Long: `Code blocks are reusable snippets with their own {{variables}}.

Inserting a block copies it into the template wrapped in instance markers;
its variables are renamed with the instance id so every copy is configured
independently.`,
}

var blockAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a code block",
	Long: `Create a code block. The template comes from --template, --file (use - for
stdin) or, when neither is given, from $EDITOR.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		tmpl, err := blockTemplate(cmd, "")
		if err != nil {
			return err
		}
		b, err := a.eng.AddCodeBlock(ctx, args[0], tmpl)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created block %s (%s)\n", b.Name, b.ID)
		return nil
	}),
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List code blocks",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runBlockList),
}

var blockShowCmd = &cobra.Command{
	Use:   "show NAME|ID",
	Short: "Show a code block's template and instances",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(runBlockShow),
}

var blockEditCmd = &cobra.Command{
	Use:   "edit NAME|ID",
	Short: "Rename a code block or change its template",
	Long: `Rename a code block with --name and replace its template with --template or
--file. With none of them the template is opened in $EDITOR.

Existing instances keep their text.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithApp(runBlockEdit),
}

var blockDeleteCmd = &cobra.Command{
	Use:   "delete NAME|ID",
	Short: "Delete a code block and every instance of it",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.eng.DeleteCodeBlock(ctx, args[0])
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

var blockInsertCmd = &cobra.Command{
	Use:   "insert NAME|ID",
	Short: "Insert an instance of a code block into the template",
	Long: `Insert an instance of a code block. By default it is appended to the end
of the template; use --at for a byte offset or --line to insert before a
line (1-based). Instances cannot be nested.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithApp(runBlockInsert),
}

var blockDeleteInstanceCmd = &cobra.Command{
	Use:   "delete-instance INSTANCE_ID",
	Short: "Remove one instance and its variables",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.eng.DeleteInstance(ctx, args[0])
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{blockAddCmd, blockEditCmd} {
		c.Flags().StringVar(&blockFlags.template, "template", "", "Block template text")
		c.Flags().StringVarP(&blockFlags.file, "file", "f", "", "Read the block template from a file (- for stdin)")
	}
	blockEditCmd.Flags().StringVar(&blockFlags.name, "name", "", "New block name")
	blockInsertCmd.Flags().IntVar(&blockFlags.at, "at", -1, "Byte offset to insert at")
	blockInsertCmd.Flags().IntVar(&blockFlags.line, "line", 0, "Insert before this line (1-based)")
	blockInsertCmd.MarkFlagsMutuallyExclusive("at", "line")

	blockCmd.AddCommand(blockAddCmd, blockListCmd, blockShowCmd, blockEditCmd,
		blockDeleteCmd, blockInsertCmd, blockDeleteInstanceCmd)
}

// blockTemplate resolves the template flags, falling back to $EDITOR seeded
// with current.
func blockTemplate(cmd *cobra.Command, current string) (string, error) {
	switch {
	case cmd.Flags().Changed("template"):
		return blockFlags.template, nil
	case blockFlags.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case blockFlags.file != "":
		data, err := os.ReadFile(blockFlags.file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", blockFlags.file, err)
		}
		return string(data), nil
	default:
		return editText(cmd, "block.html", current)
	}
}

func runBlockList(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	s := a.eng.Snapshot()
	blocks := s.Blocks()
	out := cmd.OutOrStdout()
	if len(blocks) == 0 {
		fmt.Fprintln(out, theme.Current().S().Muted.Render("No code blocks"))
		return nil
	}

	var b strings.Builder
	b.WriteString("| Block | ID | Variables | Instances |\n|---|---|---|---|\n")
	for _, blk := range blocks {
		vars := strings.Join(token.Extract(blk.Template), ", ")
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
			blk.Name, cell(blk.ID), vars, len(token.InstancesOf(s.Template, blk.ID)))
	}
	return printMarkdown(out, b.String())
}

func runBlockShow(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	s := a.eng.Snapshot()
	blk, err := s.ResolveBlock(args[0])
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n`%s`\n\n```html\n%s\n```\n", blk.Name, blk.ID, blk.Template)
	if ids := token.InstancesOf(s.Template, blk.ID); len(ids) > 0 {
		b.WriteString("\n### Instances\n\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
	}
	return printMarkdown(cmd.OutOrStdout(), b.String())
}

func runBlockEdit(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	blk, err := a.eng.Snapshot().ResolveBlock(args[0])
	if err != nil {
		return err
	}

	var name, tmpl *string
	if cmd.Flags().Changed("name") {
		name = &blockFlags.name
	}
	if name == nil || cmd.Flags().Changed("template") || blockFlags.file != "" {
		t, err := blockTemplate(cmd, blk.Template)
		if err != nil {
			return err
		}
		tmpl = &t
	}

	updated, err := a.eng.UpdateCodeBlock(ctx, blk.ID, name, tmpl)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated block %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func runBlockInsert(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
	text := a.eng.Text()
	cursor := len(text)
	switch {
	case blockFlags.at >= 0:
		cursor = blockFlags.at
	case blockFlags.line > 0:
		cursor = lineOffset(text, blockFlags.line)
	}

	res, err := a.eng.InsertInstance(ctx, args[0], cursor)
	if errors.Is(err, engine.ErrNestedInsertion) {
		return fmt.Errorf("%w; choose a position outside existing instances", err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Inserted %s\n", theme.Current().S().Name.Render(res.InstanceID))
	for _, name := range res.Created {
		fmt.Fprintf(out, "  %s\n", name)
	}
	for _, c := range res.Collisions {
		fmt.Fprintf(out, "  %s\n", theme.Current().S().Muted.Render(c.Error()))
	}
	return nil
}

// lineOffset returns the byte offset of the start of 1-based line n, or the
// end of text when it has fewer lines.
func lineOffset(text string, n int) int {
	off := 0
	for i := 1; i < n; i++ {
		next := strings.IndexByte(text[off:], '\n')
		if next < 0 {
			return len(text)
		}
		off += next + 1
	}
	return off
}
