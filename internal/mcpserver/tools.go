package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// registerTools adds every workspace tool to the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("template-get",
			mcp.WithDescription("Return the current main template text"),
		),
		s.handleTemplateGet,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("template-set",
			mcp.WithDescription("Replace the main template and reconcile its variables"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Full HTML template with {{name}} placeholders")),
		),
		s.handleTemplateSet,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("render",
			mcp.WithDescription("Render the template with every variable's default value"),
		),
		s.handleRender,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("var-list",
			mcp.WithDescription("List variables with their mode and default"),
			mcp.WithString("filter", mcp.Description("all, text, dropdown or a sync group key")),
			mcp.WithString("sort", mcp.Enum(
				workspace.SortDefault, workspace.SortNameAsc, workspace.SortNameDesc,
				workspace.SortGroupAsc, workspace.SortGroupDesc,
			)),
		),
		s.handleVarList,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("var-set-default",
			mcp.WithDescription("Set a variable's default; dropdown selections propagate to synced variables"),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("value", mcp.Required()),
		),
		s.handleVarSetDefault,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("var-set-mode",
			mcp.WithDescription("Switch a variable between free text and dropdown"),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("mode", mcp.Required(), mcp.Enum(string(workspace.ModeText), string(workspace.ModeDropdown))),
		),
		s.handleVarSetMode,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("option-add",
			mcp.WithDescription("Add a dropdown option; an empty label falls back to the value"),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("value", mcp.Required()),
			mcp.WithString("label"),
		),
		s.handleOptionAdd,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("var-sync",
			mcp.WithDescription("Link two dropdown variables so selections follow each other by label"),
			mcp.WithString("a", mcp.Required()),
			mcp.WithString("b", mcp.Required()),
		),
		s.handleVarSync,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("rename-resolve",
			mcp.WithDescription("Accept or reject the pending variable rename"),
			mcp.WithBoolean("accept", mcp.Required()),
		),
		s.handleRenameResolve,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("block-add",
			mcp.WithDescription("Create a reusable code block"),
			mcp.WithString("name", mcp.Required()),
			mcp.WithString("template", mcp.Required()),
		),
		s.handleBlockAdd,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("block-list",
			mcp.WithDescription("List code blocks"),
		),
		s.handleBlockList,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("block-insert",
			mcp.WithDescription("Insert an instance of a code block into the main template"),
			mcp.WithString("block", mcp.Required(), mcp.Description("Code block id or name")),
			mcp.WithNumber("cursor", mcp.Description("Byte offset in the main template (default: end)")),
		),
		s.handleBlockInsert,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("instance-delete",
			mcp.WithDescription("Delete an inserted instance and its variables"),
			mcp.WithString("id", mcp.Required()),
		),
		s.handleInstanceDelete,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("block-delete",
			mcp.WithDescription("Delete a code block and every instance of it"),
			mcp.WithString("block", mcp.Required()),
		),
		s.handleBlockDelete,
	)
}

func (s *Server) handleTemplateGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.eng.Text()), nil
}

func (s *Server) handleTemplateSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, errResult := stringArg(request, "text", true)
	if errResult != nil {
		return errResult, nil
	}
	res, err := s.eng.SetText(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(describeResult(res)), nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.eng.Render(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleVarList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, _ := stringArg(request, "filter", false)
	sortBy, _ := stringArg(request, "sort", false)
	if filter == "" {
		filter = workspace.FilterAll
	}
	if sortBy == "" {
		sortBy = workspace.SortDefault
	}

	snap := s.eng.Snapshot()
	names, err := snap.ListVariables(filter, sortBy)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No variables"), nil
	}

	var b strings.Builder
	for _, n := range names {
		c := snap.Configs[n]
		fmt.Fprintf(&b, "%s [%s] = %q", n, c.Mode, c.Default)
		if len(c.SyncWith) > 0 {
			fmt.Fprintf(&b, " synced with %s", strings.Join(c.SyncWith, ", "))
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleVarSetDefault(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request, "name", true)
	if errResult != nil {
		return errResult, nil
	}
	value, errResult := stringArg(request, "value", false)
	if errResult != nil {
		return errResult, nil
	}

	changed, err := s.eng.SetDefault(ctx, name, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("%s = %q", name, value)
	if len(changed) > 0 {
		msg += "; also updated " + strings.Join(changed, ", ")
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleVarSetMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request, "name", true)
	if errResult != nil {
		return errResult, nil
	}
	raw, errResult := stringArg(request, "mode", true)
	if errResult != nil {
		return errResult, nil
	}
	mode, err := workspace.ParseMode(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.eng.Update(ctx, func(st *workspace.State) error { return st.SetMode(name, mode) }); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s is now %s", name, mode)), nil
}

func (s *Server) handleOptionAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request, "name", true)
	if errResult != nil {
		return errResult, nil
	}
	value, errResult := stringArg(request, "value", true)
	if errResult != nil {
		return errResult, nil
	}
	label, _ := stringArg(request, "label", false)

	if err := s.eng.Update(ctx, func(st *workspace.State) error { return st.AddOption(name, label, value) }); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added option %q to %s", value, name)), nil
}

func (s *Server) handleVarSync(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, errResult := stringArg(request, "a", true)
	if errResult != nil {
		return errResult, nil
	}
	b, errResult := stringArg(request, "b", true)
	if errResult != nil {
		return errResult, nil
	}

	err := s.eng.Update(ctx, func(st *workspace.State) error { return st.Link(a, b, time.Now()) })
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Linked %s and %s", a, b)), nil
}

func (s *Server) handleRenameResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accept, ok := request.GetArguments()["accept"].(bool)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'accept' parameter"), nil
	}
	pending := s.eng.PendingRename()

	if _, err := s.eng.ResolveRename(ctx, accept); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "Rejected"
	if accept {
		verb = "Accepted"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s rename %s -> %s", verb, pending.From, pending.To)), nil
}

func (s *Server) handleBlockAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errResult := stringArg(request, "name", true)
	if errResult != nil {
		return errResult, nil
	}
	tpl, errResult := stringArg(request, "template", false)
	if errResult != nil {
		return errResult, nil
	}

	b, err := s.eng.AddCodeBlock(ctx, name, tpl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added code block %s (%s)", b.Name, b.ID)), nil
}

func (s *Server) handleBlockList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks := s.eng.Snapshot().Blocks()
	if len(blocks) == 0 {
		return mcp.NewToolResultText("No code blocks"), nil
	}
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", b.Name, b.ID, b.Template))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) handleBlockInsert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, errResult := stringArg(request, "block", true)
	if errResult != nil {
		return errResult, nil
	}
	cursor := len(s.eng.Text())
	if v, ok := request.GetArguments()["cursor"].(float64); ok {
		cursor = int(v)
	}

	res, err := s.eng.InsertInstance(ctx, ref, cursor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("Inserted %s", res.InstanceID)
	if len(res.Created) > 0 {
		msg += " with " + strings.Join(res.Created, ", ")
	}
	for _, c := range res.Collisions {
		msg += "\nwarning: " + c.Error()
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleInstanceDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := stringArg(request, "id", true)
	if errResult != nil {
		return errResult, nil
	}
	if _, err := s.eng.DeleteInstance(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Deleted " + id), nil
}

func (s *Server) handleBlockDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, errResult := stringArg(request, "block", true)
	if errResult != nil {
		return errResult, nil
	}
	if _, err := s.eng.DeleteCodeBlock(ctx, ref); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Deleted code block " + ref), nil
}

// stringArg reads a string argument. A missing required argument yields an
// error result.
func stringArg(request mcp.CallToolRequest, key string, required bool) (string, *mcp.CallToolResult) {
	raw, ok := request.GetArguments()[key]
	if !ok {
		if required {
			return "", mcp.NewToolResultError(fmt.Sprintf("missing '%s' parameter", key))
		}
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' must be a string", key))
	}
	if required && strings.TrimSpace(v) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' must not be empty", key))
	}
	return v, nil
}

// describeResult summarizes a reconciliation for tool output.
func describeResult(res *engine.Result) string {
	var lines []string
	if len(res.Added) > 0 {
		lines = append(lines, "added: "+strings.Join(res.Added, ", "))
	}
	if len(res.Removed) > 0 {
		lines = append(lines, "removed: "+strings.Join(res.Removed, ", "))
	}
	for _, r := range res.Deduplicated {
		lines = append(lines, fmt.Sprintf("renamed duplicate %s to %s", r.From, r.To))
	}
	for _, v := range res.Neutralized {
		lines = append(lines, "disabled: "+v.Error())
	}
	if p := res.PendingRename; p != nil {
		lines = append(lines, fmt.Sprintf("pending rename %s -> %s (call rename-resolve)", p.From, p.To))
	}
	if len(lines) == 0 {
		return "No changes"
	}
	return strings.Join(lines, "\n")
}
