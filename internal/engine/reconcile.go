package engine

import (
	"context"
	"slices"
	"strconv"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/token"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// Rewrite is a text-level rename performed during reconciliation.
type Rewrite struct {
	From string
	To   string
}

// Result describes one reconciliation pass.
type Result struct {
	// FinalNames is main template names in first-seen order, followed by
	// retained names from code block templates.
	FinalNames []string
	Added      []string
	Removed    []string

	// PendingRename is set when exactly one name was added and one removed.
	// The registry is left untouched until ResolveRename.
	PendingRename *workspace.RenamePrompt

	Deduplicated []Rewrite
	Neutralized  []*ValidationError

	// Aborted is set when the rename target was a reserved name that had to
	// be neutralized; no registry entries were created.
	Aborted bool
	// Changed reports whether anything was mutated and persisted.
	Changed bool
}

// Reconcile re-derives the registry from the current text.
func (e *Engine) Reconcile(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconcile(ctx)
}

// ResolveRename answers the pending rename. Accepting moves the old
// configuration to the new name; rejecting discards it and gives the new
// name a fresh default. Reconciliation runs again afterwards.
func (e *Engine) ResolveRename(ctx context.Context, accept bool) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.state.PendingRename
	if p == nil {
		return nil, ErrNoPendingRename
	}
	e.state.PendingRename = nil

	if accept {
		if err := e.state.Move(p.From, p.To); err != nil {
			// The old entry vanished meanwhile; fall back to a fresh one
			logger.Warn("Rename source %s missing: %v", p.From, err)
			e.state.Ensure(p.To)
		}
		logger.Info("Accepted rename %s -> %s", p.From, p.To)
	} else {
		e.state.Remove(p.From)
		e.state.Ensure(p.To)
		logger.Info("Rejected rename %s -> %s", p.From, p.To)
	}

	return e.commit(ctx)
}

// commit reconciles after a command that already mutated the workspace and
// persists even when the pass itself found nothing to change.
func (e *Engine) commit(ctx context.Context) (*Result, error) {
	res, err := e.reconcile(ctx)
	if err != nil || res.Changed {
		return res, err
	}
	res.Changed = true
	return res, e.persist(ctx)
}

func (e *Engine) reconcile(ctx context.Context) (*Result, error) {
	res := &Result{}
	text := e.buf.Value()
	original := text

	// A fresh pass supersedes any earlier prompt
	hadPending := e.state.PendingRename != nil
	e.state.PendingRename = nil

	// 1. Rewrite duplicate occurrences until a scan sees each name once
	text = e.dedupe(text, res)

	// 2. Candidates: main template names, then code block template names
	mainNames := token.Extract(text)
	inMain := make(map[string]bool, len(mainNames))
	for _, n := range mainNames {
		inMain[n] = true
	}

	candidates := slices.Clone(mainNames)
	inBlocks := make(map[string]bool)
	for _, b := range e.state.Blocks() {
		for _, n := range token.Extract(b.Template) {
			inBlocks[n] = true
			if !inMain[n] && !slices.Contains(candidates, n) {
				candidates = append(candidates, n)
			}
		}
	}

	// 3. Reserved names need a live instance of an existing code block
	live := make(map[string]bool)
	for _, id := range token.InstanceIDs(text) {
		live[id] = true
	}
	orphaned := make(map[string]bool)
	var final []string
	for _, n := range candidates {
		id, scoped := token.Parse(n).(token.InstanceScoped)
		_, blockExists := e.state.CodeBlocks[id.BlockID]
		if !scoped || (live[id.InstanceID] && blockExists) {
			final = append(final, n)
			continue
		}
		// Block templates are previews; their text is never rewritten
		if !inMain[n] {
			continue
		}

		res.Neutralized = append(res.Neutralized, &ValidationError{Name: n})
		logger.Warn("Neutralizing reserved name %s without instance", n)
		e.notify(notify.Warning, "%q is reserved for code block instances and was disabled", n)
		nn := token.Neutralized(n)
		text = token.ReplaceAll(text, n, nn)
		if !blockExists {
			orphaned[nn] = true
		}
		if !slices.Contains(final, nn) && !slices.Contains(candidates, nn) {
			final = append(final, nn)
		}
	}

	// 4. Names found only in block templates are previews, not variables
	final = slices.DeleteFunc(final, func(n string) bool {
		return inBlocks[n] && !inMain[n] && !token.MaybeScoped(n)
	})

	// 5. Order is already main template first, block names after
	res.FinalNames = final
	e.state.TemplateOrder = slices.Clone(final)

	// 6. Diff against the previous registry
	finalSet := make(map[string]bool, len(final))
	for _, n := range final {
		finalSet[n] = true
		if _, ok := e.state.Configs[n]; !ok {
			res.Added = append(res.Added, n)
		}
	}
	for _, n := range e.state.Names() {
		if !finalSet[n] {
			res.Removed = append(res.Removed, n)
		}
	}

	textChanged := text != original
	if textChanged {
		if err := e.setText(text); err != nil {
			return res, err
		}
	}

	// 7. A single add/remove pair might be a rename
	if len(res.Added) == 1 && len(res.Removed) == 1 {
		from, to := res.Removed[0], res.Added[0]

		// A rename onto an instance of a missing block is abandoned
		if orphaned[to] {
			logger.Warn("Rename target %s has no code block, aborting", to)
			res.Aborted = true
			res.Changed = true
			return res, e.persist(ctx)
		}

		res.PendingRename = &workspace.RenamePrompt{From: from, To: to}
		e.state.PendingRename = res.PendingRename
		logger.Debug("Rename candidate %s -> %s awaiting decision", from, to)
		e.notify(notify.Info, "Was %q renamed to %q? Accept or reject the rename", from, to)

		res.Changed = true
		return res, e.persist(ctx)
	}

	// 8. Apply adds and removes directly
	for _, n := range res.Removed {
		e.state.Remove(n)
	}
	for _, n := range res.Added {
		e.state.Ensure(n)
	}
	e.state.RefreshSyncGroups(e.now())

	logger.Debug("Reconciled %d names (+%d -%d)", len(final), len(res.Added), len(res.Removed))

	// 9. Persist only on change
	res.Changed = len(res.Added) > 0 || len(res.Removed) > 0 || textChanged || hadPending
	if !res.Changed {
		return res, nil
	}
	return res, e.persist(ctx)
}

// dedupe rewrites the second occurrence of any name to the first free
// numbered variant and rescans from the start. Instance scoped duplicates
// start from a copy of the original's configuration.
func (e *Engine) dedupe(text string, res *Result) string {
	for {
		seen := make(map[string]bool)
		var dup *token.Match
		for m := range token.Scan(text) {
			if seen[m.Name] {
				dup = &m
				break
			}
			seen[m.Name] = true
		}
		if dup == nil {
			return text
		}

		used := make(map[string]bool)
		for _, n := range token.Extract(text) {
			used[n] = true
		}
		next := ""
		for i := 2; ; i++ {
			next = dup.Name + strconv.Itoa(i)
			if _, taken := e.state.Configs[next]; !used[next] && !taken {
				break
			}
		}

		text = token.ReplaceAt(text, *dup, next)

		// A repeated use inside an instance keeps the instance's settings
		if _, scoped := token.Parse(dup.Name).(token.InstanceScoped); scoped {
			if c, ok := e.state.Configs[dup.Name]; ok {
				clone := c.Clone()
				clone.SyncWith = []string{}
				e.state.Configs[next] = clone
			}
		}
		res.Deduplicated = append(res.Deduplicated, Rewrite{From: dup.Name, To: next})
		logger.Debug("Renamed duplicate %s to %s", dup.Name, next)
		e.notify(notify.Info, "Duplicate variable %q was renamed to %q", dup.Name, next)
	}
}
