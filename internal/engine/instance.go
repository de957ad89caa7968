package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/token"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// maxSuffixAttempts bounds the numeric suffixes tried before a random one.
const maxSuffixAttempts = 100

// InsertResult describes an inserted instance.
type InsertResult struct {
	InstanceID string
	// Renames maps each block variable to its instance scoped name.
	Renames map[string]string
	// Created lists the new scoped names in block template order.
	Created    []string
	Collisions []*CollisionError
	Reconcile  *Result
}

// InsertInstance expands the code block ref (id or name) at byte offset
// cursor of the main text. The cursor is clamped to the text and moved back
// to a rune boundary.
func (e *Engine) InsertInstance(ctx context.Context, ref string, cursor int) (*InsertResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.PendingRename != nil {
		return nil, ErrRenamePending
	}
	block, err := e.state.ResolveBlock(ref)
	if err != nil {
		return nil, err
	}

	text := e.buf.Value()
	cursor = clampCursor(text, cursor)
	if open := token.OpenInstancesAt(text, cursor); len(open) > 0 {
		return nil, fmt.Errorf("%w (inside %s)", ErrNestedInsertion, strings.Join(open, ", "))
	}

	// Instance id from the clock, bumped until it is unused
	stamp := e.now().UnixMilli()
	id := token.InstanceID(block.ID, stamp)
	for e.instanceIDTaken(text, id) {
		stamp++
		id = token.InstanceID(block.ID, stamp)
	}

	res := &InsertResult{InstanceID: id, Renames: make(map[string]string)}
	assigned := make(map[string]bool)
	for _, name := range token.Extract(block.Template) {
		scoped, ok := e.scopedName(id, name, assigned)
		if !ok {
			res.Collisions = append(res.Collisions, &CollisionError{Name: name})
			logger.Warn("No unique instance name for %s in %s", name, id)
			e.notify(notify.Warning, "Could not find a unique name for %q; marked as %s", name, scoped)
		}
		assigned[scoped] = true
		res.Renames[name] = scoped

		if !ok {
			continue
		}
		res.Created = append(res.Created, scoped)
		if c, exists := e.state.Configs[name]; exists {
			clone := c.Clone()
			// Links belong to the source variable's group, not the copy
			clone.SyncWith = []string{}
			e.state.Configs[scoped] = clone
		} else {
			e.state.Configs[scoped] = workspace.NewVariableConfig()
		}
	}

	body := token.Pattern.ReplaceAllStringFunc(block.Template, func(tok string) string {
		m := token.Pattern.FindStringSubmatch(tok)
		return token.Placeholder(res.Renames[m[1]])
	})
	expanded := token.Wrap(id, body)

	if err := e.setText(text[:cursor] + expanded + text[cursor:]); err != nil {
		return nil, err
	}
	logger.Info("Inserted %s at offset %d with %d variables", id, cursor, len(res.Created))

	res.Reconcile, err = e.commit(ctx)
	return res, err
}

// DeleteInstance removes the region of instanceID and every variable scoped
// to it, then reconciles.
func (e *Engine) DeleteInstance(ctx context.Context, instanceID string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.PendingRename != nil {
		return nil, ErrRenamePending
	}
	if err := e.deleteInstance(instanceID); err != nil {
		return nil, err
	}
	return e.commit(ctx)
}

// DeleteCodeBlock removes a code block and every instance of it.
func (e *Engine) DeleteCodeBlock(ctx context.Context, ref string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.PendingRename != nil {
		return nil, ErrRenamePending
	}
	block, err := e.state.ResolveBlock(ref)
	if err != nil {
		return nil, err
	}

	for _, id := range token.InstancesOf(e.buf.Value(), block.ID) {
		if err := e.deleteInstance(id); err != nil && !errors.Is(err, ErrInstanceNotFound) {
			return nil, err
		}
	}
	if err := e.state.RemoveBlock(block.ID); err != nil {
		return nil, err
	}
	logger.Info("Deleted code block %s (%s)", block.Name, block.ID)

	return e.commit(ctx)
}

// AddCodeBlock stores a new code block and reconciles.
func (e *Engine) AddCodeBlock(ctx context.Context, name, template string) (*workspace.CodeBlock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.state.AddBlock(name, template)
	if err != nil {
		return nil, err
	}
	cp := *b
	_, err = e.commit(ctx)
	return &cp, err
}

// UpdateCodeBlock renames a block and/or replaces its template. Nil fields
// are left unchanged. Existing instances keep their text.
func (e *Engine) UpdateCodeBlock(ctx context.Context, ref string, name, template *string) (*workspace.CodeBlock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.state.ResolveBlock(ref)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if err := e.state.RenameBlock(b.ID, *name); err != nil {
			return nil, err
		}
	}
	if template != nil {
		if err := e.state.SetBlockTemplate(b.ID, *template); err != nil {
			return nil, err
		}
	}
	cp := *b
	_, err = e.commit(ctx)
	return &cp, err
}

func (e *Engine) deleteInstance(instanceID string) error {
	text, ok := token.RemoveInstance(e.buf.Value(), instanceID)
	if !ok {
		return fmt.Errorf("%q: %w", instanceID, ErrInstanceNotFound)
	}
	if err := e.setText(text); err != nil {
		return err
	}

	e.state.Remove(instanceID)
	removed := e.state.RemovePrefix(instanceID + "_")
	logger.Info("Deleted instance %s and %d variables", instanceID, len(removed))
	return nil
}

// scopedName finds a free instance scoped name for original. ok is false
// when every strategy collided; the returned name is then a conflict marker.
func (e *Engine) scopedName(instanceID, original string, assigned map[string]bool) (string, bool) {
	taken := func(n string) bool {
		_, exists := e.state.Configs[n]
		return exists || assigned[n]
	}

	base := token.ScopedName(instanceID, original)
	if !taken(base) {
		return base, true
	}
	for i := 1; i <= maxSuffixAttempts; i++ {
		if n := base + "_" + strconv.Itoa(i); !taken(n) {
			return n, true
		}
	}
	if n := base + "_" + e.suffix(); !taken(n) {
		return n, true
	}
	return token.Conflict(original), false
}

func (e *Engine) instanceIDTaken(text, id string) bool {
	if strings.Contains(text, token.StartMarker(id)) {
		return true
	}
	_, exists := e.state.Configs[id]
	return exists
}

func clampCursor(text string, cursor int) int {
	cursor = max(0, min(cursor, len(text)))
	for cursor > 0 && cursor < len(text) && !utf8.RuneStart(text[cursor]) {
		cursor--
	}
	return cursor
}
