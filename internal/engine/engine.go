// Package engine is the single owner of a workspace. It runs reconciliation,
// code block instancing and rendering as commands over that workspace and
// persists the result.
//
// Every exported method takes the engine lock for its whole duration, so
// commands never interleave.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/render"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// Store persists workspace snapshots.
type Store interface {
	Save(ctx context.Context, s *workspace.State) error
}

// Engine owns one workspace.
type Engine struct {
	mu sync.Mutex

	state     *workspace.State
	buf       Buffer
	store     Store
	notifier  notify.Notifier
	formatter render.Formatter
	now       func() time.Time
	suffix    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithBuffer sets the text buffer. The buffer's content replaces the
// workspace template on construction.
func WithBuffer(b Buffer) Option {
	return func(e *Engine) { e.buf = b }
}

// WithStore sets where changes are persisted.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithNotifier sets the notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithFormatter sets the post-render formatter.
func WithFormatter(f render.Formatter) Option {
	return func(e *Engine) { e.formatter = f }
}

// WithClock sets the time source used for instance ids and sync groups.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSuffixSource sets the generator of random collision suffixes.
func WithSuffixSource(fn func() string) Option {
	return func(e *Engine) { e.suffix = fn }
}

// New creates an engine over state. A nil state starts an empty workspace.
func New(state *workspace.State, opts ...Option) *Engine {
	if state == nil {
		state = workspace.New("")
	}
	state.Normalize()

	e := &Engine{
		state:     state,
		notifier:  notify.Discard,
		formatter: render.None,
		now:       time.Now,
		suffix:    randomSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.buf == nil {
		e.buf = NewMemoryBuffer(state.Template)
	} else {
		state.Template = e.buf.Value()
	}
	return e
}

// Text returns the current template text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Value()
}

// Snapshot returns a deep copy of the workspace.
func (e *Engine) Snapshot() *workspace.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Template = e.buf.Value()
	return e.state.Clone()
}

// PendingRename returns the outstanding rename decision, if any.
func (e *Engine) PendingRename() *workspace.RenamePrompt {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.PendingRename == nil {
		return nil
	}
	p := *e.state.PendingRename
	return &p
}

// SetText replaces the template text and reconciles.
func (e *Engine) SetText(ctx context.Context, text string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setText(text); err != nil {
		return nil, err
	}
	return e.reconcile(ctx)
}

// SetDefault sets the value of name and fans the selection out to its sync
// partners. It returns the partners whose value changed.
func (e *Engine) SetDefault(ctx context.Context, name, value string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.SetDefault(name, value); err != nil {
		return nil, err
	}
	changed := e.state.PropagateSync(name)
	logger.Debug("Set default of %s, propagated to %v", name, changed)

	return changed, e.persist(ctx)
}

// Update applies fn to the workspace and persists it. fn must not keep a
// reference to the state after returning.
func (e *Engine) Update(ctx context.Context, fn func(s *workspace.State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.state); err != nil {
		return err
	}
	e.state.RefreshSyncGroups(e.now())
	return e.persist(ctx)
}

// Render substitutes every placeholder with its default and formats the
// result.
func (e *Engine) Render(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	values := make(map[string]string, len(e.state.Configs))
	for name, c := range e.state.Configs {
		values[name] = c.Default
	}

	out := render.Substitute(e.buf.Value(), values)
	formatted, err := e.formatter.Format(out)
	if err != nil {
		e.notify(notify.Error, "Formatting failed: %v", err)
		return out, err
	}
	return formatted, nil
}

// Reset restores the sample workspace and reconciles it.
func (e *Engine) Reset(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Reset()
	if err := e.setText(e.state.Template); err != nil {
		return nil, err
	}
	e.notify(notify.Info, "All settings were reset")
	return e.commit(ctx)
}

// Replace swaps in an imported workspace and reconciles it.
func (e *Engine) Replace(ctx context.Context, s *workspace.State) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s.Normalize()
	e.state = s
	if err := e.setText(s.Template); err != nil {
		return nil, err
	}
	return e.commit(ctx)
}

func (e *Engine) setText(text string) error {
	if err := e.buf.SetValue(text); err != nil {
		return fmt.Errorf("failed to update template text: %w", err)
	}
	e.state.Template = text
	return nil
}

// persist saves the workspace. Failures are reported to the user and
// returned to the caller.
func (e *Engine) persist(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.state.Template = e.buf.Value()
	if err := e.store.Save(ctx, e.state); err != nil {
		logger.Error("Failed to persist workspace: %v", err)
		e.notify(notify.Error, "Could not save the workspace: %v", err)
		return fmt.Errorf("failed to persist workspace: %w", err)
	}
	return nil
}

func (e *Engine) notify(sev notify.Severity, format string, v ...any) {
	notify.Notifyf(e.notifier, sev, format, v...)
}

func randomSuffix() string {
	return strconv.FormatInt(rand.Int64N(1<<30), 36)
}
