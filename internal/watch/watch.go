// Package watch reconciles a workspace whenever its template file changes on
// disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/logger"
)

// Options configures a Watcher.
type Options struct {
	// Delay is the quiet period before reconciling. Zero uses
	// engine.DefaultDebounce.
	Delay time.Duration
	// Realtime renders after every reconciliation.
	Realtime bool
	// OnReconcile receives every reconciliation outcome.
	OnReconcile func(*engine.Result, error)
	// OnRender receives the rendered output when Realtime is set.
	OnRender func(string, error)
}

// Watcher feeds write events for one template file into a debounced
// reconciliation of the engine. The containing directory is watched so
// editors that save by renaming are still seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	eng     *engine.Engine
	path    string
	opts    Options

	debouncer *engine.Debouncer
	cancel    context.CancelFunc
	mu        sync.Mutex
	done      chan struct{}
	stopped   chan struct{}
}

// New creates a watcher for path. path should be the file behind the
// engine's buffer.
func New(eng *engine.Engine, path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		eng:     eng,
		path:    abs,
		opts:    opts,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// Start watches the file and runs one reconciliation right away.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.debouncer = w.eng.Debounced(ctx, w.opts.Delay, func(res *engine.Result, err error) {
		w.handleResult(ctx, res, err)
	})

	go w.eventLoop()
	logger.Info("Watching %s", w.path)

	w.debouncer.Trigger()
	return nil
}

// Stop ends the event loop and cancels any pending reconciliation.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)

	if w.debouncer != nil {
		w.debouncer.Stop()
		w.cancel()
		<-w.stopped
	}
	return w.watcher.Close()
}

// Done is closed once Stop has been called.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Clean(event.Name) != w.path {
		return
	}
	logger.Debug("Template changed: %s", event)
	w.debouncer.Trigger()
}

func (w *Watcher) handleResult(ctx context.Context, res *engine.Result, err error) {
	// Callbacks never overlap, even when a slow render meets the next pass
	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		logger.Error("Reconciliation failed: %v", err)
	}
	if w.opts.OnReconcile != nil {
		w.opts.OnReconcile(res, err)
	}
	if !w.opts.Realtime || w.opts.OnRender == nil || errors.Is(ctx.Err(), context.Canceled) {
		return
	}
	w.opts.OnRender(w.eng.Render(ctx))
}
