package engine

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a text change is reconciled.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of triggers into one call of fn after a quiet
// period. A trigger arriving before the period elapses supersedes the pending
// one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer. A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn, cancelling any call still waiting.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		d.fn()
	})
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}

// Debounced returns a debouncer that reconciles the engine after each quiet
// period and hands the outcome to after, which may be nil.
func (e *Engine) Debounced(ctx context.Context, delay time.Duration, after func(*Result, error)) *Debouncer {
	return NewDebouncer(delay, func() {
		if ctx.Err() != nil {
			return
		}
		res, err := e.Reconcile(ctx)
		if after != nil {
			after(res, err)
		}
	})
}
