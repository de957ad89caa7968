// Package notify delivers fire-and-forget user notifications.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/theme"
)

// Severity classifies a notification.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns the string representation of a severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultDuration is how long a notification is meant to stay visible.
const DefaultDuration = 3 * time.Second

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(msg string, sev Severity, d time.Duration)
}

// Func adapts a plain function to Notifier.
type Func func(msg string, sev Severity, d time.Duration)

func (f Func) Notify(msg string, sev Severity, d time.Duration) { f(msg, sev, d) }

// Discard drops every notification.
var Discard Notifier = Func(func(string, Severity, time.Duration) {})

// Log forwards notifications to the default logger at the matching level.
type Log struct{}

func (Log) Notify(msg string, sev Severity, _ time.Duration) {
	switch sev {
	case Error:
		logger.Error("%s", msg)
	case Warning:
		logger.Warn("%s", msg)
	default:
		logger.Info("%s", msg)
	}
}

// Terminal prints styled one-line notifications.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a notifier writing to w, typically stderr.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(msg string, sev Severity, _ time.Duration) {
	s := theme.Current().S()

	style := s.InfoToast
	switch sev {
	case Warning:
		style = s.WarningToast
	case Error:
		style = s.ErrorToast
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, style.Render(strings.ToUpper(sev.String()))+" "+msg)
}

// Entry is a recorded notification.
type Entry struct {
	Message  string
	Severity Severity
	Duration time.Duration
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Notify(msg string, sev Severity, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Severity: sev, Duration: d})
}

// Entries returns a copy of the recorded notifications.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many notifications of sev were recorded.
func (r *Recorder) Count(sev Severity) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Reset clears recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Multi fans a notification out to several notifiers.
func Multi(ns ...Notifier) Notifier {
	return Func(func(msg string, sev Severity, d time.Duration) {
		for _, n := range ns {
			n.Notify(msg, sev, d)
		}
	})
}

// Notifyf formats and sends a notification with the default duration.
func Notifyf(n Notifier, sev Severity, format string, v ...any) {
	n.Notify(fmt.Sprintf(format, v...), sev, DefaultDuration)
}
