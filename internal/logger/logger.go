// Package logger is the leveled, printf-style logger shared by every tplvars
// package. Output is discarded until a log file is configured, so the CLI's
// own stdout and stderr stay clean.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Environment variables read by New.
const (
	EnvLevel = "TPLVARS_LOG_LEVEL"
	EnvFile  = "TPLVARS_LOG_FILE"
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	i := slices.Index(levelNames, strings.ToUpper(s))
	if i < 0 {
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
	return Level(i), nil
}

// Logger writes "[LEVEL] message" lines at or above its level.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
	file  *os.File
}

// Default backs the package-level functions.
var Default = New()

// New creates a logger at info level writing nowhere, then applies
// TPLVARS_LOG_LEVEL and TPLVARS_LOG_FILE when set.
func New() *Logger {
	l := &Logger{
		level: LevelInfo,
		out:   log.New(io.Discard, "", log.LstdFlags),
	}
	// Bad environment values are ignored rather than failing startup
	_ = l.Configure(os.Getenv(EnvLevel), os.Getenv(EnvFile))
	return l
}

// Configure applies a level name and a log file path. Empty values keep the
// current setting.
func (l *Logger) Configure(level, file string) error {
	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return err
		}
		l.SetLevel(lvl)
	}
	if file == "" {
		return nil
	}
	return l.SetFile(file)
}

// SetFile appends all further output to path.
func (l *Logger) SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFile()
	l.file = f
	l.out.SetOutput(f)
	return nil
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// SetOutput replaces the destination. A previously opened log file stays
// open until Close.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.out.SetOutput(w)
	l.mu.Unlock()
}

// Close releases the log file, if any, and discards further output.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out.SetOutput(io.Discard)
	return err
}

func (l *Logger) closeFile() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) Debug(format string, v ...any) { l.logf(LevelDebug, format, v) }
func (l *Logger) Info(format string, v ...any)  { l.logf(LevelInfo, format, v) }
func (l *Logger) Warn(format string, v ...any)  { l.logf(LevelWarn, format, v) }
func (l *Logger) Error(format string, v ...any) { l.logf(LevelError, format, v) }

func (l *Logger) logf(level Level, format string, v []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
}

func Debug(format string, v ...any) { Default.Debug(format, v...) }
func Info(format string, v ...any)  { Default.Info(format, v...) }
func Warn(format string, v ...any)  { Default.Warn(format, v...) }
func Error(format string, v ...any) { Default.Error(format, v...) }

// Configure applies level and file settings to the default logger.
func Configure(level, file string) error { return Default.Configure(level, file) }

// Close closes the default logger's file.
func Close() error { return Default.Close() }
