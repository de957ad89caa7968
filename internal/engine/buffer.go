package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Buffer is the text the engine edits. SetValue replaces the whole text.
type Buffer interface {
	Value() string
	SetValue(text string) error
}

// MemoryBuffer is an in-memory Buffer with an optional change callback.
type MemoryBuffer struct {
	mu       sync.Mutex
	text     string
	onChange func(string)
}

// NewMemoryBuffer creates a buffer holding text.
func NewMemoryBuffer(text string) *MemoryBuffer {
	return &MemoryBuffer{text: text}
}

func (b *MemoryBuffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *MemoryBuffer) SetValue(text string) error {
	b.mu.Lock()
	changed := b.text != text
	b.text = text
	fn := b.onChange
	b.mu.Unlock()

	if changed && fn != nil {
		fn(text)
	}
	return nil
}

// OnChange registers fn to run after every SetValue that changes the text.
func (b *MemoryBuffer) OnChange(fn func(string)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// FileBuffer keeps the text in a file on disk. Value falls back to the last
// text read or written when the file cannot be read.
type FileBuffer struct {
	mu   sync.Mutex
	path string
	last string
}

// NewFileBuffer creates a buffer backed by path. The file need not exist yet.
func NewFileBuffer(path string) *FileBuffer {
	return &FileBuffer{path: path}
}

// Path returns the backing file path.
func (b *FileBuffer) Path() string {
	return b.path
}

func (b *FileBuffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		return b.last
	}
	b.last = string(data)
	return b.last
}

func (b *FileBuffer) SetValue(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := os.WriteFile(b.path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	b.last = text
	return nil
}
