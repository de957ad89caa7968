package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/workspace"
)

// FileName is the snapshot file inside the data directory.
const FileName = "state.json"

// FileStore keeps the workspace in <dataDir>/state.json.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a store rooted at dataDir. The directory is created
// on first save.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, FileName)
}

// Load reads the snapshot. A file that cannot be decoded is removed.
func (s *FileStore) Load(_ context.Context) (*workspace.State, error) {
	path := s.Path()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	st, err := workspace.Decode(data)
	if err != nil {
		logger.Warn("Discarding corrupt workspace %s: %v", path, err)
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Error("Failed to remove corrupt workspace %s: %v", path, rmErr)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrCorrupt)
	}
	return st, nil
}

// Save writes the snapshot, creating the data directory if needed.
func (s *FileStore) Save(_ context.Context, st *workspace.State) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := workspace.Encode(st)
	if err != nil {
		return err
	}

	path := s.Path()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("Workspace saved to %s", path)
	return nil
}
