// Package store persists workspace snapshots, either as a JSON file in the
// data directory or in the embedded JetStream server.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/tplvars/internal/nats"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/workspace"
)

var (
	// ErrNotFound is returned by Load when nothing has been saved yet.
	ErrNotFound = errors.New("no saved workspace")
	// ErrCorrupt is returned by Load when the saved record could not be
	// decoded. The record has been discarded.
	ErrCorrupt = errors.New("saved workspace is corrupt")
)

// Store loads and saves workspace snapshots.
type Store interface {
	Save(ctx context.Context, s *workspace.State) error
	Load(ctx context.Context) (*workspace.State, error)
}

// Backend names accepted by Open.
const (
	BackendFile = "file"
	BackendNATS = "nats"
)

// Open creates the store named by backend. The returned close function
// releases any server the backend started and is never nil.
func Open(ctx context.Context, backend, dataDir, workspaceName string) (Store, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case "", BackendFile:
		return NewFileStore(dataDir), noop, nil
	case BackendNATS:
		emb, err := nats.Start(dataDir)
		if err != nil {
			return nil, noop, err
		}
		s, err := NewNATSStore(ctx, emb.JS, workspaceName)
		if err != nil {
			_ = emb.Close()
			return nil, noop, err
		}
		return s, emb.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendFile, BackendNATS)
	}
}

// LoadOrNew loads the saved workspace, starting from fresh() when nothing was
// saved or the saved record was corrupt. A nil fresh starts an empty one.
// Discarding a corrupt record is reported to n.
func LoadOrNew(ctx context.Context, s Store, n notify.Notifier, fresh func() *workspace.State) (*workspace.State, error) {
	st, err := s.Load(ctx)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, ErrCorrupt):
		notify.Notifyf(n, notify.Warning, "Discarded unreadable saved workspace (%v); starting fresh", err)
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}

	if fresh == nil {
		return workspace.New(""), nil
	}
	return fresh(), nil
}
