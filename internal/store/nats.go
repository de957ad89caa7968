package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/tplvars/internal/logger"
	"github.com/mark3labs/tplvars/internal/nats"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore keeps the newest snapshot of one workspace on a JetStream
// subject.
type NATSStore struct {
	js      jetstream.JetStream
	stream  jetstream.Stream
	subject string
}

// NewNATSStore sets up the snapshot stream and binds the store to the
// subject of workspaceName.
func NewNATSStore(ctx context.Context, js jetstream.JetStream, workspaceName string) (*NATSStore, error) {
	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		return nil, err
	}
	return &NATSStore{
		js:      js,
		stream:  stream,
		subject: nats.SubjectForWorkspace(workspaceName),
	}, nil
}

// Subject returns the subject snapshots are published on.
func (s *NATSStore) Subject() string {
	return s.subject
}

// Load fetches the newest snapshot. A snapshot that cannot be decoded is
// purged from the subject.
func (s *NATSStore) Load(ctx context.Context) (*workspace.State, error) {
	msg, err := s.stream.GetLastMsgForSubject(ctx, s.subject)
	if errors.Is(err, jetstream.ErrMsgNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.subject, err)
	}

	st, err := workspace.Decode(msg.Data)
	if err != nil {
		logger.Warn("Discarding corrupt workspace on %s: %v", s.subject, err)
		if perr := s.stream.Purge(ctx, jetstream.WithPurgeSubject(s.subject)); perr != nil {
			logger.Error("Failed to purge %s: %v", s.subject, perr)
		}
		return nil, fmt.Errorf("%s: %w", s.subject, ErrCorrupt)
	}
	return st, nil
}

// Save publishes a snapshot. Older snapshots are dropped by the stream.
func (s *NATSStore) Save(ctx context.Context, st *workspace.State) error {
	data, err := workspace.Encode(st)
	if err != nil {
		return err
	}
	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("failed to publish workspace to %s: %w", s.subject, err)
	}
	logger.Debug("Workspace published to %s (%d bytes)", s.subject, len(data))
	return nil
}
