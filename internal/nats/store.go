package nats

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream holding workspace snapshots.
const StreamName = "tplvars_state"

const defaultWorkspace = "default"

// WorkspaceToken turns a workspace name into a single subject token.
// Names that slugify to nothing map to "default".
func WorkspaceToken(workspace string) string {
	if s := slug.Make(workspace); s != "" {
		return s
	}
	return defaultWorkspace
}

// SubjectForWorkspace returns the subject a workspace's snapshots are
// published on, e.g. "tplvars.my-page.state".
func SubjectForWorkspace(workspace string) string {
	return fmt.Sprintf("tplvars.%s.state", WorkspaceToken(workspace))
}

// SetupStream creates or updates the snapshot stream. Only the newest
// message per subject is kept.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              StreamName,
		Subjects:          []string{"tplvars.>"},
		Storage:           jetstream.FileStorage,
		MaxMsgsPerSubject: 1,
		Discard:           jetstream.DiscardOld,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up stream %s: %w", StreamName, err)
	}
	return stream, nil
}
