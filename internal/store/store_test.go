package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/tplvars/internal/nats"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(t *testing.T) *workspace.State {
	t.Helper()
	s := workspace.New("<p>{{greeting}}</p>")
	s.Ensure("greeting")
	require.NoError(t, s.SetDefault("greeting", "hi"))
	s.TemplateOrder = []string{"greeting"}
	return s
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), ".tplvars")
	s := NewFileStore(dir)
	assert.Equal(t, filepath.Join(dir, FileName), s.Path())

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	want := sampleState(t)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreDiscardsCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadOrNew(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	st, err := LoadOrNew(ctx, s, notify.Discard, nil)
	require.NoError(t, err)
	assert.Empty(t, st.Configs)

	st, err = LoadOrNew(ctx, s, notify.Discard, func() *workspace.State {
		fresh := workspace.New("")
		fresh.Theme = "dark"
		return fresh
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", st.Theme)

	require.NoError(t, s.Save(ctx, sampleState(t)))
	st, err = LoadOrNew(ctx, s, notify.Discard, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", st.Configs["greeting"].Default)
}

func TestLoadOrNewReportsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	rec := &notify.Recorder{}
	st, err := LoadOrNew(ctx, s, rec, nil)
	require.NoError(t, err)
	assert.Empty(t, st.Configs)

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, notify.Warning, entries[0].Severity)
	assert.Contains(t, entries[0].Message, s.Path())

	// Nothing saved any more: a plain fresh start is not reported
	_, err = LoadOrNew(ctx, s, rec, nil)
	require.NoError(t, err)
	assert.Len(t, rec.Entries(), 1)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, closeFn, err := Open(context.Background(), "redis", t.TempDir(), "default")
	require.Error(t, err)
	require.NotNil(t, closeFn)
	assert.NoError(t, closeFn())
}

func TestNATSStore(t *testing.T) {
	ctx := context.Background()
	emb, err := nats.Start(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, emb.Close()) }()

	s, err := NewNATSStore(ctx, emb.JS, "Landing Page")
	require.NoError(t, err)
	assert.Equal(t, "tplvars.landing-page.state", s.Subject())

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	first := sampleState(t)
	require.NoError(t, s.Save(ctx, first))

	second := sampleState(t)
	require.NoError(t, second.SetDefault("greeting", "hello"))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Configs["greeting"].Default)

	// Workspaces are isolated by subject
	other, err := NewNATSStore(ctx, emb.JS, "other")
	require.NoError(t, err)
	_, err = other.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNATSStorePurgesCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	emb, err := nats.Start(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, emb.Close()) }()

	s, err := NewNATSStore(ctx, emb.JS, "broken")
	require.NoError(t, err)

	_, err = emb.JS.Publish(ctx, s.Subject(), []byte("garbage"))
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
