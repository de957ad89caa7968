package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/mark3labs/tplvars/internal/notify"
	"github.com/mark3labs/tplvars/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	faker := gofakeit.New(7)

	for i := 0; i < 20; i++ {
		var b strings.Builder
		for j := 0; j < 1+i%5; j++ {
			name := faker.LetterN(6)
			b.WriteString("<p>{{" + name + "}}</p>")
			if j%2 == 0 {
				// Repeat some names so deduplication runs too
				b.WriteString("<i>{{ " + name + " }}</i>")
			}
		}

		e, store, _ := newTestEngine(t, "")
		first, err := e.SetText(ctx, b.String())
		require.NoError(t, err)
		require.True(t, first.Changed)
		text, saves := e.Text(), store.count()

		second, err := e.Reconcile(ctx)
		require.NoError(t, err)
		assert.False(t, second.Changed, b.String())
		assert.Empty(t, second.Added)
		assert.Empty(t, second.Removed)
		assert.Equal(t, text, e.Text())
		assert.Equal(t, saves, store.count(), "unchanged pass must not persist")
	}
}

func TestReconcileAddsAndRemoves(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "")

	res, err := e.SetText(ctx, "<h1>{{title}}</h1><p>{{body}}</p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "body"}, res.Added)
	assert.Equal(t, []string{"title", "body"}, res.FinalNames)

	// Two removed at once is not a rename
	res, err = e.SetText(ctx, "<h1>static</h1>")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"title", "body"}, res.Removed)
	assert.Nil(t, res.PendingRename)
	assert.Empty(t, e.Snapshot().Configs)
}

func TestReconcileDeduplicates(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		rewrites []Rewrite
	}{
		{
			name:     "pair",
			text:     "<p>{{v}}</p><p>{{v}}</p>",
			want:     "<p>{{v}}</p><p>{{v2}}</p>",
			rewrites: []Rewrite{{From: "v", To: "v2"}},
		},
		{
			name:     "triple",
			text:     "{{v}}{{v}}{{v}}",
			want:     "{{v}}{{v2}}{{v3}}",
			rewrites: []Rewrite{{From: "v", To: "v2"}, {From: "v", To: "v3"}},
		},
		{
			name:     "suffix already used",
			text:     "{{v}}{{v2}}{{v}}",
			want:     "{{v}}{{v2}}{{v3}}",
			rewrites: []Rewrite{{From: "v", To: "v3"}},
		},
		{
			name:     "spacing variants count as duplicates",
			text:     "{{ v }}{{v}}",
			want:     "{{ v }}{{v2}}",
			rewrites: []Rewrite{{From: "v", To: "v2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, rec := newTestEngine(t, "")

			res, err := e.SetText(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, tt.rewrites, res.Deduplicated)
			assert.Equal(t, len(tt.rewrites), rec.Count(notify.Info))
		})
	}
}

func TestReconcileRenameDetection(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Engine, *memStore) {
		t.Helper()
		e, store, _ := newTestEngine(t, "")
		_, err := e.SetText(ctx, "{{a}} {{b}}")
		require.NoError(t, err)
		_, err = e.SetDefault(ctx, "b", "hello")
		require.NoError(t, err)

		res, err := e.SetText(ctx, "{{a}} {{x}}")
		require.NoError(t, err)
		require.NotNil(t, res.PendingRename)
		assert.Equal(t, workspace.RenamePrompt{From: "b", To: "x"}, *res.PendingRename)
		assert.Equal(t, []string{"x"}, res.Added)
		assert.Equal(t, []string{"b"}, res.Removed)

		// The registry waits for the decision
		snap := e.Snapshot()
		assert.Contains(t, snap.Configs, "b")
		assert.NotContains(t, snap.Configs, "x")
		require.NotNil(t, snap.PendingRename)
		return e, store
	}

	t.Run("accept keeps configuration", func(t *testing.T) {
		e, store := setup(t)
		before := store.count()

		_, err := e.ResolveRename(ctx, true)
		require.NoError(t, err)

		snap := e.Snapshot()
		assert.Equal(t, []string{"a", "x"}, snap.Names())
		assert.Equal(t, "hello", snap.Configs["x"].Default)
		assert.Nil(t, snap.PendingRename)
		assert.Nil(t, e.PendingRename())
		assert.Greater(t, store.count(), before)
	})

	t.Run("reject starts fresh", func(t *testing.T) {
		e, _ := setup(t)

		_, err := e.ResolveRename(ctx, false)
		require.NoError(t, err)

		snap := e.Snapshot()
		assert.Equal(t, []string{"a", "x"}, snap.Names())
		assert.Empty(t, snap.Configs["x"].Default)
	})

	t.Run("structural commands wait", func(t *testing.T) {
		e, _ := setup(t)

		_, err := e.InsertInstance(ctx, "anything", 0)
		assert.ErrorIs(t, err, ErrRenamePending)
		_, err = e.DeleteInstance(ctx, "anything")
		assert.ErrorIs(t, err, ErrRenamePending)
	})

	t.Run("a later edit supersedes the prompt", func(t *testing.T) {
		e, _ := setup(t)

		res, err := e.SetText(ctx, "{{a}} {{b}}")
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Nil(t, e.PendingRename())
		assert.Equal(t, []string{"a", "b"}, e.Snapshot().Names())
	})

	t.Run("nothing pending", func(t *testing.T) {
		e, _, _ := newTestEngine(t, "")
		_, err := e.ResolveRename(ctx, true)
		assert.ErrorIs(t, err, ErrNoPendingRename)
	})
}

func TestReconcileNeutralizesReservedNames(t *testing.T) {
	ctx := context.Background()
	e, _, rec := newTestEngine(t, "")

	res, err := e.SetText(ctx, "<p>{{block_1_instance_2}}</p>")
	require.NoError(t, err)

	assert.Equal(t, "<p>{{INVALID_VAR_block_1_instance_2}}</p>", e.Text())
	require.Len(t, res.Neutralized, 1)
	assert.Equal(t, "block_1_instance_2", res.Neutralized[0].Name)
	assert.Equal(t, []string{"INVALID_VAR_block_1_instance_2"}, e.Snapshot().Names())
	assert.Equal(t, 1, rec.Count(notify.Warning))

	again, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestReconcileAbortsRenameToOrphanInstance(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "")
	_, err := e.SetText(ctx, "{{a}}")
	require.NoError(t, err)

	orphan := "<!-- START: block_zz_instance_5 -->{{block_zz_instance_5_a}}<!-- END: block_zz_instance_5 -->"
	res, err := e.SetText(ctx, orphan)
	require.NoError(t, err)

	assert.True(t, res.Aborted)
	assert.Nil(t, res.PendingRename)
	assert.Contains(t, e.Text(), "{{INVALID_VAR_block_zz_instance_5_a}}")
	assert.Equal(t, []string{"a"}, e.Snapshot().Names())
}

func TestReconcileNeutralizesInstancesOfMissingBlocks(t *testing.T) {
	ctx := context.Background()
	e, _, rec := newTestEngine(t, "")

	orphan := "<!-- START: block_zz_instance_5 -->{{block_zz_instance_5_a}}{{block_zz_instance_5_b}}<!-- END: block_zz_instance_5 -->"
	res, err := e.SetText(ctx, orphan)
	require.NoError(t, err)

	require.Len(t, res.Neutralized, 2)
	assert.False(t, res.Aborted)
	assert.Equal(t,
		"<!-- START: block_zz_instance_5 -->{{INVALID_VAR_block_zz_instance_5_a}}{{INVALID_VAR_block_zz_instance_5_b}}<!-- END: block_zz_instance_5 -->",
		e.Text())
	assert.Equal(t, []string{"INVALID_VAR_block_zz_instance_5_a", "INVALID_VAR_block_zz_instance_5_b"}, e.Snapshot().Names())
	assert.Equal(t, 2, rec.Count(notify.Warning))

	again, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestReconcileLeavesReservedNamesInBlockTemplatesQuiet(t *testing.T) {
	ctx := context.Background()
	e, _, rec := newTestEngine(t, "{{main}}")

	_, err := e.AddCodeBlock(ctx, "card", "<div>{{block_x_instance_1_y}}</div>")
	require.NoError(t, err)

	for range 2 {
		res, err := e.Reconcile(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Neutralized)
	}
	assert.Equal(t, 0, rec.Count(notify.Warning))
	assert.Equal(t, []string{"main"}, e.Snapshot().Names())

	blk, err := e.Snapshot().ResolveBlock("card")
	require.NoError(t, err)
	assert.Equal(t, "<div>{{block_x_instance_1_y}}</div>", blk.Template)
}

func TestReconcileIgnoresBlockOnlyNames(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "{{main}}")

	_, err := e.AddCodeBlock(ctx, "card", "<div>{{preview}}</div>")
	require.NoError(t, err)

	assert.Equal(t, []string{"main"}, e.Snapshot().Names())
}
