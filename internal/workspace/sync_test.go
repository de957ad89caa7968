package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func colourState(t *testing.T) *State {
	t.Helper()
	s := dropdownState(t, "A", "B")
	require.NoError(t, s.AddOption("A", "Red", "r1"))
	require.NoError(t, s.AddOption("A", "Blue", "b1"))
	require.NoError(t, s.AddOption("B", "Red", "r2"))
	require.NoError(t, s.AddOption("B", "Blue", "b2"))
	require.NoError(t, s.Link("A", "B", fixedNow))
	return s
}

func TestPropagateSyncMatchesDisplayLabel(t *testing.T) {
	s := colourState(t)
	require.NoError(t, s.SetDefault("B", "b2"))

	require.NoError(t, s.SetDefault("A", "r1"))
	changed := s.PropagateSync("A")

	assert.Equal(t, []string{"B"}, changed)
	assert.Equal(t, "r2", s.Configs["B"].Default)
}

func TestPropagateSyncNoOps(t *testing.T) {
	t.Run("unmatched label", func(t *testing.T) {
		s := colourState(t)
		require.NoError(t, s.AddOption("A", "Green", "g1"))
		require.NoError(t, s.SetDefault("B", "b2"))
		require.NoError(t, s.SetDefault("A", "g1"))

		assert.Empty(t, s.PropagateSync("A"))
		assert.Equal(t, "b2", s.Configs["B"].Default)
	})

	t.Run("target not dropdown", func(t *testing.T) {
		s := colourState(t)
		// Force an inconsistent mode without detaching
		s.Configs["B"].Mode = ModeText
		s.Configs["B"].Default = "b2"

		assert.Empty(t, s.PropagateSync("A"))
		assert.Equal(t, "b2", s.Configs["B"].Default)
	})

	t.Run("unsynced source", func(t *testing.T) {
		s := dropdownState(t, "solo")
		assert.Nil(t, s.PropagateSync("solo"))
		assert.Nil(t, s.PropagateSync("missing"))
	})
}

func TestPropagateSyncIsOneDirectional(t *testing.T) {
	s := colourState(t)
	require.NoError(t, s.SetDefault("A", "r1"))
	require.NoError(t, s.SetDefault("B", "b2"))

	// Changing B without propagating leaves A alone
	assert.Equal(t, "r1", s.Configs["A"].Default)

	assert.Equal(t, []string{"A"}, s.PropagateSync("B"))
	assert.Equal(t, "b1", s.Configs["A"].Default)
}

func TestLinkMergesGroups(t *testing.T) {
	s := dropdownState(t, "a", "b", "c", "d")
	older := fixedNow.Add(-time.Hour)

	require.NoError(t, s.Link("a", "b", older))
	require.NoError(t, s.Link("c", "d", fixedNow))
	require.NoError(t, s.Link("b", "c", fixedNow.Add(time.Hour)))

	assert.Equal(t, []string{"b", "c", "d"}, s.Configs["a"].SyncWith)
	assert.Equal(t, []string{"a", "b", "c"}, s.Configs["d"].SyncWith)
	require.Len(t, s.SyncGroups, 1)

	g := s.SyncGroups["a,b,c,d"]
	require.NotNil(t, g)
	assert.Equal(t, older.UnixMilli(), g.CreatedAt)
	assert.Equal(t, "Group 1", g.Name)
	assert.Equal(t, Palette[0], g.Color)
	assert.Empty(t, s.SymmetryViolations())
}

func TestLinkValidation(t *testing.T) {
	s := dropdownState(t, "a")
	s.Ensure("text")

	assert.ErrorIs(t, s.Link("a", "a", fixedNow), ErrSelfSync)
	assert.ErrorIs(t, s.Link("a", "text", fixedNow), ErrModeMismatch)
	assert.ErrorIs(t, s.Link("a", "missing", fixedNow), ErrVariableNotFound)
}

func TestUnlinkSplitsGroup(t *testing.T) {
	s := dropdownState(t, "a", "b", "c")
	require.NoError(t, s.Link("a", "b", fixedNow))
	require.NoError(t, s.Link("a", "c", fixedNow))

	require.NoError(t, s.Unlink("a", "c", fixedNow.Add(time.Hour)))

	assert.Equal(t, []string{"b"}, s.Configs["a"].SyncWith)
	assert.Equal(t, []string{"a"}, s.Configs["b"].SyncWith)
	assert.Empty(t, s.Configs["c"].SyncWith)
	require.Contains(t, s.SyncGroups, "a,b")
	assert.Equal(t, fixedNow.UnixMilli(), s.SyncGroups["a,b"].CreatedAt)
	assert.Empty(t, s.SymmetryViolations())

	require.NoError(t, s.Unlink("a", "b", fixedNow))
	assert.Empty(t, s.SyncGroups)
	assert.Empty(t, s.Configs["a"].SyncWith)
	assert.Empty(t, s.Configs["b"].SyncWith)
}

func TestSetModeTextDetaches(t *testing.T) {
	s := dropdownState(t, "a", "b", "c")
	require.NoError(t, s.Link("a", "b", fixedNow))
	require.NoError(t, s.Link("a", "c", fixedNow))

	require.NoError(t, s.SetMode("a", ModeText))

	assert.Empty(t, s.Configs["a"].SyncWith)
	assert.Equal(t, []string{"c"}, s.Configs["b"].SyncWith)
	assert.Equal(t, []string{"b"}, s.Configs["c"].SyncWith)
	assert.Contains(t, s.SyncGroups, "b,c")
	assert.Empty(t, s.SymmetryViolations())
}

func TestRemoveDetaches(t *testing.T) {
	s := dropdownState(t, "a", "b")
	require.NoError(t, s.Link("a", "b", fixedNow))

	s.Remove("a")

	assert.Empty(t, s.Configs["b"].SyncWith)
	assert.Empty(t, s.SyncGroups)
}

func TestResetGroup(t *testing.T) {
	s := dropdownState(t, "a", "b", "c")
	require.NoError(t, s.Link("a", "b", fixedNow))

	require.NoError(t, s.ResetGroup("a,b"))
	assert.Empty(t, s.Configs["a"].SyncWith)
	assert.Empty(t, s.Configs["b"].SyncWith)
	assert.Empty(t, s.SyncGroups)

	assert.Error(t, s.ResetGroup("x,y"))
}

func TestRefreshSyncGroups(t *testing.T) {
	s := dropdownState(t, "a", "b", "c", "d")
	require.NoError(t, s.Link("c", "d", fixedNow))

	// Hand-built links without metadata, plus stale metadata
	s.Configs["a"].SyncWith = []string{"b"}
	s.Configs["b"].SyncWith = []string{"a"}
	s.SyncGroups["x,y"] = &SyncGroup{CreatedAt: 1}

	s.RefreshSyncGroups(fixedNow.Add(time.Minute))

	require.Len(t, s.SyncGroups, 2)
	assert.NotContains(t, s.SyncGroups, "x,y")
	assert.Equal(t, "Group 1", s.SyncGroups["c,d"].Name)
	assert.Equal(t, "Group 2", s.SyncGroups["a,b"].Name)
	assert.Equal(t, Palette[1], s.SyncGroups["a,b"].Color)
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "a,b,c", GroupKey([]string{"c", "a", "b", "a"}))
	s := dropdownState(t, "a", "b")
	assert.Empty(t, s.GroupKeyOf("a"))
	require.NoError(t, s.Link("b", "a", fixedNow))
	assert.Equal(t, "a,b", s.GroupKeyOf("b"))
}
