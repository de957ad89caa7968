package workspace

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVariablesSort(t *testing.T) {
	s := New("")
	for _, n := range []string{"v10", "v2", "Apple", "banana", "v1"} {
		s.Ensure(n)
	}
	s.TemplateOrder = []string{"v10", "v2", "Apple", "banana", "v1"}

	tests := []struct {
		sort string
		want []string
	}{
		{sort: SortDefault, want: []string{"v10", "v2", "Apple", "banana", "v1"}},
		{sort: SortNameAsc, want: []string{"Apple", "banana", "v1", "v2", "v10"}},
		{sort: SortNameDesc, want: []string{"v10", "v2", "v1", "banana", "Apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			got, err := s.ListVariables(FilterAll, tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := s.ListVariables(FilterAll, "size_asc")
	assert.Error(t, err)
}

func TestListVariablesGroupSortAndFilter(t *testing.T) {
	s := dropdownState(t, "d1", "d2", "d3", "d4")
	s.Ensure("t1")
	require.NoError(t, s.Link("d3", "d4", fixedNow))
	require.NoError(t, s.Link("d1", "d2", fixedNow.Add(time.Minute)))
	s.TemplateOrder = []string{"t1", "d1", "d2", "d3", "d4"}

	got, err := s.ListVariables(FilterAll, SortGroupAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d4", "d1", "d2", "t1"}, got)

	got, err = s.ListVariables(FilterText, SortDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, got)

	got, err = s.ListVariables(FilterDropdown, SortDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, got)

	got, err = s.ListVariables("d1,d2", SortDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, got)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "title", want: "title"},
		{in: "block_a_instance_17_title", want: "title"},
		{in: "block_a_instance_17_first_name", want: "first_name"},
		{in: "block_a_instance_17", want: "block_a_instance_17"},
		{in: "INVALID_VAR_block_a_instance_1_x", want: "INVALID_VAR_block_a_instance_1_x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}

func TestSharedDisplayNames(t *testing.T) {
	shared := SharedDisplayNames([]string{
		"title",
		"block_a_instance_1_title",
		"block_a_instance_2_body",
		"footer",
	})
	assert.Equal(t, map[string]bool{"title": true, "block_a_instance_1_title": true}, shared)
}

func TestBlocks(t *testing.T) {
	s := New("")

	b, err := s.AddBlock("  card  ", "<div>{{x}}</div>")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.ID, "block_"))
	assert.NotContains(t, strings.TrimPrefix(b.ID, "block_"), "_")
	assert.Equal(t, "card", b.Name)

	_, err = s.AddBlock("card", "")
	assert.ErrorIs(t, err, ErrDuplicateBlockName)
	_, err = s.AddBlock(" ", "")
	assert.ErrorIs(t, err, ErrEmptyBlockName)

	other, err := s.AddBlock("banner", "")
	require.NoError(t, err)
	assert.ErrorIs(t, s.RenameBlock(other.ID, "card"), ErrDuplicateBlockName)
	require.NoError(t, s.RenameBlock(b.ID, "card"))

	got, err := s.ResolveBlock("banner")
	require.NoError(t, err)
	assert.Same(t, other, got)
	got, err = s.ResolveBlock(b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)

	blocks := s.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "banner", blocks[0].Name)

	require.NoError(t, s.SetBlockTemplate(b.ID, "{{y}}"))
	assert.Equal(t, "{{y}}", b.Template)

	require.NoError(t, s.RemoveBlock(b.ID))
	assert.ErrorIs(t, s.RemoveBlock(b.ID), ErrBlockNotFound)
	_, err = s.ResolveBlock("card")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
