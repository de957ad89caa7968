package token

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "single placeholder",
			text: "<h1>{{title}}</h1>",
			want: []string{"title"},
		},
		{
			name: "repeated names appear once in first-seen order",
			text: "{{b}} {{a}} {{b}} {{c}} {{a}}",
			want: []string{"b", "a", "c"},
		},
		{
			name: "inner whitespace tolerated",
			text: "{{  title  }} and {{\ttitle}}",
			want: []string{"title"},
		},
		{
			name: "names with whitespace or braces are not tokens",
			text: "{{two words}} {{a{b}} {{}}",
			want: nil,
		},
		{
			name: "unicode names",
			text: "<p>{{제목}}</p><p>{{작성자}}</p>",
			want: []string{"제목", "작성자"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestScanIsRestartable(t *testing.T) {
	text := "{{a}}{{b}}{{c}}"
	seq := Scan(text)

	// Stop the first iteration early
	for m := range seq {
		require.Equal(t, "a", m.Name)
		break
	}

	var names []string
	for m := range seq {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestScanOffsets(t *testing.T) {
	text := "x {{ name }} y"
	var got []Match
	for m := range Scan(text) {
		got = append(got, m)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "{{ name }}", text[got[0].Start:got[0].End])
	assert.Equal(t, "name", got[0].Name)
}

func TestReplace(t *testing.T) {
	text := "{{v}} {{ v }} {{vv}}"

	assert.Equal(t, "{{w}} {{ v }} {{vv}}", ReplaceFirst(text, "v", "w"))
	assert.Equal(t, "{{w}} {{w}} {{vv}}", ReplaceAll(text, "v", "w"))
	assert.Equal(t, text, ReplaceFirst(text, "missing", "w"))
	assert.True(t, Contains(text, "vv"))
	assert.False(t, Contains(text, "x"))

	// Names are matched literally, not as patterns
	assert.Equal(t, "{{a.b}} {{z}}", ReplaceAll("{{a.b}} {{a+b}}", "a+b", "z"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Identifier
	}{
		{
			name: "plain",
			in:   "title",
			want: Plain{Name: "title"},
		},
		{
			name: "separator without block prefix stays plain",
			in:   "my_instance_var",
			want: Plain{Name: "my_instance_var"},
		},
		{
			name: "bare instance id",
			in:   "block_1_instance_2",
			want: InstanceScoped{
				Name:       "block_1_instance_2",
				BlockID:    "block_1",
				InstanceID: "block_1_instance_2",
			},
		},
		{
			name: "scoped variable",
			in:   "block_cq2v_instance_1700000000000_title",
			want: InstanceScoped{
				Name:       "block_cq2v_instance_1700000000000_title",
				BlockID:    "block_cq2v",
				InstanceID: "block_cq2v_instance_1700000000000",
				Original:   "title",
			},
		},
		{
			name: "scoped variable with collision suffix",
			in:   "block_a_instance_5_title_1",
			want: InstanceScoped{
				Name:       "block_a_instance_5_title_1",
				BlockID:    "block_a",
				InstanceID: "block_a_instance_5",
				Original:   "title_1",
			},
		},
		{
			name: "non numeric stamp",
			in:   "block_a_instance_x_y",
			want: InstanceScoped{
				Name:       "block_a_instance_x_y",
				BlockID:    "block_a",
				InstanceID: "block_a_instance_x",
				Original:   "y",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())

			_, scoped := got.(InstanceScoped)
			assert.Equal(t, scoped, IsReserved(tt.in))
		})
	}
}

func TestNamingHelpers(t *testing.T) {
	id := InstanceID("block_abc", 42)
	assert.Equal(t, "block_abc_instance_42", id)
	assert.Equal(t, "block_abc_instance_42_title", ScopedName(id, "title"))
	assert.Equal(t, "INVALID_VAR_block_1_instance_2", Neutralized("block_1_instance_2"))
	assert.Equal(t, "ERROR_VAR_CONFLICT_title", Conflict("title"))
	assert.True(t, MaybeScoped("x_instance_y"))
	assert.False(t, MaybeScoped("instance"))
}

func TestInstances(t *testing.T) {
	text := strings.Join([]string{
		"<div>",
		Wrap("block_a_instance_1", "{{block_a_instance_1_t}}"),
		"<p>gap</p>",
		Wrap("block_b_instance_2", "body"),
		StartMarker("block_c_instance_3"),
		"</div>",
	}, "\n")

	spans := Instances(text)
	require.Len(t, spans, 2)
	assert.Equal(t, "block_a_instance_1", spans[0].ID)
	assert.True(t, strings.HasPrefix(text[spans[0].Start:], StartMarker("block_a_instance_1")))
	assert.True(t, strings.HasSuffix(text[:spans[0].End], EndMarker("block_a_instance_1")))
	assert.Equal(t, "block_b_instance_2", spans[1].ID)

	assert.Equal(t, []string{"block_a_instance_1", "block_b_instance_2", "block_c_instance_3"}, InstanceIDs(text))
	assert.Equal(t, []string{"block_a_instance_1"}, InstancesOf(text, "block_a"))
	assert.Empty(t, InstancesOf(text, "block_z"))
}

func TestOpenInstancesAt(t *testing.T) {
	region := Wrap("block_a_instance_1", "inner")
	text := "before\n" + region + "\nafter"

	tests := []struct {
		name string
		pos  int
		want []string
	}{
		{name: "before region", pos: 3, want: []string{}},
		{name: "inside region", pos: strings.Index(text, "inner"), want: []string{"block_a_instance_1"}},
		{name: "after region", pos: strings.Index(text, "after"), want: []string{}},
		{name: "out of range clamps", pos: len(text) + 10, want: []string{}},
		{name: "negative clamps", pos: -1, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpenInstancesAt(text, tt.pos))
		})
	}

	unterminated := StartMarker("block_x_instance_9") + "\ntext"
	assert.Equal(t, []string{"block_x_instance_9"}, OpenInstancesAt(unterminated, len(unterminated)))
}

func TestRemoveInstance(t *testing.T) {
	a := Wrap("block_a_instance_1", "{{block_a_instance_1_t}}")
	b := Wrap("block_a_instance_2", "{{block_a_instance_2_t}}")
	text := "top\n" + a + "\n" + b + "\nbottom"

	out, ok := RemoveInstance(text, "block_a_instance_1")
	require.True(t, ok)
	assert.Equal(t, "top\n"+b+"\nbottom", out)
	assert.False(t, slices.Contains(InstanceIDs(out), "block_a_instance_1"))

	same, ok := RemoveInstance(out, "block_a_instance_1")
	assert.False(t, ok)
	assert.Equal(t, out, same)
}
