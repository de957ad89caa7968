package theme

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantDark bool
		wantErr  bool
	}{
		{name: "", wantName: "light"},
		{name: "light", wantName: "light"},
		{name: "dark", wantName: "dark", wantDark: true},
		{name: "solarized", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := ByName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, th.Name)
			assert.Equal(t, tt.wantDark, th.IsDark)
		})
	}
}

func TestSetSwitchesCurrent(t *testing.T) {
	t.Cleanup(func() { _ = Set("light") })

	require.NoError(t, Set("dark"))
	assert.Equal(t, "dark", Current().Name)
	assert.Error(t, Set("nope"))
	assert.Equal(t, "dark", Current().Name)
}

func TestStylesAreCached(t *testing.T) {
	th := NewDark()
	assert.Same(t, th.S(), th.S())
}

func TestGroupChipPlainProfile(t *testing.T) {
	lipgloss.Writer.Profile = colorprofile.Ascii

	th := NewLight()
	chip := th.GroupChip("Group 1", "#fdba74")
	assert.Contains(t, chip, "Group 1")
}

func TestHexHelpers(t *testing.T) {
	r, g, b := ParseHexColor("#fdba74")
	assert.Equal(t, [3]uint8{0xfd, 0xba, 0x74}, [3]uint8{r, g, b})
	assert.Equal(t, "#fdba74", FormatHexColor(r, g, b))

	r, g, b = ParseHexColor("bad")
	assert.Equal(t, [3]uint8{}, [3]uint8{r, g, b})

	assert.Equal(t, "#808080", InterpolateColor("#000000", "#ffffff", 0.5025))
	assert.Equal(t, "#111827", ContrastText("#fdba74"))
	assert.Equal(t, "#ffffff", ContrastText("#1e3a8a"))
}
