// Package theme holds the light and dark colour palettes used by CLI output.
package theme

import (
	"fmt"
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the colour palette for terminal output.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy
	BgBase    string
	BgSurface string

	// Foreground hierarchy (dim→bright)
	FgMuted string
	FgBase  string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Mode badges
	TextBadgeBg     string
	TextBadgeFg     string
	DropdownBadgeBg string
	DropdownBadgeFg string

	// Chroma style used for highlighted HTML
	CodeStyle string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

var (
	mu      sync.RWMutex
	current = NewLight()
)

// Current returns the active theme.
func Current() *Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set activates the theme with the given name.
func Set(name string) error {
	t, err := ByName(name)
	if err != nil {
		return err
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return nil
}

// ByName returns a fresh copy of the named theme.
func ByName(name string) (*Theme, error) {
	switch name {
	case "", "light":
		return NewLight(), nil
	case "dark":
		return NewDark(), nil
	default:
		return nil, fmt.Errorf("unknown theme %q (want light or dark)", name)
	}
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	badge := lipgloss.NewStyle().Padding(0, 1)
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		Name: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Bold(true),
		Shared: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Underline(true),
		TextBadge: badge.
			Foreground(lipgloss.Color(t.TextBadgeFg)).
			Background(lipgloss.Color(t.TextBadgeBg)),
		DropdownBadge: badge.
			Foreground(lipgloss.Color(t.DropdownBadgeFg)).
			Background(lipgloss.Color(t.DropdownBadgeBg)),
		InfoToast: toast.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Info)),
		WarningToast: toast.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Warning)),
		ErrorToast: toast.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Error)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(InterpolateColor(t.Secondary, t.BgBase, 0.3))).
			Padding(0, 1),
	}
}

// GroupChip renders a sync group label on its group colour.
func (t *Theme) GroupChip(label, color string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ContrastText(color))).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(label)
}
