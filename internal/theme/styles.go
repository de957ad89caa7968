package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for CLI output.
type Styles struct {
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Name   lipgloss.Style
	Shared lipgloss.Style // display name used by more than one variable

	TextBadge     lipgloss.Style
	DropdownBadge lipgloss.Style

	InfoToast    lipgloss.Style
	WarningToast lipgloss.Style
	ErrorToast   lipgloss.Style

	Panel lipgloss.Style
}
