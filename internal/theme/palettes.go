package theme

// NewLight creates the default light theme.
func NewLight() *Theme {
	return &Theme{
		Name:   "light",
		IsDark: false,

		Primary:   "#1e40af",
		Secondary: "#6b7280",

		BgBase:    "#ffffff",
		BgSurface: "#f3f4f6",

		FgMuted: "#6b7280",
		FgBase:  "#222222",

		Success: "#16a34a",
		Warning: "#d97706",
		Error:   "#dc2626",
		Info:    "#2563eb",

		TextBadgeBg:     "#e5e7eb",
		TextBadgeFg:     "#4b5563",
		DropdownBadgeBg: "#dbeafe",
		DropdownBadgeFg: "#1e40af",

		CodeStyle: "github",
	}
}

// NewDark creates the dark theme.
func NewDark() *Theme {
	return &Theme{
		Name:   "dark",
		IsDark: true,

		Primary:   "#93c5fd",
		Secondary: "#9ca3af",

		BgBase:    "#111827",
		BgSurface: "#1f2937",

		FgMuted: "#9ca3af",
		FgBase:  "#e5e7eb",

		Success: "#4ade80",
		Warning: "#fbbf24",
		Error:   "#f87171",
		Info:    "#60a5fa",

		TextBadgeBg:     "#374151",
		TextBadgeFg:     "#d1d5db",
		DropdownBadgeBg: "#1e3a8a",
		DropdownBadgeFg: "#dbeafe",

		CodeStyle: "monokai",
	}
}
