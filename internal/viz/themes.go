package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the viewer.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Good    lipgloss.Color
	Warn    lipgloss.Color
	Bad     lipgloss.Color
}

var (
	ThemeNeon = Theme{
		Name:    "neon",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Muted:   lipgloss.Color("#666688"),
		Good:    lipgloss.Color("#00ff88"),
		Warn:    lipgloss.Color("#ffcc00"),
		Bad:     lipgloss.Color("#ff4444"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
		Good:    lipgloss.Color("#00cc00"),
		Warn:    lipgloss.Color("#ffaa00"),
		Bad:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Muted:   lipgloss.Color("#4488aa"),
		Good:    lipgloss.Color("#00ff88"),
		Warn:    lipgloss.Color("#ffcc00"),
		Bad:     lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{ThemeNeon, ThemeMinimal, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to neon.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNeon
}

// NextTheme cycles through Themes.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames lists Themes in cycling order.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
