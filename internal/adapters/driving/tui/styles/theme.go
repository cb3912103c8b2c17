// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	// Primary is the accent used for titles and selection.
	Primary lipgloss.Color

	// Secondary marks section headers such as "Sources".
	Secondary lipgloss.Color

	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default leaf-and-amber palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#4D9A3F"), // leaf green
		Secondary:  lipgloss.Color("#E0A526"), // amber
		Background: lipgloss.Color("#1B1F1A"),
		Foreground: lipgloss.Color("#DDE5D6"),
		Muted:      lipgloss.Color("#7A8472"),
		Success:    lipgloss.Color("#9BD08A"),
		Warning:    lipgloss.Color("#F3D36B"),
		Error:      lipgloss.Color("#E7797A"),
		Border:     lipgloss.Color("#3E473A"),
	}
}

// Styles holds the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames the question box.
	InputField lipgloss.Style

	// Answer frames a generated answer. Failure frames a generation
	// failure message instead.
	Answer  lipgloss.Style
	Failure lipgloss.Style

	// Score renders similarity scores next to sources.
	Score lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),
		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Background).
			Background(theme.Primary),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),

		InputField: framed.BorderForeground(theme.Border),
		Answer: framed.
			BorderForeground(theme.Primary).
			Foreground(theme.Foreground),
		Failure: framed.
			BorderForeground(theme.Error).
			Foreground(theme.Warning),

		Score: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#141813")).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles built from DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
