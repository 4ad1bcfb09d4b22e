package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Error    lipgloss.Style
	Input    lipgloss.Style
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
}

func newStyles() styles {
	fg := lipgloss.Color("#c0caf5")
	dim := lipgloss.Color("#565f89")
	primary := lipgloss.Color("#7aa2f7")
	green := lipgloss.Color("#9ece6a")
	red := lipgloss.Color("#f7768e")
	selection := lipgloss.Color("#33467c")

	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1),
		Muted:    lipgloss.NewStyle().Foreground(dim),
		Item:     lipgloss.NewStyle().Foreground(fg).Padding(0, 2),
		Selected: lipgloss.NewStyle().Foreground(fg).Background(selection).Padding(0, 2),
		Done:     lipgloss.NewStyle().Foreground(green),
		Error:    lipgloss.NewStyle().Foreground(red),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
		Help:    lipgloss.NewStyle().Foreground(dim).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(primary),
	}
}
