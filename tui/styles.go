package tui

import "github.com/charmbracelet/lipgloss"

var (
	protectedColor   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	unprotectedColor = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	mutedColor       = lipgloss.AdaptiveColor{Light: "#6E6E6E", Dark: "#9CA3AF"}
)

type styles struct {
	title       lipgloss.Style
	protected   lipgloss.Style
	unprotected lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	pill        lipgloss.Style
	err         lipgloss.Style
	help        lipgloss.Style
	frame       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Italic(true).Foreground(mutedColor),
		protected:   lipgloss.NewStyle().Bold(true).Foreground(protectedColor),
		unprotected: lipgloss.NewStyle().Bold(true).Foreground(unprotectedColor),
		label:       lipgloss.NewStyle().Foreground(mutedColor).Width(12),
		value:       lipgloss.NewStyle(),
		pill:        lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor),
		err:         lipgloss.NewStyle().Foreground(unprotectedColor),
		help:        lipgloss.NewStyle().Foreground(mutedColor),
		frame:       lipgloss.NewStyle().Padding(1, 2),
	}
}
