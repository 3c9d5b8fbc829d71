package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	identity   lipgloss.Style
	detail     lipgloss.Style
	crop       lipgloss.Style
	empty      lipgloss.Style
	section    lipgloss.Style
	warning    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		identity:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		crop:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		empty:      lipgloss.NewStyle().Faint(true),
		section:    lipgloss.NewStyle().MarginTop(1),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
