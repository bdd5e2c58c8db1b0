package quote

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	key        lipgloss.Style
	detail     lipgloss.Style
	section    lipgloss.Style
	accept     lipgloss.Style
	reject     lipgloss.Style
	counter    lipgloss.Style
	reply      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		key:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:    lipgloss.NewStyle().MarginTop(1),
		accept:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		reject:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		counter:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		reply:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
