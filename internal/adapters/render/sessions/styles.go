package sessions

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	session   lipgloss.Style
	id        lipgloss.Style
	detail    lipgloss.Style
	summary   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	student   lipgloss.Style
	tutor     lipgloss.Style
	system    lipgloss.Style
	note      lipgloss.Style
	noteLabel lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		session:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		id:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		summary:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		student:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		tutor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		system:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		note:      lipgloss.NewStyle().Foreground(lipgloss.Color("222")).PaddingLeft(2),
		noteLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}
