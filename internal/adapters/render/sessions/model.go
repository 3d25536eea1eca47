package sessions

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// page is one printable screen: the session list or a transcript.
type page interface {
	render(s styles) string
}

type pageRenderedMsg string

type model struct {
	page   page
	styles styles
	output string
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return pageRenderedMsg(m.page.render(m.styles))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if rendered, ok := msg.(pageRenderedMsg); ok {
		m.output = string(rendered)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	return m.output
}

// draw runs p through a headless program and returns its final frame.
func draw(p page) (string, error) {
	program := tea.NewProgram(
		model{page: p, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := program.Run()
	if err != nil {
		return "", err
	}

	done, ok := final.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return done.output, nil
}
