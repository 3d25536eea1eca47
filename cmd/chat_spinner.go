package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type replyDeltaMsg string

type replyDoneMsg struct {
	err error
}

// replyProgress shows how long the tutor has been working and how much of
// the reply has arrived so far.
type replyProgress struct {
	spinner spinner.Model
	meta    lipgloss.Style
	started time.Time
	elapsed time.Duration
	chunks  int
	runes   int
	err     error
	done    bool
}

func newReplyProgress(started time.Time) replyProgress {
	return replyProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("114"))),
		),
		meta:    lipgloss.NewStyle().Faint(true),
		started: started,
	}
}

func (m replyProgress) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m replyProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.elapsed = time.Since(m.started).Truncate(time.Second)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case replyDeltaMsg:
		m.chunks++
		m.runes += len([]rune(string(msg)))
		return m, nil
	case replyDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m replyProgress) View() string {
	if m.done {
		return ""
	}

	label := "Tutor is thinking..."
	meta := m.elapsed.String()
	if m.chunks > 0 {
		label = "Tutor is replying..."
		meta = fmt.Sprintf("%d chars · %s", m.runes, meta)
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), label, m.meta.Render(meta))
}

// runReplyProgress drives stream under a progress line on output. Deltas
// handed to the callback update the line until stream returns.
func runReplyProgress(ctx context.Context, output io.Writer, stream func(context.Context, func(string)) error) error {
	p := tea.NewProgram(
		newReplyProgress(time.Now()),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go func() {
		err := stream(ctx, func(delta string) {
			p.Send(replyDeltaMsg(delta))
		})
		p.Send(replyDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := final.(replyProgress)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", final)
	}

	return result.err
}
