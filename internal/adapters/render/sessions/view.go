package sessions

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/revisionai/internal/application"
	"github.com/bnema/revisionai/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const summaryWidth = 72

type RenderOptions struct {
	Now time.Time
}

type listPage struct {
	summaries []application.SessionSummary
	opts      RenderOptions
}

type transcriptPage struct {
	session domain.Session
	opts    RenderOptions
}

// RenderList draws the session overview in the order given.
func RenderList(summaries []application.SessionSummary, opts RenderOptions) (string, error) {
	return draw(listPage{summaries: summaries, opts: opts})
}

// RenderTranscript draws one session with its rolling note on top.
func RenderTranscript(session domain.Session, opts RenderOptions) (string, error) {
	return draw(transcriptPage{session: session, opts: opts})
}

func (p listPage) render(s styles) string {
	summaries, opts := p.summaries, p.opts
	lines := []string{
		s.title.Render("RevisionAI Sessions"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(summaries))),
	}

	if len(summaries) == 0 {
		lines = append(lines, s.empty.Render("No sessions yet. Start one with `rai session new`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, summary := range summaries {
		lines = append(lines, s.section.Render(renderSummary(summary, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSummary(summary application.SessionSummary, opts RenderOptions, s styles) string {
	heading := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.session.Render(summary.Title),
		" ",
		s.id.Render("("+string(summary.ID)+")"),
	)

	meta := fmt.Sprintf("%s · %s", pluralize(summary.MessageCount, "message"), formatUpdated(summary.UpdatedAt, opts.Now))
	if summary.HasNote {
		meta += " · summarised"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		s.detail.Render(meta),
		s.summary.Render(application.SummarizeText(summary.Summary, summaryWidth)),
	)
}

func (p transcriptPage) render(s styles) string {
	session, opts := p.session, p.opts
	lines := []string{
		s.title.Render(session.Title),
		s.header.Render(fmt.Sprintf("%s · %s · %s",
			session.ID,
			pluralize(len(session.Messages), "message"),
			formatUpdated(session.UpdatedAt, opts.Now),
		)),
	}

	if session.SystemNote != "" {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.noteLabel.Render("Earlier in this session"),
			s.note.Render(session.SystemNote),
		)))
	}

	for _, message := range session.Messages {
		if message.Role == domain.RoleNote {
			continue
		}
		lines = append(lines, s.section.Render(renderMessage(message, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderMessage(message domain.Message, s styles) string {
	var label string
	switch message.Role {
	case domain.RoleUser:
		label = s.student.Render("Student")
	case domain.RoleAssistant:
		label = s.tutor.Render("Tutor")
	default:
		label = s.system.Render(strings.ToUpper(string(message.Role)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, label, s.detail.Render(message.Content))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatUpdated(updatedAt, now time.Time) string {
	if updatedAt.IsZero() {
		return "never updated"
	}
	if now.IsZero() {
		return "updated " + updatedAt.Format("15:04 on 02 Jan")
	}

	elapsed := now.Sub(updatedAt)
	switch {
	case elapsed < time.Minute:
		return "updated just now"
	case elapsed < time.Hour:
		return "updated " + pluralize(int(math.Floor(elapsed.Minutes())), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return "updated " + pluralize(int(math.Floor(elapsed.Hours())), "hour") + " ago"
	default:
		return "updated " + pluralize(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	}
}
