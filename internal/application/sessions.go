package application

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

const (
	FreshSessionTitle = "Fresh session"

	greetingText = "Hello! I'm RevisionAI. Tell me what you're studying today and I'll help you stay organised."
	clearedText  = "All caught up! Share your next topic and we'll continue from here."
)

// Sessions holds the session transitions. Every method takes the current
// session and returns the next one; nothing is read from or written to a
// store here.
type Sessions struct {
	context *ContextManager
	clock   ports.Clock
	ids     ports.IDGenerator
}

func NewSessions(clock ports.Clock, ids ports.IDGenerator) *Sessions {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ids == nil {
		ids = ports.UUIDGenerator{}
	}

	return &Sessions{
		context: NewContextManager(clock, ids),
		clock:   clock,
		ids:     ids,
	}
}

func (s *Sessions) NewMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(fmt.Sprintf("%s-%s", role, s.ids.NewID())),
		Role:      role,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
}

func (s *Sessions) New() domain.Session {
	now := s.clock.Now()
	return domain.Session{
		ID:        domain.SessionID("session-" + s.ids.NewID()),
		Title:     FreshSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []domain.Message{s.NewMessage(domain.RoleAssistant, greetingText)},
	}
}

func (s *Sessions) AppendUser(session domain.Session, content string) (domain.Session, domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return session, domain.Message{}, domain.ErrEmptyMessage
	}

	message := s.NewMessage(domain.RoleUser, content)
	next := s.append(session, message)

	if len(session.Messages) == 1 && session.Title == FreshSessionTitle {
		next.Title = InferTitle([]domain.Message{message})
	}

	return next, message, nil
}

func (s *Sessions) AppendReply(session domain.Session, content string) (domain.Session, error) {
	if strings.TrimSpace(content) == "" {
		return session, domain.ErrEmptyMessage
	}

	return s.append(session, s.NewMessage(domain.RoleAssistant, content)), nil
}

func (s *Sessions) append(session domain.Session, message domain.Message) domain.Session {
	next := session.Clone()

	messages := append(next.Messages, message)
	result := s.context.Trim(messages, session.SystemNote)

	next.Messages = result.Trimmed
	if result.Note != "" {
		next.SystemNote = result.Note
	}
	next.UpdatedAt = s.clock.Now()

	return next
}

func (s *Sessions) Clear(session domain.Session) domain.Session {
	next := session
	next.Messages = []domain.Message{s.NewMessage(domain.RoleAssistant, clearedText)}
	next.SystemNote = ""
	next.UpdatedAt = s.clock.Now()
	return next
}

func (s *Sessions) Rename(session domain.Session, title string) (domain.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return session, domain.ErrEmptyTitle
	}

	next := session
	next.Title = title
	next.UpdatedAt = s.clock.Now()
	return next, nil
}

// Summaries lists sessions most recently updated first.
func Summaries(sessions []domain.Session) []SessionSummary {
	out := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary := session.SystemNote
		if summary == "" {
			summary = InferTitle(session.Messages)
		}

		out = append(out, SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			UpdatedAt:    session.UpdatedAt,
			Summary:      summary,
			MessageCount: len(session.Messages),
			HasNote:      session.SystemNote != "",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return out
}

// BuildChatRequest derives the relay request from a session. The note
// message is not forwarded verbatim; its text travels as sessionSummary.
func BuildChatRequest(session domain.Session, options map[string]any) domain.ChatRequest {
	messages := make([]domain.ChatMessage, 0, len(session.Messages))
	for _, message := range session.Messages {
		if message.Role == domain.RoleNote {
			continue
		}
		messages = append(messages, domain.ChatMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	request := domain.ChatRequest{
		Messages:       messages,
		SessionSummary: session.SystemNote,
	}
	if len(options) > 0 {
		request.Options = options
	}

	return request
}
