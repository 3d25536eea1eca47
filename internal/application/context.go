package application

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

const (
	// WindowSize is the number of recent messages kept verbatim.
	WindowSize = 12

	DefaultSummaryLength = 280
	TitleLength          = 40
	UntitledTitle        = "Untitled"

	olderSummaryLength = 500
	noteLength         = 600
	ellipsis           = "…"
)

// SummarizeText cuts text to at most maxLength characters. A cut string keeps
// its first maxLength-1 characters, loses trailing whitespace and ends with a
// single ellipsis character.
func SummarizeText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	keep := maxLength - 1
	if keep < 0 {
		keep = 0
	}

	runes := []rune(text)
	head := strings.TrimRightFunc(string(runes[:keep]), unicode.IsSpace)
	return head + ellipsis
}

// SummarizeMessages renders messages as "Student: ..." / "Tutor: ..." lines
// with whitespace collapsed, bounded to 500 characters.
func SummarizeMessages(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		speaker := "Tutor"
		if message.Role == domain.RoleUser {
			speaker = "Student"
		}
		lines = append(lines, speaker+": "+strings.Join(strings.Fields(message.Content), " "))
	}

	return SummarizeText(strings.Join(lines, "\n"), olderSummaryLength)
}

// InferTitle titles a conversation after its first student message.
func InferTitle(messages []domain.Message) string {
	for _, message := range messages {
		if message.Role == domain.RoleUser {
			return SummarizeText(message.Content, TitleLength)
		}
	}

	return UntitledTitle
}

type TrimResult struct {
	Trimmed []domain.Message
	// Note is the rolling note after trimming. Empty means there is none.
	Note string
}

// ContextManager bounds the verbatim conversation window and folds evicted
// messages into the rolling note. It keeps no state between calls.
type ContextManager struct {
	clock ports.Clock
	ids   ports.IDGenerator
}

func NewContextManager(clock ports.Clock, ids ports.IDGenerator) *ContextManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ids == nil {
		ids = ports.UUIDGenerator{}
	}

	return &ContextManager{clock: clock, ids: ids}
}

// Trim keeps the last WindowSize messages and replaces everything older with
// a single note message placed first. The input slice is never modified.
func (m *ContextManager) Trim(messages []domain.Message, existingNote string) TrimResult {
	if len(messages) <= WindowSize {
		return TrimResult{Trimmed: messages, Note: existingNote}
	}

	cut := len(messages) - WindowSize
	older, recent := messages[:cut], messages[cut:]

	note := SummarizeMessages(older)
	if existingNote != "" {
		note = SummarizeText(existingNote+"\n"+note, noteLength)
	}

	trimmed := make([]domain.Message, 0, len(recent)+1)
	trimmed = append(trimmed, domain.Message{
		ID:        domain.MessageID("note-" + m.ids.NewID()),
		Role:      domain.RoleNote,
		Content:   note,
		CreatedAt: m.clock.Now(),
	})
	trimmed = append(trimmed, recent...)

	return TrimResult{Trimmed: trimmed, Note: note}
}
