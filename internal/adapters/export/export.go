package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/bnema/revisionai/internal/domain"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Document is the exported form of a session. Timestamps are epoch
// milliseconds.
type Document struct {
	ID         string            `json:"id" yaml:"id"`
	Title      string            `json:"title" yaml:"title"`
	CreatedAt  int64             `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  int64             `json:"updatedAt" yaml:"updatedAt"`
	Messages   []MessageDocument `json:"messages" yaml:"messages"`
	SystemNote string            `json:"systemNote,omitempty" yaml:"systemNote,omitempty"`
}

type MessageDocument struct {
	ID        string `json:"id" yaml:"id"`
	Role      string `json:"role" yaml:"role"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"`
}

func NewDocument(session domain.Session) Document {
	messages := make([]MessageDocument, 0, len(session.Messages))
	for _, message := range session.Messages {
		messages = append(messages, MessageDocument{
			ID:        string(message.ID),
			Role:      string(message.Role),
			Content:   message.Content,
			CreatedAt: epochMillis(message.CreatedAt),
		})
	}

	return Document{
		ID:         string(session.ID),
		Title:      session.Title,
		CreatedAt:  epochMillis(session.CreatedAt),
		UpdatedAt:  epochMillis(session.UpdatedAt),
		Messages:   messages,
		SystemNote: session.SystemNote,
	}
}

func Write(w io.Writer, session domain.Session, format Format) error {
	doc := NewDocument(session)

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush yaml export: %w", err)
		}
		return nil
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func Marshal(session domain.Session, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, session, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var unsafeFileChars = regexp.MustCompile(`(?i)[^a-z0-9]+`)

// FileName derives a download name from the session title, e.g.
// "Cell Biology: Week 2" -> "Cell-Biology-Week-2.json".
func FileName(title string, format Format) string {
	slug := unsafeFileChars.ReplaceAllString(title, "-")
	if slug == "" {
		slug = "session"
	}
	return slug + format.Extension()
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
