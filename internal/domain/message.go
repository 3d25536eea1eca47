package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleNote      Role = "note"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleNote:
		return true
	default:
		return false
	}
}

type MessageID string

// Message is immutable once created. Note messages are synthetic and only
// produced when older messages are folded into a session's rolling note.
type Message struct {
	ID        MessageID
	Role      Role
	Content   string
	CreatedAt time.Time
}
