package domain

import "time"

type SessionID string

type Session struct {
	ID        SessionID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
	// SystemNote is the rolling summary of every message evicted from the
	// verbatim window. Empty means no note.
	SystemNote string
}

// Clone returns a copy whose message slice can be appended to without
// touching the receiver.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}
