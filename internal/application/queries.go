package application

import (
	"time"

	"github.com/bnema/revisionai/internal/domain"
)

type SessionSummary struct {
	ID           domain.SessionID
	Title        string
	UpdatedAt    time.Time
	Summary      string
	MessageCount int
	HasNote      bool
}
