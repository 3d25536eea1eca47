package application

import (
	"context"
	"fmt"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

type Service struct {
	repo     ports.SessionRepository
	sessions *Sessions
}

func NewService(repo ports.SessionRepository, clock ports.Clock, ids ports.IDGenerator) *Service {
	return &Service{
		repo:     repo,
		sessions: NewSessions(clock, ids),
	}
}

func (s *Service) Start(ctx context.Context, title string) (domain.Session, error) {
	session := s.sessions.New()
	if title != "" {
		renamed, err := s.sessions.Rename(session, title)
		if err != nil {
			return domain.Session{}, err
		}
		session = renamed
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save new session: %w", err)
	}

	return session, nil
}

func (s *Service) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

func (s *Service) List(ctx context.Context) ([]SessionSummary, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return Summaries(sessions), nil
}

// Send appends a student message and returns the request to forward to the
// relay, built from the freshly trimmed window.
func (s *Service) Send(ctx context.Context, id domain.SessionID, content string, options map[string]any) (domain.Session, domain.ChatRequest, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.Session{}, domain.ChatRequest{}, err
	}

	next, _, err := s.sessions.AppendUser(session, content)
	if err != nil {
		return domain.Session{}, domain.ChatRequest{}, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return domain.Session{}, domain.ChatRequest{}, fmt.Errorf("save session message: %w", err)
	}

	return next, BuildChatRequest(next, options), nil
}

func (s *Service) RecordReply(ctx context.Context, id domain.SessionID, content string) (domain.Session, error) {
	return s.update(ctx, id, "save session reply", func(session domain.Session) (domain.Session, error) {
		return s.sessions.AppendReply(session, content)
	})
}

func (s *Service) Clear(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	return s.update(ctx, id, "save cleared session", func(session domain.Session) (domain.Session, error) {
		return s.sessions.Clear(session), nil
	})
}

func (s *Service) Rename(ctx context.Context, id domain.SessionID, title string) (domain.Session, error) {
	return s.update(ctx, id, "save session title", func(session domain.Session) (domain.Session, error) {
		return s.sessions.Rename(session, title)
	})
}

func (s *Service) Delete(ctx context.Context, id domain.SessionID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (s *Service) update(ctx context.Context, id domain.SessionID, op string, apply func(domain.Session) (domain.Session, error)) (domain.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}

	next, err := apply(session)
	if err != nil {
		return domain.Session{}, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return next, nil
}
