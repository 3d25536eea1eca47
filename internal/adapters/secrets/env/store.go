package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

// Store resolves secret refs to environment variables. It cannot write.
type Store struct {
	vars   map[string]string
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

// NewStore maps each secret ref to the environment variable holding it,
// e.g. {"openai/api_key": "OPENAI_API"}.
func NewStore(vars map[string]string) *Store {
	return &Store{vars: vars, lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, ok := s.vars[key]
	if !ok || name == "" {
		return "", fmt.Errorf("env secret %q has no variable: %w", key, domain.ErrSecretNotFound)
	}

	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("env secret %q ($%s): %w", key, name, domain.ErrSecretNotFound)
	}

	return strings.TrimSpace(value), nil
}

func (s *Store) Put(_ context.Context, key string, _ string) error {
	return fmt.Errorf("put env secret %q: %w", key, domain.ErrSecretReadOnly)
}

func (s *Store) Delete(_ context.Context, key string) error {
	return fmt.Errorf("delete env secret %q: %w", key, domain.ErrSecretReadOnly)
}

// Variable reports which environment variable backs key.
func (s *Store) Variable(key string) (string, bool) {
	name, ok := s.vars[key]
	return name, ok && name != ""
}
