package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/bnema/revisionai/internal/adapters/secrets/env"
	filestore "github.com/bnema/revisionai/internal/adapters/secrets/file"
	passstore "github.com/bnema/revisionai/internal/adapters/secrets/pass"
	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/ports"
)

// Store asks its backends in order. Reads return the first hit; writes go
// to the first backend that accepts them; deletes reach every writable
// backend so no stale copy survives.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret store chain has no backends")

func NewStore(backends ...ports.SecretStore) *Store {
	store, err := NewStoreChecked(backends...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("secret backend %d is nil", i)
		}
	}

	return &Store{backends: append([]ports.SecretStore(nil), backends...)}, nil
}

// NewDefault chains environment variables, pass and the secrets directory,
// in that order.
func NewDefault(envVars map[string]string, passPrefix string, fileRoot string) (*Store, error) {
	return NewStoreChecked(
		envstore.NewStore(envVars),
		passstore.NewStore(passPrefix),
		filestore.NewStore(fileRoot),
	)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d get failed: %w", i, err))
	}

	return "", fmt.Errorf("get secret %q: %w", key, errors.Join(errs...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		if errors.Is(err, domain.ErrSecretReadOnly) {
			continue
		}
		errs = append(errs, fmt.Errorf("backend %d put failed: %w", i, err))
	}

	if len(errs) == 0 {
		return fmt.Errorf("put secret %q: %w", key, domain.ErrSecretReadOnly)
	}
	return fmt.Errorf("put secret %q: %w", key, errors.Join(errs...))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	deleted := false
	for i, backend := range s.backends {
		err := backend.Delete(ctx, key)
		if err == nil {
			deleted = true
			continue
		}
		if shouldStop(err) {
			return err
		}
		if errors.Is(err, domain.ErrSecretReadOnly) || errors.Is(err, domain.ErrSecretNotFound) {
			continue
		}
		errs = append(errs, fmt.Errorf("backend %d delete failed: %w", i, err))
	}

	if deleted || len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("delete secret %q: %w", key, errors.Join(errs...))
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
