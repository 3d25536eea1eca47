package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/revisionai/internal/domain"
	portmocks "github.com/bnema/revisionai/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "openai/api_key"

func TestStoreGetUsesFirstBackendThatSucceeds(t *testing.T) {
	t.Parallel()

	env := portmocks.NewMockSecretStore(t)
	pass := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store := NewStore(env, pass, file)

	env.EXPECT().Get(mock.Anything, testKey).Return("", fmt.Errorf("env: %w", domain.ErrSecretNotFound)).Once()
	pass.EXPECT().Get(mock.Anything, testKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetPrefersEarlierBackend(t *testing.T) {
	t.Parallel()

	env := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store := NewStore(env, file)

	env.EXPECT().Get(mock.Anything, testKey).Return("from-env", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestStoreGetReturnsCombinedErrorWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("", fmt.Errorf("file: %w", domain.ErrSecretNotFound)).Once()

	_, err := store.Get(context.Background(), testKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend 0")
	assert.ErrorContains(t, err, "backend 1")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStorePutSkipsReadOnlyAndFailingBackends(t *testing.T) {
	t.Parallel()

	env := portmocks.NewMockSecretStore(t)
	pass := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store := NewStore(env, pass, file)

	env.EXPECT().Put(mock.Anything, testKey, "secret").Return(domain.ErrSecretReadOnly).Once()
	pass.EXPECT().Put(mock.Anything, testKey, "secret").Return(errors.New("pass failed")).Once()
	file.EXPECT().Put(mock.Anything, testKey, "secret").Return(nil).Once()

	err := store.Put(context.Background(), testKey, "secret")
	require.NoError(t, err)
}

func TestStorePutStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, testKey, "secret").Return(nil).Once()

	err := store.Put(context.Background(), testKey, "secret")
	require.NoError(t, err)
}

func TestStorePutOnlyReadOnlyBackends(t *testing.T) {
	t.Parallel()

	env := portmocks.NewMockSecretStore(t)
	store := NewStore(env)

	env.EXPECT().Put(mock.Anything, testKey, "secret").Return(domain.ErrSecretReadOnly).Once()

	err := store.Put(context.Background(), testKey, "secret")
	require.ErrorIs(t, err, domain.ErrSecretReadOnly)
}

func TestStoreDeleteReachesEveryWritableBackend(t *testing.T) {
	t.Parallel()

	env := portmocks.NewMockSecretStore(t)
	pass := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store := NewStore(env, pass, file)

	env.EXPECT().Delete(mock.Anything, testKey).Return(domain.ErrSecretReadOnly).Once()
	pass.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("pass failed")).Once()
	file.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()

	err := store.Delete(context.Background(), testKey)
	require.NoError(t, err)
}

func TestStoreDeleteReportsFailuresWhenNothingDeleted(t *testing.T) {
	t.Parallel()

	pass := portmocks.NewMockSecretStore(t)
	store := NewStore(pass)

	pass.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("pass failed")).Once()

	err := store.Delete(context.Background(), testKey)
	require.ErrorContains(t, err, "pass failed")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, testKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), testKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsBadBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked()
	require.Error(t, err)

	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	require.ErrorContains(t, err, "backend 1 is nil")
}
