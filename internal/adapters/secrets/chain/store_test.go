package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu      sync.Mutex
	secrets map[string]string
	err     error
	calls   int
}

func newStubStore() *stubStore {
	return &stubStore{secrets: map[string]string{}}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	value, ok := s.secrets[key]
	if !ok {
		return "", errors.New("not found")
	}
	return value, nil
}

func (s *stubStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.secrets[key] = value
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	delete(s.secrets, key)
	return nil
}

func TestNewStoreRejectsNilStores(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, newStubStore())
	require.Error(t, err)

	_, err = NewStore(newStubStore(), nil)
	require.Error(t, err)
}

func TestPrimarySucceedsFallbackUntouched(t *testing.T) {
	t.Parallel()

	primary := newStubStore()
	fallback := newStubStore()
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "token", "tok1"))

	value, err := store.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "tok1", value)
	assert.Zero(t, fallback.calls)
}

func TestFallbackServesWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := newStubStore()
	primary.err = errors.New("pass unavailable")
	fallback := newStubStore()
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "token", "tok1"))
	assert.Equal(t, "tok1", fallback.secrets["token"])

	value, err := store.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "tok1", value)

	require.NoError(t, store.Delete(context.Background(), "token"))
	assert.Empty(t, fallback.secrets)
}

func TestBothFailingReportsBothErrors(t *testing.T) {
	t.Parallel()

	primary := newStubStore()
	primary.err = errors.New("primary down")
	fallback := newStubStore()
	fallback.err = errors.New("fallback down")
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	putErr := store.Put(context.Background(), "token", "tok1")
	require.Error(t, putErr)
	assert.Contains(t, putErr.Error(), "primary down")
	assert.Contains(t, putErr.Error(), "fallback down")
}

func TestContextErrorsSkipFallback(t *testing.T) {
	t.Parallel()

	primary := newStubStore()
	primary.err = context.Canceled
	fallback := newStubStore()
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.ErrorIs(t, store.Put(context.Background(), "token", "tok1"), context.Canceled)
	_, getErr := store.Get(context.Background(), "token")
	require.ErrorIs(t, getErr, context.Canceled)
	require.ErrorIs(t, store.Delete(context.Background(), "token"), context.Canceled)
	assert.Zero(t, fallback.calls)
}
