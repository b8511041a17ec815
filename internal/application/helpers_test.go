package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/persistence"
	"github.com/example/lablink/internal/statestore"
)

var testArgon2Params = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func testHasher() PasswordHasher {
	return NewPasswordHasher(testArgon2Params)
}

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%d", s.n)
}

func openTestStore(t *testing.T, slot persistence.Slot) *statestore.Store {
	t.Helper()
	defaults, err := DefaultState(DefaultAdmin(), testHasher())
	require.NoError(t, err)

	store, err := statestore.Open(context.Background(), slot, statestore.Options{
		Defaults: defaults,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return store
}

func newTestStore(t *testing.T) *statestore.Store {
	t.Helper()
	return openTestStore(t, persistence.NewMemorySlot())
}

func seedState(t *testing.T, store *statestore.Store, fn func(state *persistence.State)) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(state *persistence.State) error {
		fn(state)
		return nil
	}))
}

type conflictCounter struct{ n int }

func (c *conflictCounter) ReservationConflict() { c.n++ }
