package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty slot reports not found", func(t *testing.T) {
		_, err := NewMemorySlot().Load(ctx)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save advances revision", func(t *testing.T) {
		slot := NewMemorySlot()

		rev, err := slot.Save(ctx, []byte("one"), 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, rev)

		rev, err = slot.Save(ctx, []byte("two"), rev)
		require.NoError(t, err)
		assert.EqualValues(t, 2, rev)

		record, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "two", string(record.Data))
		assert.EqualValues(t, 2, record.Revision)
	})

	t.Run("stale revision is rejected", func(t *testing.T) {
		slot := NewMemorySlot()
		_, err := slot.Save(ctx, []byte("first"), 0)
		require.NoError(t, err)

		_, err = slot.Save(ctx, []byte("second"), 0)
		require.ErrorIs(t, err, ErrStaleState)

		record, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", string(record.Data))
	})
}

func TestState_Clone(t *testing.T) {
	t.Parallel()

	original := State{
		Users:  []User{{ID: "u1", Email: "a@example.test"}},
		Tokens: map[string]string{"t1": "u1"},
		Reservations: []Reservation{
			{ID: "r1", UserID: "u1", Date: "2024-05-01", StartTime: "09:00:00", EndTime: "10:00:00"},
		},
	}

	clone := original.Clone()
	clone.Users[0].Email = "changed@example.test"
	clone.Tokens["t2"] = "u1"
	clone.Reservations = append(clone.Reservations, Reservation{ID: "r2"})

	assert.Equal(t, "a@example.test", original.Users[0].Email)
	assert.Len(t, original.Tokens, 1)
	assert.Len(t, original.Reservations, 1)
}
