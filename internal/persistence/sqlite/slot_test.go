package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lablink/internal/persistence"
)

func setupSlotTest(t *testing.T) (string, *Slot) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "lablink.db")
	slot, err := Open(context.Background(), dsn, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })
	return dsn, slot
}

func TestSlot_LoadEmpty(t *testing.T) {
	_, slot := setupSlotTest(t)

	_, err := slot.Load(context.Background())
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestSlot_SaveAndLoad(t *testing.T) {
	_, slot := setupSlotTest(t)
	ctx := context.Background()

	rev, err := slot.Save(ctx, []byte(`{"users":[]}`), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rev)

	rev, err = slot.Save(ctx, []byte(`{"users":null}`), rev)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rev)

	record, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"users":null}`, string(record.Data))
	assert.EqualValues(t, 2, record.Revision)
}

func TestSlot_RejectsStaleWriter(t *testing.T) {
	dsn, first := setupSlotTest(t)
	ctx := context.Background()

	second, err := Open(ctx, dsn, DefaultKey)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	_, err = first.Save(ctx, []byte("first"), 0)
	require.NoError(t, err)

	// second never observed revision 1.
	_, err = second.Save(ctx, []byte("second"), 0)
	require.ErrorIs(t, err, persistence.ErrStaleState)

	record, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(record.Data))
}

func TestSlot_KeysAreIndependent(t *testing.T) {
	dsn, slot := setupSlotTest(t)
	ctx := context.Background()

	other, err := Open(ctx, dsn, "other")
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	_, err = slot.Save(ctx, []byte("default"), 0)
	require.NoError(t, err)

	_, err = other.Load(ctx)
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ", DefaultKey)
	require.Error(t, err)
}
