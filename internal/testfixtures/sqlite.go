package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/lablink/internal/persistence/sqlite"
)

// SQLitePath returns a DSN for a database file inside a per-test directory.
// Opening it twice yields two handles on the same durable slot.
func SQLitePath(tb testing.TB) string {
	tb.Helper()
	return "file:" + filepath.Join(tb.TempDir(), "lablink.db")
}

// NewSQLiteSlot opens the default slot key in dsn and closes it when the test
// finishes. Callers may close it earlier.
func NewSQLiteSlot(tb testing.TB, dsn string) *sqlite.Slot {
	tb.Helper()

	slot, err := sqlite.Open(context.Background(), dsn, sqlite.DefaultKey)
	if err != nil {
		tb.Fatalf("failed to open sqlite slot: %v", err)
	}
	tb.Cleanup(func() { _ = slot.Close() })
	return slot
}
