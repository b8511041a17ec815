package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/lablink/internal/persistence"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultKey is the slot key used when none is configured.
const DefaultKey = "lablink_mock_state"

const schema = `
	CREATE TABLE IF NOT EXISTS slots (
		key      TEXT PRIMARY KEY,
		payload  BLOB NOT NULL,
		revision INTEGER NOT NULL
	)`

// pragmas run on the single pooled connection. The busy timeout lets a second
// process holding the same file wait for a write lock instead of failing.
var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// Slot stores one serialized state record under a key in a SQLite table.
type Slot struct {
	db  *sql.DB
	key string
}

var _ persistence.Slot = (*Slot)(nil)

// Open connects to dsn, ensures the slots table exists and returns a slot bound to key.
func Open(ctx context.Context, dsn, key string) (*Slot, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: dsn is required")
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers inside this process.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}

	return &Slot{db: db, key: key}, nil
}

// Load reads the payload and revision stored under the slot key.
func (s *Slot) Load(ctx context.Context) (persistence.Record, error) {
	var record persistence.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, revision FROM slots WHERE key = ?`, s.key,
	).Scan(&record.Data, &record.Revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Record{}, persistence.ErrNotFound
		}
		return persistence.Record{}, fmt.Errorf("select slot %s: %w", s.key, err)
	}
	return record, nil
}

// Save writes data if the stored revision still equals expected.
func (s *Slot) Save(ctx context.Context, data []byte, expected int64) (revision int64, err error) {
	err = s.withTransaction(ctx, func(tx *sql.Tx) error {
		var current int64
		scanErr := tx.QueryRowContext(ctx, `SELECT revision FROM slots WHERE key = ?`, s.key).Scan(&current)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			current = 0
		case scanErr != nil:
			return fmt.Errorf("select revision: %w", scanErr)
		}

		if current != expected {
			return persistence.ErrStaleState
		}

		revision = current + 1
		if current == 0 {
			if _, execErr := tx.ExecContext(ctx,
				`INSERT INTO slots (key, payload, revision) VALUES (?, ?, ?)`,
				s.key, data, revision,
			); execErr != nil {
				return fmt.Errorf("insert slot %s: %w", s.key, execErr)
			}
			return nil
		}

		result, execErr := tx.ExecContext(ctx,
			`UPDATE slots SET payload = ?, revision = ? WHERE key = ? AND revision = ?`,
			data, revision, s.key, current,
		)
		if execErr != nil {
			return fmt.Errorf("update slot %s: %w", s.key, execErr)
		}
		affected, execErr := result.RowsAffected()
		if execErr != nil {
			return fmt.Errorf("failed to get rows affected: %w", execErr)
		}
		if affected == 0 {
			return persistence.ErrStaleState
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return revision, nil
}

// Close releases the database handle.
func (s *Slot) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTransaction runs fn inside a transaction, rolling back when fn fails.
func (s *Slot) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
