package persistence

import (
	"context"
	"sync"
)

// Record is the raw payload stored in a slot together with its revision.
type Record struct {
	Data     []byte
	Revision int64
}

// Slot is a single durable key holding the serialized state.
//
// Load returns ErrNotFound when nothing was ever saved. Save replaces the
// payload only when the stored revision still equals expected and returns the
// new revision; otherwise it fails with ErrStaleState.
type Slot interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, data []byte, expected int64) (int64, error)
	Close() error
}

// MemorySlot keeps the payload in process memory. Instances sharing nothing
// behave like a fresh install on every start.
type MemorySlot struct {
	mu     sync.RWMutex
	record *Record
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load returns a copy of the stored payload.
func (m *MemorySlot) Load(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.record == nil {
		return Record{}, ErrNotFound
	}
	return Record{Data: append([]byte(nil), m.record.Data...), Revision: m.record.Revision}, nil
}

// Save stores data when expected matches the current revision.
func (m *MemorySlot) Save(ctx context.Context, data []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	if m.record != nil {
		current = m.record.Revision
	}
	if current != expected {
		return 0, ErrStaleState
	}

	m.record = &Record{Data: append([]byte(nil), data...), Revision: current + 1}
	return m.record.Revision, nil
}

// Close is a no-op for the in-memory slot.
func (m *MemorySlot) Close() error {
	return nil
}
