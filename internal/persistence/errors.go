package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrStaleState is returned when a slot was rewritten by another writer
	// after the caller last observed it.
	ErrStaleState = errors.New("persistence: stale state revision")
)
