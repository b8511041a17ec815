// Package statestore holds the emulator entity graph in memory and mirrors it
// into a persistence.Slot after every mutation.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/lablink/internal/codec"
	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/metrics"
	"github.com/example/lablink/internal/persistence"
)

// Options configures a Store. Zero values select JSON, an empty default
// state, the default logger and no metrics.
type Options struct {
	Codec    codec.Codec
	Defaults func() persistence.State
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Store is the single writer of the entity graph.
type Store struct {
	mu       sync.RWMutex
	slot     persistence.Slot
	codec    codec.Codec
	defaults func() persistence.State
	logger   *slog.Logger
	metrics  *metrics.Recorder

	state    persistence.State
	revision int64
}

// Open loads the slot contents, merging them over the default shape.
func Open(ctx context.Context, slot persistence.Slot, opts Options) (*Store, error) {
	if slot == nil {
		return nil, errors.New("statestore: slot is required")
	}
	s := &Store{
		slot:     slot,
		codec:    opts.Codec,
		defaults: opts.Defaults,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.codec == nil {
		s.codec = codec.JSON{}
	}
	if s.defaults == nil {
		s.defaults = func() persistence.State { return persistence.State{} }
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() persistence.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Revision reports the slot revision the in-memory state corresponds to.
func (s *Store) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Update applies fn to a copy of the state and persists the result. The
// in-memory state only changes when fn succeeds and the slot write commits.
// When another writer replaced the slot meanwhile, the store reloads and
// returns an error wrapping persistence.ErrStaleState.
func (s *Store) Update(ctx context.Context, fn func(state *persistence.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	data, err := s.codec.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	revision, err := s.slot.Save(ctx, data, s.revision)
	s.metrics.Persist(err)
	if err != nil {
		if errors.Is(err, persistence.ErrStaleState) {
			logger := logging.FromContextOr(ctx, s.logger)
			logger.WarnContext(ctx, "slot rewritten by another writer; reloading", "revision", s.revision)
			if reloadErr := s.reloadLocked(ctx); reloadErr != nil {
				return errors.Join(err, reloadErr)
			}
			return err
		}
		return fmt.Errorf("persist state: %w", err)
	}

	s.state = next
	s.revision = revision
	return nil
}

func (s *Store) reloadLocked(ctx context.Context) error {
	logger := logging.FromContextOr(ctx, s.logger)

	record, err := s.slot.Load(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.state = normalize(s.defaults())
			s.revision = 0
			return nil
		}
		return fmt.Errorf("load state: %w", err)
	}

	state, err := decode(s.codec, record.Data, s.defaults)
	if err != nil {
		logger.WarnContext(ctx, "persisted state unreadable; starting from defaults",
			"error", err, "codec", s.codec.Name(), "revision", record.Revision)
		state = normalize(s.defaults())
	}

	s.state = state
	s.revision = record.Revision
	return nil
}
