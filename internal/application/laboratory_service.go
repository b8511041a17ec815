package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/lablink/internal/persistence"
)

// LaboratoryService manages the laboratory collection.
type LaboratoryService struct {
	store       StateStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewLaboratoryService constructs a laboratory service with the provided dependencies.
func NewLaboratoryService(store StateStore, idGenerator func() string) *LaboratoryService {
	return NewLaboratoryServiceWithLogger(store, idGenerator, nil)
}

// NewLaboratoryServiceWithLogger constructs a laboratory service with a specified logger.
func NewLaboratoryServiceWithLogger(store StateStore, idGenerator func() string, logger *slog.Logger) *LaboratoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &LaboratoryService{store: store, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *LaboratoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LaboratoryService", operation, attrs...)
}

// ListLaboratories returns every laboratory in insertion order.
func (s *LaboratoryService) ListLaboratories(ctx context.Context) ([]Laboratory, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("LaboratoryService is not configured")
	}
	records := s.store.Snapshot().Laboratories
	out := make([]Laboratory, 0, len(records))
	for _, l := range records {
		out = append(out, laboratoryFromRecord(l))
	}
	return out, nil
}

// GetLaboratory returns a single laboratory.
func (s *LaboratoryService) GetLaboratory(ctx context.Context, id string) (Laboratory, error) {
	if s == nil || s.store == nil {
		return Laboratory{}, fmt.Errorf("LaboratoryService is not configured")
	}
	for _, l := range s.store.Snapshot().Laboratories {
		if l.ID == id {
			return laboratoryFromRecord(l), nil
		}
	}
	return Laboratory{}, notFound("Laboratory")
}

// CreateLaboratory validates input and persists a new laboratory.
func (s *LaboratoryService) CreateLaboratory(ctx context.Context, input LaboratoryInput) (lab Laboratory, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("LaboratoryService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateLaboratory")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create laboratory", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("laboratory_id", lab.ID).InfoContext(ctx, "laboratory created")
	}()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		err = fieldError("name", "name is required")
		return
	}

	record := persistence.Laboratory{
		ID:          prefixedID("lab", s.idGenerator()),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
	}
	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		state.Laboratories = append(state.Laboratories, record)
		return nil
	}))
	if err != nil {
		return
	}
	lab = laboratoryFromRecord(record)
	return
}

// UpdateLaboratory merges the non-empty input fields over the stored laboratory.
func (s *LaboratoryService) UpdateLaboratory(ctx context.Context, id string, input LaboratoryInput) (lab Laboratory, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("LaboratoryService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateLaboratory", "laboratory_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update laboratory", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "laboratory updated")
	}()

	var updated persistence.Laboratory
	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		for i := range state.Laboratories {
			if state.Laboratories[i].ID != id {
				continue
			}
			l := &state.Laboratories[i]
			l.Name = keep(l.Name, input.Name)
			l.Description = keep(l.Description, input.Description)
			l.Location = keep(l.Location, input.Location)
			updated = *l
			return nil
		}
		return notFound("Laboratory")
	}))
	if err != nil {
		return
	}
	lab = laboratoryFromRecord(updated)
	return
}

// DeleteLaboratory removes a laboratory. Reservations referencing it are kept.
func (s *LaboratoryService) DeleteLaboratory(ctx context.Context, id string) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("LaboratoryService is not configured")
	}

	logger := s.loggerWith(ctx, "DeleteLaboratory", "laboratory_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete laboratory", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "laboratory deleted")
	}()

	return mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		for i := range state.Laboratories {
			if state.Laboratories[i].ID == id {
				state.Laboratories = append(state.Laboratories[:i], state.Laboratories[i+1:]...)
				return nil
			}
		}
		return notFound("Laboratory")
	}))
}

// keep returns next when it carries a value, otherwise current.
func keep(current, next string) string {
	if trimmed := strings.TrimSpace(next); trimmed != "" {
		return trimmed
	}
	return current
}
