package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/lablink/internal/persistence"
)

// ResourceService manages the bookable equipment collection.
type ResourceService struct {
	store       StateStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(store StateStore, idGenerator func() string) *ResourceService {
	return NewResourceServiceWithLogger(store, idGenerator, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a specified logger.
func NewResourceServiceWithLogger(store StateStore, idGenerator func() string, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ResourceService{store: store, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// ListResources returns every resource in insertion order.
func (s *ResourceService) ListResources(ctx context.Context) ([]Resource, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ResourceService is not configured")
	}
	records := s.store.Snapshot().Resources
	out := make([]Resource, 0, len(records))
	for _, r := range records {
		out = append(out, resourceFromRecord(r))
	}
	return out, nil
}

// GetResource returns a single resource.
func (s *ResourceService) GetResource(ctx context.Context, id string) (Resource, error) {
	if s == nil || s.store == nil {
		return Resource{}, fmt.Errorf("ResourceService is not configured")
	}
	for _, r := range s.store.Snapshot().Resources {
		if r.ID == id {
			return resourceFromRecord(r), nil
		}
	}
	return Resource{}, notFound("Resource")
}

// CreateResource validates input and persists a new resource. The laboratory
// reference is stored as given and not checked for existence.
func (s *ResourceService) CreateResource(ctx context.Context, input ResourceInput) (resource Resource, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ResourceService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource", "laboratory_id", input.LaboratoryID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		err = fieldError("name", "name is required")
		return
	}

	record := persistence.Resource{
		ID:           prefixedID("resource", s.idGenerator()),
		Name:         name,
		Type:         strings.TrimSpace(input.Type),
		LaboratoryID: strings.TrimSpace(input.LaboratoryID),
	}
	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		state.Resources = append(state.Resources, record)
		return nil
	}))
	if err != nil {
		return
	}
	resource = resourceFromRecord(record)
	return
}

// UpdateResource merges the non-empty input fields over the stored resource.
func (s *ResourceService) UpdateResource(ctx context.Context, id string, input ResourceInput) (resource Resource, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ResourceService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource", "resource_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource updated")
	}()

	var updated persistence.Resource
	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		for i := range state.Resources {
			if state.Resources[i].ID != id {
				continue
			}
			r := &state.Resources[i]
			r.Name = keep(r.Name, input.Name)
			r.Type = keep(r.Type, input.Type)
			r.LaboratoryID = keep(r.LaboratoryID, input.LaboratoryID)
			updated = *r
			return nil
		}
		return notFound("Resource")
	}))
	if err != nil {
		return
	}
	resource = resourceFromRecord(updated)
	return
}

// DeleteResource removes a resource. Reservations referencing it are kept.
func (s *ResourceService) DeleteResource(ctx context.Context, id string) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("ResourceService is not configured")
	}

	logger := s.loggerWith(ctx, "DeleteResource", "resource_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource deleted")
	}()

	return mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		for i := range state.Resources {
			if state.Resources[i].ID == id {
				state.Resources = append(state.Resources[:i], state.Resources[i+1:]...)
				return nil
			}
		}
		return notFound("Resource")
	}))
}
