package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/lablink/internal/persistence"
	"github.com/example/lablink/internal/scheduler"
)

// ConflictRecorder is notified whenever a reservation write is rejected
// because of an overlap.
type ConflictRecorder interface {
	ReservationConflict()
}

// ReservationService validates reservations and enforces the no-overlap
// invariant before any write commits.
type ReservationService struct {
	store       StateStore
	idGenerator func() string
	conflicts   ConflictRecorder
	logger      *slog.Logger
}

// NewReservationService constructs a reservation service with the provided dependencies.
func NewReservationService(store StateStore, idGenerator func() string) *ReservationService {
	return NewReservationServiceWithLogger(store, idGenerator, nil, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a
// conflict recorder and a specified logger. Both may be nil.
func NewReservationServiceWithLogger(store StateStore, idGenerator func() string, recorder ConflictRecorder, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ReservationService{store: store, idGenerator: idGenerator, conflicts: recorder, logger: defaultLogger(logger)}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// ListReservations returns every reservation in insertion order.
func (s *ReservationService) ListReservations(ctx context.Context) ([]Reservation, error) {
	return s.list(func(persistence.Reservation) bool { return true })
}

// ListReservationsForUser returns the reservations owned by userID.
func (s *ReservationService) ListReservationsForUser(ctx context.Context, userID string) ([]Reservation, error) {
	return s.list(func(r persistence.Reservation) bool { return r.UserID == userID })
}

func (s *ReservationService) list(keepRecord func(persistence.Reservation) bool) ([]Reservation, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ReservationService is not configured")
	}
	out := make([]Reservation, 0)
	for _, r := range s.store.Snapshot().Reservations {
		if keepRecord(r) {
			out = append(out, reservationFromRecord(r))
		}
	}
	return out, nil
}

// GetReservation returns a single reservation.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (Reservation, error) {
	if s == nil || s.store == nil {
		return Reservation{}, fmt.Errorf("ReservationService is not configured")
	}
	for _, r := range s.store.Snapshot().Reservations {
		if r.ID == id {
			return reservationFromRecord(r), nil
		}
	}
	return Reservation{}, notFound("Reservation")
}

// CreateReservation validates the input, rejects overlaps and persists the
// reservation with an active status. An empty UserID defaults to callerID.
func (s *ReservationService) CreateReservation(ctx context.Context, callerID string, input ReservationInput) (reservation Reservation, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ReservationService is not configured")
		return
	}

	record := persistence.Reservation{
		UserID:       strings.TrimSpace(input.UserID),
		LaboratoryID: strings.TrimSpace(input.LaboratoryID),
		ResourceID:   strings.TrimSpace(input.ResourceID),
		Date:         strings.TrimSpace(input.Date),
		StartTime:    strings.TrimSpace(input.StartTime),
		EndTime:      strings.TrimSpace(input.EndTime),
		Status:       persistence.ReservationStatusActive,
	}
	if record.UserID == "" {
		record.UserID = callerID
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"user_id", record.UserID,
		"laboratory_id", record.LaboratoryID,
		"resource_id", record.ResourceID,
		"date", record.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	if vErr := validateReservation(record); vErr != nil {
		err = vErr
		return
	}

	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		if conflictErr := s.checkConflicts(state.Reservations, record); conflictErr != nil {
			return conflictErr
		}
		record.ID = prefixedID("reservation", s.idGenerator())
		state.Reservations = append(state.Reservations, record)
		return nil
	}))
	if err != nil {
		return
	}
	reservation = reservationFromRecord(record)
	return
}

// UpdateReservation merges the non-empty input fields over the stored
// reservation, then validates and conflict-checks the result excluding the
// reservation's own previous version.
func (s *ReservationService) UpdateReservation(ctx context.Context, id string, input ReservationInput) (reservation Reservation, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("ReservationService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateReservation", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation updated")
	}()

	var updated persistence.Reservation
	err = mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		idx := -1
		for i := range state.Reservations {
			if state.Reservations[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFound("Reservation")
		}

		current := state.Reservations[idx]
		merged := persistence.Reservation{
			ID:           current.ID,
			UserID:       keep(current.UserID, input.UserID),
			LaboratoryID: keep(current.LaboratoryID, input.LaboratoryID),
			ResourceID:   keep(current.ResourceID, input.ResourceID),
			Date:         keep(current.Date, input.Date),
			StartTime:    keep(current.StartTime, input.StartTime),
			EndTime:      keep(current.EndTime, input.EndTime),
			Status:       keep(current.Status, input.Status),
		}
		if vErr := validateReservation(merged); vErr != nil {
			return vErr
		}
		if conflictErr := s.checkConflicts(state.Reservations, merged); conflictErr != nil {
			return conflictErr
		}
		state.Reservations[idx] = merged
		updated = merged
		return nil
	}))
	if err != nil {
		return
	}
	reservation = reservationFromRecord(updated)
	return
}

// DeleteReservation removes a reservation.
func (s *ReservationService) DeleteReservation(ctx context.Context, id string) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("ReservationService is not configured")
	}

	logger := s.loggerWith(ctx, "DeleteReservation", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation deleted")
	}()

	return mapStoreError(s.store.Update(ctx, func(state *persistence.State) error {
		for i := range state.Reservations {
			if state.Reservations[i].ID == id {
				state.Reservations = append(state.Reservations[:i], state.Reservations[i+1:]...)
				return nil
			}
		}
		return notFound("Reservation")
	}))
}

// ListConflicts reports overlapping pairs already present in the stored data.
// Writes through this service never create them; they come from state
// persisted before the invariant was enforced or imported from elsewhere.
func (s *ReservationService) ListConflicts(ctx context.Context) ([]ReservationConflict, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ReservationService is not configured")
	}

	records := s.store.Snapshot().Reservations
	candidates := make([]scheduler.Reservation, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, toCandidate(r))
	}

	pairs := scheduler.NewIndex(candidates).Pairs()
	out := make([]ReservationConflict, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, ReservationConflict{
			FirstID:  p.FirstID,
			SecondID: p.SecondID,
			Type:     string(p.Type),
			SharedID: p.SharedID,
			Date:     p.Date,
		})
	}
	if len(out) > 0 {
		s.loggerWith(ctx, "ListConflicts").WarnContext(ctx, "stored reservations overlap", "pairs", len(out))
	}
	return out, nil
}

func (s *ReservationService) checkConflicts(existing []persistence.Reservation, record persistence.Reservation) error {
	others := make([]scheduler.Reservation, 0, len(existing))
	for _, r := range existing {
		others = append(others, toCandidate(r))
	}

	conflicts := scheduler.NewIndex(others).Conflicts(toCandidate(record))
	if len(conflicts) == 0 {
		return nil
	}
	if s.conflicts != nil {
		s.conflicts.ReservationConflict()
	}

	details := make([]map[string]any, 0, len(conflicts))
	for _, c := range conflicts {
		details = append(details, map[string]any{
			"reservationId": c.WithReservationID,
			"type":          string(c.Type),
			"sharedId":      c.SharedID,
		})
	}
	return &Error{
		Kind:    ErrConflict,
		Message: "Reservation overlap",
		Details: map[string]any{"message": "Reservation overlap", "conflicts": details},
	}
}

func validateReservation(r persistence.Reservation) *ValidationError {
	issue := scheduler.Validate(toCandidate(r))
	if issue == nil {
		return nil
	}
	return fieldError(issue.Field, issue.Message)
}

func toCandidate(r persistence.Reservation) scheduler.Reservation {
	return scheduler.Reservation{
		ID:           r.ID,
		UserID:       r.UserID,
		LaboratoryID: r.LaboratoryID,
		ResourceID:   r.ResourceID,
		Date:         r.Date,
		Start:        r.StartTime,
		End:          r.EndTime,
	}
}
