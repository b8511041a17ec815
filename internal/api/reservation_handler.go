package api

import (
	"context"
	"net/http"

	"github.com/example/lablink/internal/application"
)

type reservationService interface {
	ListReservations(ctx context.Context) ([]application.Reservation, error)
	ListReservationsForUser(ctx context.Context, userID string) ([]application.Reservation, error)
	GetReservation(ctx context.Context, id string) (application.Reservation, error)
	CreateReservation(ctx context.Context, callerID string, input application.ReservationInput) (application.Reservation, error)
	UpdateReservation(ctx context.Context, id string, input application.ReservationInput) (application.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ListConflicts(ctx context.Context) ([]application.ReservationConflict, error)
}

type ReservationDTO struct {
	ID           string `json:"id" yaml:"id"`
	UserID       string `json:"userId" yaml:"userId"`
	LaboratoryID string `json:"laboratoryId,omitempty" yaml:"laboratoryId,omitempty"`
	ResourceID   string `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	Date         string `json:"reservationDate" yaml:"reservationDate"`
	StartTime    string `json:"startTime" yaml:"startTime"`
	EndTime      string `json:"endTime" yaml:"endTime"`
	Status       string `json:"status" yaml:"status"`
}

// ConflictDTO reports two stored reservations that overlap.
type ConflictDTO struct {
	FirstID  string `json:"firstId" yaml:"firstId"`
	SecondID string `json:"secondId" yaml:"secondId"`
	Type     string `json:"type" yaml:"type"`
	SharedID string `json:"sharedId" yaml:"sharedId"`
	Date     string `json:"reservationDate" yaml:"reservationDate"`
}

func toReservationDTO(r application.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		LaboratoryID: r.LaboratoryID,
		ResourceID:   r.ResourceID,
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       r.Status,
	}
}

func toReservationDTOs(in []application.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(in))
	for _, r := range in {
		out = append(out, toReservationDTO(r))
	}
	return out
}

// reservationInput accepts the short aliases date, start and end as well.
func reservationInput(f Fields) application.ReservationInput {
	return application.ReservationInput{
		UserID:       f.String("userId"),
		LaboratoryID: f.String("laboratoryId"),
		ResourceID:   f.String("resourceId"),
		Date:         f.String("reservationDate", "date"),
		StartTime:    f.String("startTime", "start"),
		EndTime:      f.String("endTime", "end"),
		Status:       f.String("status"),
	}
}

type ReservationHandler struct {
	service reservationService
}

func NewReservationHandler(service reservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) List(ctx context.Context, call *Call) (Response, error) {
	reservations, err := h.service.ListReservations(ctx)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toReservationDTOs(reservations)}, nil
}

func (h *ReservationHandler) ListForUser(ctx context.Context, call *Call) (Response, error) {
	reservations, err := h.service.ListReservationsForUser(ctx, call.Param)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toReservationDTOs(reservations)}, nil
}

// Create books on behalf of the caller unless the body names a userId.
// Status in the body is ignored; new reservations are always active.
func (h *ReservationHandler) Create(ctx context.Context, call *Call) (Response, error) {
	input := reservationInput(call.Fields)
	input.Status = ""
	reservation, err := h.service.CreateReservation(ctx, call.User.ID, input)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Body: toReservationDTO(reservation)}, nil
}

func (h *ReservationHandler) Get(ctx context.Context, call *Call) (Response, error) {
	reservation, err := h.service.GetReservation(ctx, call.Param)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toReservationDTO(reservation)}, nil
}

func (h *ReservationHandler) Update(ctx context.Context, call *Call) (Response, error) {
	reservation, err := h.service.UpdateReservation(ctx, call.Param, reservationInput(call.Fields))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toReservationDTO(reservation)}, nil
}

func (h *ReservationHandler) Delete(ctx context.Context, call *Call) (Response, error) {
	if err := h.service.DeleteReservation(ctx, call.Param); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusNoContent}, nil
}

// Conflicts audits the stored reservations for overlapping pairs.
func (h *ReservationHandler) Conflicts(ctx context.Context, call *Call) (Response, error) {
	conflicts, err := h.service.ListConflicts(ctx)
	if err != nil {
		return Response{}, err
	}
	out := make([]ConflictDTO, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ConflictDTO{FirstID: c.FirstID, SecondID: c.SecondID, Type: c.Type, SharedID: c.SharedID, Date: c.Date})
	}
	return Response{Status: http.StatusOK, Body: out}, nil
}
