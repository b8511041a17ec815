package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/example/lablink/internal/codec"
	"github.com/example/lablink/internal/persistence"
)

var (
	laboratoryCounter  uint64
	resourceCounter    uint64
	reservationCounter uint64
)

// ReferenceDate is the day fixtures book on unless told otherwise.
const ReferenceDate = "2026-03-02"

// ----------------------------- Laboratory fixtures -----------------------------

// LaboratoryOption configures a laboratory record.
type LaboratoryOption func(*persistence.Laboratory)

// NewLaboratory returns a laboratory record with a unique id and name.
func NewLaboratory(opts ...LaboratoryOption) persistence.Laboratory {
	idx := atomic.AddUint64(&laboratoryCounter, 1)
	lab := persistence.Laboratory{
		ID:   fmt.Sprintf("lab-fx%03d", idx),
		Name: fmt.Sprintf("Laboratory %03d", idx),
	}
	for _, opt := range opts {
		opt(&lab)
	}
	return lab
}

func WithLaboratoryID(id string) LaboratoryOption {
	return func(l *persistence.Laboratory) { l.ID = id }
}

func WithLaboratoryLocation(location string) LaboratoryOption {
	return func(l *persistence.Laboratory) { l.Location = location }
}

// ------------------------------ Resource fixtures ------------------------------

// ResourceOption configures a resource record.
type ResourceOption func(*persistence.Resource)

// NewResource returns a resource record with a unique id and name.
func NewResource(opts ...ResourceOption) persistence.Resource {
	idx := atomic.AddUint64(&resourceCounter, 1)
	res := persistence.Resource{
		ID:   fmt.Sprintf("resource-fx%03d", idx),
		Name: fmt.Sprintf("Resource %03d", idx),
		Type: "equipment",
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

func WithResourceID(id string) ResourceOption {
	return func(r *persistence.Resource) { r.ID = id }
}

// InLaboratory attaches the resource to a laboratory.
func InLaboratory(labID string) ResourceOption {
	return func(r *persistence.Resource) { r.LaboratoryID = labID }
}

// ----------------------------- Reservation fixtures ----------------------------

// ReservationOption configures a reservation record.
type ReservationOption func(*persistence.Reservation)

// NewReservation returns an active reservation on ReferenceDate from 09:00 to
// 10:00 owned by the seeded administrator.
func NewReservation(opts ...ReservationOption) persistence.Reservation {
	idx := atomic.AddUint64(&reservationCounter, 1)
	r := persistence.Reservation{
		ID:        fmt.Sprintf("reservation-fx%03d", idx),
		UserID:    "user-admin",
		Date:      ReferenceDate,
		StartTime: "09:00:00",
		EndTime:   "10:00:00",
		Status:    persistence.ReservationStatusActive,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func WithReservationID(id string) ReservationOption {
	return func(r *persistence.Reservation) { r.ID = id }
}

// OnResource books the given resource.
func OnResource(resourceID string) ReservationOption {
	return func(r *persistence.Reservation) { r.ResourceID = resourceID }
}

// OnLaboratory books the given laboratory.
func OnLaboratory(labID string) ReservationOption {
	return func(r *persistence.Reservation) { r.LaboratoryID = labID }
}

// Between sets the time window on the current date.
func Between(start, end string) ReservationOption {
	return func(r *persistence.Reservation) {
		r.StartTime = start
		r.EndTime = end
	}
}

func OnDate(date string) ReservationOption {
	return func(r *persistence.Reservation) { r.Date = date }
}

func OwnedBy(userID string) ReservationOption {
	return func(r *persistence.Reservation) { r.UserID = userID }
}

// -------------------------------- Slot fixtures --------------------------------

// SeededSlot returns an in-memory slot already holding state encoded as JSON,
// as if a previous process had persisted it.
func SeededSlot(tb testing.TB, state persistence.State) *persistence.MemorySlot {
	tb.Helper()
	return SeededSlotRaw(tb, mustJSON(tb, state))
}

// SeededSlotRaw returns an in-memory slot holding data verbatim. It is used to
// feed older or partial shapes to the loader.
func SeededSlotRaw(tb testing.TB, data []byte) *persistence.MemorySlot {
	tb.Helper()
	slot := persistence.NewMemorySlot()
	if _, err := slot.Save(context.Background(), data, 0); err != nil {
		tb.Fatalf("failed to seed slot: %v", err)
	}
	return slot
}

func mustJSON(tb testing.TB, v any) []byte {
	tb.Helper()
	data, err := codec.JSON{}.Marshal(v)
	if err != nil {
		tb.Fatalf("failed to encode fixture: %v", err)
	}
	return data
}
