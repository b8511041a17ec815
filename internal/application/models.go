package application

import (
	"context"

	"github.com/example/lablink/internal/persistence"
)

// StateStore is the slice of the durable state store the services rely on.
// Update must apply fn atomically: either the mutated state is persisted in
// full or nothing changes.
type StateStore interface {
	Snapshot() persistence.State
	Update(ctx context.Context, fn func(state *persistence.State) error) error
}

// User is the public summary of an account. Secrets never leave the service.
type User struct {
	ID    string
	Email string
	Name  string
}

// Laboratory is a lab that can be booked as a whole.
type Laboratory struct {
	ID          string
	Name        string
	Description string
	Location    string
}

// LaboratoryInput carries caller supplied laboratory fields. On update, empty
// fields keep their stored value.
type LaboratoryInput struct {
	Name        string
	Description string
	Location    string
}

// Resource is a bookable piece of equipment.
type Resource struct {
	ID           string
	Name         string
	Type         string
	LaboratoryID string
}

// ResourceInput carries caller supplied resource fields. On update, empty
// fields keep their stored value.
type ResourceInput struct {
	Name         string
	Type         string
	LaboratoryID string
}

// Reservation books a laboratory and/or resource for a time window on one day.
type Reservation struct {
	ID           string
	UserID       string
	LaboratoryID string
	ResourceID   string
	Date         string
	StartTime    string
	EndTime      string
	Status       string
}

// ReservationInput carries caller supplied reservation fields. On update,
// empty fields keep their stored value.
type ReservationInput struct {
	UserID       string
	LaboratoryID string
	ResourceID   string
	Date         string
	StartTime    string
	EndTime      string
	Status       string
}

// ReservationConflict is a pair of stored reservations that overlap.
type ReservationConflict struct {
	FirstID  string
	SecondID string
	Type     string
	SharedID string
	Date     string
}

// LoginParams identifies the account by email and proves it with a password.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string
	User  User
}

// RegisterParams carries the fields of a new account.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

func userFromRecord(u persistence.User) User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name}
}

func laboratoryFromRecord(l persistence.Laboratory) Laboratory {
	return Laboratory{ID: l.ID, Name: l.Name, Description: l.Description, Location: l.Location}
}

func resourceFromRecord(r persistence.Resource) Resource {
	return Resource{ID: r.ID, Name: r.Name, Type: r.Type, LaboratoryID: r.LaboratoryID}
}

func reservationFromRecord(r persistence.Reservation) Reservation {
	return Reservation{
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
