package application

import (
	"errors"
	"fmt"

	"github.com/example/lablink/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the caller has no valid session.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a write collides with existing state.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned when login credentials do not match a user.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// Error decorates a sentinel with the message and details callers should see.
type Error struct {
	Kind    error
	Message string
	Details map[string]any
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message != "" {
		return v.Message
	}
	return "validation failed"
}

// add records a field level validation error. The first message recorded
// becomes the summary message.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
	if v.Message == "" {
		v.Message = message
	}
}

func fieldError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

func notFound(entity string) *Error {
	return newError(ErrNotFound, entity+" not found")
}

// mapStoreError translates state store failures into application errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	var vErr *ValidationError
	if errors.As(err, &appErr) || errors.As(err, &vErr) {
		return err
	}
	if errors.Is(err, persistence.ErrStaleState) {
		return &Error{
			Kind:    ErrConflict,
			Message: "state was modified by another writer",
			Details: map[string]any{"cause": err.Error()},
		}
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("state store: %w", err)
}
