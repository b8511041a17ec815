// Package apierror translates failures into the closed error taxonomy
// returned to callers and notifies observers of authentication failures.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/example/lablink/internal/application"
)

// Code is the stable error classification exposed to callers.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnknown      Code = "UNKNOWN"
)

// Error is the normalized failure shape. Status is an HTTP status code.
type Error struct {
	Status  int    `json:"status"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// New builds an Error whose code follows from status.
func New(status int, message string, details any) *Error {
	if details == nil {
		details = map[string]any{"message": message}
	}
	return &Error{Status: status, Code: CodeForStatus(status), Message: message, Details: details}
}

// CodeForStatus classifies an HTTP status.
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	default:
		return CodeUnknown
	}
}

// Normalize maps any failure into an *Error. It returns nil for a nil error
// and passes an *Error found in the chain through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var normalized *Error
	if errors.As(err, &normalized) && normalized != nil {
		return normalized
	}

	message := err.Error()
	var details any
	var appErr *application.Error
	if errors.As(err, &appErr) {
		message = appErr.Error()
		if appErr.Details != nil {
			details = appErr.Details
		}
	}

	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrUnauthorized):
		return New(http.StatusUnauthorized, message, details)
	case errors.Is(err, application.ErrNotFound):
		return New(http.StatusNotFound, message, details)
	case errors.Is(err, application.ErrConflict):
		return New(http.StatusConflict, message, details)
	case errors.As(err, &vErr):
		return New(http.StatusUnprocessableEntity, vErr.Error(), map[string]any{
			"message": vErr.Error(),
			"errors":  vErr.FieldErrors,
		})
	}

	return &Error{Status: http.StatusInternalServerError, Code: CodeUnknown, Message: message, Details: details}
}
