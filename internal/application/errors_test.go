package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/lablink/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := fieldError("name", "name is required")
	if got := withFields.Error(); got != "name is required" {
		t.Fatalf("expected first field message as summary, got %q", got)
	}
}

func TestValidationError_AddKeepsFirstSummary(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("first", "first problem")
	v.add("second", "second problem")

	if v.Message != "first problem" {
		t.Fatalf("expected summary from first field, got %q", v.Message)
	}
	if len(v.FieldErrors) != 2 {
		t.Fatalf("expected both fields recorded, got %v", v.FieldErrors)
	}
}

func TestError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("handler: %w", notFound("Laboratory"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped error to match ErrNotFound")
	}
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Message != "Laboratory not found" {
		t.Fatalf("expected message to survive wrapping, got %v", err)
	}

	if got := (&Error{Kind: ErrConflict}).Error(); got != ErrConflict.Error() {
		t.Fatalf("expected sentinel text when message is empty, got %q", got)
	}
}

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	if mapStoreError(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}

	stale := mapStoreError(fmt.Errorf("save: %w", persistence.ErrStaleState))
	if !errors.Is(stale, ErrConflict) {
		t.Fatalf("expected stale state to map to ErrConflict, got %v", stale)
	}

	if !errors.Is(mapStoreError(persistence.ErrNotFound), ErrNotFound) {
		t.Fatalf("expected persistence not found to map to ErrNotFound")
	}

	original := notFound("Resource")
	if got := mapStoreError(original); got != error(original) {
		t.Fatalf("expected application errors to pass through unchanged, got %v", got)
	}

	boom := errors.New("disk full")
	if got := mapStoreError(boom); !errors.Is(got, boom) {
		t.Fatalf("expected unexpected errors to be wrapped, got %v", got)
	}
}
