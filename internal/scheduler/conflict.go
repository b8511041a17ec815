package scheduler

import "regexp"

// Reservation is the slice of a booking the conflict engine reasons about.
// Date is YYYY-MM-DD and Start/End are zero-padded HH:MM:SS, so plain string
// comparison orders them chronologically.
type Reservation struct {
	ID           string
	UserID       string
	LaboratoryID string
	ResourceID   string
	Date         string
	Start        string
	End          string
}

// ConflictType describes which shared axis caused a conflict.
type ConflictType string

const (
	// ConflictTypeLaboratory indicates the laboratory is double-booked.
	ConflictTypeLaboratory ConflictType = "laboratory"
	// ConflictTypeResource indicates the resource is double-booked.
	ConflictTypeResource ConflictType = "resource"
)

// Conflict details an overlapping reservation that callers can present to users.
type Conflict struct {
	WithReservationID string
	Type              ConflictType
	SharedID          string
}

// Issue is a validation failure on a single field.
type Issue struct {
	Field   string
	Message string
}

func (i *Issue) Error() string { return i.Message }

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// Validate checks the candidate in a fixed order and reports the first failure.
func Validate(candidate Reservation) *Issue {
	switch {
	case candidate.UserID == "":
		return &Issue{Field: "userId", Message: "Missing required reservation fields"}
	case candidate.Date == "":
		return &Issue{Field: "reservationDate", Message: "Missing required reservation fields"}
	case candidate.Start == "":
		return &Issue{Field: "startTime", Message: "Missing required reservation fields"}
	case candidate.End == "":
		return &Issue{Field: "endTime", Message: "Missing required reservation fields"}
	}

	if !datePattern.MatchString(candidate.Date) {
		return &Issue{Field: "reservationDate", Message: "reservationDate must be YYYY-MM-DD"}
	}
	if !timePattern.MatchString(candidate.Start) {
		return &Issue{Field: "startTime", Message: "startTime/endTime must be HH:mm:ss"}
	}
	if !timePattern.MatchString(candidate.End) {
		return &Issue{Field: "endTime", Message: "startTime/endTime must be HH:mm:ss"}
	}
	if candidate.End <= candidate.Start {
		return &Issue{Field: "endTime", Message: "endTime must be greater than startTime"}
	}
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// DetectConflicts scans existing reservations for ones that collide with the
// candidate. An existing entry with the candidate's ID is skipped so updates
// do not conflict with their own previous version.
func DetectConflicts(existing []Reservation, candidate Reservation) []Conflict {
	var conflicts []Conflict
	for _, other := range existing {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if conflict, ok := collide(candidate, other); ok {
			conflicts = append(conflicts, conflict)
		}
	}
	return conflicts
}

func collide(candidate, other Reservation) (Conflict, bool) {
	if other.Date != candidate.Date {
		return Conflict{}, false
	}
	if !Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
		return Conflict{}, false
	}
	// Either axis is sufficient; the resource axis is reported first.
	if candidate.ResourceID != "" && candidate.ResourceID == other.ResourceID {
		return Conflict{WithReservationID: other.ID, Type: ConflictTypeResource, SharedID: candidate.ResourceID}, true
	}
	if candidate.LaboratoryID != "" && candidate.LaboratoryID == other.LaboratoryID {
		return Conflict{WithReservationID: other.ID, Type: ConflictTypeLaboratory, SharedID: candidate.LaboratoryID}, true
	}
	return Conflict{}, false
}
