package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, lab, resource, start, end string) Reservation {
	return Reservation{
		ID: id, UserID: "user-admin", LaboratoryID: lab, ResourceID: resource,
		Date: "2024-05-01", Start: start, End: end,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := booking("", "", "r1", "09:00:00", "10:00:00")
	require.Nil(t, Validate(valid))

	cases := []struct {
		name    string
		mutate  func(r *Reservation)
		field   string
		message string
	}{
		{"missing user", func(r *Reservation) { r.UserID = "" }, "userId", "Missing required reservation fields"},
		{"missing date", func(r *Reservation) { r.Date = "" }, "reservationDate", "Missing required reservation fields"},
		{"missing start", func(r *Reservation) { r.Start = "" }, "startTime", "Missing required reservation fields"},
		{"missing end", func(r *Reservation) { r.End = "" }, "endTime", "Missing required reservation fields"},
		{"malformed date", func(r *Reservation) { r.Date = "01/05/2024" }, "reservationDate", "reservationDate must be YYYY-MM-DD"},
		{"short time", func(r *Reservation) { r.Start = "9:00" }, "startTime", "startTime/endTime must be HH:mm:ss"},
		{"malformed end", func(r *Reservation) { r.End = "10:00" }, "endTime", "startTime/endTime must be HH:mm:ss"},
		{"zero length", func(r *Reservation) { r.End = r.Start }, "endTime", "endTime must be greater than startTime"},
		{"reversed", func(r *Reservation) { r.Start, r.End = "11:00:00", "10:00:00" }, "endTime", "endTime must be greater than startTime"},
		{"missing fields win over format", func(r *Reservation) { r.UserID = ""; r.Date = "bad" }, "userId", "Missing required reservation fields"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := valid
			tc.mutate(&candidate)

			issue := Validate(candidate)
			require.NotNil(t, issue)
			assert.Equal(t, tc.field, issue.Field)
			assert.Equal(t, tc.message, issue.Error())
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	existing := []Reservation{booking("a", "", "r1", "09:00:00", "10:00:00")}

	t.Run("resource overlap produces conflict", func(t *testing.T) {
		conflicts := DetectConflicts(existing, booking("", "", "r1", "09:30:00", "10:30:00"))
		require.Len(t, conflicts, 1)
		assert.Equal(t, Conflict{WithReservationID: "a", Type: ConflictTypeResource, SharedID: "r1"}, conflicts[0])
	})

	t.Run("laboratory overlap produces conflict", func(t *testing.T) {
		labs := []Reservation{booking("lab-booking", "lab-1", "", "08:00:00", "12:00:00")}
		conflicts := DetectConflicts(labs, booking("", "lab-1", "r9", "11:00:00", "13:00:00"))
		require.Len(t, conflicts, 1)
		assert.Equal(t, ConflictTypeLaboratory, conflicts[0].Type)
	})

	t.Run("lab-wide booking collides with resource booking in the same lab", func(t *testing.T) {
		stored := []Reservation{booking("whole-lab", "lab-1", "", "09:00:00", "17:00:00")}
		conflicts := DetectConflicts(stored, booking("", "lab-1", "r1", "10:00:00", "11:00:00"))
		assert.Len(t, conflicts, 1)
	})

	t.Run("touching boundaries do not conflict", func(t *testing.T) {
		assert.Empty(t, DetectConflicts(existing, booking("", "", "r1", "10:00:00", "11:00:00")))
		assert.Empty(t, DetectConflicts(existing, booking("", "", "r1", "08:00:00", "09:00:00")))
	})

	t.Run("different day does not conflict", func(t *testing.T) {
		candidate := booking("", "", "r1", "09:00:00", "10:00:00")
		candidate.Date = "2024-05-02"
		assert.Empty(t, DetectConflicts(existing, candidate))
	})

	t.Run("no shared axis does not conflict", func(t *testing.T) {
		assert.Empty(t, DetectConflicts(existing, booking("", "", "r2", "09:00:00", "10:00:00")))
		assert.Empty(t, DetectConflicts(existing, booking("", "lab-1", "", "09:00:00", "10:00:00")))
	})

	t.Run("update skips its own previous version", func(t *testing.T) {
		assert.Empty(t, DetectConflicts(existing, booking("a", "", "r1", "09:15:00", "10:15:00")))
	})

	t.Run("containing interval conflicts", func(t *testing.T) {
		assert.Len(t, DetectConflicts(existing, booking("", "", "r1", "08:00:00", "11:00:00")), 1)
	})
}

func TestOverlaps_IsSymmetric(t *testing.T) {
	t.Parallel()

	times := []string{"08:00:00", "09:00:00", "09:30:00", "10:00:00", "11:00:00"}
	for _, as := range times {
		for _, ae := range times {
			if ae <= as {
				continue
			}
			for _, bs := range times {
				for _, be := range times {
					if be <= bs {
						continue
					}
					assert.Equal(t, Overlaps(as, ae, bs, be), Overlaps(bs, be, as, ae),
						fmt.Sprintf("[%s,%s) vs [%s,%s)", as, ae, bs, be))
				}
			}
		}
	}
}
