package scheduler

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Conflicts(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]Reservation{
		booking("a", "lab-1", "r1", "09:00:00", "10:00:00"),
		booking("b", "", "r1", "11:00:00", "12:00:00"),
		booking("c", "lab-2", "", "09:00:00", "12:00:00"),
	})

	t.Run("shared on both axes is reported once", func(t *testing.T) {
		conflicts := idx.Conflicts(booking("", "lab-1", "r1", "09:30:00", "09:45:00"))
		require.Len(t, conflicts, 1)
		assert.Equal(t, "a", conflicts[0].WithReservationID)
		assert.Equal(t, ConflictTypeResource, conflicts[0].Type)
	})

	t.Run("gap between bookings is free", func(t *testing.T) {
		assert.Empty(t, idx.Conflicts(booking("", "", "r1", "10:00:00", "11:00:00")))
	})

	t.Run("spanning candidate hits every booking", func(t *testing.T) {
		assert.Len(t, idx.Conflicts(booking("", "", "r1", "08:00:00", "13:00:00")), 2)
	})

	t.Run("own id is skipped", func(t *testing.T) {
		assert.Empty(t, idx.Conflicts(booking("c", "lab-2", "", "10:00:00", "11:00:00")))
	})
}

func TestIndex_AgreesWithLinearScan(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	hour := func() int { return 8 + rng.Intn(10) }
	clock := func(h, m int) string { return fmt.Sprintf("%02d:%02d:00", h, m) }

	var stored []Reservation
	for i := 0; i < 60; i++ {
		h := hour()
		r := Reservation{
			ID:    fmt.Sprintf("res-%02d", i),
			Date:  fmt.Sprintf("2024-05-%02d", 1+rng.Intn(2)),
			Start: clock(h, 0),
			End:   clock(h+1+rng.Intn(2), 30*rng.Intn(2)),
		}
		if rng.Intn(2) == 0 {
			r.ResourceID = fmt.Sprintf("r%d", rng.Intn(3))
		}
		if rng.Intn(2) == 0 || r.ResourceID == "" {
			r.LaboratoryID = fmt.Sprintf("lab-%d", rng.Intn(2))
		}
		stored = append(stored, r)
	}

	idx := NewIndex(stored)
	for _, candidate := range stored {
		want := ids(DetectConflicts(stored, candidate))
		got := ids(idx.Conflicts(candidate))
		assert.Equal(t, want, got, "candidate %s", candidate.ID)
	}
}

func TestIndex_Pairs(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]Reservation{
		booking("a", "lab-1", "r1", "09:00:00", "10:00:00"),
		booking("b", "lab-1", "r1", "09:30:00", "10:30:00"),
		booking("c", "", "r2", "10:00:00", "11:00:00"),
		booking("d", "", "r2", "11:00:00", "12:00:00"),
	})

	pairs := idx.Pairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{FirstID: "a", SecondID: "b", Type: ConflictTypeResource, SharedID: "r1", Date: "2024-05-01"}, pairs[0])
}

func ids(conflicts []Conflict) []string {
	out := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.WithReservationID)
	}
	sort.Strings(out)
	return out
}
