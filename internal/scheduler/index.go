package scheduler

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
)

// Index groups reservations by (axis, id, date) and keeps each group ordered
// by start time, so lookups only walk the bookings of one laboratory or
// resource on one day instead of the whole collection.
type Index struct {
	groups map[groupKey]*treemap.Map
}

type groupKey struct {
	axis ConflictType
	id   string
	date string
}

// NewIndex builds an index over the given reservations.
func NewIndex(reservations []Reservation) *Index {
	idx := &Index{groups: make(map[groupKey]*treemap.Map)}
	for _, r := range reservations {
		idx.Add(r)
	}
	return idx
}

// Add inserts a reservation into every group it belongs to.
func (idx *Index) Add(r Reservation) {
	for _, key := range keysFor(r) {
		group, ok := idx.groups[key]
		if !ok {
			group = treemap.NewWithStringComparator()
			idx.groups[key] = group
		}
		var bucket []Reservation
		if existing, found := group.Get(r.Start); found {
			bucket = existing.([]Reservation)
		}
		group.Put(r.Start, append(bucket, r))
	}
}

// Conflicts returns the indexed reservations colliding with candidate. Only
// the groups sharing the candidate's resource or laboratory on its date are
// walked, and each walk stops at the first entry starting at or after the
// candidate's end. The surviving entries are classified by DetectConflicts.
func (idx *Index) Conflicts(candidate Reservation) []Conflict {
	seen := make(map[string]struct{})
	var nearby []Reservation
	for _, key := range keysFor(candidate) {
		group, ok := idx.groups[key]
		if !ok {
			continue
		}
		it := group.Iterator()
		for it.Next() {
			if it.Key().(string) >= candidate.End {
				break
			}
			for _, other := range it.Value().([]Reservation) {
				if _, dup := seen[other.ID]; dup {
					continue
				}
				seen[other.ID] = struct{}{}
				nearby = append(nearby, other)
			}
		}
	}
	return DetectConflicts(nearby, candidate)
}

// Pair is two stored reservations that overlap each other.
type Pair struct {
	FirstID  string
	SecondID string
	Type     ConflictType
	SharedID string
	Date     string
}

// Pairs lists every overlapping pair held by the index, ordered by date and IDs.
func (idx *Index) Pairs() []Pair {
	keys := make([]groupKey, 0, len(idx.groups))
	for key := range idx.groups {
		keys = append(keys, key)
	}
	// Resource groups first so a pair sharing both axes is reported as a
	// resource conflict, matching DetectConflicts.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].axis != keys[j].axis {
			return keys[i].axis == ConflictTypeResource
		}
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].id < keys[j].id
	})

	seen := make(map[[2]string]struct{})
	var pairs []Pair
	for _, key := range keys {
		group := idx.groups[key]
		var ordered []Reservation
		it := group.Iterator()
		for it.Next() {
			ordered = append(ordered, it.Value().([]Reservation)...)
		}
		for i, a := range ordered {
			for _, b := range ordered[i+1:] {
				if b.Start >= a.End {
					break
				}
				if !Overlaps(a.Start, a.End, b.Start, b.End) {
					continue
				}
				ids := [2]string{a.ID, b.ID}
				if ids[1] < ids[0] {
					ids[0], ids[1] = ids[1], ids[0]
				}
				if _, dup := seen[ids]; dup {
					continue
				}
				seen[ids] = struct{}{}
				pairs = append(pairs, Pair{FirstID: ids[0], SecondID: ids[1], Type: key.axis, SharedID: key.id, Date: key.date})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Date != pairs[j].Date {
			return pairs[i].Date < pairs[j].Date
		}
		if pairs[i].FirstID != pairs[j].FirstID {
			return pairs[i].FirstID < pairs[j].FirstID
		}
		return pairs[i].SecondID < pairs[j].SecondID
	})
	return pairs
}

func keysFor(r Reservation) []groupKey {
	keys := make([]groupKey, 0, 2)
	if r.ResourceID != "" {
		keys = append(keys, groupKey{axis: ConflictTypeResource, id: r.ResourceID, date: r.Date})
	}
	if r.LaboratoryID != "" {
		keys = append(keys, groupKey{axis: ConflictTypeLaboratory, id: r.LaboratoryID, date: r.Date})
	}
	return keys
}
