package station

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Sort orders records into display order: by name ignoring case, then by ID
// so that equal names still sort deterministically. The slice is sorted in
// place.
func Sort(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// IndexOf returns the position of the record with the given ID, or -1.
func IndexOf(records []Record, id string) int {
	if id == "" {
		return -1
	}
	_, idx, ok := lo.FindIndexOf(records, func(r Record) bool { return r.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Clone returns an independent copy of the slice.
func Clone(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Record, len(records))
	copy(dup, records)
	return dup
}

// Duplicates returns the IDs that occur more than once.
func Duplicates(records []Record) []string {
	dups := lo.FindDuplicatesBy(records, func(r Record) string { return r.ID })
	return lo.Map(dups, func(r Record, _ int) string { return r.ID })
}

// Playing returns the started station, or failing that the first one that
// is loading.
func Playing(records []Record) (Record, bool) {
	if r, ok := lo.Find(records, func(r Record) bool { return r.PlaybackState == Started }); ok {
		return r, true
	}
	return lo.Find(records, func(r Record) bool { return r.PlaybackState.Active() })
}

// CarryLive copies playback state and metadata from current onto the records
// of defs with the same ID. Records new to the list keep their own values.
func CarryLive(defs, current []Record) []Record {
	live := lo.SliceToMap(current, func(r Record) (string, Record) { return r.ID, r })
	return lo.Map(defs, func(r Record, _ int) Record {
		if prev, ok := live[r.ID]; ok {
			r.PlaybackState = prev.PlaybackState
			r.Metadata = prev.Metadata
		}
		return r
	})
}
