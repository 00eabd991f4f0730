// Package selection tracks which station the display layer highlights.
package selection

import "github.com/five82/tuner/internal/station"

// Tracker holds the selected station ID. The zero value has no selection.
// It is not safe for concurrent use; the collection store serializes access.
type Tracker struct {
	selectedID string
}

// Selected returns the current selection, if any.
func (t *Tracker) Selected() (string, bool) {
	return t.selectedID, t.selectedID != ""
}

// Select makes id the selection when it names a record in list. Unknown IDs
// leave the selection untouched and report false.
func (t *Tracker) Select(id string, list []station.Record) bool {
	if station.IndexOf(list, id) < 0 {
		return false
	}
	t.selectedID = id
	return true
}

// Restore seeds the selection without validating it against a list. It is
// used before the first list arrives; Reconcile corrects it if it turns out
// to be stale.
func (t *Tracker) Restore(id string) {
	t.selectedID = id
}

// Reconcile keeps the selection pointing at a live record after the list has
// been replaced. An empty list clears it; a missing or stale selection falls
// back to the first record in display order. A selection that is still
// present is kept. It reports whether the selection changed.
func (t *Tracker) Reconcile(list []station.Record) bool {
	prev := t.selectedID
	switch {
	case len(list) == 0:
		t.selectedID = ""
	case station.IndexOf(list, t.selectedID) < 0:
		t.selectedID = list[0].ID
	}
	return t.selectedID != prev
}
