package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/tuner/internal/diff"
	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/selection"
	"github.com/five82/tuner/internal/station"
)

// Patch is the ordered op sequence that moves a view from Version-1 to
// Version.
type Patch struct {
	Version uint64
	Ops     []diff.Op
}

// SelectionChanged is emitted when the highlighted station changes. An empty
// SelectedID means nothing is selected (the list is empty).
type SelectionChanged struct {
	Version    uint64
	SelectedID string
}

// Observer receives notifications synchronously after each commit, in
// commit order. Callbacks may use the Store's read accessors but must not
// call its mutating methods.
type Observer interface {
	PatchApplied(Patch)
	SelectionChanged(SelectionChanged)
}

// ObserverFuncs adapts plain functions to Observer. Nil funcs are skipped.
type ObserverFuncs struct {
	OnPatch     func(Patch)
	OnSelection func(SelectionChanged)
}

func (f ObserverFuncs) PatchApplied(p Patch) {
	if f.OnPatch != nil {
		f.OnPatch(p)
	}
}

func (f ObserverFuncs) SelectionChanged(c SelectionChanged) {
	if f.OnSelection != nil {
		f.OnSelection(c)
	}
}

// Commit describes the outcome of one mutation.
type Commit struct {
	Version          uint64
	Ops              []diff.Op
	Unresolved       []string // station IDs the event named that are not in the list
	SelectionChanged bool
}

// Empty reports whether the mutation left the list unchanged.
func (c Commit) Empty() bool {
	return len(c.Ops) == 0
}

// Store is the authoritative station list. All mutations are serialized;
// each one builds a new list version, diffs it against the current one,
// commits it and notifies observers before the next mutation starts.
//
// The zero value is an empty store ready for use.
type Store struct {
	writeMu sync.Mutex // serializes mutate, diff, commit and notify

	mu          sync.RWMutex // guards the committed data below
	current     []station.Record
	version     uint64
	tracker     selection.Tracker
	unknown     int
	lastUnknown error
	lastUpdated time.Time

	obsMu     sync.Mutex
	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	o  Observer
}

// Subscribe registers o and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, o: o})
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool { return e.id == id })
	}
}

// Handle applies a decoded event. It satisfies events.Sink.
func (s *Store) Handle(ev events.Event) error {
	var err error
	switch e := ev.(type) {
	case events.PlaybackStateChanged:
		_, err = s.ApplyPlaybackStateChanged(e)
	case events.MetadataChanged:
		_, err = s.ApplyMetadataChanged(e)
	case events.FullListReplace:
		if e.KeepLive {
			_, err = s.ReplaceDefinitions(e.Stations)
		} else {
			_, err = s.ReplaceAll(e.Stations)
		}
	case nil:
		err = &events.MalformedError{Type: "unknown", Field: "event"}
	default:
		err = fmt.Errorf("unsupported event %T", ev)
	}
	return err
}

// ReplaceAll swaps in a new collection. The records are put into display
// order first; the selection is then corrected so it names a live record
// whenever the list is non-empty.
func (s *Store) ReplaceAll(records []station.Record) (Commit, error) {
	if err := (events.FullListReplace{Stations: records}).Validate(); err != nil {
		return Commit{}, err
	}
	if dups := station.Duplicates(records); len(dups) > 0 {
		return Commit{}, fmt.Errorf("%w: %v", ErrDuplicateStation, dups)
	}

	next := station.Clone(records)
	station.Sort(next)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.commit(next, nil, true), nil
}

// ReplaceDefinitions is ReplaceAll for a list read from the stations file.
// Stations already present keep their current playback state and metadata,
// read under the same lock as the commit.
func (s *Store) ReplaceDefinitions(records []station.Record) (Commit, error) {
	if err := (events.FullListReplace{Stations: records}).Validate(); err != nil {
		return Commit{}, err
	}
	if dups := station.Duplicates(records); len(dups) > 0 {
		return Commit{}, fmt.Errorf("%w: %v", ErrDuplicateStation, dups)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := station.CarryLive(records, s.current)
	station.Sort(next)
	return s.commit(next, nil, true), nil
}

// ApplyPlaybackStateChanged rewrites the target station's playback state
// and, when the event names a different previous station, stops that one.
// Both rewrites land in a single version. Stations missing from the list are
// reported in Commit.Unresolved; the rest of the event still applies.
//
// The state is taken verbatim; the playback process is authoritative.
func (s *Store) ApplyPlaybackStateChanged(ev events.PlaybackStateChanged) (Commit, error) {
	if err := ev.Validate(); err != nil {
		return Commit{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := station.Clone(s.current)
	var unresolved []string

	if prev := ev.PreviousStationID; prev != "" && prev != ev.StationID {
		if i := station.IndexOf(next, prev); i >= 0 {
			next[i] = next[i].WithPlaybackState(station.Stopped)
		} else {
			unresolved = append(unresolved, prev)
		}
	}
	if i := station.IndexOf(next, ev.StationID); i >= 0 {
		next[i] = next[i].WithPlaybackState(ev.State)
	} else {
		unresolved = append(unresolved, ev.StationID)
	}

	return s.commit(next, unresolved, false), nil
}

// ApplyMetadataChanged rewrites the now-playing text of one station.
func (s *Store) ApplyMetadataChanged(ev events.MetadataChanged) (Commit, error) {
	if err := ev.Validate(); err != nil {
		return Commit{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := station.Clone(s.current)
	var unresolved []string
	if i := station.IndexOf(next, ev.StationID); i >= 0 {
		next[i] = next[i].WithMetadata(ev.Metadata)
	} else {
		unresolved = append(unresolved, ev.StationID)
	}
	return s.commit(next, unresolved, false), nil
}

// SetSelected highlights the station with the given ID. Unknown IDs leave
// the selection unchanged and return false.
func (s *Store) SetSelected(id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev, _ := s.tracker.Selected()
	ok := s.tracker.Select(id, s.current)
	version := s.version
	s.mu.Unlock()

	if ok && prev != id {
		s.notifySelection(SelectionChanged{Version: version, SelectedID: id})
	}
	return ok
}

// RestoreSelection seeds the selection from persisted state. If a list is
// already loaded the selection is corrected against it immediately.
func (s *Store) RestoreSelection(id string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev, _ := s.tracker.Selected()
	s.tracker.Restore(id)
	if len(s.current) > 0 {
		s.tracker.Reconcile(s.current)
	}
	selected, _ := s.tracker.Selected()
	version := s.version
	s.mu.Unlock()

	if len(s.current) > 0 && selected != prev {
		s.notifySelection(SelectionChanged{Version: version, SelectedID: selected})
	}
}

// commit must be called with writeMu held.
func (s *Store) commit(next []station.Record, unresolved []string, reconcile bool) Commit {
	ops := diff.Compute(s.current, next)

	s.mu.Lock()
	if len(ops) > 0 {
		s.current = next
		s.version++
	}
	prevSel, _ := s.tracker.Selected()
	selChanged := false
	if reconcile {
		selChanged = s.tracker.Reconcile(s.current)
	}
	if len(unresolved) > 0 {
		s.unknown += len(unresolved)
		s.lastUnknown = &UnknownStationError{ID: unresolved[len(unresolved)-1]}
	}
	s.lastUpdated = time.Now()
	version := s.version
	selected, _ := s.tracker.Selected()
	s.mu.Unlock()

	if len(ops) > 0 {
		s.notifyPatch(Patch{Version: version, Ops: ops})
	}
	if selChanged && selected != prevSel {
		s.notifySelection(SelectionChanged{Version: version, SelectedID: selected})
	}

	return Commit{
		Version:          version,
		Ops:              ops,
		Unresolved:       unresolved,
		SelectionChanged: selChanged,
	}
}

func (s *Store) snapshotObservers() []Observer {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	out := make([]Observer, len(s.observers))
	for i, e := range s.observers {
		out[i] = e.o
	}
	return out
}

func (s *Store) notifyPatch(p Patch) {
	for _, o := range s.snapshotObservers() {
		o.PatchApplied(Patch{Version: p.Version, Ops: slices.Clone(p.Ops)})
	}
}

func (s *Store) notifySelection(c SelectionChanged) {
	for _, o := range s.snapshotObservers() {
		o.SelectionChanged(c)
	}
}
