package state

import (
	"time"

	"github.com/five82/tuner/internal/station"
)

// Snapshot is a copy of the store at one version.
type Snapshot struct {
	Stations          []station.Record
	Version           uint64
	SelectedID        string
	UnknownReferences int   // events that named a station not in the list
	LastUnknown       error // most recent of those, wraps ErrUnknownStation
	LastUpdated       time.Time
}

// Selected returns the highlighted record.
func (s Snapshot) Selected() (station.Record, error) {
	if len(s.Stations) == 0 {
		return station.Record{}, ErrEmptyCollection
	}
	i := station.IndexOf(s.Stations, s.SelectedID)
	if i < 0 {
		return station.Record{}, &UnknownStationError{ID: s.SelectedID}
	}
	return s.Stations[i], nil
}

// NowPlaying returns the station that is loading or playing, if any.
func (s Snapshot) NowPlaying() (station.Record, bool) {
	return station.Playing(s.Stations)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected, _ := s.tracker.Selected()
	return Snapshot{
		Stations:          station.Clone(s.current),
		Version:           s.version,
		SelectedID:        selected,
		UnknownReferences: s.unknown,
		LastUnknown:       s.lastUnknown,
		LastUpdated:       s.lastUpdated,
	}
}

// CurrentList returns a copy of the committed list in display order.
func (s *Store) CurrentList() []station.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return station.Clone(s.current)
}

// SelectedID returns the highlighted station ID, if any.
func (s *Store) SelectedID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Selected()
}

// NowPlaying returns the station that is loading or playing, if any.
func (s *Store) NowPlaying() (station.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return station.Playing(s.current)
}

// Station looks up one record by ID.
func (s *Store) Station(id string) (station.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := station.IndexOf(s.current, id); i >= 0 {
		return s.current[i], true
	}
	return station.Record{}, false
}

// Version returns the number of committed list versions.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
