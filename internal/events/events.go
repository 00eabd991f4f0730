// Package events decodes signals from the playback process into typed
// events and dispatches them, one at a time, to the collection store.
package events

import (
	"errors"
	"fmt"

	"github.com/five82/tuner/internal/station"
)

// ErrMalformedEvent marks an event that is missing a required field or
// carries an unparseable value.
var ErrMalformedEvent = errors.New("malformed event")

// MalformedError reports which field of which event type was invalid.
type MalformedError struct {
	Type   string
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed %s event: %s: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed %s event: missing %s", e.Type, e.Field)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedEvent }

// Event is one of PlaybackStateChanged, MetadataChanged or FullListReplace.
type Event interface {
	Type() string
	Validate() error
}

const (
	TypePlaybackStateChanged = "playback_state_changed"
	TypeMetadataChanged      = "metadata_changed"
	TypeFullListReplace      = "full_list_replace"
)

// PlaybackStateChanged reports a new playback state for one station. When
// PreviousStationID is set, that station has been stopped by the same
// transition.
type PlaybackStateChanged struct {
	StationID         string
	State             station.PlaybackState
	PreviousStationID string
}

func (PlaybackStateChanged) Type() string { return TypePlaybackStateChanged }

func (e PlaybackStateChanged) Validate() error {
	if e.StationID == "" {
		return &MalformedError{Type: e.Type(), Field: "station_id"}
	}
	switch e.State {
	case station.Stopped, station.Loading, station.Started:
	default:
		return &MalformedError{Type: e.Type(), Field: "playback_state", Reason: e.State.String()}
	}
	return nil
}

// MetadataChanged carries new now-playing text for one station. An empty
// Metadata clears it.
type MetadataChanged struct {
	StationID string
	Metadata  string
}

func (MetadataChanged) Type() string { return TypeMetadataChanged }

func (e MetadataChanged) Validate() error {
	if e.StationID == "" {
		return &MalformedError{Type: e.Type(), Field: "station_id"}
	}
	return nil
}

// FullListReplace replaces the whole collection. With KeepLive set the
// stations are definitions only: playback state and metadata of stations
// already in the list are kept when the replace is applied.
type FullListReplace struct {
	Stations []station.Record
	KeepLive bool
}

func (FullListReplace) Type() string { return TypeFullListReplace }

func (e FullListReplace) Validate() error {
	for i, r := range e.Stations {
		if r.ID == "" {
			return &MalformedError{Type: e.Type(), Field: fmt.Sprintf("stations[%d].id", i)}
		}
	}
	return nil
}
