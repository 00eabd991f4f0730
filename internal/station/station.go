// Package station defines the station record shared by the collection store,
// the diff engine and the display layer.
package station

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlaybackState is the playback status of a single station as reported by
// the playback process.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Loading
	Started
)

// String returns the wire name of the state.
func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Loading:
		return "LOADING"
	case Started:
		return "STARTED"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(s))
	}
}

// Active reports whether the station is loading or playing.
func (s PlaybackState) Active() bool {
	return s == Loading || s == Started
}

// ParsePlaybackState accepts the wire names case-insensitively.
func ParsePlaybackState(value string) (PlaybackState, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "STOPPED":
		return Stopped, nil
	case "LOADING":
		return Loading, nil
	case "STARTED":
		return Started, nil
	default:
		return Stopped, fmt.Errorf("unknown playback state %q", value)
	}
}

// Record is one station in a list version. Records that are part of a
// committed version are never modified; use the With* methods instead.
type Record struct {
	ID            string
	StreamURI     string
	Name          string
	ImageRef      string
	PlaybackState PlaybackState
	Metadata      string
}

// New builds a stopped record whose ID is derived from the stream URI.
func New(streamURI, name, imageRef string) Record {
	uri := strings.TrimSpace(streamURI)
	return Record{
		ID:        IDFor(uri),
		StreamURI: uri,
		Name:      strings.TrimSpace(name),
		ImageRef:  strings.TrimSpace(imageRef),
	}
}

// IDFor returns the stable identifier for a stream URI. The same URI always
// maps to the same ID; an empty URI has no ID.
func IDFor(streamURI string) string {
	uri := strings.TrimSpace(streamURI)
	if uri == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(uri)).String()
}

// WithPlaybackState returns a copy of r with the playback state replaced.
func (r Record) WithPlaybackState(state PlaybackState) Record {
	r.PlaybackState = state
	return r
}

// WithMetadata returns a copy of r with the now-playing text replaced.
func (r Record) WithMetadata(metadata string) Record {
	r.Metadata = metadata
	return r
}

// DisplayName falls back to the stream URI for unnamed stations.
func (r Record) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return r.StreamURI
}
