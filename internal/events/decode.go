package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/five82/tuner/internal/station"
)

// StationPayload is the transport form of a station.
type StationPayload struct {
	ID            string `json:"id,omitempty"`
	URI           string `json:"uri"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	PlaybackState string `json:"playback_state,omitempty"`
	Metadata      string `json:"metadata,omitempty"`
}

// Record converts the payload. The ID is derived from the URI; a payload
// without a URI must carry one. An explicit ID that differs from the one its
// URI maps to is rejected.
func (p StationPayload) Record() (station.Record, error) {
	r := station.New(p.URI, p.Name, p.Image)
	if id := strings.TrimSpace(p.ID); id != "" {
		if r.ID != "" && r.ID != id {
			return station.Record{}, fmt.Errorf("id %q does not match uri %q", id, r.StreamURI)
		}
		r.ID = id
	}
	if p.PlaybackState != "" {
		state, err := station.ParsePlaybackState(p.PlaybackState)
		if err != nil {
			return station.Record{}, err
		}
		r.PlaybackState = state
	}
	r.Metadata = p.Metadata
	return r, nil
}

// Records converts a slice of payloads, stopping at the first bad entry.
func Records(payloads []StationPayload) ([]station.Record, error) {
	out := make([]station.Record, 0, len(payloads))
	for i, p := range payloads {
		r, err := p.Record()
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

type envelope struct {
	Type               string           `json:"type"`
	StationID          string           `json:"station_id"`
	StationURI         string           `json:"station_uri"`
	PlaybackState      string           `json:"playback_state"`
	PreviousStationID  string           `json:"previous_station_id"`
	PreviousStationURI string           `json:"previous_station_uri"`
	Metadata           *string          `json:"metadata"`
	Stations           []StationPayload `json:"stations"`
}

// Decode parses one JSON-encoded signal. Stations may be referenced by ID or
// by stream URI. The returned event has already been validated.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &MalformedError{Type: "unknown", Field: "body", Reason: err.Error()}
	}

	var ev Event
	switch strings.TrimSpace(env.Type) {
	case TypePlaybackStateChanged:
		if strings.TrimSpace(env.PlaybackState) == "" {
			return nil, &MalformedError{Type: TypePlaybackStateChanged, Field: "playback_state"}
		}
		state, err := station.ParsePlaybackState(env.PlaybackState)
		if err != nil {
			return nil, &MalformedError{Type: TypePlaybackStateChanged, Field: "playback_state", Reason: err.Error()}
		}
		ev = PlaybackStateChanged{
			StationID:         resolveID(env.StationID, env.StationURI),
			State:             state,
			PreviousStationID: resolveID(env.PreviousStationID, env.PreviousStationURI),
		}
	case TypeMetadataChanged:
		if env.Metadata == nil {
			return nil, &MalformedError{Type: TypeMetadataChanged, Field: "metadata"}
		}
		ev = MetadataChanged{
			StationID: resolveID(env.StationID, env.StationURI),
			Metadata:  *env.Metadata,
		}
	case TypeFullListReplace:
		records, err := Records(env.Stations)
		if err != nil {
			return nil, &MalformedError{Type: TypeFullListReplace, Field: "stations", Reason: err.Error()}
		}
		ev = FullListReplace{Stations: records}
	case "":
		return nil, &MalformedError{Type: "unknown", Field: "type"}
	default:
		return nil, &MalformedError{Type: env.Type, Field: "type", Reason: "unsupported"}
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

func resolveID(id, uri string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return station.IDFor(uri)
}
