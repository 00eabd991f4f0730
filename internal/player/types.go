package player

import (
	"encoding/json"

	"github.com/five82/tuner/internal/events"
)

// StatusResponse mirrors /api/status.
type StatusResponse struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid"`
	Version    string `json:"version"`
	StationURI string `json:"stationUri"`
	State      string `json:"state"`
}

// StationListResponse mirrors /api/stations.
type StationListResponse struct {
	Stations []events.StationPayload `json:"stations"`
}

// EventBatch is a page of raw signals from /api/events plus the cursor for
// the next request. Each entry is decoded with events.Decode.
type EventBatch struct {
	Events []json.RawMessage `json:"events"`
	Next   uint64            `json:"next"`
}
