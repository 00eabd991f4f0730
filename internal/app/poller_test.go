package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/player"
	"github.com/five82/tuner/internal/station"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeSource struct {
	stations    []station.Record
	stationsErr error
	batches     []player.EventBatch
	eventsErr   error
	queries     []player.EventQuery
	stationHits int
}

func (f *fakeSource) FetchStations(context.Context) ([]station.Record, error) {
	f.stationHits++
	return f.stations, f.stationsErr
}

func (f *fakeSource) FetchEvents(_ context.Context, q player.EventQuery) (player.EventBatch, error) {
	f.queries = append(f.queries, q)
	if f.eventsErr != nil {
		return player.EventBatch{}, f.eventsErr
	}
	if len(f.batches) == 0 {
		return player.EventBatch{Next: q.Since}, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

type capturePublisher struct {
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) PublishRaw(ctx context.Context, data []byte) error {
	ev, err := events.Decode(data)
	if err != nil {
		return err
	}
	return c.Publish(ctx, ev)
}

func TestPoller_SyncsStationsThenForwardsEvents(t *testing.T) {
	jazz := station.New("http://radio.example/jazz", "Jazz", "")
	src := &fakeSource{
		stations: []station.Record{jazz},
		batches: []player.EventBatch{{
			Events: []json.RawMessage{
				json.RawMessage(`{"type":"playback_state_changed","station_uri":"http://radio.example/jazz","playback_state":"STARTED"}`),
				json.RawMessage(`{"type":"bogus"}`),
				json.RawMessage(`{"type":"metadata_changed","station_uri":"http://radio.example/jazz","metadata":"Take Five"}`),
			},
			Next: 3,
		}},
	}
	pub := &capturePublisher{}
	p := NewPoller(src, pub, time.Second, true, zerolog.Nop())

	needSync := true
	if err := p.poll(context.Background(), &needSync); err != nil {
		t.Fatalf("poll returned error: %v", err)
	}
	if needSync {
		t.Fatalf("needSync = true after successful poll, want false")
	}
	if len(pub.events) != 3 {
		t.Fatalf("published %d events, want 3 (malformed one dropped)", len(pub.events))
	}
	if _, ok := pub.events[0].(events.FullListReplace); !ok {
		t.Fatalf("first event = %T, want FullListReplace", pub.events[0])
	}
	psc, ok := pub.events[1].(events.PlaybackStateChanged)
	if !ok || psc.StationID != jazz.ID || psc.State != station.Started {
		t.Fatalf("second event = %+v, want started for %s", pub.events[1], jazz.ID)
	}
	if p.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", p.cursor)
	}

	if err := p.poll(context.Background(), &needSync); err != nil {
		t.Fatalf("second poll returned error: %v", err)
	}
	if src.stationHits != 1 {
		t.Fatalf("stations fetched %d times, want 1", src.stationHits)
	}
	if got := src.queries[1].Since; got != 3 {
		t.Fatalf("second query since = %d, want 3", got)
	}
}

func TestPoller_CursorRewindTriggersResync(t *testing.T) {
	src := &fakeSource{batches: []player.EventBatch{{Next: 1}}}
	p := NewPoller(src, &capturePublisher{}, time.Second, true, zerolog.Nop())
	p.cursor = 50

	needSync := false
	if err := p.poll(context.Background(), &needSync); err != nil {
		t.Fatalf("poll returned error: %v", err)
	}
	if !needSync {
		t.Fatalf("needSync = false after cursor went backwards, want true")
	}
	if p.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", p.cursor)
	}
}

func TestPoller_FetchErrorIsReturned(t *testing.T) {
	src := &fakeSource{eventsErr: errors.New("connection refused")}
	pub := &capturePublisher{}
	p := NewPoller(src, pub, time.Second, false, zerolog.Nop())

	needSync := false
	if err := p.poll(context.Background(), &needSync); err == nil {
		t.Fatalf("poll returned nil error, want failure")
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events on failure, want 0", len(pub.events))
	}
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	p := NewPoller(src, &capturePublisher{}, 10*time.Millisecond, false, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
