package collection

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

const sample = `
[[station]]
uri = "http://radio.example/jazz.mp3"
name = " Jazz FM "
image = "jazz.png"

[[station]]
uri = "http://radio.example/rock.mp3"
name = "Rock Radio"
`

func TestParse(t *testing.T) {
	records, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Jazz FM", records[0].Name)
	assert.Equal(t, "jazz.png", records[0].ImageRef)
	assert.Equal(t, station.IDFor("http://radio.example/jazz.mp3"), records[0].ID)
	assert.Equal(t, station.Stopped, records[1].PlaybackState)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"bad toml":    "[[station]\nuri=",
		"missing uri": "[[station]]\nname = \"x\"\n",
		"duplicate":   "[[station]]\nuri = \"http://a\"\n[[station]]\nuri = \"http://a\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "stations.toml"))
	assert.ErrorIs(t, err, ErrNoStationsFile)
}

type capturePublisher struct {
	mu  sync.Mutex
	got []events.FullListReplace
	ch  chan struct{}
}

func (p *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	p.got = append(p.got, ev.(events.FullListReplace))
	p.mu.Unlock()
	p.ch <- struct{}{}
	return nil
}

func (p *capturePublisher) last() events.FullListReplace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.got[len(p.got)-1]
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	pub := &capturePublisher{ch: make(chan struct{}, 8)}
	w := NewWatcher(path, pub, zerolog.Nop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	wait := func() {
		t.Helper()
		select {
		case <-pub.ch:
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for publish")
		}
	}

	wait()
	assert.Len(t, pub.last().Stations, 2)
	assert.True(t, pub.last().KeepLive)

	require.NoError(t, os.WriteFile(path, []byte("[[station]]\nuri = \"http://c\"\nname = \"Classic\"\n"), 0o644))
	wait()
	require.Len(t, pub.last().Stations, 1)
	assert.Equal(t, "Classic", pub.last().Stations[0].Name)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop")
	}
}

const pair = `
[[station]]
uri = "http://a"
name = "Alpha Radio"

[[station]]
uri = "http://b"
name = "Beta"
`

// liveStore returns a store where Alpha is playing, a bus in front of it and
// a stations file that renames Alpha.
func liveStore(t *testing.T) (*state.Store, *events.Bus, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.toml")
	require.NoError(t, os.WriteFile(path, []byte(pair), 0o644))

	store := &state.Store{}
	_, err := store.ReplaceAll([]station.Record{
		station.New("http://a", "Alpha", "").WithPlaybackState(station.Started).WithMetadata("Song"),
		station.New("http://b", "Beta", ""),
	})
	require.NoError(t, err)
	return store, events.NewBus(store, zerolog.Nop(), 8), path
}

func TestReload_DoesNotUndoQueuedPlaybackEvent(t *testing.T) {
	store, bus, path := liveStore(t)
	alpha, beta := station.IDFor("http://a"), station.IDFor("http://b")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, events.PlaybackStateChanged{
		StationID:         beta,
		State:             station.Started,
		PreviousStationID: alpha,
	}))
	require.NoError(t, NewWatcher(path, bus, zerolog.Nop()).Reload(ctx))
	cancel()
	assert.ErrorIs(t, bus.Run(ctx), context.Canceled)

	list := store.CurrentList()
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha Radio", list[0].Name)
	assert.Equal(t, station.Stopped, list[0].PlaybackState)
	assert.Equal(t, "Song", list[0].Metadata)
	assert.Equal(t, station.Started, list[1].PlaybackState)
}

func TestReload_DoesNotUndoQueuedMetadataEvent(t *testing.T) {
	store, bus, path := liveStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, events.MetadataChanged{StationID: station.IDFor("http://a"), Metadata: "Next Song"}))
	require.NoError(t, NewWatcher(path, bus, zerolog.Nop()).Reload(ctx))
	cancel()
	assert.ErrorIs(t, bus.Run(ctx), context.Canceled)

	playing, ok := store.NowPlaying()
	require.True(t, ok)
	assert.Equal(t, "Alpha Radio", playing.Name)
	assert.Equal(t, "Next Song", playing.Metadata)
}

func TestReload_InterleavedWithRunningBus(t *testing.T) {
	store, bus, path := liveStore(t)
	alpha, beta := station.IDFor("http://a"), station.IDFor("http://b")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx) }()

	w := NewWatcher(path, bus, zerolog.Nop())
	for i := 0; i < 20; i++ {
		on, off := beta, alpha
		if i%2 == 1 {
			on, off = alpha, beta
		}
		require.NoError(t, bus.Publish(ctx, events.PlaybackStateChanged{StationID: on, State: station.Started, PreviousStationID: off}))
		require.NoError(t, w.Reload(ctx))
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// The last event started Alpha.
	list := store.CurrentList()
	require.Len(t, list, 2)
	assert.Equal(t, station.Started, list[0].PlaybackState)
	assert.Equal(t, station.Stopped, list[1].PlaybackState)
}
