package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/events"
)

// Publisher accepts events for the store.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

const defaultDebounce = 150 * time.Millisecond

// Watcher publishes a FullListReplace whenever the stations file changes.
type Watcher struct {
	path     string
	pub      Publisher
	logger   zerolog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, pub Publisher, logger zerolog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		pub:      pub,
		logger:   logger.With().Str("component", "collection").Str("path", path).Logger(),
		debounce: defaultDebounce,
	}
}

// Reload reads the file and publishes its contents. The store keeps the
// playback state of stations that are still listed.
func (w *Watcher) Reload(ctx context.Context) error {
	records, err := Load(w.path)
	if err != nil {
		return err
	}
	if err := w.pub.Publish(ctx, events.FullListReplace{Stations: records, KeepLive: true}); err != nil {
		return fmt.Errorf("publish stations: %w", err)
	}
	w.logger.Info().Int("stations", len(records)).Msg("station list loaded")
	return nil
}

// Run loads the file once, then reloads on every change until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if err := w.Reload(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("initial load failed")
	}

	changes := make(chan struct{}, 1)
	var (
		debounceMu    sync.Mutex
		debounceTimer *time.Timer
	)
	trigger := func() {
		debounceMu.Lock()
		defer debounceMu.Unlock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.debounce, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceMu.Unlock()
	}()

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case <-changes:
			if err := w.Reload(ctx); err != nil {
				w.logger.Warn().Err(err).Msg("reload failed")
			}
		}
	}
}
