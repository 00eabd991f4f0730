package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/collection"
	"github.com/five82/tuner/internal/config"
	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/notify"
	"github.com/five82/tuner/internal/player"
	"github.com/five82/tuner/internal/prefs"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
	"github.com/five82/tuner/internal/ui"
)

// Options configure the Tuner application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tuner/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
}

// runtime holds the long-lived components shared by the TUI and headless
// modes.
type runtime struct {
	cfg       config.Config
	logger    zerolog.Logger
	store     *state.Store
	bus       *events.Bus
	poller    *Poller
	watcher   *collection.Watcher
	notifier  *notify.Notifier
	persister *prefs.Persister
	prefs     prefs.Prefs
}

func newRuntime(cfg config.Config, opts Options, logger zerolog.Logger) (*runtime, error) {
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	client, err := player.NewClient(cfg.APIBind)
	if err != nil {
		return nil, fmt.Errorf("init player client: %w", err)
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		store:  &state.Store{},
		prefs:  userPrefs,
	}
	rt.bus = events.NewBus(rt.store, logger, 0)

	// A local stations file is the collection; without one the player's own
	// list is used.
	useFile := fileExists(cfg.StationsFile)
	if useFile {
		rt.watcher = collection.NewWatcher(cfg.StationsFile, rt.bus, logger)
	}
	rt.poller = NewPoller(client, rt.bus, interval, !useFile, logger)

	if cfg.Notifications {
		rt.notifier = notify.NewNotifier(rt.store, notify.DesktopSender{}, logger)
		rt.store.Subscribe(rt.notifier)
	}

	prefsPath := opts.PrefsPath
	if strings.TrimSpace(prefsPath) == "" {
		prefsPath = prefs.DefaultPath()
	}
	rt.persister = prefs.NewPersister(prefsPath, userPrefs, rt.store, logger)
	rt.store.Subscribe(rt.persister)

	if userPrefs.SelectedStation != "" {
		rt.store.RestoreSelection(station.IDFor(userPrefs.SelectedStation))
	}
	return rt, nil
}

// start launches the background loops and returns a function that waits for
// them after ctx is cancelled.
func (rt *runtime) start(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	launch := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				rt.logger.Error().Err(err).Str("component", name).Msg("stopped with error")
			}
		}()
	}

	launch("bus", rt.bus.Run)
	launch("poller", rt.poller.Run)
	launch("prefs", rt.persister.Run)
	if rt.watcher != nil {
		launch("collection", rt.watcher.Run)
	}
	if rt.notifier != nil {
		launch("notify", rt.notifier.Run)
	}
	return wg.Wait
}

// Run boots the Tuner TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := fileLogger(cfg.LogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	rt, err := newRuntime(cfg, opts, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	wait := rt.start(ctx)
	defer wait()
	defer cancel()

	logger.Info().Str("api", cfg.APIBind).Msg("tuner started")
	return ui.Run(ui.Options{
		Context:       ctx,
		Store:         rt.store,
		Themes:        rt.persister,
		ThemeName:     rt.prefs.Theme,
		PlayerLogPath: cfg.PlayerLogPath(),
		Logger:        logger,
	})
}

// RunHeadless wires the same components as Run but logs changes to out
// instead of drawing a UI. It returns when ctx is cancelled.
func RunHeadless(ctx context.Context, opts Options, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := consoleLogger(out)
	rt, err := newRuntime(cfg, opts, logger)
	if err != nil {
		return err
	}
	rt.store.Subscribe(changeLogger{store: rt.store, logger: logger.With().Str("component", "store").Logger()})

	wait := rt.start(ctx)
	logger.Info().Str("api", cfg.APIBind).Bool("stations_file", rt.watcher != nil).Msg("watching")
	<-ctx.Done()
	wait()
	return nil
}

// changeLogger writes one line per patch and selection change.
type changeLogger struct {
	store  *state.Store
	logger zerolog.Logger
}

func (c changeLogger) PatchApplied(p state.Patch) {
	ops := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		ops[i] = op.String()
	}
	ev := c.logger.Info().Uint64("version", p.Version).Strs("ops", ops)
	if rec, ok := c.store.NowPlaying(); ok {
		ev = ev.Str("now_playing", rec.DisplayName()).Str("state", rec.PlaybackState.String())
	}
	ev.Msg("collection changed")
}

func (c changeLogger) SelectionChanged(s state.SelectionChanged) {
	name := ""
	if rec, ok := c.store.Station(s.SelectedID); ok {
		name = rec.DisplayName()
	}
	c.logger.Info().Uint64("version", s.Version).Str("station", name).Msg("selection changed")
}

func consoleLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func fileLogger(path string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(file).With().Timestamp().Logger()
	return logger, func() { _ = file.Close() }, nil
}

func fileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
