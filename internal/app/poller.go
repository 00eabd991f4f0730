package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/player"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
	eventBatchLimit     = 100
)

// publisher is the part of events.Bus the poller uses.
type publisher interface {
	Publish(ctx context.Context, ev events.Event) error
	PublishRaw(ctx context.Context, data []byte) error
}

// Poller forwards signals from the playback process to the bus.
type Poller struct {
	source   player.EventSource
	bus      publisher
	interval time.Duration
	logger   zerolog.Logger

	// syncStations makes the poller publish the player's station list
	// before reading events, and again after every outage.
	syncStations bool
	cursor       uint64
}

// NewPoller creates a poller reading from source every interval.
func NewPoller(source player.EventSource, bus publisher, interval time.Duration, syncStations bool, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		source:       source,
		bus:          bus,
		interval:     interval,
		syncStations: syncStations,
		logger:       logger.With().Str("component", "poller").Logger(),
	}
}

// Run polls until ctx is cancelled. Failures back off exponentially and are
// logged; the loop never gives up.
func (p *Poller) Run(ctx context.Context) error {
	failures := 0
	needSync := p.syncStations
	for {
		err := p.poll(ctx, &needSync)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			failures++
			if p.syncStations {
				needSync = true
			}
			p.logger.Warn().Err(err).Int("failures", failures).Msg("poll failed")
		default:
			if failures > 0 {
				p.logger.Info().Int("failures", failures).Msg("player reachable again")
			}
			failures = 0
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(calculateBackoff(failures, p.interval)):
		}
	}
}

func (p *Poller) poll(ctx context.Context, needSync *bool) error {
	if *needSync {
		records, err := p.source.FetchStations(ctx)
		if err != nil {
			return err
		}
		if err := p.bus.Publish(ctx, events.FullListReplace{Stations: records}); err != nil {
			return err
		}
		*needSync = false
	}

	batch, err := p.source.FetchEvents(ctx, player.EventQuery{Since: p.cursor, Limit: eventBatchLimit})
	if err != nil {
		return err
	}
	for _, raw := range batch.Events {
		if err := p.bus.PublishRaw(ctx, raw); err != nil {
			if errors.Is(err, events.ErrMalformedEvent) {
				p.logger.Warn().Err(err).Bytes("event", raw).Msg("dropping malformed event")
				continue
			}
			return err
		}
	}
	if batch.Next < p.cursor && p.syncStations {
		// The player restarted and its cursor went backwards.
		*needSync = true
	}
	p.cursor = batch.Next
	return nil
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
