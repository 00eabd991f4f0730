package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Sink applies decoded events. *state.Store implements it.
type Sink interface {
	Handle(Event) error
}

const defaultQueueSize = 64

// Bus is a single-consumer queue in front of a Sink. Producers on any
// goroutine call Publish; Run applies events in arrival order, each one to
// completion before the next. A full queue blocks producers instead of
// dropping events.
type Bus struct {
	sink   Sink
	queue  chan Event
	logger zerolog.Logger
}

// NewBus creates a bus with the given queue capacity (zero uses a default).
func NewBus(sink Sink, logger zerolog.Logger, capacity int) *Bus {
	if capacity <= 0 {
		capacity = defaultQueueSize
	}
	return &Bus{
		sink:   sink,
		queue:  make(chan Event, capacity),
		logger: logger.With().Str("component", "bus").Logger(),
	}
}

// Publish validates ev and enqueues it. Malformed events are rejected here
// and never reach the sink.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev == nil {
		return &MalformedError{Type: "unknown", Field: "event"}
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	select {
	case b.queue <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", ev.Type(), ctx.Err())
	}
}

// PublishRaw decodes a JSON signal and enqueues it.
func (b *Bus) PublishRaw(ctx context.Context, data []byte) error {
	ev, err := Decode(data)
	if err != nil {
		return err
	}
	return b.Publish(ctx, ev)
}

// Run applies queued events until ctx is cancelled. Events already queued
// at that point are still applied before Run returns.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.drain()
			return ctx.Err()
		case ev := <-b.queue:
			b.apply(ev)
		}
	}
}

func (b *Bus) drain() {
	n := len(b.queue)
	for i := 0; i < n; i++ {
		b.apply(<-b.queue)
	}
	if n > 0 {
		b.logger.Info().Int("events", n).Msg("applied queued events on shutdown")
	}
}

func (b *Bus) apply(ev Event) {
	if err := b.sink.Handle(ev); err != nil {
		b.logger.Warn().Err(err).Str("event", ev.Type()).Msg("event rejected by store")
		return
	}
	b.logger.Debug().Str("event", ev.Type()).Msg("event applied")
}
