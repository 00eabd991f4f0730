// Package notify turns now-playing changes into desktop notifications.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

// Message is the content of one notification.
type Message struct {
	Title string
	Body  string
}

// Content builds the message for a playing station: the title names the
// station and the body carries the stream metadata, or the name again when
// the stream has sent none.
func Content(r station.Record) Message {
	name := r.DisplayName()
	body := strings.TrimSpace(r.Metadata)
	if body == "" {
		body = name
	}
	return Message{Title: "Playing: " + name, Body: body}
}

// Sender delivers a message.
type Sender interface {
	Send(Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(Message) error

func (f SenderFunc) Send(m Message) error { return f(m) }

// DesktopSender shows messages through the OS notification service.
type DesktopSender struct {
	Icon string
}

func (d DesktopSender) Send(m Message) error {
	if err := beeep.Notify(m.Title, m.Body, d.Icon); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}

// NowPlaying reports the station currently loading or playing.
type NowPlaying interface {
	NowPlaying() (station.Record, bool)
}

// Notifier watches the store and sends a message when the playing station
// or its metadata changes. It implements state.Observer; delivery happens on
// the Run goroutine so the store never waits on the notification service.
type Notifier struct {
	source NowPlaying
	sender Sender
	logger zerolog.Logger

	mu      sync.Mutex
	last    Message
	pending *Message

	wake chan struct{}
}

// NewNotifier creates a Notifier reading from source.
func NewNotifier(source NowPlaying, sender Sender, logger zerolog.Logger) *Notifier {
	return &Notifier{
		source: source,
		sender: sender,
		logger: logger.With().Str("component", "notify").Logger(),
		wake:   make(chan struct{}, 1),
	}
}

// PatchApplied checks whether the now-playing message changed.
func (n *Notifier) PatchApplied(state.Patch) {
	rec, ok := n.source.NowPlaying()
	if !ok || rec.PlaybackState != station.Started {
		return
	}
	msg := Content(rec)

	n.mu.Lock()
	if msg == n.last {
		n.mu.Unlock()
		return
	}
	n.last = msg
	n.pending = &msg
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// SelectionChanged is a no-op; selection does not affect playback.
func (n *Notifier) SelectionChanged(state.SelectionChanged) {}

// Run delivers pending messages until ctx is done. Only the newest pending
// message is sent when several arrive in quick succession.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.wake:
			n.mu.Lock()
			msg := n.pending
			n.pending = nil
			n.mu.Unlock()
			if msg == nil {
				continue
			}
			if err := n.sender.Send(*msg); err != nil {
				n.logger.Warn().Err(err).Str("title", msg.Title).Msg("notification failed")
				continue
			}
			n.logger.Debug().Str("title", msg.Title).Str("body", msg.Body).Msg("notification sent")
		}
	}
}
