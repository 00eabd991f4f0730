package prefs

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/diff"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

// Lookup resolves a station ID against the current collection.
type Lookup interface {
	Station(id string) (station.Record, bool)
}

// Persister keeps Prefs in sync with the store and writes them to disk from
// its own goroutine. It implements state.Observer; the callbacks only record
// the change and wake Run.
type Persister struct {
	path   string
	lookup Lookup
	logger zerolog.Logger

	mu    sync.Mutex
	prefs Prefs
	dirty bool

	wake chan struct{}
}

// NewPersister returns a Persister seeded with initial.
func NewPersister(path string, initial Prefs, lookup Lookup, logger zerolog.Logger) *Persister {
	return &Persister{
		path:   path,
		lookup: lookup,
		logger: logger,
		prefs:  initial,
		wake:   make(chan struct{}, 1),
	}
}

// Prefs returns the latest in-memory preferences.
func (p *Persister) Prefs() Prefs {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

// SetTheme records the chosen theme name.
func (p *Persister) SetTheme(name string) {
	p.update(func(pr *Prefs) bool {
		if pr.Theme == name || name == "" {
			return false
		}
		pr.Theme = name
		return true
	})
}

// SelectionChanged remembers the selected station's stream URI. A cleared
// selection keeps the previous value so an empty list at startup does not
// forget it.
func (p *Persister) SelectionChanged(c state.SelectionChanged) {
	if c.SelectedID == "" || p.lookup == nil {
		return
	}
	rec, ok := p.lookup.Station(c.SelectedID)
	if !ok {
		return
	}
	p.update(func(pr *Prefs) bool {
		if pr.SelectedStation == rec.StreamURI {
			return false
		}
		pr.SelectedStation = rec.StreamURI
		return true
	})
}

// PatchApplied remembers the last station that started playing.
func (p *Persister) PatchApplied(patch state.Patch) {
	uri := ""
	for _, op := range patch.Ops {
		switch op.Kind {
		case diff.Insert, diff.ChangeContent:
			if op.Record.PlaybackState == station.Started {
				uri = op.Record.StreamURI
			}
		}
	}
	if uri == "" {
		return
	}
	p.update(func(pr *Prefs) bool {
		if pr.LastStation == uri {
			return false
		}
		pr.LastStation = uri
		return true
	})
}

func (p *Persister) update(fn func(*Prefs) bool) {
	p.mu.Lock()
	changed := fn(&p.prefs)
	if changed {
		p.dirty = true
	}
	p.mu.Unlock()

	if changed {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Flush writes pending changes.
func (p *Persister) Flush() error {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	snapshot := p.prefs
	p.dirty = false
	p.mu.Unlock()

	if err := Save(p.path, snapshot); err != nil {
		p.mu.Lock()
		p.dirty = true
		p.mu.Unlock()
		return err
	}
	return nil
}

// Run saves preferences whenever they change until ctx is done, then flushes
// once more.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := p.Flush(); err != nil {
				p.logger.Warn().Err(err).Msg("save prefs on shutdown")
			}
			return nil
		case <-p.wake:
			if err := p.Flush(); err != nil {
				p.logger.Warn().Err(err).Str("path", p.path).Msg("save prefs")
			}
		}
	}
}
