package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/five82/tuner/internal/collection"
	"github.com/five82/tuner/internal/config"
	"github.com/five82/tuner/internal/player"
	"github.com/five82/tuner/internal/prefs"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

const listTimeout = 5 * time.Second

// ListStations prints the collection in display order, marking the saved
// selection. The stations file is used when present, otherwise the player is
// asked for its list.
func ListStations(ctx context.Context, opts Options, w io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	records, err := loadStations(ctx, cfg)
	if err != nil {
		return err
	}

	var store state.Store
	if userPrefs.SelectedStation != "" {
		store.RestoreSelection(station.IDFor(userPrefs.SelectedStation))
	}
	if _, err := store.ReplaceAll(records); err != nil {
		return fmt.Errorf("load stations: %w", err)
	}

	snap := store.Snapshot()
	renderStationTable(w, snap.Stations, snap.SelectedID)
	return nil
}

func loadStations(ctx context.Context, cfg config.Config) ([]station.Record, error) {
	if fileExists(cfg.StationsFile) {
		return collection.Load(cfg.StationsFile)
	}
	client, err := player.NewClient(cfg.APIBind)
	if err != nil {
		return nil, fmt.Errorf("init player client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	records, err := client.FetchStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	return records, nil
}

func renderStationTable(w io.Writer, records []station.Record, selectedID string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Name", "State", "Now playing", "Stream"})

	for _, r := range records {
		marker := ""
		if r.ID == selectedID {
			marker = "›"
		}
		t.AppendRow(table.Row{marker, r.DisplayName(), r.PlaybackState.String(), r.Metadata, r.StreamURI})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d stations", len(records))})
	t.Render()
}
