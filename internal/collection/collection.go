// Package collection reads the user's station list from a TOML file and
// keeps the store in step with edits to it.
package collection

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"github.com/five82/tuner/internal/station"
)

// ErrNoStationsFile is returned when the configured file does not exist.
var ErrNoStationsFile = errors.New("stations file not found")

type fileEntry struct {
	URI   string `toml:"uri"`
	Name  string `toml:"name"`
	Image string `toml:"image,omitempty"`
}

type file struct {
	Stations []fileEntry `toml:"station"`
}

// Load parses a stations file:
//
//	[[station]]
//	uri = "http://radio.example/jazz.mp3"
//	name = "Jazz FM"
//	image = "jazz.png"
//
// Entries must have a uri; a stream listed twice is an error.
func Load(path string) ([]station.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoStationsFile, path)
		}
		return nil, fmt.Errorf("read stations: %w", err)
	}
	return Parse(data)
}

// Parse decodes the TOML body of a stations file.
func Parse(data []byte) ([]station.Record, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}

	records := make([]station.Record, 0, len(f.Stations))
	for i, e := range f.Stations {
		uri := strings.TrimSpace(e.URI)
		if uri == "" {
			return nil, fmt.Errorf("station %d: uri is required", i+1)
		}
		records = append(records, station.New(uri, strings.TrimSpace(e.Name), strings.TrimSpace(e.Image)))
	}

	if dups := lo.FindDuplicatesBy(records, func(r station.Record) string { return r.StreamURI }); len(dups) > 0 {
		uris := lo.Map(dups, func(r station.Record, _ int) string { return r.StreamURI })
		return nil, fmt.Errorf("duplicate stations: %s", strings.Join(uris, ", "))
	}
	return records, nil
}
