package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

func TestRenderStationTable(t *testing.T) {
	jazz := station.New("http://radio.example/jazz", "Jazz", "").
		WithPlaybackState(station.Started).
		WithMetadata("Take Five")
	rock := station.New("http://radio.example/rock", "Rock", "")

	var buf bytes.Buffer
	renderStationTable(&buf, []station.Record{jazz, rock}, rock.ID)
	out := buf.String()

	// go-pretty upper-cases header and footer cells.
	lower := strings.ToLower(out)
	for _, want := range []string{"name", "jazz", "started", "take five", "http://radio.example/rock", "2 stations"} {
		if !strings.Contains(lower, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	var rockLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Rock") {
			rockLine = line
		}
	}
	if !strings.Contains(rockLine, "›") {
		t.Fatalf("selected row not marked: %q", rockLine)
	}
}

func TestListStations_FromStationsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	stationsPath := filepath.Join(dir, "stations.toml")
	if err := os.WriteFile(stationsPath, []byte(`
[[station]]
uri = "http://radio.example/zulu"
name = "Zulu"

[[station]]
uri = "http://radio.example/alpha"
name = "Alpha"
`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("stations_file = \""+stationsPath+"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	prefsPath := filepath.Join(dir, "prefs.toml")
	if err := os.WriteFile(prefsPath, []byte("selected_station = \"http://radio.example/zulu\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var buf bytes.Buffer
	err := ListStations(context.Background(), Options{ConfigPath: configPath, PrefsPath: prefsPath}, &buf)
	if err != nil {
		t.Fatalf("ListStations returned error: %v", err)
	}
	out := buf.String()
	alpha, zulu := strings.Index(out, "Alpha"), strings.Index(out, "Zulu")
	if alpha < 0 || zulu < 0 || alpha > zulu {
		t.Fatalf("stations not in display order:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Zulu") && !strings.Contains(line, "›") {
			t.Fatalf("restored selection not marked: %q", line)
		}
	}
}

func TestChangeLogger_WritesPatchAndSelection(t *testing.T) {
	var buf bytes.Buffer
	store := &state.Store{}
	store.Subscribe(changeLogger{store: store, logger: consoleLogger(&buf)})

	jazz := station.New("http://radio.example/jazz", "Jazz", "")
	if _, err := store.ReplaceAll([]station.Record{jazz}); err != nil {
		t.Fatalf("ReplaceAll returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "collection changed") {
		t.Fatalf("patch not logged:\n%s", out)
	}
	if !strings.Contains(out, "selection changed") || !strings.Contains(out, "Jazz") {
		t.Fatalf("selection not logged:\n%s", out)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if fileExists(path) {
		t.Fatalf("fileExists(%q) = true before creation", path)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !fileExists(path) {
		t.Fatalf("fileExists(%q) = false after creation", path)
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(dir) = true, want false")
	}
	if fileExists("  ") {
		t.Fatalf("fileExists(blank) = true, want false")
	}
}
