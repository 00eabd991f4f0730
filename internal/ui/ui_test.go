package ui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func patchOf(c state.Commit) patchMsg {
	return patchMsg(state.Patch{Version: c.Version, Ops: c.Ops})
}

func seededStore(t *testing.T) (*state.Store, []station.Record) {
	t.Helper()
	records := []station.Record{
		station.New("http://radio.example/alpha", "Alpha", ""),
		station.New("http://radio.example/bravo", "Bravo", ""),
		station.New("http://radio.example/charlie", "Charlie", ""),
	}
	store := &state.Store{}
	if _, err := store.ReplaceAll(records); err != nil {
		t.Fatalf("ReplaceAll returned error: %v", err)
	}
	return store, store.CurrentList()
}

func newSyncedModel(t *testing.T, store *state.Store) Model {
	t.Helper()
	m := New(Options{Store: store})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, resyncMsg{snapshot: store.Snapshot()})
	return m
}

func TestModel_ReplaysPatches(t *testing.T) {
	store, list := seededStore(t)
	m := newSyncedModel(t, store)

	c, err := store.ApplyPlaybackStateChanged(events.PlaybackStateChanged{StationID: list[1].ID, State: station.Started})
	if err != nil {
		t.Fatalf("ApplyPlaybackStateChanged returned error: %v", err)
	}
	m, cmd := update(t, m, patchOf(c))
	if cmd != nil {
		t.Fatalf("patch replay returned a command, want none")
	}

	c, err = store.ReplaceAll([]station.Record{list[2], station.New("http://radio.example/delta", "Delta", "")})
	if err != nil {
		t.Fatalf("ReplaceAll returned error: %v", err)
	}
	m, _ = update(t, m, patchOf(c))

	if !reflect.DeepEqual(m.rows, store.CurrentList()) {
		t.Fatalf("rows = %v, want %v", m.rows, store.CurrentList())
	}
	if m.version != store.Version() {
		t.Fatalf("version = %d, want %d", m.version, store.Version())
	}
}

func TestModel_PatchGapResyncs(t *testing.T) {
	store, list := seededStore(t)
	m := newSyncedModel(t, store)

	if _, err := store.ApplyMetadataChanged(events.MetadataChanged{StationID: list[0].ID, Metadata: "Song A"}); err != nil {
		t.Fatalf("ApplyMetadataChanged returned error: %v", err)
	}
	c, err := store.ApplyMetadataChanged(events.MetadataChanged{StationID: list[0].ID, Metadata: "Song B"})
	if err != nil {
		t.Fatalf("ApplyMetadataChanged returned error: %v", err)
	}

	m, cmd := update(t, m, patchOf(c))
	if cmd == nil {
		t.Fatalf("gap did not produce a resync command")
	}
	m, _ = update(t, m, cmd())

	if m.version != c.Version {
		t.Fatalf("version = %d, want %d", m.version, c.Version)
	}
	if got := m.rows[0].Metadata; got != "Song B" {
		t.Fatalf("rows[0].Metadata = %q, want %q", got, "Song B")
	}
}

func TestModel_StalePatchAndSnapshotIgnored(t *testing.T) {
	store, list := seededStore(t)
	m := newSyncedModel(t, store)
	old := store.Snapshot()

	c, err := store.ApplyMetadataChanged(events.MetadataChanged{StationID: list[0].ID, Metadata: "Song"})
	if err != nil {
		t.Fatalf("ApplyMetadataChanged returned error: %v", err)
	}
	m, _ = update(t, m, patchOf(c))

	m, cmd := update(t, m, patchOf(c))
	if cmd != nil {
		t.Fatalf("stale patch returned a command")
	}
	m, _ = update(t, m, resyncMsg{snapshot: old})
	if m.version != c.Version || m.rows[0].Metadata != "Song" {
		t.Fatalf("model regressed to version %d (%q)", m.version, m.rows[0].Metadata)
	}
}

func TestModel_EnterSelectsThroughCommand(t *testing.T) {
	store, list := seededStore(t)
	m := newSyncedModel(t, store)

	m, _ = update(t, m, runes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter returned no command")
	}
	if id, _ := store.SelectedID(); id != list[0].ID {
		t.Fatalf("selection changed before the command ran: %q", id)
	}

	msg := cmd()
	res, ok := msg.(selectResultMsg)
	if !ok || !res.ok {
		t.Fatalf("command returned %#v, want successful selectResultMsg", msg)
	}
	if id, _ := store.SelectedID(); id != list[1].ID {
		t.Fatalf("SelectedID = %q, want %q", id, list[1].ID)
	}
	m, _ = update(t, m, res)
	if m.status != "" {
		t.Fatalf("status = %q, want empty", m.status)
	}
}

func TestModel_SelectionMessageMovesCursor(t *testing.T) {
	store, list := seededStore(t)
	m := newSyncedModel(t, store)

	m, _ = update(t, m, selectionMsg{Version: store.Version(), SelectedID: list[2].ID})
	if m.selectedID != list[2].ID {
		t.Fatalf("selectedID = %q, want %q", m.selectedID, list[2].ID)
	}
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
}

func TestModel_NavigationBounds(t *testing.T) {
	store, _ := seededStore(t)
	m := newSyncedModel(t, store)

	m, _ = update(t, m, runes("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor after k at top = %d, want 0", m.cursor)
	}
	m, _ = update(t, m, runes("G"))
	if m.cursor != 2 {
		t.Fatalf("cursor after G = %d, want 2", m.cursor)
	}
	m, _ = update(t, m, runes("j"))
	if m.cursor != 2 {
		t.Fatalf("cursor after j at bottom = %d, want 2", m.cursor)
	}
	m, _ = update(t, m, runes("g"))
	if m.cursor != 0 {
		t.Fatalf("cursor after g = %d, want 0", m.cursor)
	}
}

type themeRecorder struct{ names []string }

func (r *themeRecorder) SetTheme(name string) { r.names = append(r.names, name) }

func TestModel_CycleThemeSaves(t *testing.T) {
	rec := &themeRecorder{}
	m := New(Options{Themes: rec, ThemeName: "Dracula"})

	m, _ = update(t, m, runes("T"))
	if m.theme.Name != "Nightfox" {
		t.Fatalf("theme = %q, want Nightfox", m.theme.Name)
	}
	if !reflect.DeepEqual(rec.names, []string{"Nightfox"}) {
		t.Fatalf("saved themes = %v, want [Nightfox]", rec.names)
	}
}

func TestModel_ViewShowsStationsAndNowPlaying(t *testing.T) {
	store, list := seededStore(t)
	if _, err := store.ApplyPlaybackStateChanged(events.PlaybackStateChanged{StationID: list[1].ID, State: station.Started}); err != nil {
		t.Fatalf("ApplyPlaybackStateChanged returned error: %v", err)
	}
	if _, err := store.ApplyMetadataChanged(events.MetadataChanged{StationID: list[1].ID, Metadata: "Take Five"}); err != nil {
		t.Fatalf("ApplyMetadataChanged returned error: %v", err)
	}
	m := newSyncedModel(t, store)

	view := m.View()
	for _, want := range []string{"Alpha", "Bravo", "Charlie", "Playing", "Take Five", "3 stations"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModel_HelpClosesOnAnyKey(t *testing.T) {
	m := New(Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = update(t, m, runes("?"))
	if !m.showHelp {
		t.Fatalf("showHelp = false after ?, want true")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not rendered")
	}
	m, _ = update(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("showHelp = true after another key, want false")
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Dracula", "Nightfox", "Kanagawa", "Slate"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(unknown) = %q, want Dracula", got)
	}
	if got := GetTheme("missing").Name; got != "Dracula" {
		t.Fatalf("GetTheme(missing) = %q, want Dracula", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Jazz FM", 10, "Jazz FM"},
		{"Jazz FM Classics", 8, "Jazz FM…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
