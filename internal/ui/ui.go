package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/tuner/internal/diff"
	"github.com/five82/tuner/internal/state"
	"github.com/five82/tuner/internal/station"
)

// ThemeSaver persists the chosen theme. *prefs.Persister implements it.
type ThemeSaver interface {
	SetTheme(name string)
}

// Options configures the UI.
type Options struct {
	Context       context.Context
	Store         *state.Store
	Themes        ThemeSaver
	ThemeName     string
	PlayerLogPath string
	Logger        zerolog.Logger
	RefreshEvery  time.Duration
}

const defaultRefresh = time.Second

// Model is the root application state for Bubble Tea.
//
// The station rows are a local copy of the store's list. They are only ever
// changed by replaying a Patch with diff.Apply, or replaced wholesale by a
// resync when a version is missed.
type Model struct {
	ctx     context.Context
	store   *state.Store
	themes  ThemeSaver
	logPath string
	logger  zerolog.Logger
	refresh time.Duration
	keys    keyMap

	theme  Theme
	width  int
	height int
	ready  bool

	rows       []station.Record
	version    uint64
	selectedID string
	unknown    int
	cursor     int
	offset     int
	status     string

	showHelp    bool
	showLog     bool
	filterLog   bool
	logViewport viewport.Model
	logLines    int
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}
	return Model{
		ctx:     ctx,
		store:   opts.Store,
		themes:  opts.Themes,
		logPath: opts.PlayerLogPath,
		logger:  opts.Logger,
		refresh: refresh,
		keys:    DefaultKeyMap(),
		theme:   GetTheme(themeName),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.store != nil {
		cmds = append(cmds, resyncCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.layoutLog()
		m.scrollToCursor()
		return m, nil

	case resyncMsg:
		if msg.snapshot.Version < m.version {
			return m, nil
		}
		m.rows = msg.snapshot.Stations
		m.version = msg.snapshot.Version
		m.selectedID = msg.snapshot.SelectedID
		m.unknown = msg.snapshot.UnknownReferences
		m.followSelection()
		return m, nil

	case patchMsg:
		return m.applyPatch(state.Patch(msg))

	case selectionMsg:
		m.selectedID = msg.SelectedID
		m.status = ""
		m.followSelection()
		if m.showLog && m.filterLog {
			return m, m.readLog()
		}
		return m, nil

	case selectResultMsg:
		if !msg.ok {
			m.status = "station is no longer in the list"
		}
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refresh)}
		if m.showLog {
			cmds = append(cmds, m.readLog())
		}
		return m, tea.Batch(cmds...)

	case logMsg:
		m.handleLog(msg)
		return m, nil
	}
	return m, nil
}

// applyPatch replays p on the local rows. Patches at or below the current
// version are stale and dropped; a gap or a failed replay triggers a resync.
func (m Model) applyPatch(p state.Patch) (tea.Model, tea.Cmd) {
	if p.Version <= m.version {
		return m, nil
	}
	if p.Version != m.version+1 {
		m.logger.Debug().Uint64("have", m.version).Uint64("got", p.Version).Msg("patch gap, resyncing")
		return m, resyncCmd(m.store)
	}
	rows, err := diff.Apply(m.rows, p.Ops)
	if err != nil {
		m.logger.Warn().Err(err).Uint64("version", p.Version).Msg("patch replay failed, resyncing")
		return m, resyncCmd(m.store)
	}
	m.rows = rows
	m.version = p.Version
	m.clampCursor()
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.themes != nil {
			m.themes.SetTheme(m.theme.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.showLog = false
		m.layoutLog()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.layoutLog()
		if m.showLog {
			return m, m.readLog()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFilter):
		m.filterLog = !m.filterLog
		if m.showLog {
			return m, m.readLog()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfPageDown()
		return m, nil
	}

	if len(m.rows) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.rows) - 1
	case key.Matches(msg, m.keys.Select):
		return m, selectCmd(m.store, m.rows[m.cursor].ID)
	}
	m.scrollToCursor()
	return m, nil
}

// followSelection moves the cursor onto the selected row.
func (m *Model) followSelection() {
	if i := station.IndexOf(m.rows, m.selectedID); i >= 0 {
		m.cursor = i
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

// scrollToCursor keeps the cursor row inside the visible window.
func (m *Model) scrollToCursor() {
	visible := m.listHeight()
	if visible <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if maxOffset := len(m.rows) - visible; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}

// Messages

type tickMsg time.Time

type patchMsg state.Patch

type selectionMsg state.SelectionChanged

type resyncMsg struct {
	snapshot state.Snapshot
}

type selectResultMsg struct {
	id string
	ok bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func resyncCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return resyncMsg{snapshot: store.Snapshot()}
	}
}

// selectCmd runs SetSelected off the event loop. The store notifies
// observers synchronously, and the UI's observer feeds this same loop.
func selectCmd(store *state.Store, id string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return selectResultMsg{id: id, ok: store.SetSelected(id)}
	}
}

// programObserver forwards store notifications into the program.
type programObserver struct {
	send func(tea.Msg)
}

func (o programObserver) PatchApplied(p state.Patch) { o.send(patchMsg(p)) }

func (o programObserver) SelectionChanged(c state.SelectionChanged) { o.send(selectionMsg(c)) }

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a data store")
	}
	m := New(opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	unsubscribe := opts.Store.Subscribe(programObserver{send: p.Send})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
