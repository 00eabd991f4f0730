package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tuner/internal/station"
)

const (
	headerHeight     = 1
	footerHeight     = 1
	nowPlayingHeight = 4 // two content lines plus border
	minListHeight    = 3
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderStations(),
		m.renderNowPlaying(),
	}
	if m.showLog {
		parts = append(parts, m.renderLog())
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// listHeight is the number of station rows that fit on screen.
func (m Model) listHeight() int {
	h := m.height - headerHeight - footerHeight - nowPlayingHeight
	if m.showLog {
		h /= 2
	}
	return max(h, minListHeight)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	playing := 0
	for _, r := range m.rows {
		if r.PlaybackState.Active() {
			playing++
		}
	}

	parts := []string{
		bg.Render("tuner", styles.Logo),
		bg.Render(fmt.Sprintf("%d stations", len(m.rows)), styles.Text),
	}
	if playing > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d active", playing), styles.SuccessText))
	}
	if m.unknown > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d unknown refs", m.unknown), styles.WarningText))
	}
	parts = append(parts, bg.Render(fmt.Sprintf("v%d", m.version), styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) renderStations() string {
	styles := m.theme.Styles()
	height := m.listHeight()

	if len(m.rows) == 0 {
		empty := styles.MutedText.Render("No stations yet. Waiting for the player or a stations file...")
		return lipgloss.NewStyle().Width(m.width).Height(height).Padding(0, 1).Render(empty)
	}

	end := min(m.offset+height, len(m.rows))
	lines := make([]string, 0, height)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, styles))
	}
	return lipgloss.NewStyle().Width(m.width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(i int, styles Styles) string {
	r := m.rows[i]
	marker := "  "
	if r.ID == m.selectedID {
		marker = "› "
	}
	indicator := styles.StateStyle(r.PlaybackState).Render(stateGlyph(r.PlaybackState))

	nameWidth := max(m.width/2, 10)
	name := truncate(r.DisplayName(), nameWidth)
	line := marker + indicator + " " + padRight(name, nameWidth)

	if r.Metadata != "" {
		room := m.width - lipgloss.Width(line) - 2
		line += "  " + styles.MutedText.Render(truncate(r.Metadata, room))
	}

	switch {
	case r.ID == m.selectedID:
		return styles.Selected.Width(m.width).Render(line)
	case i == m.cursor:
		return styles.Cursor.Width(m.width).Render(line)
	default:
		return line
	}
}

func (m Model) renderNowPlaying() string {
	styles := m.theme.Styles()
	pane := styles.Pane.Width(max(m.width-2, 0))

	rec, ok := station.Playing(m.rows)
	if !ok {
		return pane.Render(styles.MutedText.Render("Nothing playing") + "\n" + styles.FaintText.Render(m.selectedLine()))
	}

	title := styles.StateStyle(rec.PlaybackState).Render(stateGlyph(rec.PlaybackState)+" "+stateLabel(rec.PlaybackState)) +
		"  " + styles.Text.Bold(true).Render(truncate(rec.DisplayName(), m.width-16))
	detail := rec.Metadata
	if detail == "" {
		detail = rec.StreamURI
	}
	return pane.Render(title + "\n" + styles.MutedText.Render(truncate(detail, m.width-6)))
}

func (m Model) selectedLine() string {
	if i := station.IndexOf(m.rows, m.selectedID); i >= 0 {
		return "Selected: " + m.rows[i].DisplayName()
	}
	return ""
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	hints := make([]string, 0, 5)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, bg.Render(h.Key, styles.WarningText)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
	}
	if m.status != "" {
		hints = append(hints, bg.Render(m.status, styles.DangerText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(hints, "  "))
}

func stateGlyph(s station.PlaybackState) string {
	switch s {
	case station.Started:
		return "▶"
	case station.Loading:
		return "◌"
	default:
		return "·"
	}
}

func stateLabel(s station.PlaybackState) string {
	switch s {
	case station.Started:
		return "Playing"
	case station.Loading:
		return "Loading"
	default:
		return "Stopped"
	}
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
