package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tuner/internal/logtail"
	"github.com/five82/tuner/internal/station"
)

const logTailLines = 400

type logMsg struct {
	lines []string
	err   error
}

// readLog tails the player log, keeping only lines that name the selected
// station when the filter is on.
func (m Model) readLog() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	needle := ""
	if m.filterLog {
		if i := station.IndexOf(m.rows, m.selectedID); i >= 0 {
			needle = m.rows[i].DisplayName()
		}
	}
	return func() tea.Msg {
		lines, err := logtail.ReadMatching(path, logTailLines, needle)
		return logMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLog(msg logMsg) {
	m.logErr = msg.err
	if msg.err != nil {
		return
	}
	styles := m.theme.Styles()
	styled := make([]string, len(msg.lines))
	for i, line := range msg.lines {
		styled[i] = styles.LogLine(line)
	}
	atBottom := m.logLines == 0 || m.logViewport.AtBottom()
	m.logLines = len(styled)
	m.logViewport.SetContent(strings.Join(styled, "\n"))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

// layoutLog sizes the log viewport to the space below the now-playing pane.
func (m *Model) layoutLog() {
	if !m.showLog {
		return
	}
	h := m.height - headerHeight - footerHeight - nowPlayingHeight - m.listHeight() - 2
	m.logViewport.Width = max(m.width-4, 0)
	m.logViewport.Height = max(h, 1)
}

func (m Model) renderLog() string {
	styles := m.theme.Styles()
	title := "Player log"
	if m.filterLog {
		title += " (selected station)"
	}

	var body string
	switch {
	case m.logPath == "":
		body = styles.MutedText.Render("No player log configured")
	case m.logErr != nil:
		body = styles.DangerText.Render(m.logErr.Error())
	case m.logLines == 0:
		body = styles.MutedText.Render("Log is empty")
	default:
		body = m.logViewport.View()
	}
	return styles.Pane.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 0)).
		Render(styles.AccentText.Render(title) + "\n" + body)
}
