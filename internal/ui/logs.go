package ui

import (
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tengrikut/galeri/internal/logtail"
)

const (
	logRefreshInterval = time.Second
	logTailLines       = 200
	logPanelMaxHeight  = 10
)

type logTickMsg struct {
	seq int
}

type logLinesMsg struct {
	lines []string
	err   error
}

func logTickCmd(seq int) tea.Cmd {
	return tea.Tick(logRefreshInterval, func(time.Time) tea.Msg {
		return logTickMsg{seq: seq}
	})
}

func readLogsCmd(path string, level slog.Level) tea.Cmd {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.ReadLevel(path, logTailLines, level)
		return logLinesMsg{lines: lines, err: err}
	}
}

// logPanelHeight is the number of content rows the log panel uses, zero
// when hidden.
func (m Model) logPanelHeight() int {
	if !m.prefs.ShowLogs || m.height <= 0 {
		return 0
	}
	return max(3, min(logPanelMaxHeight, m.height/3))
}

func (m *Model) resizeLogView() {
	m.logView.Width = max(0, m.width-4)
	m.logView.Height = m.logPanelHeight()
	m.logView.GotoBottom()
}

func (m *Model) setLogLines(lines []string, err error) {
	if err != nil {
		lines = []string{"log unavailable: " + err.Error()}
	}
	m.logLines = lines
	styles := m.theme.Styles()
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = m.logLineStyle(line, styles).Render(truncate(line, m.logView.Width))
	}
	m.logView.SetContent(strings.Join(rendered, "\n"))
	m.logView.GotoBottom()
}

func (m Model) logLineStyle(line string, styles Styles) lipgloss.Style {
	level, ok := logtail.LineLevel(line)
	if !ok {
		return styles.FaintText
	}
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level >= slog.LevelInfo:
		return styles.Text
	default:
		return styles.InfoText
	}
}

func (m Model) renderLogPanel() string {
	if m.logPanelHeight() == 0 {
		return ""
	}
	styles := m.theme.Styles()
	body := m.logView.View()
	if len(m.logLines) == 0 {
		body = styles.FaintText.Render("no log records yet")
	}
	return styles.Panel.
		Width(max(0, m.width-2)).
		Height(m.logPanelHeight()).
		Render(body)
}
