package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// LogViewer shows the session log in a scrollable viewport.
type LogViewer struct {
	viewport   viewport.Model
	records    []monitor.LogRecord
	width      int
	height     int
	autoscroll bool
}

// NewLogViewer creates a log viewer that follows new lines.
func NewLogViewer() *LogViewer {
	return &LogViewer{
		viewport:   viewport.New(80, 20),
		autoscroll: true,
	}
}

// SetSize updates the viewer dimensions.
func (l *LogViewer) SetSize(width, height int) {
	if width == l.width && height == l.height {
		return
	}
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = height
	l.render()
}

// SetAutoscroll toggles following the newest line.
func (l *LogViewer) SetAutoscroll(on bool) {
	l.autoscroll = on
	if on {
		l.viewport.GotoBottom()
	}
}

// SetRecords replaces the displayed records. Nothing is re-rendered when the
// visible set is unchanged.
func (l *LogViewer) SetRecords(records []monitor.LogRecord) {
	if sameRecords(l.records, records) {
		return
	}
	l.records = records
	l.render()
}

// Len returns the number of displayed records.
func (l *LogViewer) Len() int {
	return len(l.records)
}

// ScrollUp moves up n lines.
func (l *LogViewer) ScrollUp(n int) {
	l.viewport.ScrollUp(n)
}

// ScrollDown moves down n lines.
func (l *LogViewer) ScrollDown(n int) {
	l.viewport.ScrollDown(n)
}

// PageUp scrolls one page up.
func (l *LogViewer) PageUp() {
	l.viewport.PageUp()
}

// PageDown scrolls one page down.
func (l *LogViewer) PageDown() {
	l.viewport.PageDown()
}

// GotoTop jumps to the first line.
func (l *LogViewer) GotoTop() {
	l.viewport.GotoTop()
}

// GotoBottom jumps to the newest line.
func (l *LogViewer) GotoBottom() {
	l.viewport.GotoBottom()
}

// AtBottom reports whether the newest line is visible.
func (l *LogViewer) AtBottom() bool {
	return l.viewport.AtBottom()
}

func (l *LogViewer) render() {
	lines := make([]string, 0, len(l.records))
	for _, r := range l.records {
		lines = append(lines, l.formatLine(r))
	}
	l.viewport.SetContent(strings.Join(lines, "\n"))
	if l.autoscroll {
		l.viewport.GotoBottom()
	}
}

func (l *LogViewer) formatLine(r monitor.LogRecord) string {
	ts := lipgloss.NewStyle().Foreground(colorDim).Render("[" + r.Timestamp.Format("15:04:05") + "]")
	line := ts + " " + levelStyle(r.Level).Render(r.Message)
	if l.width > 0 {
		line = ansi.Truncate(line, l.width, "…")
	}
	return line
}

// View renders the log viewer.
func (l *LogViewer) View() string {
	if len(l.records) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Width(l.width).Height(l.height).Align(lipgloss.Center).
			Render("\nAguardando logs...")
	}
	return l.viewport.View()
}

func sameRecords(a, b []monitor.LogRecord) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	ia, ib := len(a)-1, len(b)-1
	return a[0].Key() == b[0].Key() &&
		a[ia].Key() == b[ib].Key() &&
		a[ia].RenderedAt.Equal(b[ib].RenderedAt)
}
