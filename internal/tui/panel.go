package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// maxResultLines caps the result JSON shown below the progress bar.
const maxResultLines = 8

// statusPanelHeight is the number of rows renderStatusPanel produces.
const statusPanelHeight = 4

func renderStatusPanel(snap monitor.Snapshot, bar progress.Model, width int) string {
	inner := width - 2
	if inner < 10 {
		inner = 10
	}
	bar.Width = inner - 2

	label := lipgloss.NewStyle().Foreground(severityColor(snap.Presentation.Severity)).Bold(true).
		Render(snap.ProgressText)
	info := "Tempo decorrido: " + monitor.FormatElapsed(snap.Elapsed)
	if !snap.LastUpdate.IsZero() {
		info += " · Atualizado " + snap.LastUpdate.Local().Format("15:04:05")
	}
	elapsed := hintStyle.Render(info)

	gap := inner - lipgloss.Width(label) - lipgloss.Width(elapsed)
	if gap < 1 {
		gap = 1
	}
	row := label + strings.Repeat(" ", gap) + elapsed

	content := row + "\n" + bar.ViewAs(float64(snap.Progress)/100)
	return panelStyle.Width(inner).Render(content)
}

func renderResultPanel(o *monitor.Outcome, width int) string {
	if o == nil {
		return ""
	}
	inner := width - 2
	if inner < 10 {
		inner = 10
	}

	var color lipgloss.AdaptiveColor
	switch o.Status {
	case monitor.StatusCompleted:
		color = colorGreen
	case monitor.StatusFailed:
		color = colorRed
	default:
		color = colorOrange
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(color).Render(o.Title)}
	if o.Detail != "" {
		lines = append(lines, hintStyle.Render(o.Detail))
	}
	if o.Error != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorRed).Render(o.Error))
	}
	if o.Result != "" {
		lines = append(lines, "", sectionHeaderStyle.Render("Resultado"))
		result := strings.Split(o.Result, "\n")
		if len(result) > maxResultLines {
			result = append(result[:maxResultLines], "…")
		}
		lines = append(lines, result...)
	}

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}

	style := panelStyle.BorderForeground(color)
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}
