package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

func renderHeader(snap monitor.Snapshot, spin string, width int) string {
	dot := lipgloss.NewStyle().Foreground(severityColor(snap.Presentation.Severity)).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("Job " + snap.JobID)

	var parts []string
	if snap.ProcessID != "" {
		parts = append(parts, "processo "+snap.ProcessID)
	}
	if snap.Meta.Operadora != "" {
		parts = append(parts, snap.Meta.Operadora)
	}
	if snap.Meta.Cliente != "" {
		parts = append(parts, snap.Meta.Cliente)
	}
	if snap.Meta.MesAno != "" {
		parts = append(parts, snap.Meta.MesAno)
	}
	info := lipgloss.NewStyle().Foreground(colorDim).Render(strings.Join(parts, " · "))

	// Layout: dot job  info    badge
	left := fmt.Sprintf(" %s %s  %s", dot, name, info)
	right := renderStatusBadge(snap, spin) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderStatusBadge(snap monitor.Snapshot, spin string) string {
	label := snap.Presentation.Label
	if label == "" {
		return ""
	}
	if snap.Animated && spin != "" {
		label = spin + " " + label
	}
	return badgeStyle(snap.Presentation.Severity).Render(label)
}
