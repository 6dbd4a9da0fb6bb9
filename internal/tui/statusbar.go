package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// confirmMode values.
const (
	confirmNone   = 0
	confirmCancel = 1
	confirmClose  = 2
)

func renderStatusBar(m *Model, snap monitor.Snapshot, width int) string {
	// Handle confirm mode
	switch m.confirmMode {
	case confirmCancel:
		return renderConfirmBar(monitor.CancelPrompt+" (y/n)", width)
	case confirmClose:
		return renderConfirmBar(monitor.ClosePrompt+" (y/n)", width)
	}

	// Error display
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(snap)

	// Channel status
	var right string
	switch {
	case !snap.Active:
		right = lipgloss.NewStyle().Foreground(colorDim).Render("Encerrado") + " "
	case snap.StreamConnected:
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("● Tempo real") + " "
	case snap.PollingOnly:
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Consulta periódica") + " "
	default:
		right = lipgloss.NewStyle().Foreground(colorDim).Render("○ Conectando...") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(snap monitor.Snapshot) string {
	hints := keyHint("q", "fechar") + "  " + keyHint("?", "ajuda")
	if snap.CancelVisible {
		hints += "  " + keyHint("c", "cancelar")
	}
	scroll := "auto-scroll off"
	if snap.Autoscroll {
		scroll = "auto-scroll on"
	}
	return hints + "  " + keyHint("x", "limpar") + "  " + keyHint("a", scroll)
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}
