package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// severityStyle renders a reconciled status label.
func severityStyle(s monitor.Severity) lipgloss.Style {
	switch s {
	case monitor.SeverityWarning:
		return styleWarning
	case monitor.SeveritySuccess:
		return styleSuccess.Bold(true)
	case monitor.SeverityDanger:
		return styleError
	case monitor.SeveritySecondary:
		return styleHint
	default:
		return styleBrand
	}
}

func levelStyle(l monitor.Level) lipgloss.Style {
	switch l {
	case monitor.LevelWarning:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case monitor.LevelError:
		return lipgloss.NewStyle().Foreground(colorRed)
	case monitor.LevelSuccess:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case monitor.LevelDebug:
		return lipgloss.NewStyle().Foreground(colorDim)
	default:
		return lipgloss.NewStyle().Foreground(colorWhite)
	}
}

func outcomeStyle(s monitor.Status) lipgloss.Style {
	switch s {
	case monitor.StatusCompleted:
		return styleSuccess.Bold(true)
	case monitor.StatusFailed:
		return styleError
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
	}
}
