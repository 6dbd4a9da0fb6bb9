package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

func severityColor(s monitor.Severity) lipgloss.AdaptiveColor {
	switch s {
	case monitor.SeverityWarning:
		return colorYellow
	case monitor.SeveritySuccess:
		return colorGreen
	case monitor.SeverityDanger:
		return colorRed
	case monitor.SeveritySecondary:
		return colorDim
	default:
		return colorCyan
	}
}

// badgeStyle renders the status label in the header.
func badgeStyle(s monitor.Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(severityColor(s)).Bold(true)
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
