package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// Minimum terminal size.
const (
	minWidth  = 60
	minHeight = 16
)

// Model is the root Bubbletea model for the monitor.
type Model struct {
	ctrl *monitor.Controller

	// UI state
	helpOpen    bool
	confirmMode int
	width       int
	height      int
	quitting    bool

	// Status display
	err error

	// Child components
	logViewer *LogViewer
	progress  progress.Model
	spinner   spinner.Model

	// Program reference for goroutine Send()
	program *programRef
}

// NewModel creates the monitor model around a controller. The controller's
// session is started by the caller.
func NewModel(ctrl *monitor.Controller, program *programRef) Model {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(colorCyan)

	lv := NewLogViewer()
	lv.SetAutoscroll(ctrl.View().Autoscroll)

	return Model{
		ctrl:      ctrl,
		logViewer: lv,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   spin,
		program:   program,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		m.syncLogs()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	// ── Channel events ─────────────────────────────────────────────
	case EnvelopeMsg:
		if m.ctrl.Handle(msg.Envelope) {
			m.syncLogs()
		}
		if !m.ctrl.Active() && m.confirmMode != confirmNone {
			// Prompts close with the session.
			m.confirmMode = confirmNone
		}
		return m, nil

	// ── Periodic refresh ───────────────────────────────────────────
	case TickMsg:
		m.syncLogs()
		if !m.ctrl.Active() {
			return m, nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		if !m.ctrl.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ── Errors ─────────────────────────────────────────────────────
	case ErrorMsg:
		m.err = msg.Err
		return m, clearErrorAfter(5 * time.Second)

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}

	return m, nil
}

// ── Key handling ─────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.helpOpen {
		if key.Matches(msg, monitorKeys.Help) || key.Matches(msg, confirmKeys.Cancel) || msg.String() == "q" {
			m.helpOpen = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, monitorKeys.Close):
		if m.ctrl.CloseNeedsConfirm() {
			m.confirmMode = confirmClose
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, monitorKeys.Help):
		m.helpOpen = true

	case key.Matches(msg, monitorKeys.Cancel):
		if err := m.ctrl.RequestCancel(); err != nil {
			return func() tea.Msg { return ErrorMsg{Err: errString("O job não está em execução")} }
		}
		m.confirmMode = confirmCancel

	case key.Matches(msg, monitorKeys.Clear):
		m.ctrl.ClearLogs()
		m.syncLogs()

	case key.Matches(msg, monitorKeys.Autoscroll):
		m.logViewer.SetAutoscroll(m.ctrl.ToggleAutoscroll())

	case key.Matches(msg, monitorKeys.Up):
		m.logViewer.ScrollUp(1)
	case key.Matches(msg, monitorKeys.Down):
		m.logViewer.ScrollDown(1)
	case key.Matches(msg, monitorKeys.PageUp):
		m.logViewer.PageUp()
	case key.Matches(msg, monitorKeys.PageDown):
		m.logViewer.PageDown()
	case key.Matches(msg, monitorKeys.Top):
		m.logViewer.GotoTop()
	case key.Matches(msg, monitorKeys.Bottom):
		m.logViewer.GotoBottom()
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	mode := m.confirmMode
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		m.confirmMode = confirmNone
		if mode == confirmCancel {
			m.ctrl.ResolveCancel(true)
			m.syncLogs()
			return nil
		}
		return m.doQuit()
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
		if mode == confirmCancel {
			m.ctrl.ResolveCancel(false)
		}
	case msg.String() == "ctrl+c":
		// A second interrupt closes without asking.
		m.confirmMode = confirmNone
		return m.doQuit()
	}
	return nil
}

func (m *Model) doQuit() tea.Cmd {
	m.ctrl.Stop()
	m.program.Clear()
	m.quitting = true
	return tea.Quit
}

func (m *Model) syncLogs() {
	m.logViewer.SetRecords(m.ctrl.View().Logs)
}

func (m *Model) updateDimensions() {
	m.logViewer.SetSize(m.width-2, m.logHeight(m.ctrl.View()))
}

// logHeight is the space left for the log panel after the fixed rows.
func (m *Model) logHeight(snap monitor.Snapshot) int {
	used := 1 + statusPanelHeight + 1 + 2 // header, status, status bar, log border
	if snap.Outcome != nil {
		used += lipgloss.Height(renderResultPanel(snap.Outcome, m.width))
	}
	h := m.height - used
	if h < 3 {
		h = 3
	}
	return h
}

// ── View ─────────────────────────────────────────────────────────

// View renders the monitor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Minimum size check
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal muito pequeno",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Mínimo %dx%d, atual ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	snap := m.ctrl.View()

	header := renderHeader(snap, m.spinner.View(), m.width)
	status := renderStatusPanel(snap, m.progress, m.width)

	// The result panel appears once and shrinks the log panel.
	m.logViewer.SetSize(m.width-2, m.logHeight(snap))
	logs := panelStyle.Width(m.width - 2).Render(m.logViewer.View())

	parts := []string{header, status}
	if result := renderResultPanel(snap.Outcome, m.width); result != "" {
		parts = append(parts, result)
	}
	parts = append(parts, logs, renderStatusBar(&m, snap, m.width))

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.helpOpen {
		view = placeCentered(view, renderHelp(m.width), m.width, m.height)
	}
	return view
}

type errString string

func (e errString) Error() string { return string(e) }
