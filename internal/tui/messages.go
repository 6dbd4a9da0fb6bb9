package tui

import "github.com/watchfire-io/jobwatch/internal/monitor"

// EnvelopeMsg carries a channel event for the controller.
type EnvelopeMsg struct {
	monitor.Envelope
}

// TickMsg refreshes the elapsed time while the job runs.
type TickMsg struct{}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}
