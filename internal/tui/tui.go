// Package tui implements the interactive monitor for a running job.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before the session starts.
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Options describe the job to monitor and the collaborators that feed it.
type Options struct {
	JobID     string
	ProcessID string
	Meta      monitor.Metadata

	Launcher  monitor.Launcher
	Canceller monitor.Canceller
	Config    monitor.Config
	Logger    logrus.FieldLogger

	// OnFinalize runs once on the UI goroutine when the job reaches a terminal status.
	OnFinalize func(monitor.Snapshot, []monitor.LogRecord)
}

// Run opens the monitor in the alternate screen and blocks until the user
// closes it. It returns the last snapshot of the session.
func Run(opts Options) (monitor.Snapshot, error) {
	ref := &programRef{}

	ctrlOpts := []monitor.Option{monitor.WithConfig(opts.Config)}
	if opts.Logger != nil {
		ctrlOpts = append(ctrlOpts, monitor.WithLogger(opts.Logger))
	}
	if opts.OnFinalize != nil {
		ctrlOpts = append(ctrlOpts, monitor.OnFinalize(opts.OnFinalize))
	}
	ctrl := monitor.NewController(opts.Launcher, opts.Canceller, func(env monitor.Envelope) {
		ref.Send(EnvelopeMsg{Envelope: env})
	}, ctrlOpts...)

	model := NewModel(ctrl, ref)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Store program reference before the channels start sending
	ref.Set(p)

	if err := ctrl.Start(opts.JobID, opts.ProcessID, opts.Meta); err != nil {
		return monitor.Snapshot{}, err
	}

	_, err := p.Run()
	ref.Clear()
	ctrl.Stop()
	_ = ctrl.Wait()
	return ctrl.View(), err
}
