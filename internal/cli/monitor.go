package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/watchfire-io/jobwatch/internal/config"
	"github.com/watchfire-io/jobwatch/internal/monitor"
	"github.com/watchfire-io/jobwatch/internal/tui"
)

// job identifies a job to monitor.
type job struct {
	ID        string
	ProcessID string
	Meta      monitor.Metadata
}

func (e *appEnv) channels() *monitor.Channels {
	m := e.settings.Monitor
	return &monitor.Channels{
		Stream: monitor.NewStream(e.client, e.logger),
		Poller: monitor.NewPoller(e.client, m.PollInterval, m.PollTimeout, e.logger),
		Logger: e.logger,
	}
}

func (e *appEnv) monitorConfig() monitor.Config {
	m := e.settings.Monitor
	return monitor.Config{
		HeartbeatInterval: m.HeartbeatInterval,
		RecentWindow:      m.RecentWindow,
		Autoscroll:        m.Autoscroll,
	}
}

// saveTranscript persists the session log once the job reaches a terminal status.
func (e *appEnv) saveTranscript(snap monitor.Snapshot, records []monitor.LogRecord) {
	if !e.settings.Monitor.SaveTranscripts {
		return
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	entry, err := config.WriteLog(config.Transcript{
		JobID:     snap.JobID,
		ProcessID: snap.ProcessID,
		Operadora: snap.Meta.Operadora,
		Status:    string(snap.Status),
		StartedAt: snap.StartTime,
		Lines:     lines,
	})
	if err != nil {
		e.logger.WithError(err).WithField("job_id", snap.JobID).Warn("failed to save transcript")
		return
	}
	e.logger.WithField("log_id", entry.LogID).Info("transcript saved")
}

// monitorJob follows j until it finishes or the user stops watching, then
// prints the outcome to out.
func (e *appEnv) monitorJob(ctx context.Context, out io.Writer, j job) error {
	var (
		snap monitor.Snapshot
		err  error
	)
	if flagPlain || !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		snap, err = e.runPlain(ctx, out, j)
	} else {
		snap, err = tui.Run(tui.Options{
			JobID:      j.ID,
			ProcessID:  j.ProcessID,
			Meta:       j.Meta,
			Launcher:   e.channels(),
			Canceller:  e.client,
			Config:     e.monitorConfig(),
			Logger:     e.logger,
			OnFinalize: e.saveTranscript,
		})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printOutcome(out, snap)
	return outcomeError(snap)
}

// runPlain drives the controller without a TUI, printing records as they are
// appended. SIGINT and SIGTERM stop monitoring; the job keeps running.
func (e *appEnv) runPlain(ctx context.Context, out io.Writer, j job) (monitor.Snapshot, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := monitor.NewLoop(64)
	ctrl := monitor.NewController(e.channels(), e.client, loop.Post,
		monitor.WithLogger(e.logger),
		monitor.WithConfig(e.monitorConfig()),
		monitor.OnAppend(func(r monitor.LogRecord) {
			fmt.Fprintln(out, formatRecord(r))
		}),
		monitor.OnStatusChange(func(from, to monitor.Status) {
			fmt.Fprintln(out, formatStatusChange(from, to))
		}),
		monitor.OnFinalize(e.saveTranscript),
	)

	if err := ctrl.Start(j.ID, j.ProcessID, j.Meta); err != nil {
		return monitor.Snapshot{}, err
	}
	err := loop.Run(ctx, ctrl)
	return ctrl.View(), err
}

// outcomeError turns a failed or cancelled job into a command error. Leaving
// the monitor early is not an error.
func outcomeError(snap monitor.Snapshot) error {
	if snap.Outcome == nil {
		return nil
	}
	switch snap.Outcome.Status {
	case monitor.StatusCompleted:
		return nil
	case monitor.StatusFailed:
		return fmt.Errorf("job %s falhou", snap.JobID)
	default:
		return fmt.Errorf("job %s foi cancelado", snap.JobID)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
