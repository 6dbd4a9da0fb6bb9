package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/api"
)

const (
	// DefaultPollInterval is the status polling cadence.
	DefaultPollInterval = 2 * time.Second

	// DefaultPollTimeout bounds a single status request.
	DefaultPollTimeout = 10 * time.Second
)

// StatusSource fetches the status of a job.
type StatusSource interface {
	Status(ctx context.Context, jobID, processID string) (*api.JobStatus, error)
}

// Poller is the pull channel. It is the only source of status and progress.
type Poller struct {
	source   StatusSource
	interval time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger
}

// NewPoller creates a poller. Non-positive durations use the defaults.
func NewPoller(source StatusSource, interval, timeout time.Duration, logger logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return &Poller{source: source, interval: interval, timeout: timeout, logger: logger}
}

// Run polls immediately and then on every tick until ctx is done. Each request
// runs in its own goroutine so a slow response never delays the next tick.
func (p *Poller) Run(ctx context.Context, t Target, emit func(Event)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	done := make(chan struct{}, 1)
	inflight := 0
	defer func() {
		for ; inflight > 0; inflight-- {
			<-done
		}
	}()

	fire := func() {
		inflight++
		go func() {
			defer func() { done <- struct{}{} }()
			p.pollOnce(ctx, t, emit)
		}()
	}

	fire()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			inflight--
		case <-ticker.C:
			fire()
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, t Target, emit func(Event)) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	st, err := p.source.Status(reqCtx, t.JobID, t.ProcessID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.WithError(err).WithField("job_id", t.JobID).Debug("status poll failed")
		emit(PollFailed{Err: err})
		return
	}
	emit(PollSucceeded{Status: st})
}

// PollErrorMessage renders a poll failure as a log line.
func PollErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Erro HTTP %d ao verificar status", apiErr.StatusCode)
	}
	var protoErr *api.ProtocolError
	if errors.As(err, &protoErr) {
		return fmt.Sprintf("Erro ao obter status: %s", protoErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Erro de conexão: tempo limite excedido"
	}
	return fmt.Sprintf("Erro de conexão: %s", err)
}
