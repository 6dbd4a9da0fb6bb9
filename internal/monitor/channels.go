package monitor

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Target identifies the job a session follows.
type Target struct {
	JobID     string
	ProcessID string
}

// Launcher starts the update channels of a session. Launch must not block; the
// channels stop when ctx is done. The returned function waits for them.
type Launcher interface {
	Launch(ctx context.Context, t Target, emit func(Event)) (wait func() error)
}

// Channels runs the stream and the poller side by side.
type Channels struct {
	Stream *Stream // nil disables the push channel
	Poller *Poller
	Logger logrus.FieldLogger
}

// Launch implements Launcher.
func (c *Channels) Launch(ctx context.Context, t Target, emit func(Event)) func() error {
	g, gctx := errgroup.WithContext(ctx)

	if c.Stream != nil {
		g.Go(func() error {
			c.Stream.Run(gctx, t.JobID, emit)
			return nil
		})
	}
	g.Go(func() error {
		c.Poller.Run(gctx, t, emit)
		return nil
	})

	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"job_id":     t.JobID,
			"process_id": t.ProcessID,
			"stream":     c.Stream != nil,
		}).Info("monitoring channels started")
	}
	return g.Wait
}
