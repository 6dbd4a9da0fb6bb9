package monitor

import (
	"context"
	"sync"
)

// Loop drives a controller from a single goroutine without a TUI. Channel
// goroutines post into it; Run applies the events in arrival order.
type Loop struct {
	events chan Envelope
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop with the given event buffer.
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan Envelope, buffer),
		done:   make(chan struct{}),
	}
}

// Post queues an event. It never blocks after Run has returned.
func (l *Loop) Post(env Envelope) {
	select {
	case l.events <- env:
	case <-l.done:
	}
}

// Run handles events until the session is no longer active or ctx is done.
// On ctx cancellation the session is stopped. Run waits for the channels to
// exit before returning.
func (l *Loop) Run(ctx context.Context, c *Controller) error {
	finish := func() {
		c.Stop()
		l.once.Do(func() { close(l.done) })
		c.Wait()
	}

	if !c.Active() {
		finish()
		return ErrNotActive
	}
	for {
		select {
		case <-ctx.Done():
			finish()
			return ctx.Err()
		case env := <-l.events:
			c.Handle(env)
			if !c.Active() {
				finish()
				return nil
			}
		}
	}
}
