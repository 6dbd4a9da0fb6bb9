package monitor

import "github.com/watchfire-io/jobwatch/internal/api"

// Event is produced by a channel and consumed by Controller.Handle.
type Event interface {
	event()
}

// StreamOpened reports that the event stream is connected.
type StreamOpened struct{}

// StreamLog carries one accepted log event from the stream.
type StreamLog struct {
	Entry api.LogEntry
}

// StreamFailed reports that the stream closed or could not be opened.
type StreamFailed struct {
	Err error
}

// PollSucceeded carries one status report.
type PollSucceeded struct {
	Status *api.JobStatus
}

// PollFailed reports a failed status request. Polling continues.
type PollFailed struct {
	Err error
}

// CancelFinished reports the outcome of a cancellation request.
type CancelFinished struct {
	Err error
}

func (StreamOpened) event()   {}
func (StreamLog) event()      {}
func (StreamFailed) event()   {}
func (PollSucceeded) event()  {}
func (PollFailed) event()     {}
func (CancelFinished) event() {}

// Envelope stamps an event with the generation of the session that launched
// the channel. Events from an older generation are ignored.
type Envelope struct {
	Gen   uint64
	Event Event
}
