package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/api"
)

// ErrStreamClosed is reported when the server ends the stream.
var ErrStreamClosed = errors.New("stream closed by server")

// StreamSource opens the event stream of a job.
type StreamSource interface {
	OpenStream(ctx context.Context, jobID string) (*http.Response, error)
}

// Stream is the push channel. It only delivers logs.
type Stream struct {
	source StreamSource
	logger logrus.FieldLogger
}

// NewStream creates a stream channel.
func NewStream(source StreamSource, logger logrus.FieldLogger) *Stream {
	return &Stream{source: source, logger: logger}
}

// Run connects and emits events until the stream ends or ctx is done. It
// emits StreamFailed at most once and never after ctx is done.
func (s *Stream) Run(ctx context.Context, jobID string, emit func(Event)) {
	log := s.logger.WithField("job_id", jobID)

	resp, err := s.source.OpenStream(ctx, jobID)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("event stream unavailable")
			emit(StreamFailed{Err: err})
		}
		return
	}
	defer resp.Body.Close()

	log.Debug("event stream connected")
	emit(StreamOpened{})

	err = readEvents(resp.Body, func(name string, data []byte) {
		entry, ok := s.decode(log, jobID, name, data)
		if ok && ctx.Err() == nil {
			emit(StreamLog{Entry: entry})
		}
	})
	if ctx.Err() != nil {
		log.Debug("event stream closed")
		return
	}
	if err == nil {
		err = ErrStreamClosed
	}
	log.WithError(err).Warn("event stream lost")
	emit(StreamFailed{Err: err})
}

// decode parses one event and applies the acceptance rules.
func (s *Stream) decode(log logrus.FieldLogger, jobID, name string, data []byte) (api.LogEntry, bool) {
	var entry api.LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.WithError(err).WithField("data", trimForLog(string(data), 200)).Debug("discarding malformed stream event")
		return api.LogEntry{}, false
	}
	if entry.Type == "" && name != "" && name != "message" {
		entry.Type = name
	}
	if !acceptStreamEntry(entry, jobID) {
		log.WithField("type", entry.Type).Debug("discarding stream event")
		return api.LogEntry{}, false
	}
	return entry, true
}

// acceptStreamEntry keeps log events with a message that belong to jobID.
func acceptStreamEntry(e api.LogEntry, jobID string) bool {
	if e.Type != "log" || e.Message == "" {
		return false
	}
	return e.JobID == "" || e.JobID == jobID
}

// readEvents parses a text/event-stream body and calls fn once per event.
// It returns the read error, or nil at end of body.
func readEvents(r io.Reader, fn func(name string, data []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 2*1024*1024)

	var eventName string
	var dataLines []string

	flush := func() {
		if len(dataLines) > 0 {
			fn(eventName, []byte(strings.Join(dataLines, "\n")))
		}
		eventName = ""
		dataLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			part := strings.TrimPrefix(line, "data:")
			part = strings.TrimPrefix(part, " ")
			dataLines = append(dataLines, part)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func trimForLog(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
