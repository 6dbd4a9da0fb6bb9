package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/logging"
)

type eventSink struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newSink() *eventSink {
	return &eventSink{notify: make(chan struct{}, 256)}
}

func (s *eventSink) emit(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *eventSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *eventSink) waitFor(t *testing.T, cond func([]Event) bool) []Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if evs := s.snapshot(); cond(evs) {
			return evs
		}
		select {
		case <-s.notify:
		case <-deadline:
			t.Fatalf("condition not met, events: %#v", s.snapshot())
		}
	}
}

func countType[T Event](evs []Event) int {
	n := 0
	for _, ev := range evs {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

func newAPI(t *testing.T, h http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.NewClient(api.WithBaseURL(srv.URL), api.WithRateLimit(1000))
}

func TestStreamFiltersEvents(t *testing.T) {
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"connection\",\"job_id\":\"J1\"}\n\n")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "data: {\"type\":\"log\",\"job_id\":\"J2\",\"timestamp\":\"t0\",\"message\":\"other job\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"log\",\"job_id\":\"J1\",\"timestamp\":\"t1\",\"message\":\"step A\",\"level\":\"INFO\"}\n\n")
		fmt.Fprint(w, "data: {not json\n\n")
		fmt.Fprint(w, "data: {\"type\":\"log\",\"job_id\":\"J1\",\"timestamp\":\"t2\",\"message\":\"\"}\n\n")
		fmt.Fprint(w, "event: log\ndata: {\"timestamp\":\"t3\",\n")
		fmt.Fprint(w, "data: \"message\":\"step B\"}\n\n")
	}))

	sink := newSink()
	NewStream(client, logging.Discard()).Run(context.Background(), "J1", sink.emit)

	evs := sink.snapshot()
	require.Len(t, evs, 4)
	assert.IsType(t, StreamOpened{}, evs[0])
	assert.Equal(t, "step A", evs[1].(StreamLog).Entry.Message)
	assert.Equal(t, "step B", evs[2].(StreamLog).Entry.Message)
	assert.Equal(t, "log", evs[2].(StreamLog).Entry.Type)
	failed, ok := evs[3].(StreamFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrStreamClosed)
}

func TestStreamOpenFailure(t *testing.T) {
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	sink := newSink()
	NewStream(client, logging.Discard()).Run(context.Background(), "J1", sink.emit)

	evs := sink.snapshot()
	require.Len(t, evs, 1)
	assert.IsType(t, StreamFailed{}, evs[0])
}

func TestStreamCancelEmitsNoFailure(t *testing.T) {
	opened := make(chan struct{})
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		close(opened)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	sink := newSink()
	done := make(chan struct{})
	go func() {
		NewStream(client, logging.Discard()).Run(ctx, "J1", sink.emit)
		close(done)
	}()

	<-opened
	sink.waitFor(t, func(evs []Event) bool { return countType[StreamOpened](evs) == 1 })
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop on cancel")
	}
	assert.Zero(t, countType[StreamFailed](sink.snapshot()))
}

func TestPollerContinuesAfterErrors(t *testing.T) {
	var calls atomic.Int32
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			fmt.Fprint(w, `{"success":false,"message":"Job não encontrado"}`)
		case 3:
			fmt.Fprint(w, `{"success":true,"status":null}`)
		default:
			fmt.Fprint(w, `{"success":true,"status":{"status":"RUNNING","progress":10}}`)
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newSink()
	p := NewPoller(client, 10*time.Millisecond, time.Second, logging.Discard())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, Target{JobID: "J1", ProcessID: "P1"}, sink.emit)
		close(done)
	}()

	evs := sink.waitFor(t, func(evs []Event) bool {
		return countType[PollSucceeded](evs) >= 1 && countType[PollFailed](evs) >= 3
	})
	assert.Equal(t, 3, countType[PollFailed](evs))
	var msgs []string
	for _, ev := range evs {
		if f, ok := ev.(PollFailed); ok {
			msgs = append(msgs, PollErrorMessage(f.Err))
		}
	}
	assert.ElementsMatch(t, []string{
		"Erro HTTP 500 ao verificar status",
		"Erro ao obter status: Job não encontrado",
		"Erro ao obter status: resposta sem status",
	}, msgs)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerTickNotBlockedBySlowRequest(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	second := make(chan struct{})
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}
		if n == 2 {
			close(second)
		}
		fmt.Fprint(w, `{"success":true,"status":{"status":"RUNNING"}}`)
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPoller(client, 10*time.Millisecond, 5*time.Second, logging.Discard())
	go p.Run(ctx, Target{JobID: "J1"}, newSink().emit)

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("second poll waited for the first")
	}
}

func TestPollTimeoutMessage(t *testing.T) {
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	sink := newSink()
	p := NewPoller(client, time.Hour, 20*time.Millisecond, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx, Target{JobID: "J1"}, sink.emit)

	evs := sink.waitFor(t, func(evs []Event) bool { return countType[PollFailed](evs) == 1 })
	assert.Contains(t, PollErrorMessage(evs[0].(PollFailed).Err), "Erro de conexão")
}

func TestChannelsWaitAfterCancel(t *testing.T) {
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/logs-tempo-real/stream/J1" {
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			<-r.Context().Done()
			return
		}
		fmt.Fprint(w, `{"success":true,"status":{"status":"RUNNING"}}`)
	}))

	ch := &Channels{
		Stream: NewStream(client, logging.Discard()),
		Poller: NewPoller(client, 10*time.Millisecond, time.Second, logging.Discard()),
		Logger: logging.Discard(),
	}
	sink := newSink()
	ctx, cancel := context.WithCancel(context.Background())
	wait := ch.Launch(ctx, Target{JobID: "J1", ProcessID: "P1"}, sink.emit)

	sink.waitFor(t, func(evs []Event) bool {
		return countType[StreamOpened](evs) == 1 && countType[PollSucceeded](evs) >= 2
	})
	cancel()

	done := make(chan error, 1)
	go func() { done <- wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("channels leaked after cancel")
	}
}

func TestLoopRunsToCompletion(t *testing.T) {
	var calls atomic.Int32
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/logs-tempo-real/stream/J1" {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: {\"type\":\"log\",\"job_id\":\"J1\",\"timestamp\":\"t1\",\"message\":\"step A\"}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
			return
		}
		if calls.Add(1) < 3 {
			fmt.Fprint(w, `{"success":true,"status":{"status":"RUNNING","progress":50,"logs":[{"timestamp":"t1","message":"step A"}]}}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"status":{"status":"COMPLETED","progress":100,"logs":[{"timestamp":"t1","message":"step A"}]}}`)
	}))

	loop := NewLoop(16)
	ch := &Channels{
		Stream: NewStream(client, logging.Discard()),
		Poller: NewPoller(client, 10*time.Millisecond, time.Second, logging.Discard()),
	}
	c := NewController(ch, client, loop.Post)
	require.NoError(t, c.Start("J1", "P1", Metadata{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, loop.Run(ctx, c))

	v := c.View()
	assert.True(t, v.Finalized)
	assert.Equal(t, StatusCompleted, v.Status)
	assert.Equal(t, 1, countMessage(v.Logs, "step A"))
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	client := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"status":{"status":"RUNNING"}}`)
	}))

	loop := NewLoop(1)
	ch := &Channels{Poller: NewPoller(client, 5*time.Millisecond, time.Second, logging.Discard())}
	c := NewController(ch, client, loop.Post)
	require.NoError(t, c.Start("J1", "P1", Metadata{}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := loop.Run(ctx, c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.Active())
}
