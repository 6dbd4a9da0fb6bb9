package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/logging"
)

var (
	// ErrMissingJobID is returned by Start when no job identifier is given.
	ErrMissingJobID = errors.New("ID do job não encontrado")

	// ErrNotActive is returned for actions that need a running session.
	ErrNotActive = errors.New("nenhum monitoramento ativo")
)

// Messages shown for close and cancel prompts.
const (
	CancelPrompt = "Tem certeza que deseja cancelar este job?"
	ClosePrompt  = "A execução ainda está em andamento. Deseja realmente fechar?"
)

// DefaultCancelTimeout bounds a cancellation request.
const DefaultCancelTimeout = 15 * time.Second

// Canceller requests cancellation of a job on the server.
type Canceller interface {
	Cancel(ctx context.Context, jobID, processID string) error
}

// Metadata is display information about a job.
type Metadata struct {
	Tipo      string
	Operadora string
	Cliente   string
	MesAno    string
}

// Outcome is the final result of a session.
type Outcome struct {
	Status Status
	Title  string
	Detail string
	Result string // indented JSON, empty when the server sent none
	Error  string
}

// Session is the live state of one monitored job.
type Session struct {
	JobID           string
	ProcessID       string
	Meta            Metadata
	StartTime       time.Time
	EndTime         time.Time
	Status          Status
	Progress        int
	ProgressText    string
	Active          bool
	Finalized       bool
	StreamConnected bool
	PollingOnly     bool
	LastUpdate      time.Time
	Outcome         *Outcome
}

// Snapshot is a read-only view of the controller for rendering.
type Snapshot struct {
	Session
	Presentation  Presentation
	Animated      bool
	Elapsed       time.Duration
	Logs          []LogRecord
	CancelVisible bool
	CancelPending bool
	Autoscroll    bool
}

// Config tunes a controller. Zero values use package defaults.
type Config struct {
	HeartbeatInterval time.Duration
	RecentWindow      time.Duration
	CancelTimeout     time.Duration
	Autoscroll        bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithConfig sets tuning values.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// OnAppend registers a hook called for every record added to the view.
func OnAppend(fn func(LogRecord)) Option {
	return func(c *Controller) { c.onAppend = fn }
}

// OnStatusChange registers a hook called when a status report changes the
// session status.
func OnStatusChange(fn func(from, to Status)) Option {
	return func(c *Controller) { c.onStatus = fn }
}

// OnFinalize registers a hook called once when a session reaches a terminal status.
func OnFinalize(fn func(Snapshot, []LogRecord)) Option {
	return func(c *Controller) { c.onFinalize = fn }
}

// Controller owns at most one session at a time. All methods must be called
// from a single goroutine; channel goroutines talk to it only through post.
type Controller struct {
	launcher  Launcher
	canceller Canceller
	post      func(Envelope)
	logger    logrus.FieldLogger
	clock     func() time.Time
	cfg       Config

	onAppend   func(LogRecord)
	onStatus   func(from, to Status)
	onFinalize func(Snapshot, []LogRecord)

	gen        uint64
	session    *Session
	store      *Store
	heartbeat  *Heartbeat
	stop       context.CancelFunc
	wait       func() error
	autoscroll bool
	cancelAsk  bool
}

// NewController creates a controller. post delivers channel events back to the
// goroutine that calls Handle.
func NewController(launcher Launcher, canceller Canceller, post func(Envelope), opts ...Option) *Controller {
	c := &Controller{
		launcher:  launcher,
		canceller: canceller,
		post:      post,
		clock:     time.Now,
		cfg:       Config{Autoscroll: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.cfg.CancelTimeout <= 0 {
		c.cfg.CancelTimeout = DefaultCancelTimeout
	}
	c.autoscroll = c.cfg.Autoscroll
	return c
}

// Start begins monitoring jobID, tearing down any previous session first.
func (c *Controller) Start(jobID, processID string, meta Metadata) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return ErrMissingJobID
	}

	c.Stop()

	c.gen++
	gen := c.gen
	now := c.clock()

	c.store = NewStore(c.cfg.RecentWindow)
	c.heartbeat = NewHeartbeat(c.cfg.HeartbeatInterval)
	c.autoscroll = c.cfg.Autoscroll
	c.cancelAsk = false
	c.session = &Session{
		JobID:        jobID,
		ProcessID:    processID,
		Meta:         meta,
		StartTime:    now,
		Status:       StatusPending,
		ProgressText: "0% - Iniciando...",
		Active:       true,
	}

	c.appendLocal(LevelInfo, fmt.Sprintf("Monitoramento iniciado para Job ID: %s", jobID))
	c.appendLocal(LevelInfo, fmt.Sprintf("Processo ID: %s", processID))

	ctx, cancel := context.WithCancel(context.Background())
	c.stop = cancel

	emit := func(ev Event) {
		if ctx.Err() != nil {
			return
		}
		c.post(Envelope{Gen: gen, Event: ev})
	}
	c.wait = c.launcher.Launch(ctx, Target{JobID: jobID, ProcessID: processID}, emit)

	c.logger.WithFields(logrus.Fields{
		"job_id":     jobID,
		"process_id": processID,
		"gen":        gen,
	}).Info("monitoring started")
	return nil
}

// Stop ends the session and releases both channels. It is safe to call repeatedly.
func (c *Controller) Stop() {
	if c.session != nil && c.session.Active {
		c.session.Active = false
		if c.session.EndTime.IsZero() {
			c.session.EndTime = c.clock()
		}
		c.logger.WithField("job_id", c.session.JobID).Info("monitoring stopped")
	}
	c.cancelAsk = false
	c.teardown()
}

func (c *Controller) teardown() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// Wait blocks until the channels of the current session have exited. Call it
// after Stop or finalization.
func (c *Controller) Wait() error {
	if c.wait == nil {
		return nil
	}
	return c.wait()
}

// Active reports whether a session is running.
func (c *Controller) Active() bool {
	return c.session != nil && c.session.Active
}

// Generation returns the generation of the current session.
func (c *Controller) Generation() uint64 {
	return c.gen
}

// Handle applies one channel event. It returns false when the event was
// dropped because it belongs to an older or inactive session.
func (c *Controller) Handle(env Envelope) bool {
	if c.session == nil || env.Gen != c.gen || !c.session.Active {
		c.logger.WithFields(logrus.Fields{
			"gen":     env.Gen,
			"current": c.gen,
			"event":   fmt.Sprintf("%T", env.Event),
		}).Debug("dropping stale event")
		return false
	}

	switch ev := env.Event.(type) {
	case StreamOpened:
		c.session.StreamConnected = true
		c.appendLocal(LevelInfo, "🔗 Conectado aos logs em tempo real")
	case StreamLog:
		c.handleStreamLog(ev.Entry)
	case StreamFailed:
		c.session.StreamConnected = false
		c.session.PollingOnly = true
		c.logger.WithError(ev.Err).WithField("job_id", c.session.JobID).Warn("falling back to polling only")
		c.appendLocal(LevelWarning, "Logs em tempo real indisponíveis, usando apenas consulta periódica")
	case PollSucceeded:
		c.OnStatusUpdate(ev.Status)
	case PollFailed:
		c.appendLocal(LevelError, PollErrorMessage(ev.Err))
	case CancelFinished:
		if ev.Err != nil {
			c.logger.WithError(ev.Err).WithField("job_id", c.session.JobID).Error("cancel request failed")
			c.appendLocal(LevelError, fmt.Sprintf("Erro ao cancelar job: %s", cancelErrorText(ev.Err)))
		}
	default:
		return false
	}
	return true
}

func (c *Controller) handleStreamLog(e api.LogEntry) {
	rec := ServerRecord(e, SourceStream, c.clock())
	if !c.store.Add(rec) {
		return
	}
	c.appendRecord(rec)

	if e.Operadora != "" && e.Operadora != "UNKNOWN" {
		c.session.Meta.Operadora = e.Operadora
	}
}

// OnStatusUpdate applies a status report: reconciles status and progress,
// appends new logs, synthesizes a heartbeat when the report has none and
// finalizes once on a terminal status.
func (c *Controller) OnStatusUpdate(st *api.JobStatus) {
	s := c.session
	if s == nil || !s.Active || st == nil {
		return
	}
	now := c.clock()

	status := s.Status
	if reported := ParseStatus(st.Status); reported != "" {
		if !(s.Status.IsTerminal() && !reported.IsTerminal()) {
			status = reported
		}
	}
	if status != s.Status && c.onStatus != nil {
		c.onStatus(s.Status, status)
	}
	s.Status = status
	s.Progress = ClampProgress(int(st.Progress))
	s.ProgressText = fmt.Sprintf("%d%% - %s", s.Progress, ShortLabel(status))

	for _, e := range st.Logs {
		if e.Timestamp == "" || e.Message == "" {
			continue
		}
		rec := ServerRecord(e, SourcePoll, now)
		if c.store.Add(rec) {
			c.appendRecord(rec)
		}
	}

	if len(st.Logs) == 0 {
		if rec, ok := c.heartbeat.Next(status, s.Progress, now.Sub(s.StartTime), now); ok {
			c.appendRecord(rec)
		}
	}

	s.LastUpdate = now

	if status.IsTerminal() {
		c.finalize(st)
	}
}

func (c *Controller) finalize(st *api.JobStatus) {
	s := c.session
	if s.Finalized {
		return
	}
	s.Finalized = true
	s.Active = false
	s.EndTime = c.clock()
	c.cancelAsk = false
	c.teardown()

	s.Outcome = buildOutcome(s.Status, st)
	c.appendLocal(LevelSuccess, "Monitoramento finalizado")

	c.logger.WithFields(logrus.Fields{
		"job_id":  s.JobID,
		"status":  s.Status,
		"elapsed": s.EndTime.Sub(s.StartTime).Round(time.Second),
	}).Info("monitoring finalized")

	if c.onFinalize != nil {
		c.onFinalize(c.View(), c.store.History())
	}
}

func buildOutcome(status Status, st *api.JobStatus) *Outcome {
	o := &Outcome{Status: status}
	switch status {
	case StatusCompleted:
		o.Title = "Execução Concluída com Sucesso!"
		o.Detail = "O job foi executado com sucesso."
		o.Result = prettyJSON(st.Result)
	case StatusFailed:
		o.Title = "Execução Falhou"
		o.Detail = "O job falhou durante a execução."
		o.Error = st.Error
	case StatusCancelled:
		o.Title = "Execução Cancelada"
		o.Detail = "O job foi cancelado."
	}
	return o
}

func prettyJSON(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// RequestCancel opens the confirmation gate for cancelling the backend job.
func (c *Controller) RequestCancel() error {
	if !c.Active() {
		return ErrNotActive
	}
	c.cancelAsk = true
	return nil
}

// ResolveCancel closes the confirmation gate. When accepted it logs an
// optimistic entry and sends the cancellation in the background; the next
// poll reports CANCELLED once the server applies it.
func (c *Controller) ResolveCancel(accepted bool) {
	if !c.cancelAsk {
		return
	}
	c.cancelAsk = false
	if !accepted || !c.Active() {
		return
	}

	s := c.session
	c.appendLocal(LevelWarning, "Solicitação de cancelamento enviada...")
	c.logger.WithField("job_id", s.JobID).Info("cancel requested")

	gen, jobID, processID := c.gen, s.JobID, s.ProcessID
	timeout := c.cfg.CancelTimeout
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := c.canceller.Cancel(ctx, jobID, processID)
		c.post(Envelope{Gen: gen, Event: CancelFinished{Err: err}})
	}()
}

// CancelPending reports whether a cancel confirmation is open.
func (c *Controller) CancelPending() bool {
	return c.cancelAsk
}

// ClearLogs empties the log view. Lines already seen stay suppressed.
func (c *Controller) ClearLogs() {
	if c.store != nil {
		c.store.Clear()
	}
}

// ToggleAutoscroll flips autoscroll and returns the new value.
func (c *Controller) ToggleAutoscroll() bool {
	c.autoscroll = !c.autoscroll
	return c.autoscroll
}

// CloseNeedsConfirm reports whether closing the view should be confirmed.
func (c *Controller) CloseNeedsConfirm() bool {
	return c.Active()
}

// View returns a snapshot of the current session.
func (c *Controller) View() Snapshot {
	if c.session == nil {
		return Snapshot{Autoscroll: c.autoscroll}
	}
	s := *c.session
	if s.Outcome != nil {
		o := *s.Outcome
		s.Outcome = &o
	}

	end := c.clock()
	if !s.EndTime.IsZero() {
		end = s.EndTime
	}

	return Snapshot{
		Session:       s,
		Presentation:  Reconcile(s.Status),
		Animated:      s.Active && s.Progress < 100,
		Elapsed:       end.Sub(s.StartTime),
		Logs:          c.store.Entries(),
		CancelVisible: s.Active,
		CancelPending: c.cancelAsk,
		Autoscroll:    c.autoscroll,
	}
}

func (c *Controller) appendLocal(level Level, msg string) {
	c.appendRecord(LocalRecord(level, msg, c.clock()))
}

func (c *Controller) appendRecord(rec LogRecord) {
	if !c.store.Append(rec, c.clock()) {
		return
	}
	if c.onAppend != nil {
		if last, ok := c.store.Last(); ok {
			c.onAppend(last)
		}
	}
}

func cancelErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("HTTP %d", apiErr.StatusCode)
	}
	var protoErr *api.ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.Error()
	}
	return err.Error()
}
