package api

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Envelope is the common part of every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (e *Envelope) envelope() *Envelope { return e }

// Tipo selects what a job runs.
type Tipo string

const (
	TipoRPA Tipo = "rpa"
	TipoSAT Tipo = "sat"
)

// ParseTipo validates a tipo flag value.
func ParseTipo(s string) (Tipo, error) {
	switch t := Tipo(strings.ToLower(strings.TrimSpace(s))); t {
	case TipoRPA, TipoSAT:
		return t, nil
	case "":
		return TipoRPA, nil
	default:
		return "", fmt.Errorf("invalid tipo %q (expected rpa or sat)", s)
	}
}

// ExecuteRequest is the body of POST /executar/{processId}.
type ExecuteRequest struct {
	Tipo     Tipo `json:"tipo"`
	Sincrono bool `json:"sincrono"`
}

// ExecuteResponse is the reply to an execute call.
type ExecuteResponse struct {
	Envelope
	JobID string `json:"job_id,omitempty"`
}

// WaitRequest is the body of POST /monitorar/{jobId}. Durations are in seconds.
type WaitRequest struct {
	ProcessoID   string `json:"processo_id"`
	MaxWait      int    `json:"max_wait"`
	PollInterval int    `json:"poll_interval"`
}

// WaitResponse is the reply to a server-side wait.
type WaitResponse struct {
	Envelope
	Status    *JobStatus `json:"status,omitempty"`
	Concluido bool       `json:"concluido"`
}

// StatusResponse is the reply to GET /status/{jobId}.
type StatusResponse struct {
	Envelope
	JobID  string     `json:"job_id,omitempty"`
	Status *JobStatus `json:"status,omitempty"`
}

// JobStatus is the server view of a job.
type JobStatus struct {
	Status   string          `json:"status"`
	Progress Percent         `json:"progress"`
	Logs     []LogEntry      `json:"logs,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// PayloadResponse is the reply to GET /payload/{processoId}.
type PayloadResponse struct {
	Envelope
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LogsResponse is the reply to GET /logs/{jobId}.
type LogsResponse struct {
	Envelope
	Logs []LogEntry `json:"logs,omitempty"`
}

// cancelResponse is the reply to DELETE /cancelar/{jobId}.
type cancelResponse struct {
	Envelope
}

// LogEntry is a log line as delivered by the status, logs and stream endpoints.
type LogEntry struct {
	Type      string `json:"type,omitempty"`
	JobID     string `json:"job_id,omitempty"`
	Timestamp Stamp  `json:"timestamp"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message"`
	Operadora string `json:"operadora,omitempty"`
}

// Stamp is a timestamp kept exactly as the server wrote it. Numbers are kept
// in their JSON text form.
type Stamp string

// UnmarshalJSON accepts strings, numbers and null.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Stamp(v)
	default:
		*s = Stamp(data)
	}
	return nil
}

// Percent is a progress value that tolerates ints, floats, numeric strings and null.
// Anything else decodes as 0 so a bad progress field never hides the status.
type Percent int

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			*p = 0
			return nil
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "%")
		if text == "" {
			*p = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) {
		f = 0
	}
	switch {
	case f > math.MaxInt32:
		f = math.MaxInt32
	case f < math.MinInt32:
		f = math.MinInt32
	}
	*p = Percent(math.Round(f))
	return nil
}
