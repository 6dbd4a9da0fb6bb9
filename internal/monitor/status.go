// Package monitor follows one job from submission to a terminal state. It
// merges log lines pushed over an event stream with status reports pulled by a
// poller, renders each distinct line once and finalizes the session exactly once.
package monitor

import "strings"

// Status is a job status as reported by the server. Unknown values are kept verbatim.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus trims a server status string. Case is preserved so unknown
// values display verbatim.
func ParseStatus(s string) Status {
	return Status(strings.TrimSpace(s))
}

// IsTerminal reports whether no further transition occurs from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Severity classifies how a status banner is drawn.
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeveritySuccess   Severity = "success"
	SeverityDanger    Severity = "danger"
	SeveritySecondary Severity = "secondary"
)

// Presentation is the displayable form of a status.
type Presentation struct {
	Label    string
	Severity Severity
}

// Reconcile maps a status to its label and severity.
func Reconcile(s Status) Presentation {
	switch s {
	case StatusPending:
		return Presentation{Label: "Aguardando execução", Severity: SeverityWarning}
	case StatusRunning:
		return Presentation{Label: "Executando", Severity: SeverityInfo}
	case StatusCompleted:
		return Presentation{Label: "Concluído com sucesso", Severity: SeveritySuccess}
	case StatusFailed:
		return Presentation{Label: "Falhou na execução", Severity: SeverityDanger}
	case StatusCancelled:
		return Presentation{Label: "Cancelado", Severity: SeveritySecondary}
	default:
		return Presentation{Label: string(s), Severity: SeverityInfo}
	}
}

// ShortLabel is the text shown next to the progress percentage.
func ShortLabel(s Status) string {
	switch s {
	case StatusPending:
		return "Aguardando"
	case StatusRunning:
		return "Executando"
	case StatusCompleted:
		return "Concluído"
	case StatusFailed:
		return "Falhou"
	case StatusCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}

// ClampProgress bounds a progress value to [0, 100].
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
