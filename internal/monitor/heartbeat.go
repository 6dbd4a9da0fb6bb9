package monitor

import (
	"fmt"
	"time"
)

// DefaultHeartbeatInterval caps synthesized entries while the status is unchanged.
const DefaultHeartbeatInterval = 15 * time.Second

// Heartbeat synthesizes progress entries for polls that carry no logs.
type Heartbeat struct {
	interval   time.Duration
	last       time.Time
	lastStatus Status
	emitted    bool
}

// NewHeartbeat creates a heartbeat. A non-positive interval uses DefaultHeartbeatInterval.
func NewHeartbeat(interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Heartbeat{interval: interval}
}

// Next returns a synthesized record when the status changed since the previous
// heartbeat or more than the interval passed since it.
func (h *Heartbeat) Next(status Status, progress int, elapsed time.Duration, now time.Time) (LogRecord, bool) {
	changed := !h.emitted || status != h.lastStatus
	due := !h.emitted || now.Sub(h.last) > h.interval
	if !changed && !due {
		return LogRecord{}, false
	}

	h.emitted = true
	h.last = now
	h.lastStatus = status

	level, msg := heartbeatMessage(status, progress, FormatElapsed(elapsed))
	return LogRecord{
		Timestamp: now,
		Level:     level,
		Message:   msg,
		Source:    SourceHeartbeat,
	}, true
}

func heartbeatMessage(status Status, progress int, elapsed string) (Level, string) {
	switch status {
	case StatusRunning:
		if progress > 0 {
			return LevelInfo, fmt.Sprintf("🔄 Executando RPA... %d%% concluído (%s)", progress, elapsed)
		}
		return LevelInfo, fmt.Sprintf("🔄 Iniciando execução RPA... (%s)", elapsed)
	case StatusPending:
		return LevelWarning, fmt.Sprintf("⏳ Aguardando execução... (%s)", elapsed)
	case StatusCompleted:
		return LevelSuccess, fmt.Sprintf("✅ Execução concluída com sucesso! (%s)", elapsed)
	case StatusFailed:
		return LevelError, fmt.Sprintf("❌ Execução falhou (%s)", elapsed)
	case StatusCancelled:
		return LevelWarning, fmt.Sprintf("⏹️ Execução cancelada (%s)", elapsed)
	default:
		return LevelInfo, fmt.Sprintf("📊 Status: %s - %d%% (%s)", status, progress, elapsed)
	}
}
