package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		status   Status
		label    string
		severity Severity
		short    string
		terminal bool
	}{
		{StatusPending, "Aguardando execução", SeverityWarning, "Aguardando", false},
		{StatusRunning, "Executando", SeverityInfo, "Executando", false},
		{StatusCompleted, "Concluído com sucesso", SeveritySuccess, "Concluído", true},
		{StatusFailed, "Falhou na execução", SeverityDanger, "Falhou", true},
		{StatusCancelled, "Cancelado", SeveritySecondary, "Cancelado", true},
		{"QUEUED_REMOTE", "QUEUED_REMOTE", SeverityInfo, "QUEUED_REMOTE", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := Reconcile(tt.status)
			assert.Equal(t, tt.label, p.Label)
			assert.Equal(t, tt.severity, p.Severity)
			assert.Equal(t, tt.short, ShortLabel(tt.status))
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestParseStatusKeepsCase(t *testing.T) {
	assert.Equal(t, StatusRunning, ParseStatus(" RUNNING "))
	assert.Equal(t, Status("running"), ParseStatus("running"))
}

func TestClampProgressProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.Int().Draw(t, "p")
		got := ClampProgress(p)
		if got < 0 || got > 100 {
			t.Fatalf("ClampProgress(%d) = %d out of range", p, got)
		}
		if p >= 0 && p <= 100 && got != p {
			t.Fatalf("ClampProgress(%d) = %d, want identity", p, got)
		}
	})
}

func TestInferLevel(t *testing.T) {
	tests := []struct {
		explicit, msg string
		want          Level
	}{
		{"INFO", "Erro ao logar", LevelInfo},
		{"WARN", "", LevelWarning},
		{"Warning", "", LevelWarning},
		{"ERROR", "", LevelError},
		{"CRITICAL", "", LevelError},
		{"success", "", LevelSuccess},
		{"DEBUG", "", LevelDebug},
		{"verbose", "", LevelInfo},
		{"", "Erro ao baixar fatura", LevelError},
		{"", "Connection ERROR", LevelError},
		{"", "Aviso: sessão expirando", LevelWarning},
		{"", "warning: slow portal", LevelWarning},
		{"", "Fatura baixada", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferLevel(tt.explicit, tt.msg), "%q/%q", tt.explicit, tt.msg)
	}
}

func TestParseTimestamp(t *testing.T) {
	fallback := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	got := ParseTimestamp("2025-06-01T10:20:30.123456Z", fallback)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 20, 30, 123456000, time.UTC), got.UTC())

	got = ParseTimestamp("2025-06-01T10:20:30.5", fallback)
	assert.Equal(t, 30, got.Second())
	assert.Equal(t, 500000000, got.Nanosecond())

	got = ParseTimestamp("2025-06-01 10:20:30", fallback)
	assert.Equal(t, 10, got.Hour())

	got = ParseTimestamp("1700000000", fallback)
	assert.Equal(t, int64(1700000000), got.Unix())

	got = ParseTimestamp("1700000000123", fallback)
	assert.Equal(t, int64(1700000000123), got.UnixMilli())

	assert.Equal(t, fallback, ParseTimestamp("", fallback))
	assert.Equal(t, fallback, ParseTimestamp("t1", fallback))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0m 0s", FormatElapsed(0))
	assert.Equal(t, "2m 5s", FormatElapsed(125*time.Second+900*time.Millisecond))
	assert.Equal(t, "0m 0s", FormatElapsed(-time.Second))
}
