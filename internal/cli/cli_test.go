package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/jobwatch/internal/config"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

// executeCommand runs the root command with args in an isolated home directory.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvSession, "")
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	flagURL, flagToken, flagPlain, flagDebug = "", "", false, false
	runTipo, runSync, runOperadora, runCliente, runMesAno = "", false, "", "", ""
	watchProcesso, watchOperadora = "", ""
	statusProcesso, statusLogs = "", false
	waitProcesso, waitMax, waitInterval = "", 0, 0
	cancelProcesso, cancelYes = "", false
	payloadTipo = ""
	historyProcesso = ""
	settingsForce = false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// jobServer serves a job whose status is always final.
func jobServer(t *testing.T, final map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/logs-tempo-real/stream/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/v2/externos/status/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "status": final})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWatchPlainCompleted(t *testing.T) {
	srv := jobServer(t, map[string]any{
		"status":   "COMPLETED",
		"progress": 100,
		"logs": []map[string]any{
			{"timestamp": "2025-06-01T12:00:01", "message": "Processando guias"},
		},
		"result": map[string]any{"ok": true},
	})

	out, err := executeCommand(t, "watch", "job-1", "--processo", "p1", "--plain", "--url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "Monitoramento iniciado para Job ID: job-1")
	assert.Contains(t, out, "Processo ID: p1")
	assert.Contains(t, out, "Processando guias")
	assert.Contains(t, out, "Execução Concluída com Sucesso!")
	assert.Contains(t, out, `"ok": true`)
	assert.Contains(t, out, "Monitoramento finalizado")

	logs, err := config.ListLogs("p1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "job-1", logs[0].JobID)
	assert.Equal(t, "COMPLETED", logs[0].Status)
}

func TestWatchPlainFailed(t *testing.T) {
	srv := jobServer(t, map[string]any{
		"status":   "FAILED",
		"progress": 40,
		"error":    "Portal da operadora indisponível",
	})

	out, err := executeCommand(t, "watch", "job-2", "--processo", "p1", "--plain", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "falhou")
	assert.Contains(t, out, "Execução Falhou")
	assert.Contains(t, out, "Portal da operadora indisponível")
}

func TestWatchRequiresJobID(t *testing.T) {
	_, err := executeCommand(t, "watch", "  ", "--plain", "--url", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, monitor.ErrMissingJobID)
}

func TestRunSync(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/executar/p7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, map[string]any{"success": true, "message": "Execução finalizada", "job_id": "j9"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "run", "p7", "--tipo", "sat", "--sync", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "sat", body["tipo"])
	assert.Equal(t, true, body["sincrono"])
	assert.Contains(t, out, "Execução finalizada")
	assert.Contains(t, out, "j9")
}

func TestRunAsyncMonitors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/executar/p7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "job_id": "j10"})
	})
	mux.HandleFunc("/api/v2/logs-tempo-real/stream/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/v2/externos/status/j10", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p7", r.URL.Query().Get("processo_id"))
		writeJSON(w, map[string]any{"success": true, "status": map[string]any{"status": "COMPLETED", "progress": 100}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "run", "p7", "--plain", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Job enviado: j10")
	assert.Contains(t, out, "Execução Concluída com Sucesso!")
}

func TestRunWithoutJobID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/executar/p7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := executeCommand(t, "run", "p7", "--plain", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job_id")
}

func TestRunRejectsUnknownTipo(t *testing.T) {
	_, err := executeCommand(t, "run", "p7", "--tipo", "xyz", "--url", "http://127.0.0.1:1")
	require.Error(t, err)
}

func TestCancelWithYes(t *testing.T) {
	var gotToken string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/cancelar/job-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "p1", r.URL.Query().Get("processo_id"))
		gotToken = r.Header.Get("X-CSRFToken")
		writeJSON(w, map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "cancel", "job-1", "-p", "p1", "--yes", "--token", "tok-123", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotToken)
	assert.Contains(t, out, "Solicitação de cancelamento enviada...")
}

func TestCancelSurfacesServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/cancelar/job-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]any{"success": false, "message": "CSRF token missing"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := executeCommand(t, "cancel", "job-1", "--yes", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cancel job")
}

func TestStatusCommand(t *testing.T) {
	srv := jobServer(t, map[string]any{
		"status":   "RUNNING",
		"progress": "42.6",
		"logs":     []map[string]any{{"timestamp": "2025-06-01T12:00:01", "message": "Erro ao abrir guia"}},
	})

	out, err := executeCommand(t, "status", "job-1", "--logs", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Executando")
	assert.Contains(t, out, "43%")
	assert.Contains(t, out, "Erro ao abrir guia")
}

func TestMissingJobIsReported(t *testing.T) {
	mux := http.NewServeMux()
	notFound := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"success": false, "error": "JOB_NOT_FOUND", "message": "Job não encontrado"})
	}
	mux.HandleFunc("/api/v2/externos/status/job-9", notFound)
	mux.HandleFunc("/api/v2/externos/cancelar/job-9", notFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := executeCommand(t, "status", "job-9", "--url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "job job-9 não encontrado", err.Error())

	_, err = executeCommand(t, "cancel", "job-9", "--yes", "--url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "job job-9 não encontrado", err.Error())
}

func TestStatusWithoutReportFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/status/job-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "status": nil})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := executeCommand(t, "status", "job-1", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resposta sem status")
}

func TestLogsCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/logs/job-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "logs": []map[string]any{
			{"timestamp": "2025-06-01T12:00:01", "message": "Login efetuado"},
			{"timestamp": "2025-06-01T12:00:02", "message": ""},
		}})
	})
	mux.HandleFunc("/api/v2/externos/logs/job-2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "logs": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "logs", "job-1", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Login efetuado")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)

	out, err = executeCommand(t, "logs", "job-2", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum log registrado")
}

func TestPayloadCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/payload/p1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rpa", r.URL.Query().Get("tipo"))
		writeJSON(w, map[string]any{"success": true, "payload": map[string]any{"operadora": "Unimed"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "payload", "p1", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"operadora": "Unimed"`)
}

func TestWaitCommand(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/externos/monitorar/job-1", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, map[string]any{
			"success":   true,
			"concluido": true,
			"status":    map[string]any{"status": "COMPLETED", "progress": 100},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := executeCommand(t, "wait", "job-1", "-p", "p1", "--max-wait", "90s", "--interval", "1500ms", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "p1", body["processo_id"])
	assert.Equal(t, float64(90), body["max_wait"])
	assert.Equal(t, float64(2), body["poll_interval"])
	assert.Contains(t, out, "Concluído")
}

func TestSettingsInitAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"settings", "init"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Settings written to")

	resetFlags()
	rootCmd.SetArgs([]string{"settings", "init"})
	assert.Error(t, rootCmd.Execute())

	resetFlags()
	buf.Reset()
	rootCmd.SetArgs([]string{"settings", "--token", "abcdefgh"})
	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "ab****gh")
	assert.NotContains(t, out, "abcdefgh")
	assert.Contains(t, out, "poll_interval: 2s")
}

func TestHistoryCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags()

	entry, err := config.WriteLog(config.Transcript{
		JobID:     "job-1",
		ProcessID: "p1",
		Status:    "CANCELLED",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Lines:     []string{"[12:00:00] INFO Monitoramento iniciado para Job ID: job-1"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"history"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), entry.LogID)
	assert.Contains(t, buf.String(), "Cancelado")

	resetFlags()
	buf.Reset()
	rootCmd.SetArgs([]string{"history", "show", entry.LogID})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Monitoramento iniciado para Job ID: job-1")

	resetFlags()
	rootCmd.SetArgs([]string{"history", "show", "missing"})
	assert.Error(t, rootCmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Jobwatch dev")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "ab****yz", maskSecret("ab1234yz"))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1, seconds(0))
	assert.Equal(t, 1, seconds(200*time.Millisecond))
	assert.Equal(t, 2, seconds(1500*time.Millisecond))
	assert.Equal(t, 300, seconds(5*time.Minute))
}

func TestOutcomeError(t *testing.T) {
	assert.NoError(t, outcomeError(monitor.Snapshot{}))
	assert.NoError(t, outcomeError(monitor.Snapshot{Session: monitor.Session{Outcome: &monitor.Outcome{Status: monitor.StatusCompleted}}}))
	assert.Error(t, outcomeError(monitor.Snapshot{Session: monitor.Session{Outcome: &monitor.Outcome{Status: monitor.StatusFailed}}}))
	assert.Error(t, outcomeError(monitor.Snapshot{Session: monitor.Session{Outcome: &monitor.Outcome{Status: monitor.StatusCancelled}}}))
}
