package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

func formatRecord(r monitor.LogRecord) string {
	ts := styleLabel.Render("[" + r.Timestamp.Local().Format("15:04:05") + "]")
	return ts + " " + levelStyle(r.Level).Render(r.Message)
}

func formatStatusChange(from, to monitor.Status) string {
	p := monitor.Reconcile(to)
	return styleLabel.Render("status: ") +
		styleHint.Render(monitor.Reconcile(from).Label+" → ") +
		severityStyle(p.Severity).Render(p.Label)
}

// printOutcome prints how the session ended.
func printOutcome(w io.Writer, snap monitor.Snapshot) {
	if snap.JobID == "" {
		return
	}
	elapsed := styleLabel.Render("Tempo decorrido: ") + styleValue.Render(monitor.FormatElapsed(snap.Elapsed))

	o := snap.Outcome
	if o == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleWarning.Render("Monitoramento encerrado; o job continua no servidor."))
		fmt.Fprintln(w, "  "+elapsed)
		fmt.Fprintln(w, styleHint.Render(fmt.Sprintf("  Acompanhe com: jobwatch watch %s --processo %s", snap.JobID, snap.ProcessID)))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, outcomeStyle(o.Status).Render(o.Title))
	if o.Detail != "" {
		fmt.Fprintln(w, "  "+styleHint.Render(o.Detail))
	}
	fmt.Fprintln(w, "  "+elapsed)
	if o.Error != "" {
		fmt.Fprintln(w, "  "+styleLabel.Render("Erro: ")+styleError.Render(o.Error))
	}
	if o.Result != "" {
		fmt.Fprintln(w, "  "+styleLabel.Render("Resultado:"))
		for _, line := range strings.Split(o.Result, "\n") {
			fmt.Fprintln(w, "    "+line)
		}
	}
}

// printStatus prints a one-shot status report.
func printStatus(w io.Writer, jobID string, st *api.JobStatus) {
	status := monitor.ParseStatus(st.Status)
	p := monitor.Reconcile(status)
	progress := monitor.ClampProgress(int(st.Progress))

	fmt.Fprintf(w, "%s %s\n", styleLabel.Render("Job:     "), styleValue.Render(jobID))
	fmt.Fprintf(w, "%s %s\n", styleLabel.Render("Status:  "), severityStyle(p.Severity).Render(p.Label))
	fmt.Fprintf(w, "%s %s\n", styleLabel.Render("Progress:"), styleValue.Render(fmt.Sprintf("%d%% - %s", progress, monitor.ShortLabel(status))))
	if st.Error != "" {
		fmt.Fprintf(w, "%s %s\n", styleLabel.Render("Erro:    "), styleError.Render(st.Error))
	}
	if len(st.Result) > 0 {
		fmt.Fprintln(w, styleLabel.Render("Resultado:"))
		fmt.Fprintln(w, indentJSON(st.Result))
	}
}

// printLogEntries prints server log entries with inferred levels. Entries
// without a parseable timestamp are stamped with now.
func printLogEntries(w io.Writer, entries []api.LogEntry, now time.Time) int {
	n := 0
	for _, e := range entries {
		if e.Message == "" {
			continue
		}
		fmt.Fprintln(w, formatRecord(monitor.ServerRecord(e, monitor.SourcePoll, now)))
		n++
	}
	return n
}

// indentJSON pretty-prints raw, falling back to the raw text.
func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
