package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/config"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

var historyProcesso string

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "List saved monitor transcripts",
	Long: `List the transcripts saved when a monitored job finished, newest first.
Transcripts live under ~/.jobwatch/logs/<processo>/.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <log-id>",
	Short: "Print a saved transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyProcesso, "processo", "p", "", "only transcripts of this processo")
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	logs, err := config.ListLogs(historyProcesso)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(logs) == 0 {
		fmt.Fprintln(out, "No transcripts yet. They are saved when a watched job finishes.")
		return nil
	}

	for _, l := range logs {
		p := monitor.Reconcile(monitor.ParseStatus(l.Status))
		fmt.Fprintf(out, "  %s  %s  %s %s\n",
			styleCommand.Render(l.LogID),
			styleLabel.Render("processo "+l.ProcessID),
			styleHint.Render(shortTime(l.StartedAt)),
			severityStyle(p.Severity).Render("("+p.Label+")"),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	logID := args[0]

	processID := historyProcesso
	if processID == "" {
		// Look the transcript up across every processo.
		logs, err := config.ListLogs("")
		if err != nil {
			return err
		}
		for _, l := range logs {
			if l.LogID == logID {
				processID = l.ProcessID
				break
			}
		}
		if processID == "" {
			return fmt.Errorf("transcript %s not found", logID)
		}
	}

	entry, body, err := config.ReadLog(processID, logID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Job:      "), styleValue.Render(entry.JobID))
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Processo: "), styleValue.Render(entry.ProcessID))
	if entry.Operadora != "" {
		fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Operadora:"), styleValue.Render(entry.Operadora))
	}
	fmt.Fprintf(out, "%s %s → %s\n", styleLabel.Render("Período:  "), entry.StartedAt, entry.EndedAt)
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Status:   "), entry.Status)
	fmt.Fprintln(out, styleHint.Render("────────────────────────────────────────"))
	fmt.Fprint(out, body)
	return nil
}

// shortTime trims an RFC 3339 stamp to "2006-01-02 15:04".
func shortTime(s string) string {
	if len(s) >= 16 {
		return s[:10] + " " + s[11:16]
	}
	return s
}
