package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <job-id>",
	Short: "Print the stored logs of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.client.Logs(cmd.Context(), jobID)
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}

	out := cmd.OutOrStdout()
	if printLogEntries(out, entries, time.Now()) == 0 {
		fmt.Fprintln(out, styleHint.Render("Nenhum log registrado para este job."))
	}
	return nil
}
