package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/api"
)

var (
	statusProcesso string
	statusLogs     bool
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the current status of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusProcesso, "processo", "p", "", "processo id of the job")
	statusCmd.Flags().BoolVar(&statusLogs, "logs", false, "also print the logs included in the report")
}

func runStatus(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.client.Status(cmd.Context(), jobID, statusProcesso)
	if api.IsNotFound(err) {
		return fmt.Errorf("job %s não encontrado", jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	printStatus(out, jobID, st)
	if statusLogs && len(st.Logs) > 0 {
		fmt.Fprintln(out)
		printLogEntries(out, st.Logs, time.Now())
	}
	return nil
}
