package cli

import (
	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/monitor"
)

var (
	watchProcesso  string
	watchOperadora string
)

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Monitor a running job",
	Long: `Open the live monitor on an existing job.

Closing the monitor does not cancel the job; use "jobwatch cancel" or press c
in the monitor for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProcesso, "processo", "p", "", "processo id of the job")
	watchCmd.Flags().StringVar(&watchOperadora, "operadora", "", "operadora shown in the monitor header")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	return e.monitorJob(cmd.Context(), cmd.OutOrStdout(), job{
		ID:        args[0],
		ProcessID: watchProcesso,
		Meta:      monitor.Metadata{Operadora: watchOperadora},
	})
}
