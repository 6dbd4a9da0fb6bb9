package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

var (
	waitProcesso string
	waitMax      time.Duration
	waitInterval time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Block until the server reports the job finished",
	Long: `Ask the server to monitor the job and reply once it finishes or the
maximum wait elapses. Unlike "watch", no logs are streamed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

func init() {
	waitCmd.Flags().StringVarP(&waitProcesso, "processo", "p", "", "processo id of the job")
	waitCmd.Flags().DurationVar(&waitMax, "max-wait", 0, "maximum server-side wait (default from settings)")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 0, "server-side poll interval (default from settings)")
}

func runWait(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	maxWait := waitMax
	if maxWait <= 0 {
		maxWait = e.settings.Submit.MaxWait
	}
	interval := waitInterval
	if interval <= 0 {
		interval = e.settings.Submit.PollInterval
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleHint.Render(fmt.Sprintf("Aguardando job %s (até %s)...", jobID, maxWait)))

	resp, err := e.client.Wait(cmd.Context(), jobID, api.WaitRequest{
		ProcessoID:   waitProcesso,
		MaxWait:      seconds(maxWait),
		PollInterval: seconds(interval),
	})
	if err != nil {
		return fmt.Errorf("failed to wait for job: %w", err)
	}

	if resp.Status != nil {
		printStatus(out, jobID, resp.Status)
	}
	if !resp.Concluido {
		fmt.Fprintln(out, styleWarning.Render("Tempo máximo de espera atingido; o job ainda não terminou."))
		return nil
	}
	if resp.Status != nil && monitor.ParseStatus(resp.Status.Status) == monitor.StatusFailed {
		return fmt.Errorf("job %s falhou", jobID)
	}
	return nil
}

// seconds rounds d up to whole seconds, at least one.
func seconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
