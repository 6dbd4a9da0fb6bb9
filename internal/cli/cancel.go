package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

var (
	cancelProcesso string
	cancelYes      bool
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a running job",
	Long: `Ask the server to cancel a job. The cancellation is applied
asynchronously; check with "jobwatch status" or keep watching the job.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	cancelCmd.Flags().StringVarP(&cancelProcesso, "processo", "p", "", "processo id of the job")
	cancelCmd.Flags().BoolVarP(&cancelYes, "yes", "y", false, "skip the confirmation prompt")
}

func runCancel(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if !cancelYes {
		ok, err := confirm(monitor.CancelPrompt, "Job "+jobID)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), styleHint.Render("Cancelamento abortado."))
			return nil
		}
	}

	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	err = e.client.Cancel(cmd.Context(), jobID, cancelProcesso)
	if api.IsNotFound(err) {
		return fmt.Errorf("job %s não encontrado", jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleWarning.Render("Solicitação de cancelamento enviada..."))
	return nil
}

// confirm asks a yes/no question. Without a terminal it falls back to huh's
// accessible mode, which reads the answer from stdin.
func confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Sim").
				Negative("Não").
				Value(&ok),
		),
	)
	if !isTerminal(os.Stdin) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
