package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/monitor"
)

var (
	runTipo      string
	runSync      bool
	runOperadora string
	runCliente   string
	runMesAno    string
)

var runCmd = &cobra.Command{
	Use:   "run <processo-id>",
	Short: "Submit a job and monitor it",
	Long: `Submit an RPA or SAT job for a processo.

Asynchronous runs (the default) open the live monitor on the returned job id.
With --sync the server runs the job before replying and only its message is
printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runTipo, "tipo", "", "job type: rpa or sat (default from settings)")
	runCmd.Flags().BoolVar(&runSync, "sync", false, "run synchronously on the server")
	runCmd.Flags().StringVar(&runOperadora, "operadora", "", "operadora shown in the monitor header")
	runCmd.Flags().StringVar(&runCliente, "cliente", "", "cliente shown in the monitor header")
	runCmd.Flags().StringVar(&runMesAno, "mes-ano", "", "competência (MM/AAAA) shown in the monitor header")
}

func runRun(cmd *cobra.Command, args []string) error {
	processID := args[0]

	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	tipoFlag := runTipo
	if tipoFlag == "" {
		tipoFlag = e.settings.Submit.Tipo
	}
	tipo, err := api.ParseTipo(tipoFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	resp, err := e.client.Execute(cmd.Context(), processID, api.ExecuteRequest{Tipo: tipo, Sincrono: runSync})
	if err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	if runSync {
		msg := resp.Message
		if msg == "" {
			msg = "Execução concluída."
		}
		fmt.Fprintln(out, styleSuccess.Render(msg))
		if resp.JobID != "" {
			fmt.Fprintln(out, styleLabel.Render("Job ID: ")+styleValue.Render(resp.JobID))
		}
		return nil
	}

	if resp.JobID == "" {
		return fmt.Errorf("server accepted the job but returned no job_id")
	}
	fmt.Fprintln(out, styleSuccess.Render("Job enviado: ")+styleValue.Render(resp.JobID))

	return e.monitorJob(cmd.Context(), out, job{
		ID:        resp.JobID,
		ProcessID: processID,
		Meta: monitor.Metadata{
			Tipo:      string(tipo),
			Operadora: runOperadora,
			Cliente:   runCliente,
			MesAno:    runMesAno,
		},
	})
}
