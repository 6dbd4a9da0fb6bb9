package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/jobwatch/internal/api"
)

var payloadTipo string

var payloadCmd = &cobra.Command{
	Use:   "payload <processo-id>",
	Short: "Show the payload a job for the processo would receive",
	Args:  cobra.ExactArgs(1),
	RunE:  runPayload,
}

func init() {
	payloadCmd.Flags().StringVar(&payloadTipo, "tipo", "", "job type: rpa or sat (default from settings)")
}

func runPayload(cmd *cobra.Command, args []string) error {
	e, err := newAppEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	tipoFlag := payloadTipo
	if tipoFlag == "" {
		tipoFlag = e.settings.Submit.Tipo
	}
	tipo, err := api.ParseTipo(tipoFlag)
	if err != nil {
		return err
	}

	raw, err := e.client.Payload(cmd.Context(), args[0], tipo)
	if err != nil {
		return fmt.Errorf("failed to get payload: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), indentJSON(raw))
	return nil
}
