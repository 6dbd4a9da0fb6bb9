// Package cli implements the jobwatch CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

// Persistent flags; each overrides settings.yaml and the environment.
var (
	flagURL   string
	flagToken string
	flagPlain bool
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Submit and monitor automation jobs",
	Long: `Jobwatch submits RPA/SAT jobs for a processo and follows them live.

Logs are pushed over server-sent events while the status is polled every
few seconds. The interactive monitor needs a terminal; use --plain to
print lines instead.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagURL, "url", "", "API base URL")
	pf.StringVar(&flagToken, "token", "", "CSRF token sent as X-CSRFToken")
	pf.BoolVar(&flagPlain, "plain", false, "print monitor output as plain lines")
	pf.BoolVar(&flagDebug, "debug", false, "write debug diagnostics to the log file")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(payloadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(watchCmd)
}
