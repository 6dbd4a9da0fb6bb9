package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/jobwatch/internal/config"
	"github.com/watchfire-io/jobwatch/internal/models"
)

var settingsForce bool

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show the effective settings",
	Long: `Show the settings in effect after applying ~/.jobwatch/settings.yaml,
the JOBWATCH_* environment variables and command-line flags. Secrets are
masked.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Args:  cobra.NoArgs,
	RunE:  runSettingsInit,
}

func init() {
	settingsInitCmd.Flags().BoolVar(&settingsForce, "force", false, "overwrite an existing settings file")
	settingsCmd.AddCommand(settingsInitCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	applyFlags(settings)

	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := path
	if !config.FileExists(path) {
		source = path + " (not found, using defaults)"
	}
	fmt.Fprintln(out, styleLabel.Render("# "+source))

	data, err := yaml.Marshal(masked(settings))
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runSettingsInit(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	if config.FileExists(path) && !settingsForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveSettings(models.NewSettings()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Settings written to ")+styleValue.Render(path))
	return nil
}

// masked returns a copy of s with secrets replaced.
func masked(s *models.Settings) *models.Settings {
	c := *s
	c.Server.CSRFToken = maskSecret(c.Server.CSRFToken)
	c.Server.SessionCookie = maskSecret(c.Server.SessionCookie)
	return &c
}

func maskSecret(v string) string {
	switch {
	case v == "":
		return ""
	case len(v) <= 4:
		return "****"
	default:
		return v[:2] + "****" + v[len(v)-2:]
	}
}
