package config

import (
	"os"
	"strings"

	"github.com/watchfire-io/jobwatch/internal/models"
)

// Environment variables that override settings.yaml.
const (
	EnvBaseURL   = "JOBWATCH_URL"
	EnvCSRFToken = "JOBWATCH_CSRF_TOKEN"
	EnvSession   = "JOBWATCH_SESSION"
)

// LoadSettings loads the global settings from ~/.jobwatch/settings.yaml and
// applies environment overrides. If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	s, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	applyEnv(s)
	return s, nil
}

// SaveSettings saves the global settings to ~/.jobwatch/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// ReadTokenFile returns the trimmed contents of a CSRF token file.
func ReadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func applyEnv(s *models.Settings) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.Server.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvCSRFToken); ok {
		s.Server.CSRFToken = v
	}
	if v := os.Getenv(EnvSession); v != "" {
		s.Server.SessionCookie = v
	}
}
