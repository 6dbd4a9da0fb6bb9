// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global jobwatch directory.
	GlobalDirName = ".jobwatch"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	DiagLogFileName  = "jobwatch.log"
)

// GlobalDir returns the path to the global jobwatch directory (~/.jobwatch/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// DiagLogFile returns the path of the diagnostic log written by the logging package.
func DiagLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DiagLogFileName), nil
}

// TranscriptDir returns the directory that holds transcripts for one processo.
func TranscriptDir(processID string) (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sanitizeName(processID)), nil
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// sanitizeName keeps identifiers safe to use as a single path element.
func sanitizeName(s string) string {
	if s == "" {
		return "_"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if string(out) == "." || string(out) == ".." {
		return "_"
	}
	return string(out)
}
