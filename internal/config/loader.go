package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML loads a YAML file into the provided struct.
func LoadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	return nil
}

// SaveYAML saves a struct to a YAML file, creating parent directories.
func SaveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Settings may carry a session cookie.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// defaulter is implemented by config structs that can fill their own zero values.
type defaulter interface {
	ApplyDefaults()
}

// LoadYAMLOrDefault loads a YAML file, or returns default if file doesn't exist.
// Partially filled files are completed through ApplyDefaults when T supports it.
func LoadYAMLOrDefault[T any](path string, defaultFn func() *T) (*T, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return defaultFn(), nil
	}

	var v T
	if err := LoadYAML(path, &v); err != nil {
		return nil, err
	}
	if d, ok := any(&v).(defaulter); ok {
		d.ApplyDefaults()
	}
	return &v, nil
}
