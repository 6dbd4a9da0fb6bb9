// Package logging configures the diagnostic logger. The terminal belongs to the
// TUI, so diagnostics go to a file under ~/.jobwatch/logs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls logger construction.
type Options struct {
	Level string // debug, info, warn, error
	Path  string // empty disables file output
	Debug bool   // forces debug level
}

// Setup builds a logger from opts. The returned close function flushes and
// closes the log file, if any.
func Setup(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if opts.Path == "" {
		logger.SetOutput(io.Discard)
		return logger, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.Path, err)
	}
	logger.SetOutput(f)
	return logger, f.Close, nil
}

// ParseLevel maps a settings level to a logrus level. Empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return logrus.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Discard returns a logger that drops everything. Used by tests and by
// callers that were not given a logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
