package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/api"
	"github.com/watchfire-io/jobwatch/internal/config"
	"github.com/watchfire-io/jobwatch/internal/logging"
	"github.com/watchfire-io/jobwatch/internal/models"
	"github.com/watchfire-io/jobwatch/internal/watcher"
)

// appEnv bundles what a command needs to talk to the server.
type appEnv struct {
	settings *models.Settings
	logger   *logrus.Logger
	client   *api.Client
	closers  []func()
}

// newAppEnv loads settings, applies the persistent flags and builds the
// logger and API client. Callers must Close it.
func newAppEnv() (*appEnv, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	applyFlags(settings)

	logPath := settings.Logging.File
	if logPath == "" {
		if logPath, err = config.DiagLogFile(); err != nil {
			return nil, err
		}
	}
	logger, closeLog, err := logging.Setup(logging.Options{
		Level: settings.Logging.Level,
		Path:  logPath,
		Debug: flagDebug,
	})
	if err != nil {
		return nil, err
	}

	e := &appEnv{settings: settings, logger: logger}
	e.closers = append(e.closers, func() { _ = closeLog() })

	e.client = api.NewClient(
		api.WithBaseURL(settings.Server.BaseURL),
		api.WithTimeout(settings.Server.RequestTimeout),
		api.WithLogger(logger),
		api.WithCSRFToken(settings.Server.CSRFToken),
		api.WithSessionCookie(settings.Server.SessionCookie),
	)

	if flagToken == "" && settings.Server.CSRFTokenFile != "" {
		if err := e.watchToken(settings.Server.CSRFTokenFile); err != nil {
			e.Close()
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"base_url": e.client.BaseURL(),
		"plain":    flagPlain,
	}).Debug("environment ready")
	return e, nil
}

// watchToken reads the CSRF token from path and keeps the client in sync
// with later rewrites of the file.
func (e *appEnv) watchToken(path string) error {
	w, err := watcher.New(path, e.client.SetCSRFToken, e.logger)
	if err != nil {
		return fmt.Errorf("failed to watch token file: %w", err)
	}
	token, err := w.Start()
	if err != nil {
		w.Stop()
		return err
	}
	e.client.SetCSRFToken(token)
	e.closers = append(e.closers, w.Stop)
	return nil
}

// Close releases the watcher and the log file.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func applyFlags(s *models.Settings) {
	if flagURL != "" {
		s.Server.BaseURL = flagURL
	}
	if flagToken != "" {
		s.Server.CSRFToken = flagToken
	}
}
