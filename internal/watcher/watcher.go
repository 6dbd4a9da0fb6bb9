// Package watcher reloads the CSRF token when its file changes on disk.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/watchfire-io/jobwatch/internal/config"
)

const debounceDelay = 100 * time.Millisecond

// TokenWatcher watches a token file and reports each new value.
type TokenWatcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	onChange  func(token string)
	logger    logrus.FieldLogger
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	debounceMu sync.Mutex
	timer      *time.Timer
	last       string
}

// New creates a watcher for path. onChange runs on a watcher goroutine.
func New(path string, onChange func(token string), logger logrus.FieldLogger) (*TokenWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &TokenWatcher{
		path:      abs,
		fsWatcher: fsWatcher,
		onChange:  onChange,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// Start reads the current token and begins watching. The parent directory is
// watched so that atomic replace (write tmp, rename) is seen.
func (w *TokenWatcher) Start() (string, error) {
	token, err := config.ReadTokenFile(w.path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	w.last = token

	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return "", fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.processEvents()
	return token, nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *TokenWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()
		w.wg.Wait()
		w.debounceMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *TokenWatcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("token watcher error")
		}
	}
}

func (w *TokenWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.reload)
}

func (w *TokenWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	token, err := config.ReadTokenFile(w.path)
	if err != nil {
		// Mid-rename; the following Create event reloads.
		w.logger.WithError(err).Debug("token file not readable")
		return
	}

	w.debounceMu.Lock()
	changed := token != w.last
	w.last = token
	w.debounceMu.Unlock()

	if changed {
		w.logger.WithField("path", w.path).Info("csrf token reloaded")
		w.onChange(token)
	}
}
