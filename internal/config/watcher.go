package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan Config
	errors  chan error

	// Debouncing
	debounceDelay time.Duration
	timer         *time.Timer
	timerMu       sync.Mutex
	closed        bool

	// Lifecycle
	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	runningMu sync.Mutex
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:          filepath.Clean(path),
		changes:       make(chan Config, 1),
		errors:        make(chan error, 1),
		debounceDelay: 100 * time.Millisecond,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file so that editors replacing the file by rename are still seen.
func (w *Watcher) Start() error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	if w.running {
		return nil
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	w.running = true
	go w.watchLoop()

	return nil
}

// Stop terminates the watcher and closes the Changes and Errors channels.
func (w *Watcher) Stop() {
	w.runningMu.Lock()
	if !w.running {
		w.runningMu.Unlock()
		return
	}
	w.running = false
	w.runningMu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	w.watcher.Close()

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.closed = true
	close(w.changes)
	close(w.errors)
	w.timerMu.Unlock()
}

// Changes delivers the latest valid config after each change.
// Only the newest pending config is kept.
func (w *Watcher) Changes() <-chan Config {
	return w.changes
}

// Errors delivers load failures. Invalid files never reach Changes.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) watchLoop() {
	defer close(w.stoppedCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.debounce()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) debounce() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadOrDefault(w.path)

	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.closed {
		return
	}

	if err != nil {
		w.sendErrorLocked(err)
		return
	}

	// Replace a stale pending config with the newest one.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
	default:
	}
}

func (w *Watcher) sendError(err error) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.closed {
		return
	}
	w.sendErrorLocked(err)
}

func (w *Watcher) sendErrorLocked(err error) {
	select {
	case w.errors <- err:
	default:
		// Channel full, drop error
	}
}
