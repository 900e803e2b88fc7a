package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumeimport/internal/errors"
)

// HeadingsWatcher watches the heading alias file and calls reload after
// writes settle.
type HeadingsWatcher struct {
	mu sync.RWMutex

	file        string
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reload func() error
	logger *errors.Logger

	running   bool
	reloads   int
	failures  int
	lastError string
}

// NewHeadingsWatcher creates a watcher for file. reload is run on the watch
// goroutine; a non-nil error means the previous table stays in use.
func NewHeadingsWatcher(file string, debounceDelay time.Duration, reload func() error, logger *errors.Logger) (*HeadingsWatcher, error) {
	if file == "" {
		return nil, fmt.Errorf("headings watcher needs a file")
	}
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.Discard()
	}

	return &HeadingsWatcher{
		file:          filepath.Clean(file),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		reload:        reload,
		logger:        logger,
	}, nil
}

// Start begins watching the headings file for changes
func (hw *HeadingsWatcher) Start() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if hw.running {
		return fmt.Errorf("headings watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	hw.fsWatcher = watcher

	if stat, err := os.Stat(hw.file); err == nil {
		hw.lastModTime = stat.ModTime()
	}

	// Editors and config management replace files by rename, so the
	// directory is what has to be watched.
	dir := filepath.Dir(hw.file)
	if err := hw.fsWatcher.Add(dir); err != nil {
		if closeErr := hw.fsWatcher.Close(); closeErr != nil {
			hw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	hw.running = true
	go hw.watchLoop()

	hw.logger.Info("Headings file watcher started",
		"file", hw.file,
		"debounce_delay", hw.debounceDelay)
	return nil
}

// Stop stops the watcher. Calling it on a stopped watcher is a no-op.
func (hw *HeadingsWatcher) Stop() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if !hw.running {
		return nil
	}

	close(hw.stopChan)
	if hw.debounceTimer != nil {
		hw.debounceTimer.Stop()
	}
	hw.running = false

	if hw.fsWatcher != nil {
		if err := hw.fsWatcher.Close(); err != nil {
			hw.logger.LogError(err, "Failed to close file system watcher")
			return err
		}
	}

	hw.logger.Info("Headings file watcher stopped")
	return nil
}

func (hw *HeadingsWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-hw.fsWatcher.Events:
			if !ok {
				return
			}
			if hw.shouldProcessEvent(event) {
				hw.scheduleReload()
			}

		case err, ok := <-hw.fsWatcher.Errors:
			if !ok {
				return
			}
			hw.logger.LogError(err, "File watcher error")

		case <-hw.reloadChan:
			if hw.hasFileChanged() {
				hw.runReload()
			}

		case <-hw.stopChan:
			return
		}
	}
}

func (hw *HeadingsWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != hw.file {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasFileChanged compares the mod time against the last one seen. A
// missing file is not a change: the old table keeps serving.
func (hw *HeadingsWatcher) hasFileChanged() bool {
	stat, err := os.Stat(hw.file)
	if err != nil {
		return false
	}

	hw.mu.Lock()
	defer hw.mu.Unlock()
	if stat.ModTime().Equal(hw.lastModTime) {
		return false
	}
	hw.lastModTime = stat.ModTime()
	return true
}

func (hw *HeadingsWatcher) runReload() {
	err := hw.reload()

	hw.mu.Lock()
	if err != nil {
		hw.failures++
		hw.lastError = err.Error()
	} else {
		hw.reloads++
		hw.lastError = ""
	}
	hw.mu.Unlock()

	if err != nil {
		hw.logger.LogError(err, "Heading table reload failed, keeping previous table", "file", hw.file)
		return
	}
	hw.logger.Info("Heading table reloaded", "file", hw.file)
}

// scheduleReload schedules a debounced reload
func (hw *HeadingsWatcher) scheduleReload() {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if hw.debounceTimer != nil {
		hw.debounceTimer.Stop()
	}

	hw.debounceTimer = time.AfterFunc(hw.debounceDelay, func() {
		select {
		case hw.reloadChan <- struct{}{}:
		default:
			// already pending
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (hw *HeadingsWatcher) IsRunning() bool {
	hw.mu.RLock()
	defer hw.mu.RUnlock()
	return hw.running
}

// Status reports reload counters for /health and /stats.
func (hw *HeadingsWatcher) Status() map[string]any {
	hw.mu.RLock()
	defer hw.mu.RUnlock()
	status := map[string]any{
		"running":        hw.running,
		"file":           hw.file,
		"debounce_delay": hw.debounceDelay.String(),
		"reloads":        hw.reloads,
		"failures":       hw.failures,
	}
	if hw.lastError != "" {
		status["last_error"] = hw.lastError
	}
	return status
}
