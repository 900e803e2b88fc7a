package server

import (
	"fmt"
	"sync"
	"time"

	"resumeimport/internal/errors"
)

// APIKeySource returns the current API keys and the secret version they came from.
type APIKeySource interface {
	APIKeys() ([]string, int64, error)
}

// APIKeysCallback receives a freshly rotated key set.
type APIKeysCallback func(keys []string)

// SecretWatcher polls the API key secret and hands newer versions to its
// callback. There is no lease renewal; the version number drives reloads.
type SecretWatcher struct {
	mu sync.RWMutex

	source       APIKeySource
	pollInterval time.Duration
	onRotate     APIKeysCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	rotations   int
	lastError   string
}

// NewSecretWatcher creates a watcher; pollInterval defaults to one minute.
func NewSecretWatcher(source APIKeySource, pollInterval time.Duration, onRotate APIKeysCallback, logger *errors.Logger) *SecretWatcher {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if logger == nil {
		logger = errors.Discard()
	}
	return &SecretWatcher{
		source:       source,
		pollInterval: pollInterval,
		onRotate:     onRotate,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start records the current secret version and begins polling.
func (sw *SecretWatcher) Start() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		return fmt.Errorf("secret watcher is already running")
	}

	// Keys loaded at startup already reflect this version.
	if _, version, err := sw.source.APIKeys(); err == nil {
		sw.lastVersion = version
	} else {
		sw.logger.Warn("Initial API key secret read failed", "error", err)
	}

	sw.running = true
	go sw.pollLoop()
	sw.logger.Info("API key secret watcher started",
		"poll_interval", sw.pollInterval,
		"version", sw.lastVersion)
	return nil
}

// Stop stops polling. Calling it on a stopped watcher is a no-op.
func (sw *SecretWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if !sw.running {
		return nil
	}
	close(sw.stopChan)
	sw.running = false
	sw.logger.Info("API key secret watcher stopped")
	return nil
}

func (sw *SecretWatcher) pollLoop() {
	ticker := time.NewTicker(sw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sw.poll()
		case <-sw.stopChan:
			return
		}
	}
}

// poll fetches the secret once and fires the callback when its version grew.
func (sw *SecretWatcher) poll() bool {
	keys, version, err := sw.source.APIKeys()

	sw.mu.Lock()
	if err != nil {
		sw.lastError = err.Error()
		sw.mu.Unlock()
		sw.logger.LogError(err, "Failed to check API key secret for updates")
		return false
	}
	sw.lastError = ""
	if version <= sw.lastVersion {
		sw.mu.Unlock()
		return false
	}
	previous := sw.lastVersion
	sw.lastVersion = version
	sw.rotations++
	sw.mu.Unlock()

	sw.logger.Info("API key secret rotated",
		"previous_version", previous,
		"version", version,
		"keys", len(keys))
	sw.onRotate(keys)
	return true
}

// Status returns the current status of the SecretWatcher for health reporting
func (sw *SecretWatcher) Status() map[string]any {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	status := map[string]any{
		"running":       sw.running,
		"poll_interval": sw.pollInterval.String(),
		"last_version":  sw.lastVersion,
		"rotations":     sw.rotations,
	}
	if sw.lastError != "" {
		status["last_error"] = sw.lastError
	}
	return status
}
