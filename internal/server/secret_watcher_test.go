package server

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockKeySource is a mock implementation for testing
type mockKeySource struct {
	mu      sync.Mutex
	keys    []string
	version int64
	err     error
}

func (m *mockKeySource) APIKeys() ([]string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.keys, m.version, nil
}

func (m *mockKeySource) set(keys []string, version int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys, m.version, m.err = keys, version, err
}

func TestSecretWatcherPollRotatesOnNewVersion(t *testing.T) {
	source := &mockKeySource{keys: []string{"old"}, version: 1}

	var got []string
	calls := 0
	sw := NewSecretWatcher(source, time.Minute, func(keys []string) {
		calls++
		got = keys
	}, nil)

	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	// Same version as at startup: nothing to do.
	if sw.poll() {
		t.Errorf("poll reported a rotation for an unchanged version")
	}
	if calls != 0 {
		t.Errorf("callback called %d times, want 0", calls)
	}

	source.set([]string{"new-a", "new-b"}, 2, nil)
	if !sw.poll() {
		t.Fatalf("poll did not detect version 2")
	}
	if calls != 1 || len(got) != 2 || got[0] != "new-a" {
		t.Errorf("callback got %v after %d calls", got, calls)
	}

	status := sw.Status()
	if status["last_version"] != int64(2) {
		t.Errorf("last_version = %v, want 2", status["last_version"])
	}
	if status["rotations"] != 1 {
		t.Errorf("rotations = %v, want 1", status["rotations"])
	}
}

func TestSecretWatcherKeepsKeysOnError(t *testing.T) {
	source := &mockKeySource{keys: []string{"k"}, version: 3}
	calls := 0
	sw := NewSecretWatcher(source, time.Minute, func([]string) { calls++ }, nil)
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	source.set(nil, 0, fmt.Errorf("vault sealed"))
	if sw.poll() {
		t.Errorf("poll reported a rotation on error")
	}
	if calls != 0 {
		t.Errorf("callback should not run on error")
	}
	if sw.Status()["last_error"] != "vault sealed" {
		t.Errorf("last_error = %v", sw.Status()["last_error"])
	}
}

func TestSecretWatcherStartStop(t *testing.T) {
	sw := NewSecretWatcher(&mockKeySource{}, 0, func([]string) {}, nil)

	if sw.pollInterval != time.Minute {
		t.Errorf("default poll interval = %v, want 1m", sw.pollInterval)
	}
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sw.Start(); err == nil {
		t.Errorf("second Start should fail")
	}
	if err := sw.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := sw.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if sw.Status()["running"] != false {
		t.Errorf("watcher still reports running")
	}
}

func TestServerRotatesAPIKeys(t *testing.T) {
	srv := NewServer(nil, ServerConfig{APIKeys: []string{"old"}}, Dependencies{}, nil)
	source := &mockKeySource{keys: []string{"old"}, version: 1}
	sw := NewSecretWatcher(source, time.Minute, srv.SetAPIKeys, nil)
	if err := sw.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	source.set([]string{"new"}, 2, nil)
	sw.poll()

	if srv.validAPIKey("old") {
		t.Errorf("old key still accepted after rotation")
	}
	if !srv.validAPIKey("new") {
		t.Errorf("new key not accepted after rotation")
	}
}
