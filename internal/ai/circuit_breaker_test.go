package ai

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"resumeimport/internal/config"
	appErrors "resumeimport/internal/errors"
)

func breakerConfig(enabled bool) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          enabled,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
}

func TestCircuitBreakerConfigurationMapping(t *testing.T) {
	cb := NewGenerateBreaker("Test", breakerConfig(true), nil)
	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.Stats()
	if name, _ := stats["name"].(string); name != "AI-Test" {
		t.Errorf("Expected circuit breaker name 'AI-Test', got %v", stats["name"])
	}
	if stats["state"] != "closed" {
		t.Errorf("Expected closed breaker, got %v", stats["state"])
	}

	if model := NewModelBreaker("Test", breakerConfig(true), nil); model.Stats()["name"] != "AI-Model-Test" {
		t.Errorf("Unexpected model breaker name %v", model.Stats()["name"])
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewGenerateBreaker("Disabled", breakerConfig(false), nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// a nil breaker passes calls straight through
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err != nil || !called {
		t.Fatalf("Expected direct call, got called=%v err=%v", called, err)
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should report healthy")
	}
	if cb.Stats()["enabled"] != false {
		t.Error("Nil breaker should report disabled")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewGenerateBreaker("Trip", breakerConfig(true), nil)
	boom := errors.New("boom")

	for range 2 {
		_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("Expected the call error while closed, got %v", err)
		}
	}

	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return nil, nil
	})
	if calls != 0 {
		t.Error("Open breaker must not run the call")
	}
	if !appErrors.HasCode(err, appErrors.ErrCodeCircuitOpen) {
		t.Errorf("Expected CIRCUIT_OPEN, got %v", err)
	}
	if cb.IsHealthy() {
		t.Error("Open breaker should report unhealthy")
	}
}
