package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterManagerAllow(t *testing.T) {
	m := NewRateLimiter(60, 2, nil)
	defer m.Close()

	assert.True(t, m.Allow("ip:a"))
	assert.True(t, m.Allow("ip:a"))
	assert.False(t, m.Allow("ip:a"), "burst exhausted")
	assert.True(t, m.Allow("ip:b"))

	stats := m.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.Equal(t, 2, stats["burst_capacity"])
	assert.InDelta(t, 60.0, stats["rate_per_minute"], 0.001)
}

func TestLimiterManagerCleanup(t *testing.T) {
	m := NewRateLimiter(60, 1, nil)
	defer m.Close()

	m.Allow("ip:old")
	m.mu.Lock()
	m.lastSeen["ip:old"] = time.Now().Add(-time.Hour)
	m.mu.Unlock()
	m.Allow("ip:new")

	m.cleanup(time.Minute)
	assert.Equal(t, 1, m.GetStats()["active_limiters"])
}

func TestLimiterManagerCloseTwice(t *testing.T) {
	m := NewRateLimiter(60, 0, nil)
	assert.Equal(t, 1, m.burst, "zero burst would reject everything")
	assert.NotPanics(t, func() {
		m.Close()
		m.Close()
	})
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/parse", nil)
	req.RemoteAddr = "192.0.2.7:1234"

	assert.Equal(t, "", getRateLimitKey(req, false, false))
	assert.Equal(t, "ip:192.0.2.7", getRateLimitKey(req, true, true), "no key falls back to IP")

	req.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, "api:tok", getRateLimitKey(req, true, true))
	assert.Equal(t, "ip:192.0.2.7", getRateLimitKey(req, false, true))
}
