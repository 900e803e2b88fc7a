package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"resumeimport/internal/config"
)

func newTestManager(t *testing.T, cfg *config.Config) (*ObservabilityManager, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	om := &ObservabilityManager{
		config:        ObservabilityConfig{ServiceName: "resumeimport-test", Enabled: true},
		fullConfig:    cfg,
		meterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	require.NoError(t, om.initCustomMetrics())
	return om, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key attribute.Key, value string) int64 {
	t.Helper()

	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestRecordStrategyAttempt(t *testing.T) {
	om, reader := newTestManager(t, nil)
	ctx := context.Background()

	om.RecordStrategyAttempt(ctx, "gemini", false, 20*time.Millisecond)
	om.RecordStrategyAttempt(ctx, "rule-based", true, time.Millisecond)
	om.RecordStrategyAttempt(ctx, "rule-based", true, time.Millisecond)

	data := collect(t, reader)
	attempts := data["resumeimport_strategy_attempts_total"]
	require.NotNil(t, attempts)
	assert.Equal(t, int64(1), sumFor(t, attempts, "strategy", "gemini"))
	assert.Equal(t, int64(2), sumFor(t, attempts, "strategy", "rule-based"))

	hist, ok := data["resumeimport_strategy_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestRecordParse(t *testing.T) {
	om, reader := newTestManager(t, nil)

	om.RecordParse(context.Background(), "rule-based", 1, 65, 5*time.Millisecond)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, data["resumeimport_profiles_parsed_total"], "strategy", "rule-based"))
	assert.Equal(t, int64(1), sumFor(t, data["resumeimport_strategy_fallbacks_total"], "strategy", "rule-based"))

	scores, ok := data["resumeimport_quality_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, scores.DataPoints, 1)
	assert.Equal(t, int64(65), scores.DataPoints[0].Sum)
}

func TestRecordParseRespectsToggles(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.CustomMetrics.BusinessMetrics = config.BusinessMetricsConfig{
		Enabled:            true,
		TrackStrategies:    false,
		TrackQualityScores: false,
	}
	om, reader := newTestManager(t, cfg)
	ctx := context.Background()

	om.RecordParse(ctx, "rule-based", 2, 40, time.Millisecond)
	om.RecordStrategyAttempt(ctx, "rule-based", true, time.Millisecond)

	data := collect(t, reader)
	assert.Contains(t, data, "resumeimport_profiles_parsed_total")
	assert.NotContains(t, data, "resumeimport_strategy_fallbacks_total")
	assert.NotContains(t, data, "resumeimport_quality_score")
	assert.NotContains(t, data, "resumeimport_strategy_attempts_total")
}

func TestInfrastructureMetrics(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.CustomMetrics.Infrastructure = config.InfrastructureMetricsConfig{
		Enabled:             true,
		TrackRateLimits:     false,
		TrackHeadingReloads: true,
	}
	om, reader := newTestManager(t, cfg)
	ctx := context.Background()

	om.RecordHeadingReload(ctx, true)
	om.RecordHeadingReload(ctx, false)
	om.RecordRateLimitHit(ctx, attribute.String("client", "1.2.3.4"))

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, data["resumeimport_heading_reloads_total"], "success", "true"))
	assert.Equal(t, int64(1), sumFor(t, data["resumeimport_heading_reloads_total"], "success", "false"))
	assert.NotContains(t, data, "resumeimport_rate_limit_hits_total")
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *ObservabilityManager
	ctx := context.Background()

	assert.NotPanics(t, func() {
		om.RecordStrategyAttempt(ctx, "rule-based", true, time.Millisecond)
		om.RecordParse(ctx, "rule-based", 0, 10, time.Millisecond)
		om.RecordHeadingReload(ctx, true)
		om.RecordRateLimitHit(ctx)
	})
	assert.NoError(t, om.Shutdown(ctx))

	called := false
	err := om.TrackAI(ctx, "extract_profile", func(context.Context) (*TokenUsage, error) {
		called = true
		return nil, errors.New("boom")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")
}

func TestTrackAIRecordsTokens(t *testing.T) {
	om, reader := newTestManager(t, nil)

	err := om.TrackAI(context.Background(), "extract_profile", func(context.Context) (*TokenUsage, error) {
		return &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
	})
	require.NoError(t, err)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, data["resumeimport_ai_requests_total"], "operation", "extract_profile"))
	assert.NotContains(t, data, "resumeimport_ai_errors_total")

	tokens, ok := data["resumeimport_ai_token_usage_total"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3)
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	om.RecordParse(context.Background(), "rule-based", 0, 10, time.Millisecond)
	assert.NotNil(t, om.GetMetrics())
	assert.NotNil(t, om.HTTPMiddleware())
	assert.NotNil(t, om.Tracer("test"))
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "resumeimport"
	cfg.Observability.SampleRate = 1
	cfg.Observability.Tracing = config.TracingConfig{Enabled: true, SampleRate: 0.25}
	cfg.Observability.Prometheus = config.PrometheusConfig{Enabled: true, Endpoint: "/m", Port: "9999"}

	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, 0.25, got.SampleRate)
	assert.Equal(t, PrometheusConfig{Enabled: true, Endpoint: "/m", Port: "9999"}, got.Prometheus)

	cfg.Observability.Tracing.Enabled = false
	assert.Equal(t, 0.0, GetObservabilityConfig(cfg, "").SampleRate)

	fallback := GetObservabilityConfig(nil, "dev")
	assert.False(t, fallback.Enabled)
	assert.Equal(t, "resumeimport", fallback.ServiceName)
}
