package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom metrics for resumeimport
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Parse metrics
	ProfilesParsed    metric.Int64Counter
	StrategyAttempts  metric.Int64Counter
	StrategyDuration  metric.Float64Histogram
	StrategyFallbacks metric.Int64Counter
	ParseDuration     metric.Float64Histogram
	QualityScore      metric.Int64Histogram

	// Infrastructure metrics
	RateLimitHits  metric.Int64Counter
	HeadingReloads metric.Int64Counter
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// initCustomMetrics creates all custom metrics on the manager's meter provider
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createAIMetrics(meter); err != nil {
		return err
	}
	if err := om.createParseMetrics(meter); err != nil {
		return err
	}
	return om.createInfrastructureMetrics(meter)
}

func (om *ObservabilityManager) createAIMetrics(meter metric.Meter) error {
	var err error

	om.metrics.AIProcessingTime, err = meter.Float64Histogram(
		"resumeimport_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	om.metrics.AIRequestCount, err = meter.Int64Counter(
		"resumeimport_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	om.metrics.AIErrorCount, err = meter.Int64Counter(
		"resumeimport_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	om.metrics.AITokenUsage, err = meter.Int64Histogram(
		"resumeimport_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createParseMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ProfilesParsed, err = meter.Int64Counter(
		"resumeimport_profiles_parsed_total",
		metric.WithDescription("Total number of resumes parsed, by winning strategy"),
	)
	if err != nil {
		return fmt.Errorf("failed to create profiles parsed metric: %w", err)
	}

	om.metrics.StrategyAttempts, err = meter.Int64Counter(
		"resumeimport_strategy_attempts_total",
		metric.WithDescription("Extraction strategy attempts, by strategy and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create strategy attempts metric: %w", err)
	}

	om.metrics.StrategyDuration, err = meter.Float64Histogram(
		"resumeimport_strategy_duration_seconds",
		metric.WithDescription("Time spent in a single extraction strategy"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create strategy duration metric: %w", err)
	}

	om.metrics.StrategyFallbacks, err = meter.Int64Counter(
		"resumeimport_strategy_fallbacks_total",
		metric.WithDescription("Strategies skipped over before one produced a profile"),
	)
	if err != nil {
		return fmt.Errorf("failed to create strategy fallbacks metric: %w", err)
	}

	om.metrics.ParseDuration, err = meter.Float64Histogram(
		"resumeimport_parse_duration_seconds",
		metric.WithDescription("End to end parse time including quality analysis"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create parse duration metric: %w", err)
	}

	om.metrics.QualityScore, err = meter.Int64Histogram(
		"resumeimport_quality_score",
		metric.WithDescription("Completeness score of parsed profiles (0-100)"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create quality score metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"resumeimport_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	om.metrics.HeadingReloads, err = meter.Int64Counter(
		"resumeimport_heading_reloads_total",
		metric.WithDescription("Heading alias file reloads, by outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create heading reloads metric: %w", err)
	}

	return nil
}

// RecordStrategyAttempt records one extraction strategy attempt. It is safe
// on a nil or disabled manager.
func (om *ObservabilityManager) RecordStrategyAttempt(ctx context.Context, strategy string, success bool, duration time.Duration) {
	if !om.businessEnabled(func(c businessToggles) bool { return c.strategies }) {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.Bool("success", success),
	)
	om.metrics.StrategyAttempts.Add(ctx, 1, attrs)
	om.metrics.StrategyDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordParse records a completed parse: the strategy that produced the
// profile, how many strategies fell through before it, and the score.
func (om *ObservabilityManager) RecordParse(ctx context.Context, strategy string, fallbacks, score int, duration time.Duration) {
	if !om.businessEnabled(nil) {
		return
	}
	strategyAttr := metric.WithAttributes(attribute.String("strategy", strategy))

	om.metrics.ProfilesParsed.Add(ctx, 1, strategyAttr)
	om.metrics.ParseDuration.Record(ctx, duration.Seconds(), strategyAttr)
	if fallbacks > 0 && om.businessEnabled(func(c businessToggles) bool { return c.strategies }) {
		om.metrics.StrategyFallbacks.Add(ctx, int64(fallbacks), strategyAttr)
	}
	if om.businessEnabled(func(c businessToggles) bool { return c.qualityScores }) {
		om.metrics.QualityScore.Record(ctx, int64(score), strategyAttr)
	}
}

// RecordRateLimitHit counts a rejected request.
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, attrs ...attribute.KeyValue) {
	if !om.infrastructureEnabled(func(c infraToggles) bool { return c.rateLimits }) {
		return
	}
	om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHeadingReload counts a heading alias file reload.
func (om *ObservabilityManager) RecordHeadingReload(ctx context.Context, success bool) {
	if !om.infrastructureEnabled(func(c infraToggles) bool { return c.headingReloads }) {
		return
	}
	om.metrics.HeadingReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

type businessToggles struct {
	strategies    bool
	qualityScores bool
}

type infraToggles struct {
	rateLimits     bool
	headingReloads bool
}

func (om *ObservabilityManager) ready() bool {
	return om != nil && om.config.Enabled && om.metrics != nil && om.metrics.ProfilesParsed != nil
}

// businessEnabled reports whether parse metrics are on. A nil config
// records everything.
func (om *ObservabilityManager) businessEnabled(toggle func(businessToggles) bool) bool {
	if !om.ready() {
		return false
	}
	if om.fullConfig == nil {
		return true
	}
	b := om.fullConfig.Observability.CustomMetrics.BusinessMetrics
	if !b.Enabled {
		return false
	}
	return toggle == nil || toggle(businessToggles{strategies: b.TrackStrategies, qualityScores: b.TrackQualityScores})
}

func (om *ObservabilityManager) infrastructureEnabled(toggle func(infraToggles) bool) bool {
	if !om.ready() {
		return false
	}
	if om.fullConfig == nil {
		return true
	}
	i := om.fullConfig.Observability.CustomMetrics.Infrastructure
	if !i.Enabled {
		return false
	}
	return toggle(infraToggles{rateLimits: i.TrackRateLimits, headingReloads: i.TrackHeadingReloads})
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult, om *ObservabilityManager) error {
	if m == nil || m.AIProcessingTime == nil {
		// Metrics not initialized, just run the function
		result := fn(ctx)
		if result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("resumeimport.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if m.isAIMetricsEnabled(om) {
		m.recordAIMetrics(ctx, operation, err, duration, result, om, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

// TrackAI adapts TrackAIOperationWithTokens to a call returning usage and
// error separately. It runs call directly on a nil or disabled manager.
func (om *ObservabilityManager) TrackAI(ctx context.Context, operation string, call func(context.Context) (*TokenUsage, error)) error {
	return om.GetMetrics().TrackAIOperationWithTokens(ctx, operation, func(ctx context.Context) *AIOperationResult {
		usage, err := call(ctx)
		return &AIOperationResult{Error: err, TokenUsage: usage}
	}, om)
}

func (m *Metrics) isAIMetricsEnabled(om *ObservabilityManager) bool {
	if om == nil || om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.AIOperations.Enabled
}

func (m *Metrics) recordAIMetrics(ctx context.Context, operation string, err error, duration float64, result *AIOperationResult, om *ObservabilityManager, span oteltrace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if om == nil || om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.recordTokenUsage(ctx, result, attrs, om, span)
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	span.SetAttributes(attrs...)
}

// recordTokenUsage records token usage metrics and span attributes
func (m *Metrics) recordTokenUsage(ctx context.Context, result *AIOperationResult, attrs []attribute.KeyValue, om *ObservabilityManager, span oteltrace.Span) {
	if result == nil || result.TokenUsage == nil || m.AITokenUsage == nil {
		return
	}

	if om == nil || om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage {
		usage := result.TokenUsage
		for _, tt := range []struct {
			tokenType string
			value     int64
		}{
			{"input", usage.InputTokens},
			{"output", usage.OutputTokens},
			{"total", usage.TotalTokens},
		} {
			tokenAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("token_type", tt.tokenType))
			m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
		}
	}

	// Always on the span, for debugging
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
		attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
		attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
	)
}
