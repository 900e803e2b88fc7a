package extraction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeimport/internal/errors"
	"resumeimport/internal/types"
)

// Recorder receives one event per strategy attempt.
type Recorder interface {
	RecordStrategyAttempt(ctx context.Context, strategy string, success bool, duration time.Duration)
}

// Outcome is the profile a chain produced and which strategy produced it.
type Outcome struct {
	Profile  types.ParsedProfile
	Strategy string
	// Fallbacks counts optional strategies that were tried and gave nothing.
	Fallbacks int
}

// Chain tries optional strategies in order and falls back to the rule-based one.
type Chain struct {
	optional []Strategy
	fallback *RuleBased
	recorder Recorder
	logger   *errors.Logger
}

type ChainOption func(*Chain)

// WithStrategies prepends optional strategies, tried in the given order.
func WithStrategies(strategies ...Strategy) ChainOption {
	return func(c *Chain) {
		for _, s := range strategies {
			if s != nil {
				c.optional = append(c.optional, s)
			}
		}
	}
}

func WithRecorder(r Recorder) ChainOption {
	return func(c *Chain) { c.recorder = r }
}

func WithLogger(l *errors.Logger) ChainOption {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewChain(fallback *RuleBased, opts ...ChainOption) *Chain {
	if fallback == nil {
		fallback = NewRuleBased(nil)
	}
	c := &Chain{fallback: fallback, logger: errors.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RuleBasedOnly returns a chain sharing this one's fallback but with no optional strategies.
func (c *Chain) RuleBasedOnly() *Chain {
	return &Chain{fallback: c.fallback, recorder: c.recorder, logger: c.logger}
}

// Strategies lists the strategy names in the order they are tried.
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.optional)+1)
	for _, s := range c.optional {
		names = append(names, s.Name())
	}
	return append(names, c.fallback.Name())
}

func (c *Chain) Fallback() *RuleBased {
	return c.fallback
}

// Extract returns the first successful strategy's profile. The rule-based
// strategy is always last, so an outcome is always produced.
func (c *Chain) Extract(ctx context.Context, text string) Outcome {
	var fallbacks int
	for _, s := range c.optional {
		if ctx.Err() != nil {
			c.logger.Warn("context done, skipping remaining strategies", "strategy", s.Name())
			break
		}
		if profile, ok := c.attempt(ctx, s, text); ok {
			profile.EnsureCollections()
			return Outcome{Profile: profile, Strategy: s.Name(), Fallbacks: fallbacks}
		}
		fallbacks++
		c.logger.Warn("extraction strategy produced no profile, falling back", "strategy", s.Name())
	}

	profile, _ := c.attempt(ctx, c.fallback, text)
	return Outcome{Profile: profile, Strategy: c.fallback.Name(), Fallbacks: fallbacks}
}

func (c *Chain) attempt(ctx context.Context, s Strategy, text string) (types.ParsedProfile, bool) {
	ctx, span := otel.Tracer("resumeimport.extraction").Start(ctx, "parse.strategy."+s.Name())
	defer span.End()

	start := time.Now()
	profile, ok := s.TryExtract(ctx, text)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("strategy", s.Name()),
		attribute.Bool("success", ok),
		attribute.Int("input.chars", len(text)),
	)
	if c.recorder != nil {
		c.recorder.RecordStrategyAttempt(ctx, s.Name(), ok, elapsed)
	}
	c.logger.Debug("extraction strategy finished", "strategy", s.Name(), "success", ok, "duration_ms", elapsed.Milliseconds())
	return profile, ok
}
