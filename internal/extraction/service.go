package extraction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeimport/internal/errors"
	"resumeimport/internal/parser"
	"resumeimport/internal/quality"
	"resumeimport/internal/types"
)

// Request is one document to parse.
type Request struct {
	RequestID      string
	Source         string
	Text           string
	JobDescription string
	DisableAI      bool
}

// ParseRecorder receives one event per completed parse.
type ParseRecorder interface {
	RecordParse(ctx context.Context, strategy string, fallbacks, score int, duration time.Duration)
}

// Service parses documents through a Chain and scores the result.
type Service struct {
	chain    *Chain
	logger   *errors.Logger
	recorder ParseRecorder
}

func NewService(chain *Chain, logger *errors.Logger) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Service{chain: chain, logger: logger}
}

// Parse never fails; a document nothing can make sense of yields a sparse
// profile and a low score.
func (s *Service) Parse(ctx context.Context, req Request) types.ParseResult {
	ctx, span := otel.Tracer("resumeimport.extraction").Start(ctx, "parse.run")
	defer span.End()

	chain := s.chain
	if req.DisableAI {
		chain = chain.RuleBasedOnly()
	}

	start := time.Now()
	outcome := chain.Extract(ctx, req.Text)
	analysis := quality.Analyze(outcome.Profile, parser.Normalize(req.Text), req.JobDescription)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("request.id", req.RequestID),
		attribute.String("strategy", outcome.Strategy),
		attribute.Int("fallbacks", outcome.Fallbacks),
		attribute.Int("quality.score", analysis.Score),
	)
	if s.recorder != nil {
		s.recorder.RecordParse(ctx, outcome.Strategy, outcome.Fallbacks, analysis.Score, elapsed)
	}

	s.logger.Info("document parsed",
		"request_id", req.RequestID,
		"source", req.Source,
		"strategy", outcome.Strategy,
		"fallbacks", outcome.Fallbacks,
		"score", analysis.Score,
		"experience_entries", len(outcome.Profile.Experience),
		"education_entries", len(outcome.Profile.Education))

	return types.ParseResult{
		RequestID: req.RequestID,
		Source:    req.Source,
		Strategy:  outcome.Strategy,
		Profile:   outcome.Profile,
		Analysis:  analysis,
	}
}

// SetRecorder installs r to receive parse events. Call before serving.
func (s *Service) SetRecorder(r ParseRecorder) {
	s.recorder = r
}

// Score parses text with the rule-based strategy only and returns its analysis.
func (s *Service) Score(_ context.Context, text, jobDescription string) types.QualityAnalysis {
	profile := s.chain.Fallback().Extract(text)
	return quality.Analyze(profile, parser.Normalize(text), jobDescription)
}

// Segment shows how the rule-based parser splits text into sections.
func (s *Service) Segment(text string) types.SegmentResult {
	return s.chain.Fallback().Parser().Segment(text)
}

func (s *Service) Chain() *Chain {
	return s.chain
}
