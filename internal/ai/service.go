package ai

import (
	"context"
	"fmt"

	"resumeimport/internal/config"
	"resumeimport/internal/errors"
	"resumeimport/internal/extraction"
	"resumeimport/internal/types"
)

// Service adapts an AIProvider to the extraction chain. Every failure is
// logged and reported as "no profile" so the chain falls back.
type Service struct {
	Provider AIProvider
	name     string
	tracker  Tracker
	logger   *errors.Logger
}

var _ extraction.Strategy = (*Service)(nil)

// NewService creates the provider named by cfg.Provider.
func NewService(cfg *config.OperationAIConfig, logger *errors.Logger) (*Service, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"max_input_chars", cfg.MaxInputChars)

	var provider AIProvider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	return NewServiceWithProvider(cfg.Provider, provider, logger), nil
}

// NewServiceWithProvider wraps an existing provider under the given strategy name.
func NewServiceWithProvider(name string, provider AIProvider, logger *errors.Logger) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Service{Provider: provider, name: name, logger: logger}
}

// SetTracker installs a hook around every model call.
func (s *Service) SetTracker(t Tracker) {
	s.tracker = t
}

func (s *Service) Name() string {
	return s.name
}

// TryExtract runs the provider and accepts its profile only if it carries
// at least a name or one experience, education or project entry.
func (s *Service) TryExtract(ctx context.Context, text string) (types.ParsedProfile, bool) {
	var profile types.ParsedProfile

	call := func(ctx context.Context) (*TokenUsage, error) {
		p, usage, err := s.Provider.ExtractProfile(ctx, text)
		if err != nil {
			return usage, err
		}
		profile = p
		return usage, nil
	}

	var err error
	if s.tracker != nil {
		err = s.tracker(ctx, extractOperation, call)
	} else {
		_, err = call(ctx)
	}

	if err != nil {
		s.logger.LogError(err, "AI profile extraction failed", "strategy", s.name)
		return types.ParsedProfile{}, false
	}
	if !usable(profile) {
		s.logger.Warn("AI profile extraction returned an empty profile", "strategy", s.name)
		return types.ParsedProfile{}, false
	}
	return profile, true
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Stats reports breaker state when the provider exposes it.
func (s *Service) Stats() map[string]any {
	if statser, ok := s.Provider.(interface{ GetCircuitBreakerStats() map[string]any }); ok {
		return statser.GetCircuitBreakerStats()
	}
	return map[string]any{}
}

func (s *Service) Close() error {
	return s.Provider.Close()
}

func usable(p types.ParsedProfile) bool {
	return p.PersonalInfo.FullName != "" ||
		len(p.Experience) > 0 ||
		len(p.Education) > 0 ||
		len(p.Projects) > 0
}
