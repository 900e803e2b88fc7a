package ai

import (
	"context"

	"resumeimport/internal/types"
)

// AIProvider extracts profiles with a hosted model. Token usage may be nil
// when the provider does not report it.
type AIProvider interface {
	ExtractProfile(ctx context.Context, text string) (types.ParsedProfile, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Tracker wraps each model call, typically to record metrics. It must call
// call exactly once and return its error.
type Tracker func(ctx context.Context, operation string, call func(ctx context.Context) (*TokenUsage, error)) error
