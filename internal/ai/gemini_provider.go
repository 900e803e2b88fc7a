package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"resumeimport/internal/config"
	appErrors "resumeimport/internal/errors"
	"resumeimport/internal/types"
)

const extractOperation = "extract_profile"

// modelsAPI is the part of genai.Models the provider calls.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	models         modelsAPI
	config         *config.OperationAIConfig
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	logger         *appErrors.Logger

	// modelCheckTimeout caps GetModelInfo when the caller's ctx has no
	// tighter deadline.
	modelCheckTimeout time.Duration
	// retryBase is the first backoff step; later steps double it.
	retryBase time.Duration
}

var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini client for profile extraction.
func NewGeminiProvider(cfg *config.OperationAIConfig, logger *appErrors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey, "Gemini API key is not set", nil)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
	})
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return newGeminiProvider(client.Models, cfg, logger), nil
}

func newGeminiProvider(models modelsAPI, cfg *config.OperationAIConfig, logger *appErrors.Logger) *GeminiProvider {
	if logger == nil {
		logger = appErrors.Discard()
	}
	return &GeminiProvider{
		models:            models,
		config:            cfg,
		circuitBreaker:    NewGenerateBreaker(extractOperation, cfg, logger),
		modelBreaker:      NewModelBreaker(extractOperation, cfg, logger),
		logger:            logger,
		modelCheckTimeout: 10 * time.Second,
		retryBase:         time.Second,
	}
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, g.modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version
	return modelInfo
}

// ExtractProfile asks the model for a ParsedProfile. Input beyond
// MaxInputChars runes is cut off before prompting.
func (g *GeminiProvider) ExtractProfile(ctx context.Context, text string) (types.ParsedProfile, *TokenUsage, error) {
	input, truncated := truncateInput(text, g.config.MaxInputChars)
	systemPrompt, userPrompt := g.extractPrompts(input)

	profile, usage, err := executeAIOperation[types.ParsedProfile](
		g,
		ctx,
		extractOperation,
		userPrompt,
		systemPrompt,
		g.buildExtractSchema(),
		attribute.Int("input.length", len(text)),
		attribute.Bool("input.truncated", truncated),
	)
	if err != nil {
		return types.ParsedProfile{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.experience_entries", len(profile.Experience)),
			attribute.Int("output.education_entries", len(profile.Education)),
		)
	}

	profile.EnsureCollections()
	return profile, usage, nil
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	maxRetries := *g.config.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, appErrors.NewAIError(appErrors.ErrCodeAITimeout, "AI operation cancelled during backoff", ctx.Err())
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"max_retries", maxRetries)

	return nil, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// backoff doubles retryBase per attempt, adds up to 10% jitter and caps at 30s.
func (g *GeminiProvider) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.retryBase
	jitter := time.Duration(0)
	if maxJitter := int64(float64(baseDelay) * 0.1); maxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(maxJitter)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, 30*time.Second)
}

// isRetryableError reports transient failures: network errors and the
// HTTP statuses that signal overload or a server fault.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// executeAIOperation runs one model call with tracing, the circuit breaker,
// retries, schema validation and decoding.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	ctx, span := otel.Tracer("resumeimport.ai.gemini").Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	fail := func(err error) (Out, *TokenUsage, error) {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, err
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		if _, ok := appErrors.As(err); ok {
			return fail(err)
		}
		code := appErrors.ErrCodeAIServiceFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = appErrors.ErrCodeAITimeout
		}
		return fail(appErrors.NewAIError(code, "Failed to generate content for "+operationName, err))
	}

	text := strings.TrimSpace(result.Text())
	if err := validateProfileJSON(text); err != nil {
		return fail(err)
	}
	if err := json.Unmarshal([]byte(text), &output); err != nil {
		return fail(appErrors.NewAIError(appErrors.ErrCodeAIResponse, "Failed to parse AI response for "+operationName, err))
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	return nil
}

// buildExtractSchema creates the generation config for extract requests
func (g *GeminiProvider) buildExtractSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   profileResponseSchema(),
	}
	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

// extractPrompts resolves the prompts (file, then config, then default)
// and fills the resume into the user template.
func (g *GeminiProvider) extractPrompts(resume string) (string, string) {
	systemPrompt := config.ResolvePrompt(g.config.Loaded.System, g.config.CustomPrompts.SystemPrompt, DefaultPrompts.System)
	userTemplate := config.ResolvePrompt(g.config.Loaded.User, g.config.CustomPrompts.UserPrompt, DefaultPrompts.User)

	if !strings.Contains(userTemplate, "%s") {
		return systemPrompt, userTemplate + "\n\n" + resume
	}
	return systemPrompt, fmt.Sprintf(userTemplate, resume)
}

// truncateInput cuts text to limit runes; limit <= 0 disables the cut.
func truncateInput(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]), true
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
