package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "resumeimport/internal/errors"
)

// healthHandler reports liveness plus the state of the optional AI strategy.
// The rule-based parser always works, so an unavailable model only
// degrades the status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":     "healthy",
		"service":    "resumeimport",
		"version":    s.Version,
		"strategies": s.service.Chain().Strategies(),
		"parser":     s.parserStatus(),
	}

	if s.ai != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.healthCheckTimeout())
		defer cancel()

		modelInfo := s.ai.GetModelInfo(ctx)
		response["ai_model"] = modelInfo
		response["circuit_breakers"] = s.ai.Stats()
		if modelInfo == nil || !modelInfo.Available {
			response["status"] = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) healthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout; t > 0 {
		return t
	}
	if t := s.AppConfig.Observability.HealthCheck.Timeout; t > 0 {
		return t
	}
	return 10 * time.Second
}

func (s *Server) parserStatus() map[string]any {
	status := map[string]any{
		"headings_file":   s.AppConfig.Parser.HeadingsFile,
		"heading_aliases": s.parser.Headings().Len(),
	}
	if s.headingsWatcher != nil {
		status["watcher"] = s.headingsWatcher.Status()
	}
	return status
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeimport",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    s.APIKeyCount(),
			"tls_enabled":            s.TLSConfig.Enabled(),
		},
		"strategies": s.service.Chain().Strategies(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.ai != nil {
		response["circuit_breakers"] = s.ai.Stats()
	}
	if s.secretWatcher != nil {
		response["secret_watcher"] = s.secretWatcher.Status()
	}
	if s.headingsWatcher != nil {
		response["headings_watcher"] = s.headingsWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeRequest reads a JSON body into v and runs struct validation.
func (s *Server) decodeRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"content-type must be application/json", err)
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			s.Logger.Warn("Failed to close request body", "error", err)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return appErrors.NewValidationError(appErrors.ErrCodeFileTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "failed to read request body", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}

	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", jsonFieldName(fe.Field()), fe.Tag()))
			}
			return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
				"invalid fields: "+strings.Join(fields, ", "), err)
		}
		return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, "invalid request", err)
	}

	return nil
}

// jsonFieldName lower-cases the first letter so messages use the wire name.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// statusFor maps an AppError onto an HTTP status.
func statusFor(err error) int {
	appErr, ok := appErrors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch {
	case appErr.Code == appErrors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case appErr.Type == appErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := ""
	message := err.Error()
	if appErr, ok := appErrors.As(err); ok {
		code = appErr.Code
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
	}
	writeErrorResponse(w, r, http.StatusText(status), message, code, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, errText, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     errText,
		Message:   message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// status is already sent, an encode error can't be reported
	_ = json.NewEncoder(w).Encode(v)
}
