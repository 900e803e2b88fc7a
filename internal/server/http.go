package server

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"resumeimport/internal/ai"
	"resumeimport/internal/config"
	appErrors "resumeimport/internal/errors"
	"resumeimport/internal/extraction"
	"resumeimport/internal/observability"
	"resumeimport/internal/parser"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication; swapped wholesale when keys rotate
	apiKeys atomic.Pointer[map[string]bool]

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Logger *appErrors.Logger
	out    io.Writer

	service  *extraction.Service
	parser   *parser.Parser
	ai       *ai.Service
	om       *observability.ObservabilityManager
	validate *validator.Validate

	headingsWatcher *HeadingsWatcher
	secretWatcher   *SecretWatcher
	vaultClient     APIKeySource
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	// Stdout receives the startup banner; defaults to os.Stdout.
	Stdout         io.Writer
}

// Dependencies are the components the handlers call into. Service is
// required; the rest may be nil.
type Dependencies struct {
	Service       *extraction.Service
	Parser        *parser.Parser
	AI            *ai.Service
	Observability *observability.ObservabilityManager
	// VaultClient is polled for rotated API keys when vault.watch is on.
	VaultClient APIKeySource
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *appErrors.Logger) *Server {
	if logger == nil {
		logger = appErrors.Discard()
	}
	if appCfg == nil {
		appCfg = &config.Config{}
	}

	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		out:            out,
		service:        deps.Service,
		parser:         deps.Parser,
		ai:             deps.AI,
		om:             deps.Observability,
		vaultClient:    deps.VaultClient,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
	if s.service == nil {
		s.service = extraction.NewService(extraction.NewChain(extraction.NewRuleBased(deps.Parser)), logger)
	}
	if s.parser == nil {
		s.parser = s.service.Chain().Fallback().Parser()
	}
	s.SetAPIKeys(cfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted API keys. An empty list disables auth.
func (s *Server) SetAPIKeys(keys []string) {
	apiKeyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}
	s.apiKeys.Store(&apiKeyMap)
}

// APIKeyCount reports how many API keys are accepted.
func (s *Server) APIKeyCount() int {
	return len(*s.apiKeys.Load())
}

func (s *Server) validAPIKey(key string) bool {
	return (*s.apiKeys.Load())[key]
}
