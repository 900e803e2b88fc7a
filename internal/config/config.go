package config

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"resumeimport/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
const EnvPrefix = "RESUMEIMPORT"

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEIMPORT_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Parser        ParserConfig        `mapstructure:"parser"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds the optional AI extraction strategy configuration.
// The rule-based parser runs regardless of these settings.
type AIConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Provider         string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gte=0"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries" validate:"gte=0,lte=10"`
	Temperature      float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig  `mapstructure:"customPrompts"`

	Extract OperationAIConfig `mapstructure:"extract"`

	// Global prompt content read from files at load time.
	Loaded LoadedPrompts `mapstructure:"-"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold" validate:"gte=0,lte=1"`
}

// OperationAIConfig holds AI configuration for the extract operation.
// Unset pointer fields inherit the global AIConfig value.
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	MaxInputChars    int                  `mapstructure:"maxInputChars" validate:"gte=0"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Prompt content read from SystemPromptFile/UserPromptFile at load time.
	Loaded LoadedPrompts `mapstructure:"-"`
}

// PromptConfig holds prompt overrides, inline or as file paths.
type PromptConfig struct {
	SystemPrompt     string `mapstructure:"systemPrompt"`
	SystemPromptFile string `mapstructure:"systemPromptFile"`
	UserPrompt       string `mapstructure:"userPrompt"`
	UserPromptFile   string `mapstructure:"userPromptFile"`
}

// ParserConfig holds rule-based parser settings.
type ParserConfig struct {
	MaxInputChars int           `mapstructure:"maxInputChars" validate:"gte=0"`
	SummaryLimit  int           `mapstructure:"summaryLimit" validate:"gte=0"`
	HeadingsFile  string        `mapstructure:"headingsFile"`
	WatchHeadings bool          `mapstructure:"watchHeadings"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay" validate:"gte=0"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	MaxRequestBytes int64         `mapstructure:"maxRequestBytes" validate:"gte=0"`

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys for authentication; empty disables auth.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// Enabled reports whether the server should listen with TLS.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin" validate:"required_if=Enabled true,gte=0"`
	BurstCapacity  int           `mapstructure:"burstCapacity" validate:"gte=0"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	DefaultFormat    string   `mapstructure:"defaultFormat" validate:"required"`
	SupportedFormats []string `mapstructure:"supportedFormats" validate:"min=1"`
	MaxFileSize      int64    `mapstructure:"maxFileSize" validate:"gt=0"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate" validate:"gte=0,lte=1"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate" validate:"gte=0,lte=1"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	TrackModelInfo  bool `mapstructure:"trackModelInfo"`
}

// BusinessMetricsConfig holds parse outcome metrics configuration
type BusinessMetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	TrackStrategies    bool `mapstructure:"trackStrategies"`
	TrackQualityScores bool `mapstructure:"trackQualityScores"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	TrackRateLimits     bool `mapstructure:"trackRateLimits"`
	TrackHeadingReloads bool `mapstructure:"trackHeadingReloads"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig loads configuration from environment variables and the first
// config.yaml found on the search path.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// searches /etc/resumeimport/, $HOME/.resumeimport and the working directory.
func LoadConfigFile(path string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumeimport/")
		v.AddConfigPath("$HOME/.resumeimport")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read config file", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to unmarshal config", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks struct constraints first, then rules spanning several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid configuration", err)
	}

	// A Vault-sourced key only arrives after ApplyVaultSecrets.
	keyFromVault := c.Vault.Enabled && c.Vault.Secrets.GeminiKey != ""
	if c.AI.Enabled && !keyFromVault && c.GetExtractConfig().APIKey == "" {
		return errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"AI extraction is enabled but no API key is set (RESUMEIMPORT_AI_APIKEY)", nil)
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid default format: %s", c.App.DefaultFormat), nil)
	}

	if (c.Server.TLS.CertFile == "") != (c.Server.TLS.KeyFile == "") {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"server.tls.certFile and server.tls.keyFile must be set together", nil)
	}

	if c.Parser.WatchHeadings && c.Parser.HeadingsFile == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"parser.watchHeadings requires parser.headingsFile", nil)
	}

	return nil
}

// GetExtractConfig returns the extract operation configuration with
// unset fields taken from the global AI configuration.
func (c *Config) GetExtractConfig() OperationAIConfig {
	op := c.AI.Extract

	if op.Provider == "" {
		op.Provider = c.AI.Provider
	}
	if op.Model == "" {
		op.Model = c.AI.Model
	}
	if op.Timeout == nil {
		op.Timeout = &c.AI.Timeout
	}
	if op.APIKey == "" {
		op.APIKey = c.AI.APIKey
	}
	if op.MaxRetries == nil {
		op.MaxRetries = &c.AI.MaxRetries
	}
	if op.Temperature == nil {
		op.Temperature = &c.AI.Temperature
	}
	if op.UseSystemPrompts == nil {
		op.UseSystemPrompts = &c.AI.UseSystemPrompts
	}

	if op.CustomPrompts.SystemPrompt == "" {
		op.CustomPrompts.SystemPrompt = c.AI.CustomPrompts.SystemPrompt
	}
	if op.CustomPrompts.UserPrompt == "" {
		op.CustomPrompts.UserPrompt = c.AI.CustomPrompts.UserPrompt
	}
	op.Loaded = op.Loaded.orElse(c.AI.Loaded)

	return op
}

// applyFallbacks fills values that depend on other values or on the host.
func (c *Config) applyFallbacks() {
	// RESUMEIMPORT_SERVER_APIKEYS arrives as one comma-separated string.
	c.Server.APIKeys = splitKeys(strings.Join(c.Server.APIKeys, ","))

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func splitKeys(s string) []string {
	var keys []string
	for part := range strings.SplitSeq(s, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		EnvPrefix + "_AI_ENABLED",
		EnvPrefix + "_AI_APIKEY",
		EnvPrefix + "_AI_MODEL",
		EnvPrefix + "_PARSER_HEADINGSFILE",
		EnvPrefix + "_SERVER_PORT",
		EnvPrefix + "_SERVER_HOST",
		EnvPrefix + "_APP_LOGLEVEL",
		EnvPrefix + "_VAULT_ENABLED",
	}
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(envVar), "key") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", envVar, value)
	}

	apiKey := "***NOT SET***"
	if c.AI.APIKey != "" {
		apiKey = "***CONFIGURED***"
	}
	log.Printf("[CONFIG] AI enabled: %t, provider: %s, model: %s, api key: %s",
		c.AI.Enabled, c.AI.Provider, c.AI.Model, apiKey)
	log.Printf("[CONFIG] Parser headings file: %q, watch: %t", c.Parser.HeadingsFile, c.Parser.WatchHeadings)
	log.Printf("[CONFIG] Server: %s:%s, TLS: %t", c.Server.Host, c.Server.Port, c.Server.TLS.Enabled())
	log.Printf("[CONFIG] Log level: %s, Vault: %t, Observability: %t",
		c.App.LogLevel, c.Vault.Enabled, c.Observability.Enabled)
}
