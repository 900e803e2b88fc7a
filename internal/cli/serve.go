package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"resumeimport/internal/config"
	"resumeimport/internal/observability"
	"resumeimport/internal/server"
)

type serveOptions struct {
	port     string
	host     string
	certFile string
	keyFile  string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing the parser as a REST API.

Available endpoints:
- POST /parse: Parse resume text into a profile with quality analysis
- POST /score: Score resume text, optionally against a job description
- GET /health: Health check, including the AI model when enabled
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --cert-file and --key-file to serve HTTPS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&opts.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (o *serveOptions) apply(cfg *config.Config) {
	if o.port != "" {
		cfg.Server.Port = o.port
	}
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.certFile != "" {
		cfg.Server.TLS.CertFile = o.certFile
	}
	if o.keyFile != "" {
		cfg.Server.TLS.KeyFile = o.keyFile
	}
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	opts.apply(cfg)

	vaultClient, err := config.ApplyVaultSecrets(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	// Re-check now that flags and Vault secrets are applied.
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AI.Enabled && cfg.GetExtractConfig().APIKey == "" {
		return fmt.Errorf("AI extraction is enabled but Vault returned no Gemini API key")
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}

	rt, err := buildComponents(cfg, logger, om, true)
	if err != nil {
		return fmt.Errorf("failed to set up parser: %w", err)
	}

	deps := server.Dependencies{
		Service:       rt.service,
		Parser:        rt.parser,
		AI:            rt.ai,
		Observability: om,
	}
	// A nil *config.VaultClient must not become a non-nil interface.
	if vaultClient != nil {
		deps.VaultClient = vaultClient
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestBytes,
		RateLimit:      &cfg.Server.RateLimit,
		Stdout:         cmd.OutOrStdout(),
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start(cmd.Context())
}
