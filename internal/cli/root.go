package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"resumeimport/internal/config"
	"resumeimport/internal/errors"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// newRootCmd builds the command tree. Config and logger are loaded once in
// PersistentPreRunE and handed to subcommands through the context.
func newRootCmd() *cobra.Command {
	var configFile string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "resumeimport",
		Short: "Turn resume documents into structured profiles",
		Long: `resumeimport reads plain-text or HTML resumes and extracts a structured
profile: contact details, summary, experience, education, skills, projects and
more. A deterministic rule-based parser always runs; an optional AI strategy
can be enabled in the configuration and falls back to the parser on failure.

Every profile comes with a quality score and, when a job description is given,
a keyword match score.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipConfig"] == "true" {
				return nil
			}

			cfg, err := config.LoadConfigFile(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.App.LogLevel = logLevel
			}

			logger, err := errors.New(cfg.App.LogLevel)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			ctx = context.WithValue(ctx, loggerKey, logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: search /etc/resumeimport, $HOME/.resumeimport, .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newSectionsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the CLI with the given context; cancelling it stops serve.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// formatCompletion completes --format from the configured formats.
func formatCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return []string{"json", "text", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	}
	return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
}
