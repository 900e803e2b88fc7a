package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"resumeimport/internal/common"
	"resumeimport/internal/extraction"
	"resumeimport/internal/types"
)

type parseOptions struct {
	output         common.CommandConfig
	jobDescription string
	noAI           bool
	concurrency    int
}

func newParseCmd() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [resume-file]...",
		Short: "Extract a structured profile from one or more resumes",
		Long: `Parse resume files into structured profiles with a quality analysis.

Plain text (.txt, .md) is read as is; HTML resumes are converted to text first.
With several files the results are printed as a list in argument order.

If the AI strategy is enabled in the configuration it is tried first; any
failure falls back to the rule-based parser. Use --no-ai to skip it.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			format, err := common.ResolveOutputFormat(opts.output.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
			if err != nil {
				return err
			}
			opts.output.OutputFormat = format
			opts.output.MaxFileSize = cfg.App.MaxFileSize
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", opts.concurrency)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	cmd.Flags().StringVarP(&opts.jobDescription, "job-description", "j", "", "Job description file to score keyword matches against")
	cmd.Flags().BoolVar(&opts.noAI, "no-ai", false, "Use only the rule-based parser")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", runtime.GOMAXPROCS(0), "Number of files parsed in parallel")

	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion)
	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *parseOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	jobDescription, err := readJobDescription(logger, cfg, opts.jobDescription)
	if err != nil {
		return err
	}

	rt, err := buildComponents(cfg, logger, nil, !opts.noAI)
	if err != nil {
		return fmt.Errorf("failed to set up parser: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.LogError(err, "Failed to close AI service")
		}
	}()

	logger.Info("Starting resume parsing",
		"files", len(args),
		"strategies", rt.service.Chain().Strategies(),
		"job_description", jobDescription != "",
		"output_format", opts.output.OutputFormat,
		"concurrency", opts.concurrency)

	parseDocument := func(ctx context.Context, doc common.Document) (types.ParseResult, error) {
		return rt.service.Parse(ctx, extraction.Request{
			Source:         doc.Source,
			Text:           doc.Text,
			JobDescription: jobDescription,
			DisableAI:      opts.noAI,
		}), nil
	}

	err = common.RunBatchCommand(cmd.Context(), logger, opts.output, args,
		common.BatchOptions{Concurrency: opts.concurrency, Stdout: cmd.OutOrStdout()},
		parseDocument)
	if err != nil {
		return fmt.Errorf("failed to parse resumes: %w", err)
	}

	logger.Info("Resume parsing completed successfully", "files", len(args))
	return nil
}
