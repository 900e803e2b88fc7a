package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resumeimport/internal/common"
	"resumeimport/internal/types"
)

type scoreOptions struct {
	output         common.CommandConfig
	jobDescription string
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score [resume-file]",
		Short: "Score a resume's completeness and keyword match",
		Long: `Score a resume with the rule-based parser. The score (0-100) rewards a
name, contact details, a summary, experience, education, technical skills and
a reasonable length; each missing part comes with a suggestion.

With --job-description the words of the job posting are matched against the
resume and a separate matching score is reported.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			format, err := common.ResolveOutputFormat(opts.output.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
			if err != nil {
				return err
			}
			opts.output.OutputFormat = format
			opts.output.MaxFileSize = cfg.App.MaxFileSize
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	cmd.Flags().StringVarP(&opts.jobDescription, "job-description", "j", "", "Job description file to score keyword matches against")

	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion)
	return cmd
}

func runScore(cmd *cobra.Command, args []string, opts *scoreOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	jobDescription, err := readJobDescription(logger, cfg, opts.jobDescription)
	if err != nil {
		return err
	}

	rt, err := buildComponents(cfg, logger, nil, false)
	if err != nil {
		return fmt.Errorf("failed to set up parser: %w", err)
	}

	scoreDocument := func(ctx context.Context, doc common.Document) (types.QualityAnalysis, error) {
		return rt.service.Score(ctx, doc.Text, jobDescription), nil
	}

	if err := common.RunFileCommand(cmd.Context(), logger, opts.output, args[0], cmd.OutOrStdout(), scoreDocument); err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	return nil
}
