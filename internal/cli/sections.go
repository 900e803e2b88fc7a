package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resumeimport/internal/common"
	"resumeimport/internal/types"
)

func newSectionsCmd() *cobra.Command {
	var output common.CommandConfig

	cmd := &cobra.Command{
		Use:   "sections [resume-file]",
		Short: "Show how a resume's lines are split into sections",
		Long: `Print the section buckets the rule-based parser builds before any field
extraction. Useful for checking heading aliases: lines the parser could not
place under a heading end up in the fallback bucket.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			format, err := common.ResolveOutputFormat(output.OutputFormat, "text", cfg.App.SupportedFormats)
			if err != nil {
				return err
			}
			output.OutputFormat = format
			output.MaxFileSize = cfg.App.MaxFileSize
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())

			rt, err := buildComponents(cfg, logger, nil, false)
			if err != nil {
				return fmt.Errorf("failed to set up parser: %w", err)
			}

			segment := func(_ context.Context, doc common.Document) (types.SegmentResult, error) {
				result := rt.service.Segment(doc.Text)
				result.Source = doc.Source
				return result, nil
			}
			return common.RunFileCommand(cmd.Context(), logger, output, args[0], cmd.OutOrStdout(), segment)
		},
	}

	cmd.Flags().StringVarP(&output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&output.OutputFormat, "format", "", "Output format: json, text, or markdown (default: text)")

	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion)
	return cmd
}
