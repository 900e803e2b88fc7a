package cli

import (
	"context"

	"resumeimport/internal/ai"
	"resumeimport/internal/common"
	"resumeimport/internal/config"
	"resumeimport/internal/errors"
	"resumeimport/internal/extraction"
	"resumeimport/internal/observability"
	"resumeimport/internal/parser"
)

// components holds what a command needs to parse documents.
type components struct {
	parser  *parser.Parser
	ai      *ai.Service
	service *extraction.Service
}

// buildComponents wires parser, optional AI strategy and the extraction
// service. om may be nil.
func buildComponents(cfg *config.Config, logger *errors.Logger, om *observability.ObservabilityManager, allowAI bool) (*components, error) {
	headings, err := parser.LoadHeadingTable(cfg.Parser.HeadingsFile)
	if err != nil {
		return nil, err
	}

	p := parser.New(parser.Options{
		SummaryLimit:  cfg.Parser.SummaryLimit,
		MaxInputChars: cfg.Parser.MaxInputChars,
		Headings:      headings,
	})

	rt := &components{parser: p}
	opts := []extraction.ChainOption{extraction.WithLogger(logger)}
	if om != nil {
		opts = append(opts, extraction.WithRecorder(om))
	}

	if cfg.AI.Enabled && allowAI {
		extractCfg := cfg.GetExtractConfig()
		svc, err := ai.NewService(&extractCfg, logger)
		if err != nil {
			return nil, err
		}
		svc.SetTracker(aiTracker(om))
		rt.ai = svc
		opts = append(opts, extraction.WithStrategies(svc))
	}

	rt.service = extraction.NewService(extraction.NewChain(extraction.NewRuleBased(p), opts...), logger)
	if om != nil {
		rt.service.SetRecorder(om)
	}
	return rt, nil
}

// Close releases the AI client, if any.
func (rt *components) Close() error {
	if rt.ai == nil {
		return nil
	}
	return rt.ai.Close()
}

// aiTracker feeds AI calls into the observability manager's AI metrics.
func aiTracker(om *observability.ObservabilityManager) ai.Tracker {
	return func(ctx context.Context, operation string, call func(context.Context) (*ai.TokenUsage, error)) error {
		return om.TrackAI(ctx, operation, func(ctx context.Context) (*observability.TokenUsage, error) {
			usage, err := call(ctx)
			return (*observability.TokenUsage)(usage), err
		})
	}
}

// readJobDescription loads the optional --job-description file.
func readJobDescription(logger *errors.Logger, cfg *config.Config, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	doc, err := common.NewFileProcessor(logger, cfg.App.MaxFileSize).ReadDocument(path)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}
