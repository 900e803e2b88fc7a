package common

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"resumeimport/internal/errors"
)

// DocumentFunc turns one input document into a command result.
type DocumentFunc[Output any] func(context.Context, Document) (Output, error)

// BatchOptions control RunBatchCommand.
type BatchOptions struct {
	Concurrency int
	Stdout      io.Writer
}

// RunFileCommand reads a single file, runs op on it and writes the result.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	filename string,
	stdout io.Writer,
	op DocumentFunc[Output],
) error {
	doc, err := NewFileProcessor(logger, cmdConfig.MaxFileSize).ReadDocument(filename)
	if err != nil {
		return err
	}

	result, err := op(ctx, doc)
	if err != nil {
		return err
	}

	return NewOutputHandler(logger, stdout).HandleOutput(result, cmdConfig)
}

// RunBatchCommand reads every file first, then runs op on up to
// opts.Concurrency documents at a time. Results keep input order. A single
// file is written as one result, several as a slice.
func RunBatchCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	filenames []string,
	opts BatchOptions,
	op DocumentFunc[Output],
) error {
	docs, err := NewFileProcessor(logger, cmdConfig.MaxFileSize).ValidateAndReadFiles(filenames...)
	if err != nil {
		return err
	}

	results := make([]Output, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, doc := range docs {
		g.Go(func() error {
			out, err := op(gctx, doc)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	handler := NewOutputHandler(logger, opts.Stdout)
	if len(results) == 1 {
		return handler.HandleOutput(results[0], cmdConfig)
	}
	return handler.HandleOutput(results, cmdConfig)
}
