package common

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"profilelens/internal/errors"
	"profilelens/internal/types"

	"golang.org/x/sync/errgroup"
)

// ProfileAnalyzer runs the analysis pipeline for one profile.
// Implemented by pipeline.Orchestrator.
type ProfileAnalyzer interface {
	AnalyzeProfile(ctx context.Context, input types.ProfileInput) (*types.AnalysisResult, error)
}

// FileResult pairs an input file with its analysis
type FileResult struct {
	File   string                `json:"file"`
	Result *types.AnalysisResult `json:"result"`
}

// RunBatch applies op to every input with at most limit in flight and
// returns the outputs in input order. The first error cancels the context
// passed to the remaining calls and is returned.
func RunBatch[Input, Output any](ctx context.Context, inputs []Input, limit int, op func(context.Context, Input) (Output, error)) ([]Output, error) {
	outputs := make([]Output, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, input := range inputs {
		g.Go(func() error {
			out, err := op(gCtx, input)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// RunAnalyzeCommand loads every profile file, analyzes them concurrently and
// writes the results through the output handler
func RunAnalyzeCommand(
	ctx context.Context,
	logger *errors.Logger,
	analyzer ProfileAnalyzer,
	fileProcessor *FileProcessor,
	outputHandler *OutputHandler,
	cmdConfig CommandConfig,
	files []string,
	concurrency int,
) error {
	results, err := AnalyzeFiles(ctx, logger, analyzer, fileProcessor, files, concurrency)
	if err != nil {
		return err
	}

	if len(results) == 1 {
		return outputHandler.HandleOutput(results[0].Result, cmdConfig)
	}

	// Several results go to one JSON document, or one report after another
	if cmdConfig.OutputFormat == "json" {
		return outputHandler.HandleOutput(results, cmdConfig)
	}
	for _, r := range results {
		fileConfig := cmdConfig
		if cmdConfig.OutputFile != "" {
			fileConfig.OutputFile = perInputOutputFile(cmdConfig.OutputFile, r.File)
		} else {
			_, _ = fmt.Fprintf(outputHandler.stdout, "\n##### %s\n\n", r.File)
		}
		if err := outputHandler.HandleOutput(r.Result, fileConfig); err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeFiles loads and analyzes files with at most concurrency in flight
func AnalyzeFiles(
	ctx context.Context,
	logger *errors.Logger,
	analyzer ProfileAnalyzer,
	fileProcessor *FileProcessor,
	files []string,
	concurrency int,
) ([]FileResult, error) {
	// Read everything first so that a bad file fails before any inference call
	profiles, err := RunBatch(ctx, files, concurrency, func(_ context.Context, file string) (types.ProfileInput, error) {
		return fileProcessor.LoadProfile(file)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Analyzing profiles", "files", len(files), "concurrency", concurrency)

	indexes := make([]int, len(files))
	for i := range indexes {
		indexes[i] = i
	}

	return RunBatch(ctx, indexes, concurrency, func(ctx context.Context, i int) (FileResult, error) {
		result, err := analyzer.AnalyzeProfile(ctx, profiles[i])
		if err != nil {
			return FileResult{}, err
		}
		logger.Debug("Profile file analyzed", "file", files[i], "score", result.Score)
		return FileResult{File: files[i], Result: result}, nil
	})
}

// perInputOutputFile derives "out-alice.md" from output "out.md" and input
// "profiles/alice.json"
func perInputOutputFile(output, input string) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return strings.TrimSuffix(output, ext) + "-" + base + ext
}
