package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/config"
	"github.com/alnah/go-docstyle/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Title      string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	input         docstyle.Input // template; Filename, Data and SourceDir are per file
	nameFromTitle bool
	log           *zap.Logger
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	cfg, envCfg, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	mergeConvertFlags(flags, cfg)
	if err := mergeTimeout(flags.engine.timeout, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	format, err := docstyle.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = cfg.Output.DefaultDir
	}
	files, err := discoverFiles(inputPath, output, format)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no Markdown or Word files in %s", ErrNoInput, inputPath)
	}

	css, err := resolveCSS(cfg)
	if err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	size := min(docstyle.ResolvePoolSize(workers), len(files))
	log.Debug("starting conversion",
		zap.Int("files", len(files)),
		zap.Int("workers", size),
		zap.String("layout", cfg.Layout.Style),
		zap.String("format", string(format)))

	pool := env.NewPool(size, converterOptions(cfg, css, log)...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing converters", zap.Error(err))
		}
	}()

	params := &conversionParams{
		input:         baseInput(cfg, flags.content.strict),
		nameFromTitle: flags.nameFromTitle,
		log:           log,
	}
	results := convertBatch(ctx, pool, files, params)

	if failed := printResults(results, flags.common, env); failed > 0 {
		return &batchError{failed: failed, total: len(results), first: firstError(results)}
	}
	return nil
}

// mergeConvertFlags applies convert flags over cfg (CLI wins).
func mergeConvertFlags(f *convertFlags, cfg *config.Config) {
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.engine.engine != "" {
		cfg.PDF.Engine = f.engine.engine
	}
	mergeLayoutFlags(f.layout, cfg)
	mergeContentFlags(f.content, cfg)
	mergeAssetFlags(f.assets, cfg)
}

// resolveInputPath returns the positional input or the configured default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire(ctx)
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	data, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	input := params.input
	input.Filename = filepath.Base(f.InputPath)
	input.Data = data
	input.SourceDir = filepath.Dir(f.InputPath)

	res, err := conv.Convert(ctx, input)
	if err != nil {
		return fail(err)
	}
	result.Title = res.Document.Title
	if params.nameFromTitle {
		result.OutputPath = fileutil.OutputPath(f.InputPath, filepath.Dir(f.OutputPath), res.Filename)
	}

	if err := os.MkdirAll(filepath.Dir(result.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err))
	}
	// #nosec G306 -- converted documents are meant to be readable
	if err := os.WriteFile(result.OutputPath, res.Data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	params.log.Debug("file converted",
		zap.String("input", f.InputPath),
		zap.String("output", result.OutputPath),
		zap.Int("elements", len(res.Document.Content)),
		zap.Int("citations", len(res.Document.Citations)))

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// firstError returns the first failure in results.
func firstError(results []ConversionResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, common commonFlags, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
