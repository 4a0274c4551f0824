package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/review"
)

// apiKeyEnv names the variable holding the Gemini API key.
const apiKeyEnv = "GEMINI_API_KEY"

// defaultReviewPages is used when neither flag nor config sets a page count.
const defaultReviewPages = 3

// reviewReport is the JSON form of a review run.
type reviewReport struct {
	File    string          `json:"file"`
	Layout  string          `json:"layout"`
	Pages   []review.Review `json:"pages"`
	Average float64         `json:"average"`
}

// runReview renders one document, captures its first pages and scores them
// with the vision model.
func runReview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseReviewFlags(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: review takes exactly one input file", ErrUsage)
	}
	if flags.pages < 0 {
		return fmt.Errorf("%w: --pages must not be negative", ErrUsage)
	}
	inputPath := positional[0]
	if err := validateSourceFile(inputPath); err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common)
	defer func() { _ = log.Sync() }()

	cfg, _, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	mergeLayoutFlags(flags.layout, cfg)
	mergeContentFlags(flags.content, cfg)
	mergeAssetFlags(flags.assets, cfg)
	if flags.model != "" {
		cfg.Review.Model = flags.model
	}
	if err := mergeTimeout(flags.timeout, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pages := flags.pages
	if pages == 0 {
		pages = cfg.Review.MaxPages
	}
	if pages == 0 {
		pages = defaultReviewPages
	}

	apiKey, err := lookupAPIKey(env.Getenv, flags.envFile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided input
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	css, err := resolveCSS(cfg)
	if err != nil {
		return err
	}

	pool := env.NewPool(1, converterOptions(cfg, css, log)...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing converter", zap.Error(err))
		}
	}()
	conv, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(conv)

	input := baseInput(cfg, flags.content.strict)
	input.Filename = filepath.Base(inputPath)
	input.Data = data
	input.SourceDir = filepath.Dir(inputPath)

	images, err := conv.CapturePages(ctx, input, pages)
	if err != nil {
		return fmt.Errorf("capturing pages: %w", err)
	}
	log.Debug("pages captured", zap.Int("pages", len(images)))

	// A model that cannot be created degrades every review instead of failing.
	var model review.Model
	if m, err := env.NewModel(ctx, apiKey, cfg.Review.Model); err != nil {
		log.Warn("AI review unavailable", zap.Error(err))
	} else {
		model = m
	}

	reviews := review.NewReviewer(model, log).ReviewAll(ctx, images)
	report := reviewReport{
		File:    inputPath,
		Layout:  cfg.Layout.Style,
		Pages:   reviews,
		Average: review.AverageScore(reviews),
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if !flags.common.quiet {
		printReview(env.Stdout, report)
	}

	if flags.minScore > 0 && report.Average < flags.minScore {
		return fmt.Errorf("%w: %.1f < %.1f", ErrLowScore, report.Average, flags.minScore)
	}
	return nil
}

// lookupAPIKey reads the API key from the environment, then from envFile.
// A missing envFile is not an error.
func lookupAPIKey(getenv func(string) string, envFile string) (string, error) {
	if key := getenv(apiKeyEnv); key != "" {
		return key, nil
	}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			if key := vals[apiKeyEnv]; key != "" {
				return key, nil
			}
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("%w: reading %s: %v", ErrUsage, envFile, err)
		}
	}
	return "", fmt.Errorf("%w: %s is not set", ErrMissingAPIKey, apiKeyEnv)
}

// printReview writes a human-readable review report.
func printReview(w io.Writer, r reviewReport) {
	fmt.Fprintf(w, "%s (%s layout)\n", r.File, r.Layout)
	for _, p := range r.Pages {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Page %d: %d/10\n", p.Page, p.Score)
		if len(p.Issues) > 0 {
			fmt.Fprintln(w, "  Issues:")
			for _, issue := range p.Issues {
				fmt.Fprintf(w, "    - %s\n", issue)
			}
		}
		if len(p.Suggestions) > 0 {
			fmt.Fprintln(w, "  Suggestions:")
			for _, s := range p.Suggestions {
				fmt.Fprintf(w, "    - %s\n", s)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average score: %.1f/10 (%d pages)\n", r.Average, len(r.Pages))
}
