package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/review"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	// NewPool creates the converter pool for a command.
	NewPool func(size int, opts ...docstyle.Option) Pool

	// NewModel creates the vision model used by the review command.
	NewModel func(ctx context.Context, apiKey, model string) (review.Model, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Environ:  os.Environ,
		NewPool:  newConverterPool,
		NewModel: newGeminiModel,
	}
}

func newGeminiModel(ctx context.Context, apiKey, model string) (review.Model, error) {
	return review.NewGeminiModel(ctx, apiKey, model)
}
