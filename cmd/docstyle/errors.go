package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/assets"
	"github.com/alnah/go-docstyle/internal/config"
	"github.com/alnah/go-docstyle/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrConverterInit      = errors.New("failed to initialize converter")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrMissingAPIKey      = errors.New("missing API key")
	ErrLowScore           = errors.New("review score below threshold")
)

// usageError marks a flag parsing error as a usage error. Help requests
// pass through unchanged.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// batchError reports a batch where some files failed. It unwraps to the
// first failure so the exit code reflects its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	if e.total == 1 {
		return "conversion failed"
	}
	return fmt.Sprintf("%d of %d conversions failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.first
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var notFound *config.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return hints.ForConfigNotFound(notFound.Tried)
	case errors.Is(err, docstyle.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, docstyle.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, docstyle.ErrUnknownLayout):
		return hints.ForLayoutNotFound(docstyle.LayoutNames())
	case errors.Is(err, docstyle.ErrUnsupportedInput):
		return hints.ForUnsupportedInput()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrMissingAPIKey):
		return hints.ForAPIKey(apiKeyEnv)
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(availableStyles(""))
	}
	return ""
}

// availableStyles lists CSS add-ons, ignoring errors.
func availableStyles(assetPath string) []string {
	r, err := assets.NewResolver(assetPath)
	if err != nil {
		return nil
	}
	names, _ := r.ListStyles()
	return names
}
