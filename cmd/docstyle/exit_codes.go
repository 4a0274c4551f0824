package main

import (
	"errors"
	"os"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/assets"
	"github.com/alnah/go-docstyle/internal/config"
)

// Exit codes for the docstyle CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the exit code for err. Wrapped errors are matched with
// errors.Is, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, docstyle.ErrBrowserConnect) ||
		errors.Is(err, docstyle.ErrPageCreate) ||
		errors.Is(err, docstyle.ErrPageLoad) ||
		errors.Is(err, docstyle.ErrPDFGeneration) ||
		errors.Is(err, docstyle.ErrScreenshot) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, docstyle.ErrEmptyInput) ||
		errors.Is(err, docstyle.ErrUnsupportedInput) ||
		errors.Is(err, docstyle.ErrConfig) ||
		errors.Is(err, docstyle.ErrUnknownLayout) ||
		errors.Is(err, docstyle.ErrUnknownFormat) ||
		errors.Is(err, docstyle.ErrUnknownEngine) ||
		errors.Is(err, docstyle.ErrInvalidDocument) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrMissingAPIKey) {
		return ExitUsage
	}

	return ExitGeneral
}
