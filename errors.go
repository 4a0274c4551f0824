package docstyle

import (
	"errors"

	"github.com/alnah/go-docstyle/internal/layout"
	"github.com/alnah/go-docstyle/internal/pipeline"
	"github.com/alnah/go-docstyle/internal/render"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput      = errors.New("input document cannot be empty")
	ErrInvalidDocument = errors.New("invalid document structure")
	ErrPDFGeneration   = errors.New("PDF generation failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrScreenshot      = errors.New("page capture failed")
	ErrUnknownEngine   = errors.New("unknown PDF engine")
)

// Errors raised by internal stages, re-exported for errors.Is checks.
var (
	// ErrUnsupportedInput indicates the input cannot be parsed as its claimed format.
	ErrUnsupportedInput = pipeline.ErrUnsupportedInput

	// ErrConfig indicates a configuration error rather than bad document content.
	ErrConfig = layout.ErrConfig

	// ErrUnknownLayout wraps ErrConfig.
	ErrUnknownLayout = layout.ErrUnknownLayout

	ErrUnknownFormat  = render.ErrUnknownFormat
	ErrDOCXGeneration = render.ErrDOCXGeneration
	ErrHTMLConversion = render.ErrHTMLConversion
)
