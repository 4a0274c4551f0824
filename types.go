package docstyle

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
	"github.com/alnah/go-docstyle/internal/render"
)

// Document model types, shared with the internal stages.
type (
	DocumentStructure = ir.DocumentStructure
	DocumentElement   = ir.DocumentElement
	ImageElement      = ir.ImageElement
	Citation          = ir.Citation
	LayoutConfig      = layout.LayoutConfig
	Format            = render.Format
)

// Output formats.
const (
	FormatPDF      = render.FormatPDF
	FormatDOCX     = render.FormatDOCX
	FormatHTML     = render.FormatHTML
	FormatMarkdown = render.FormatMarkdown
)

// Layout style names.
const (
	LayoutBusiness = layout.Business
	LayoutAcademic = layout.Academic
	LayoutNovel    = layout.Novel
	LayoutModern   = layout.Modern
	LayoutClassic  = layout.Classic
)

// MaxMarginInches bounds layout margin overrides.
const MaxMarginInches = 3.0

// ParseFormat maps a format name to a Format. The empty string selects PDF.
func ParseFormat(s string) (Format, error) {
	return render.ParseFormat(s)
}

// LayoutNames lists the available layout styles in a stable order.
func LayoutNames() []string {
	return layout.Names()
}

// ResolveLayout returns a copy of the named layout with overrides applied.
// The name is matched ignoring case and surrounding space; an empty name
// selects LayoutBusiness. The margin override must be a CSS length no larger
// than MaxMarginInches.
func ResolveLayout(name, margin, fontFamily string) (LayoutConfig, error) {
	cfg, err := layout.Resolve(layout.Canonical(name), layout.Overrides{Margin: margin, FontFamily: fontFamily})
	if err != nil {
		return LayoutConfig{}, err
	}
	in, err := cfg.MarginInches()
	if err != nil {
		return LayoutConfig{}, err
	}
	if in > MaxMarginInches {
		return LayoutConfig{}, fmt.Errorf("%w: margin %q exceeds %.1fin", ErrConfig, cfg.Margin, MaxMarginInches)
	}
	return cfg, nil
}

// Engine selects how PDF output is produced.
type Engine string

// PDF engines.
const (
	// EngineChrome prints the HTML rendering with headless Chrome.
	EngineChrome Engine = "chrome"

	// EngineFPDF writes the PDF directly in Go, without a browser.
	EngineFPDF Engine = "fpdf"
)

// ParseEngine maps an engine name to an Engine. The empty string selects Chrome.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EngineChrome):
		return EngineChrome, nil
	case string(EngineFPDF):
		return EngineFPDF, nil
	default:
		return "", fmt.Errorf("%w: %q (must be chrome or fpdf)", ErrUnknownEngine, s)
	}
}

// Input contains conversion parameters.
type Input struct {
	Filename  string // decides the input format: ".md" is Markdown, anything else Word
	Data      []byte // document bytes (required)
	SourceDir string // resolves relative image paths (optional)

	Layout     string // layout style name, "" = business
	Margin     string // CSS length overriding the layout margin
	FontFamily string // overrides every layout font

	Format   string // "pdf" (default), "docx", "html" or "md"
	TOC      bool
	TOCTitle string
	Harvard  bool // substitute citations with their Harvard form

	FetchImages bool // download remote images before rendering
	Strict      bool // reject documents with dangling image references
}

// Validate checks the fields that can be checked without parsing the document.
func (in Input) Validate() error {
	if len(in.Data) == 0 {
		return ErrEmptyInput
	}
	if _, err := render.ParseFormat(in.Format); err != nil {
		return err
	}
	if !layout.IsValid(layout.Canonical(in.Layout)) {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownLayout, in.Layout, strings.Join(layout.Names(), ", "))
	}
	return nil
}

// ConvertResult is the output of a conversion.
type ConvertResult struct {
	Data     []byte
	Filename string
	MIMEType string
	Format   Format

	// Document is the structure the output was rendered from.
	Document *DocumentStructure

	// Layout is the resolved layout, overrides included.
	Layout LayoutConfig
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout  time.Duration
	engine   Engine
	extraCSS string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the browser page load timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docstyle: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithEngine selects the PDF engine.
func WithEngine(e Engine) Option {
	return func(c *Converter) {
		c.cfg.engine = e
	}
}

// WithExtraCSS appends CSS after the layout stylesheet for HTML and Chrome PDF output.
func WithExtraCSS(css string) Option {
	return func(c *Converter) {
		c.cfg.extraCSS = css
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		if log == nil {
			log = zap.NewNop()
		}
		c.log = log
	}
}

// WithImageFetcher replaces the HTTP image fetcher used when Input.FetchImages is set.
func WithImageFetcher(f ImageFetcher) Option {
	return func(c *Converter) {
		c.fetcher = f
	}
}
