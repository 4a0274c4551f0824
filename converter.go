package docstyle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/imagefetch"
	"github.com/alnah/go-docstyle/internal/pipeline"
	"github.com/alnah/go-docstyle/internal/render"
)

// ImageFetcher downloads remote images. FetchAll returns a copy of images
// with blobs filled in where the download succeeded; it only fails when ctx
// is cancelled.
type ImageFetcher interface {
	FetchAll(ctx context.Context, images []ImageElement) ([]ImageElement, error)
}

// RenderOptions controls the table of contents and citation style of a rendering.
type RenderOptions = render.Options

// Compile-time interface implementation checks.
var (
	_ ImageFetcher    = (*imagefetch.HTTPFetcher)(nil)
	_ render.Renderer = (*render.HTMLRenderer)(nil)
)

// Converter orchestrates extraction, layout resolution and rendering.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter is not safe for concurrent use; use ConverterPool for batches.
type Converter struct {
	cfg          converterConfig
	log          *zap.Logger
	extractor    *pipeline.Extractor
	fetcher      ImageFetcher
	html         *render.HTMLRenderer
	docx         render.Renderer
	markdown     render.Renderer
	fpdf         render.Renderer
	pdfConverter pdfConverter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithEngine, WithLogger).
// The browser is only launched by the first Chrome PDF conversion.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{timeout: defaultTimeout, engine: EngineChrome},
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	engine, err := ParseEngine(string(c.cfg.engine))
	if err != nil {
		return nil, err
	}
	c.cfg.engine = engine

	c.extractor = pipeline.NewExtractor(c.log)
	if c.fetcher == nil {
		c.fetcher = imagefetch.NewHTTPFetcher(imagefetch.WithLogger(c.log))
	}
	c.html = render.NewHTMLRenderer(render.WithExtraCSS(c.cfg.extraCSS), render.WithHTMLLogger(c.log))
	c.docx = render.NewDOCXRenderer(c.log)
	c.markdown = render.NewMarkdownRenderer(c.html)
	c.fpdf = render.NewFPDFRenderer(c.log)

	// Create PDF converter if not injected (e.g., by tests)
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout, c.log)
	}

	return c, nil
}

// Convert extracts the document structure from input, resolves its layout
// and renders it to the requested format.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	cfg, err := ResolveLayout(input.Layout, input.Margin, input.FontFamily)
	if err != nil {
		return nil, err
	}

	doc, err := c.Extract(ctx, input)
	if err != nil {
		return nil, err
	}

	data, err := c.Render(ctx, doc, cfg, format, renderOptions(input))
	if err != nil {
		return nil, err
	}

	out := render.NewResult(data, doc.Title, format)
	c.log.Debug("document converted",
		zap.String("file", input.Filename),
		zap.String("layout", cfg.Name),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)))

	return &ConvertResult{
		Data:     out.Data,
		Filename: out.Filename,
		MIMEType: out.MIMEType,
		Format:   format,
		Document: doc,
		Layout:   cfg,
	}, nil
}

// Extract builds the document structure of input. Relative images are read
// from input.SourceDir, and remote images are downloaded when
// input.FetchImages is set. A failed image never fails the extraction.
func (c *Converter) Extract(ctx context.Context, input Input) (*DocumentStructure, error) {
	if len(input.Data) == 0 {
		return nil, ErrEmptyInput
	}

	doc, err := c.extractor.Extract(ctx, input.Filename, input.Data)
	if err != nil {
		return nil, err
	}

	doc.Images = pipeline.ResolveLocalImages(doc.Images, input.SourceDir, c.log)

	if input.FetchImages && len(doc.Images) > 0 {
		images, err := c.fetcher.FetchAll(ctx, doc.Images)
		if err != nil {
			return nil, fmt.Errorf("fetching images: %w", err)
		}
		doc.Images = images
	}

	if input.Strict {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}

	c.log.Debug("document extracted",
		zap.String("file", input.Filename),
		zap.String("title", doc.Title),
		zap.Int("elements", len(doc.Content)),
		zap.Int("images", len(doc.Images)),
		zap.Int("citations", len(doc.Citations)))
	return doc, nil
}

// Render writes doc in format using the layout cfg.
func (c *Converter) Render(ctx context.Context, doc *DocumentStructure, cfg LayoutConfig, format Format, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		if c.cfg.engine == EngineFPDF {
			return c.fpdf.Render(ctx, doc, cfg, opts)
		}
		return c.chromePDF(ctx, doc, cfg, opts)
	case FormatDOCX:
		return c.docx.Render(ctx, doc, cfg, opts)
	case FormatHTML:
		return c.html.Render(ctx, doc, cfg, opts)
	case FormatMarkdown:
		return c.markdown.Render(ctx, doc, cfg, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CapturePages renders input as HTML and captures up to maxPages page
// images with headless Chrome. A maxPages of zero or less captures every page.
func (c *Converter) CapturePages(ctx context.Context, input Input, maxPages int) ([][]byte, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	capturer, ok := c.pdfConverter.(pageCapturer)
	if !ok {
		return nil, fmt.Errorf("%w: PDF backend cannot capture pages", ErrScreenshot)
	}

	cfg, err := ResolveLayout(input.Layout, input.Margin, input.FontFamily)
	if err != nil {
		return nil, err
	}
	doc, err := c.Extract(ctx, input)
	if err != nil {
		return nil, err
	}
	htmlContent, err := c.html.Render(ctx, doc, cfg, renderOptions(input))
	if err != nil {
		return nil, err
	}
	pdfOpts, err := pdfOptionsFor(cfg)
	if err != nil {
		return nil, err
	}
	return capturer.Capture(ctx, string(htmlContent), pdfOpts, maxPages)
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// chromePDF renders HTML and prints it with the PDF converter.
func (c *Converter) chromePDF(ctx context.Context, doc *DocumentStructure, cfg LayoutConfig, opts RenderOptions) ([]byte, error) {
	htmlContent, err := c.html.Render(ctx, doc, cfg, opts)
	if err != nil {
		return nil, err
	}
	pdfOpts, err := pdfOptionsFor(cfg)
	if err != nil {
		return nil, err
	}
	pdfBytes, err := c.pdfConverter.ToPDF(ctx, string(htmlContent), pdfOpts)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	return pdfBytes, nil
}

func renderOptions(input Input) RenderOptions {
	return RenderOptions{
		TOC:      input.TOC,
		TOCTitle: input.TOCTitle,
		Harvard:  input.Harvard,
	}
}
