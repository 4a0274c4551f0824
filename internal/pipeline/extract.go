package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/citation"
	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/markdown"
	"github.com/alnah/go-docstyle/internal/wordhtml"
)

// ErrUnsupportedInput indicates the input cannot be parsed as its claimed format.
var ErrUnsupportedInput = errors.New("unsupported input")

// Format identifies the input document format.
type Format string

// Supported input formats.
const (
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
)

// DetectFormat classifies a file by suffix. ".md" matches case-insensitively;
// every other name, including names without a suffix, is treated as DOCX.
func DetectFormat(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".md") {
		return FormatMarkdown
	}
	return FormatDOCX
}

// Extractor runs the extraction stages for one input at a time.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	markdown  *markdown.Parser
	word      *wordhtml.Classifier
	citations *citation.Extractor
	log       *zap.Logger
}

// Option configures an Extractor.
type Option func(*extractorConfig)

type extractorConfig struct {
	thresholds wordhtml.Thresholds
}

// WithThresholds overrides the Word heading promotion margins.
func WithThresholds(t wordhtml.Thresholds) Option {
	return func(c *extractorConfig) {
		c.thresholds = t
	}
}

// NewExtractor creates an Extractor. A nil logger disables logging.
func NewExtractor(log *zap.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := extractorConfig{thresholds: wordhtml.DefaultThresholds}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Extractor{
		markdown:  markdown.NewParser(log),
		word:      wordhtml.NewClassifier(log, wordhtml.WithThresholds(cfg.thresholds)),
		citations: citation.NewExtractor(log),
		log:       log,
	}
}

// Extract detects the format of filename and builds the document structure
// from data. Word input that is not a valid archive fails with
// ErrUnsupportedInput; everything else produces a best-effort structure.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*ir.DocumentStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := DetectFormat(filename)
	if format == FormatDOCX && !strings.EqualFold(filepath.Ext(filename), ".docx") {
		e.log.Debug("unrecognized suffix, treating input as Word", zap.String("file", filename))
	}

	switch format {
	case FormatMarkdown:
		return e.ExtractMarkdown(ctx, string(data))
	default:
		return e.ExtractDOCX(ctx, data)
	}
}

// ExtractMarkdown builds the structure of a Markdown source.
func (e *Extractor) ExtractMarkdown(ctx context.Context, source string) (*ir.DocumentStructure, error) {
	res, err := e.markdown.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	cites := e.citations.ExtractBlocks(citationBlocks(res.Content))
	doc := Assemble(res.Title, res.Content, res.Images, cites)
	doc.Syntax = ir.SyntaxMarkdown
	return doc, nil
}

// ExtractDOCX builds the structure of a Word document. The document is first
// converted to font-size annotated HTML and then classified.
func (e *Extractor) ExtractDOCX(ctx context.Context, data []byte) (*ir.DocumentStructure, error) {
	html, err := wordhtml.ConvertDOCX(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedInput, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.ExtractWordHTML(ctx, html)
}

// ExtractWordHTML classifies HTML produced from a Word document.
func (e *Extractor) ExtractWordHTML(ctx context.Context, html string) (*ir.DocumentStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := e.word.Classify(html)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedInput, err)
	}
	cites := e.citations.ExtractBlocks(citationBlocks(res.Content))
	return Assemble(res.Title, res.Content, res.Images, cites), nil
}

// citationBlocks lists the element texts that Harvard substitution rewrites:
// paragraphs, list items and table cells, in document order. Scanning these
// instead of the source keeps every citation original findable in the
// content regardless of line endings, indentation or HTML entities.
func citationBlocks(content []ir.DocumentElement) []string {
	var blocks []string
	for _, el := range content {
		switch el.Kind {
		case ir.KindParagraph:
			blocks = append(blocks, el.Text)
		case ir.KindList:
			blocks = append(blocks, el.Items...)
		case ir.KindTable:
			for _, row := range el.Rows {
				blocks = append(blocks, row...)
			}
		}
	}
	return blocks
}

// Assemble merges extraction results into a DocumentStructure. It copies the
// slices it is given and never rewrites element text, so citation originals
// stay findable in the content.
func Assemble(title string, content []ir.DocumentElement, images []ir.ImageElement, citations []ir.Citation) *ir.DocumentStructure {
	return &ir.DocumentStructure{
		Title:     title,
		Content:   append([]ir.DocumentElement(nil), content...),
		Images:    append([]ir.ImageElement(nil), images...),
		Citations: append([]ir.Citation(nil), citations...),
	}
}
