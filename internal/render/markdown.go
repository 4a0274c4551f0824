package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// ErrMarkdownConversion indicates the HTML body could not be turned back
// into Markdown.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// MarkdownRenderer regenerates Markdown from the HTML body, so Harvard
// citations, resolved images and the table of contents carry over.
// Layout styling has no Markdown equivalent and is ignored.
type MarkdownRenderer struct {
	html *HTMLRenderer
}

// NewMarkdownRenderer creates a MarkdownRenderer on top of h.
// A nil h uses a default HTMLRenderer.
func NewMarkdownRenderer(h *HTMLRenderer) *MarkdownRenderer {
	if h == nil {
		h = NewHTMLRenderer()
	}
	return &MarkdownRenderer{html: h}
}

// Render converts the document to Markdown.
func (m *MarkdownRenderer) Render(ctx context.Context, doc *ir.DocumentStructure, _ layout.LayoutConfig, opts Options) ([]byte, error) {
	body, err := m.html.Body(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}
	return []byte(strings.TrimSpace(md) + "\n"), nil
}
