package render

import (
	"context"
	"errors"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// ErrNilDocument indicates a renderer was called without a document.
var ErrNilDocument = errors.New("nil document")

// Renderer converts a document structure into output bytes.
type Renderer interface {
	Render(ctx context.Context, doc *ir.DocumentStructure, cfg layout.LayoutConfig, opts Options) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Renderer = (*HTMLRenderer)(nil)
	_ Renderer = (*DOCXRenderer)(nil)
	_ Renderer = (*FPDFRenderer)(nil)
	_ Renderer = (*MarkdownRenderer)(nil)
)

// begin validates the common preconditions of every Render call.
func begin(ctx context.Context, doc *ir.DocumentStructure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil {
		return ErrNilDocument
	}
	return nil
}
