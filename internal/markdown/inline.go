package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Precompiled regex patterns.
var (
	// Line ending normalization.
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Inline image syntax: ![alt](url) with an optional quoted title.
	// Captures: 1=alt, 2=url.
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*([^)\s]*)(?:\s+["'][^"']*["'])?\s*\)`)
)

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// inlineSource returns the raw Markdown covered by a block's lines, one
// source line per output line, with surrounding whitespace trimmed.
func inlineSource(n ast.Node, src []byte) string {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// cellText returns a table cell's raw source, falling back to the text of
// its inline children when the cell carries no line segments.
func cellText(cell ast.Node, src []byte) string {
	if s := inlineSource(cell, src); s != "" {
		return s
	}
	var buf strings.Builder
	_ = ast.Walk(cell, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
