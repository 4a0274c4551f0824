package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-docstyle/internal/ir"
)

// span is a run of inline text sharing one set of formatting flags.
type span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Strike bool
	Link   string
}

func (s span) sameStyle(o span) bool {
	return s.Bold == o.Bold && s.Italic == o.Italic && s.Code == o.Code &&
		s.Strike == o.Strike && s.Link == o.Link
}

// inlineMarkdown parses element text. goldmark is safe for concurrent use.
var inlineMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Linkify,
	),
)

// parseSpans splits element text into formatted runs. Plain text yields a
// single unformatted span.
func parseSpans(s string, syntax ir.InlineSyntax) []span {
	if s == "" {
		return nil
	}
	if syntax != ir.SyntaxMarkdown {
		return []span{{Text: s}}
	}

	src := []byte(s)
	doc := inlineMarkdown.Parser().Parse(text.NewReader(src))

	var out []span
	var walk func(n ast.Node, st span)
	walk = func(n ast.Node, st span) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Type() == ast.TypeBlock && c.PreviousSibling() != nil {
				out = appendSpan(out, span{Text: " "})
			}

			cur := st
			switch t := c.(type) {
			case *ast.Text:
				cur.Text = string(t.Segment.Value(src))
				out = appendSpan(out, cur)
				switch {
				case t.HardLineBreak():
					out = appendSpan(out, span{Text: "\n"})
				case t.SoftLineBreak():
					out = appendSpan(out, span{Text: " "})
				}
			case *ast.String:
				cur.Text = string(t.Value)
				out = appendSpan(out, cur)
			case *ast.CodeSpan:
				cur.Code = true
				walk(c, cur)
			case *ast.Emphasis:
				if t.Level >= 2 {
					cur.Bold = true
				} else {
					cur.Italic = true
				}
				walk(c, cur)
			case *east.Strikethrough:
				cur.Strike = true
				walk(c, cur)
			case *ast.Link:
				cur.Link = string(t.Destination)
				walk(c, cur)
			case *ast.AutoLink:
				cur.Link = string(t.URL(src))
				cur.Text = string(t.Label(src))
				out = appendSpan(out, cur)
			case *ast.RawHTML:
				for i := 0; i < t.Segments.Len(); i++ {
					seg := t.Segments.At(i)
					cur.Text = string(seg.Value(src))
					out = appendSpan(out, cur)
				}
			default:
				walk(c, cur)
			}
		}
	}
	walk(doc, span{})
	return out
}

// appendSpan merges s into the last span when their styles match.
func appendSpan(spans []span, s span) []span {
	if s.Text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].sameStyle(s) {
		spans[n-1].Text += s.Text
		return spans
	}
	return append(spans, s)
}

// plainText strips inline formatting from element text.
func plainText(s string, syntax ir.InlineSyntax) string {
	spans := parseSpans(s, syntax)
	if len(spans) == 1 {
		return strings.TrimSpace(spans[0].Text)
	}
	var buf strings.Builder
	for _, sp := range spans {
		buf.WriteString(sp.Text)
	}
	return strings.TrimSpace(buf.String())
}
