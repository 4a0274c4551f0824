// Package markdown extracts document structure from Markdown source.
//
// The source is parsed with goldmark (GFM extensions) and the resulting block
// tree is walked in document order. Element text is kept as raw inline
// Markdown so the renderer can format emphasis and links later; inline images
// in paragraphs, headings, list items and table cells are lifted into the
// image table and replaced by placeholders.
package markdown

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
)

// Result holds the structure extracted from one Markdown document.
type Result struct {
	Title   string
	Content []ir.DocumentElement
	Images  []ir.ImageElement
}

// Parser converts Markdown into document elements.
type Parser struct {
	md  goldmark.Markdown
	log *zap.Logger
}

// NewParser creates a Parser with GFM extensions (tables, strikethrough,
// autolinks, task lists). A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	return &Parser{md: md, log: log}
}

// Parse extracts headings, paragraphs, lists, tables, code blocks and inline
// images from source. It never fails on malformed Markdown: goldmark accepts
// any input, so the only error is context cancellation.
func (p *Parser) Parse(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := []byte(normalizeLineEndings(source))
	root := p.md.Parser().Parse(text.NewReader(src))

	w := &walker{src: src}
	if err := ast.Walk(root, w.visit); err != nil {
		return nil, err
	}

	p.log.Debug("markdown parsed",
		zap.Int("elements", len(w.res.Content)),
		zap.Int("images", len(w.res.Images)))

	return &w.res, nil
}

// walker accumulates elements during a single tree walk.
type walker struct {
	src []byte
	res Result

	// position counts visited nodes and serves as an ordering hint only.
	position int
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	pos := w.position
	w.position++

	switch node := n.(type) {
	case *ast.Heading:
		w.addHeading(node, pos)
		return ast.WalkSkipChildren, nil

	case *ast.Paragraph:
		w.addParagraph(node, pos)
		return ast.WalkSkipChildren, nil

	case *ast.List:
		w.addList(node, pos)
		return ast.WalkSkipChildren, nil

	case *east.Table:
		w.addTable(node, pos)
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		w.addCode(string(node.Language(w.src)), node)
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		w.addCode("", node)
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (w *walker) addHeading(node *ast.Heading, pos int) {
	raw := inlineSource(node, w.src)
	if raw == "" {
		return
	}
	w.res.Content = append(w.res.Content, ir.DocumentElement{
		Kind:  ir.KindHeading,
		Text:  w.extractImages(raw, pos),
		Level: node.Level,
		Style: ir.StyleForLevel(node.Level),
	})
	if node.Level == 1 && w.res.Title == "" {
		// The title is metadata: images collapse to their alt text.
		w.res.Title = strings.Join(strings.Fields(imagePattern.ReplaceAllString(raw, "$1")), " ")
	}
}

func (w *walker) addParagraph(node *ast.Paragraph, pos int) {
	raw := inlineSource(node, w.src)
	if raw == "" {
		return
	}
	content := w.extractImages(raw, pos)
	w.res.Content = append(w.res.Content, ir.DocumentElement{
		Kind:  ir.KindParagraph,
		Text:  content,
		Style: ir.StyleBody,
	})
}

// extractImages replaces every ![alt](url) in raw with a placeholder and
// records the image. Indices continue across all elements.
func (w *walker) extractImages(raw string, pos int) string {
	matches := imagePattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var buf strings.Builder
	last := 0
	for _, m := range matches {
		buf.WriteString(raw[last:m[0]])

		index := len(w.res.Images)
		w.res.Images = append(w.res.Images, ir.ImageElement{
			Alt:      raw[m[2]:m[3]],
			URL:      raw[m[4]:m[5]],
			Position: pos,
		})
		buf.WriteString(ir.Placeholder(index))
		last = m[1]
	}
	buf.WriteString(raw[last:])
	return buf.String()
}

func (w *walker) addList(node *ast.List, pos int) {
	var items []string
	w.collectItems(node, pos, &items)
	if len(items) == 0 {
		return
	}
	w.res.Content = append(w.res.Content, ir.DocumentElement{
		Kind:    ir.KindList,
		Items:   items,
		Ordered: node.IsOrdered(),
		Style:   ir.StyleBody,
	})
}

// collectItems flattens list items in document order; nested list items
// follow their parent item.
func (w *walker) collectItems(list *ast.List, pos int, items *[]string) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.List:
				w.collectItems(c, pos, items)
			default:
				if t := inlineSource(child, w.src); t != "" {
					*items = append(*items, w.extractImages(t, pos))
				}
			}
		}
	}
}

func (w *walker) addTable(node *east.Table, pos int) {
	var rows [][]string
	header := false
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		if _, ok := row.(*east.TableHeader); ok {
			header = true
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.extractImages(cellText(cell, w.src), pos))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}
	w.res.Content = append(w.res.Content, ir.DocumentElement{
		Kind:   ir.KindTable,
		Rows:   rows,
		Header: header,
		Style:  ir.StyleBody,
	})
}

func (w *walker) addCode(language string, node ast.Node) {
	var buf strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(w.src))
	}
	code := strings.TrimRight(buf.String(), "\n")
	if code == "" {
		return
	}
	w.res.Content = append(w.res.Content, ir.DocumentElement{
		Kind:     ir.KindCode,
		Text:     code,
		Language: language,
		Style:    ir.StyleBody,
	})
}
