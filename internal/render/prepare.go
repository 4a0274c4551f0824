package render

import (
	"strconv"
	"strings"

	"github.com/alnah/go-docstyle/internal/citation"
	"github.com/alnah/go-docstyle/internal/ir"
)

// anchorPrefix starts the id of every rendered heading.
const anchorPrefix = "sec-"

// tocEntry is one line of the table of contents. Index is sequential over
// all headings and stands in for a page number.
type tocEntry struct {
	Index int
	Level int
	Text  string
	ID    string
}

// prepared is the render-ready view of a document shared by all sinks.
type prepared struct {
	Title    string
	Blocks   []ir.DocumentElement
	Images   []ir.ImageElement
	Syntax   ir.InlineSyntax
	TOC      []tocEntry
	TOCTitle string

	anchors map[int]string // block index -> heading id
}

// prepare copies doc, applies Harvard substitution when requested and
// numbers the headings. The source document is never modified.
func prepare(doc *ir.DocumentStructure, opts Options) *prepared {
	p := &prepared{
		Title:    doc.Title,
		Blocks:   make([]ir.DocumentElement, len(doc.Content)),
		Images:   doc.Images,
		Syntax:   doc.Syntax,
		TOCTitle: opts.tocTitle(),
		anchors:  make(map[int]string),
	}

	for i, el := range doc.Content {
		if opts.Harvard {
			el = harvardize(el, doc.Citations)
		}
		p.Blocks[i] = el

		if el.Kind == ir.KindHeading {
			p.anchors[i] = headingID(len(p.anchors) + 1)
		}
	}

	if opts.TOC {
		for n, h := range doc.Headings() {
			p.TOC = append(p.TOC, tocEntry{
				Index: n + 1,
				Level: h.Level,
				Text:  tocText(h.Text, doc.Syntax),
				ID:    headingID(n + 1),
			})
		}
	}
	return p
}

// headingID is the anchor of the n-th heading, counting from 1.
func headingID(n int) string {
	return anchorPrefix + strconv.Itoa(n)
}

// tocText is the plain heading text without image placeholders.
func tocText(s string, syntax ir.InlineSyntax) string {
	s = ir.PlaceholderPattern.ReplaceAllString(plainText(s, syntax), "")
	return strings.Join(strings.Fields(s), " ")
}

// anchor returns the heading id of block i, or "" for other blocks.
func (p *prepared) anchor(i int) string {
	return p.anchors[i]
}

// image returns images[n] when n is in range.
func (p *prepared) image(n int) (ir.ImageElement, bool) {
	if n < 0 || n >= len(p.Images) {
		return ir.ImageElement{}, false
	}
	return p.Images[n], true
}

// harvardize substitutes citations in paragraph, list and table text.
func harvardize(el ir.DocumentElement, cites []ir.Citation) ir.DocumentElement {
	if len(cites) == 0 {
		return el
	}
	switch el.Kind {
	case ir.KindParagraph:
		el.Text = citation.Apply(el.Text, cites)
	case ir.KindList:
		items := make([]string, len(el.Items))
		for i, it := range el.Items {
			items[i] = citation.Apply(it, cites)
		}
		el.Items = items
	case ir.KindTable:
		rows := make([][]string, len(el.Rows))
		for i, row := range el.Rows {
			cells := make([]string, len(row))
			for j, c := range row {
				cells[j] = citation.Apply(c, cites)
			}
			rows[i] = cells
		}
		el.Rows = rows
	}
	return el
}

// piece is a run of text or a resolved image placeholder.
type piece struct {
	Text  string
	Image int // index into the image table, -1 for text
}

// splitPlaceholders cuts text around placeholders that resolve to one of
// n images. Placeholders without a matching image stay in the text.
func splitPlaceholders(text string, n int) []piece {
	locs := ir.PlaceholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []piece{{Text: text, Image: -1}}
	}

	var pieces []piece
	start := 0
	for _, loc := range locs {
		idx, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || idx < 0 || idx >= n {
			continue
		}
		if loc[0] > start {
			pieces = append(pieces, piece{Text: text[start:loc[0]], Image: -1})
		}
		pieces = append(pieces, piece{Image: idx})
		start = loc[1]
	}
	if start < len(text) {
		pieces = append(pieces, piece{Text: text[start:], Image: -1})
	}
	return pieces
}
