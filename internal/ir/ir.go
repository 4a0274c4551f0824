// Package ir defines the format-agnostic document representation shared by
// the Markdown parser, the Word classifier and the renderers.
//
// A DocumentStructure is a plain value: content is stored in reading order,
// while images and citations live in side tables referenced by index. The
// renderers never need to know which input format produced the structure.
package ir

import (
	"fmt"
	"regexp"
	"strconv"
)

// ElementKind tags the variant held by a DocumentElement.
type ElementKind string

// Element kinds.
const (
	KindHeading   ElementKind = "heading"
	KindParagraph ElementKind = "paragraph"
	KindImage     ElementKind = "image"
	KindList      ElementKind = "list"
	KindTable     ElementKind = "table"
	KindCode      ElementKind = "code"
)

// HeadingStyle names the typographic role of a heading.
type HeadingStyle string

// Heading styles, indexed by level through StyleForLevel.
const (
	StyleTitle        HeadingStyle = "title"
	StyleSubtitle     HeadingStyle = "subtitle"
	StyleSubheading   HeadingStyle = "subheading"
	StyleMinorHeading HeadingStyle = "minor-heading"
	StyleCaption      HeadingStyle = "caption"
	StyleBody         HeadingStyle = "body"
)

// StyleForLevel maps a heading level to its style. Levels outside 1-6
// fall back to StyleBody.
func StyleForLevel(level int) HeadingStyle {
	switch level {
	case 1:
		return StyleTitle
	case 2:
		return StyleSubtitle
	case 3:
		return StyleSubheading
	case 4:
		return StyleMinorHeading
	case 5, 6:
		return StyleCaption
	default:
		return StyleBody
	}
}

// DocumentElement is one block of content.
// Only the fields relevant to Kind are populated.
type DocumentElement struct {
	Kind ElementKind

	// Heading and paragraph.
	Text  string
	Level int          // 1-6 for headings, 0 otherwise
	Style HeadingStyle // StyleBody for paragraphs

	// Image: index into DocumentStructure.Images.
	ImageIndex int

	// List.
	Items   []string
	Ordered bool

	// Table. The first row is a header row when Header is true.
	Rows   [][]string
	Header bool

	// Code.
	Language string
}

// ImageElement references an image extracted from the source document.
// Blob stays nil until an image fetcher fills it; a nil Blob means the
// renderer should use URL directly.
type ImageElement struct {
	URL      string
	Alt      string
	Position int
	Blob     []byte
	MIMEType string
}

// HasBlob reports whether the image bytes have been downloaded.
func (img ImageElement) HasBlob() bool {
	return len(img.Blob) > 0
}

// Citation is a parenthetical citation found in the source text.
// Original appears verbatim in the scanned text; Position is its rune offset.
type Citation struct {
	Original string
	Harvard  string
	Position int
}

// InlineSyntax tells renderers how to read element text.
type InlineSyntax string

// Inline syntaxes. The zero value is SyntaxPlain.
const (
	SyntaxPlain    InlineSyntax = ""
	SyntaxMarkdown InlineSyntax = "markdown"
)

// DocumentStructure is the intermediate representation of one document.
type DocumentStructure struct {
	Title     string
	Content   []DocumentElement
	Images    []ImageElement
	Citations []Citation

	// Syntax is SyntaxMarkdown when element text may carry inline Markdown
	// such as emphasis and links.
	Syntax InlineSyntax
}

// Headings returns the heading elements in reading order.
func (d *DocumentStructure) Headings() []DocumentElement {
	var headings []DocumentElement
	for _, el := range d.Content {
		if el.Kind == KindHeading {
			headings = append(headings, el)
		}
	}
	return headings
}

// PlaceholderPrefix starts every image placeholder token.
const PlaceholderPrefix = "IMAGE_PLACEHOLDER_"

// PlaceholderPattern matches image placeholders and captures the index.
var PlaceholderPattern = regexp.MustCompile(`IMAGE_PLACEHOLDER_(\d+)`)

// Placeholder returns the placeholder token for image index n.
func Placeholder(n int) string {
	return PlaceholderPrefix + strconv.Itoa(n)
}

// PlaceholderIndices returns the image indices referenced by text, in order.
func PlaceholderIndices(text string) []int {
	matches := PlaceholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue // overflow, treated as unmatched
		}
		indices = append(indices, n)
	}
	return indices
}

// Validate checks that every placeholder and image element references an
// existing image. Renderers tolerate dangling placeholders, so this is used
// by tests and by the CLI's --strict mode rather than on the hot path.
func (d *DocumentStructure) Validate() error {
	for i, el := range d.Content {
		switch el.Kind {
		case KindParagraph:
			for _, n := range PlaceholderIndices(el.Text) {
				if n < 0 || n >= len(d.Images) {
					return fmt.Errorf("content[%d]: placeholder %d out of range (%d images)", i, n, len(d.Images))
				}
			}
		case KindImage:
			if el.ImageIndex < 0 || el.ImageIndex >= len(d.Images) {
				return fmt.Errorf("content[%d]: image index %d out of range (%d images)", i, el.ImageIndex, len(d.Images))
			}
		}
	}
	return nil
}
