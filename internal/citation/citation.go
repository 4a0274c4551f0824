// Package citation finds parenthetical author-year citations in source text
// and rewrites them in Harvard form, "(Author, Year)".
//
// Matching is leftmost and non-overlapping: the text is scanned once from the
// start and each match resumes scanning after the previous one. Nested
// parentheses are not supported; a span like "(see (Smith, 2019))" yields
// only the inner "(Smith, 2019)".
package citation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
)

// Precompiled patterns.
var (
	// A parenthesized span without nested parentheses that contains a
	// standalone 4-digit token.
	spanPattern = regexp.MustCompile(`\([^()]*\b\d{4}\b[^()]*\)`)

	// A standalone 4-digit year token inside one comma-separated part.
	yearPattern = regexp.MustCompile(`\b\d{4}\b`)
)

// Extractor scans text for citations.
// The zero value is ready to use and logs nothing.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates an Extractor that reports unparseable citations to log.
// A nil logger disables logging.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Extract returns every citation in text, in scan order.
// Spans that cannot be normalized keep Harvard equal to Original.
func (e *Extractor) Extract(text string) []ir.Citation {
	locs := spanPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	citations := make([]ir.Citation, 0, len(locs))
	for _, loc := range locs {
		original := text[loc[0]:loc[1]]
		harvard, ok := normalize(original)
		if !ok && e.log != nil {
			e.log.Debug("citation left unchanged", zap.String("span", original))
		}
		citations = append(citations, ir.Citation{
			Original: original,
			Harvard:  harvard,
			Position: utf8.RuneCountInString(text[:loc[0]]),
		})
	}
	return citations
}

// Extract scans text with a silent Extractor.
func Extract(text string) []ir.Citation {
	return (&Extractor{}).Extract(text)
}

// BlockSeparator joins block texts for ExtractBlocks positions.
const BlockSeparator = "\n\n"

// ExtractBlocks scans each block on its own so that no citation spans two
// blocks and every Original is a substring of the block it came from.
// Positions are rune offsets into the blocks joined by BlockSeparator.
func (e *Extractor) ExtractBlocks(blocks []string) []ir.Citation {
	var (
		citations []ir.Citation
		offset    int
	)
	sep := utf8.RuneCountInString(BlockSeparator)
	for _, block := range blocks {
		for _, c := range e.Extract(block) {
			c.Position += offset
			citations = append(citations, c)
		}
		offset += utf8.RuneCountInString(block) + sep
	}
	return citations
}

// normalize formats span as "(Author, Year)". Whitespace runs in the author,
// including line breaks of wrapped text, collapse to one space.
// The bool is false when the span was returned unchanged.
func normalize(span string) (string, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(span, "("), ")")

	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return span, false
	}

	author := strings.Join(strings.Fields(parts[0]), " ")
	if author == "" {
		return span, false
	}

	for _, part := range parts[1:] {
		if year := yearPattern.FindString(part); year != "" {
			return "(" + author + ", " + year + ")", true
		}
	}
	return span, false
}

// Apply replaces every occurrence of each citation's Original with its
// Harvard form. Citations are applied in list order and text produced by an
// earlier replacement is never matched again by a later citation.
func Apply(text string, citations []ir.Citation) string {
	if len(citations) == 0 || text == "" {
		return text
	}

	// Segments already produced by a replacement are frozen.
	type segment struct {
		text   string
		frozen bool
	}
	segments := []segment{{text: text}}

	for _, c := range citations {
		if c.Original == "" {
			continue
		}
		next := make([]segment, 0, len(segments))
		for _, seg := range segments {
			if seg.frozen || !strings.Contains(seg.text, c.Original) {
				next = append(next, seg)
				continue
			}
			pieces := strings.Split(seg.text, c.Original)
			for i, piece := range pieces {
				if i > 0 {
					next = append(next, segment{text: c.Harvard, frozen: true})
				}
				if piece != "" {
					next = append(next, segment{text: piece})
				}
			}
		}
		segments = next
	}

	var buf strings.Builder
	buf.Grow(len(text))
	for _, seg := range segments {
		buf.WriteString(seg.text)
	}
	return buf.String()
}
