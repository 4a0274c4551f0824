// Package wordhtml turns Word documents into document structure.
//
// ConvertDOCX produces simple HTML in which every block carries its font
// size as a literal inline style. Classify then infers heading levels from
// those sizes: the most common size is taken as body text and anything
// sufficiently larger is promoted to a heading.
package wordhtml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-docstyle/internal/ir"
)

// DefaultFontSize is assumed for elements without an inline font-size.
const DefaultFontSize = "16px"

// defaultFontPx is DefaultFontSize as a number.
const defaultFontPx = 16.0

var (
	// Leading decimal number of a CSS length, e.g. "18.67" in "18.67px".
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

	// Runs of whitespace collapsed in extracted text.
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Thresholds are the px margins over the body size that promote a block to a
// heading level. A block must exceed a margin strictly.
type Thresholds struct {
	Title      float64 // level 1
	Subtitle   float64 // level 2
	Subheading float64 // level 3
}

// DefaultThresholds promote blocks more than 8, 4 and 2 px above body size.
var DefaultThresholds = Thresholds{Title: 8, Subtitle: 4, Subheading: 2}

// Result holds the structure extracted from one Word document.
type Result struct {
	Title   string
	Content []ir.DocumentElement
	Images  []ir.ImageElement

	// BodySize is the most common font size in px.
	BodySize float64
}

// Classifier infers document structure from font-size annotated HTML.
type Classifier struct {
	thresholds Thresholds
	log        *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThresholds overrides the heading promotion margins.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = t
	}
}

// NewClassifier creates a Classifier. A nil logger disables logging.
func NewClassifier(log *zap.Logger, opts ...Option) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Classifier{thresholds: DefaultThresholds, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify parses htmlContent and returns its blocks in order. Top-level
// <img> elements become images, lists and tables keep their shape, and every
// other top-level element becomes a heading or a paragraph depending on how
// far its font size sits above the body size.
func (c *Classifier) Classify(htmlContent string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	body := doc.Find("body").First()

	var sizes []string
	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		sizes = append(sizes, fontSize(s))
	})
	hist := CountSizes(sizes)
	common := MostCommonSize(hist)

	res := &Result{BodySize: common}
	body.Children().Each(func(i int, s *goquery.Selection) {
		c.classifyBlock(res, i, s, common)
	})

	c.log.Debug("word document classified",
		zap.Float64("bodySize", common),
		zap.Int("distinctSizes", len(hist.Keys)),
		zap.Int("elements", len(res.Content)),
		zap.Int("images", len(res.Images)))

	return res, nil
}

func (c *Classifier) classifyBlock(res *Result, position int, s *goquery.Selection, common float64) {
	switch goquery.NodeName(s) {
	case "img":
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" {
			return
		}
		alt, _ := s.Attr("alt")
		res.Content = append(res.Content, ir.DocumentElement{
			Kind:       ir.KindImage,
			ImageIndex: len(res.Images),
		})
		res.Images = append(res.Images, ir.ImageElement{URL: src, Alt: alt, Position: position})
		return

	case "ul", "ol":
		var items []string
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			if t := cleanText(li.Text()); t != "" {
				items = append(items, t)
			}
		})
		if len(items) == 0 {
			return
		}
		res.Content = append(res.Content, ir.DocumentElement{
			Kind:    ir.KindList,
			Items:   items,
			Ordered: goquery.NodeName(s) == "ol",
			Style:   ir.StyleBody,
		})
		return

	case "table":
		rows, header := tableRows(s)
		if len(rows) == 0 {
			return
		}
		res.Content = append(res.Content, ir.DocumentElement{
			Kind:   ir.KindTable,
			Rows:   rows,
			Header: header,
			Style:  ir.StyleBody,
		})
		return
	}

	text := cleanText(s.Text())
	if text == "" {
		return
	}

	level := HeadingLevel(parsePx(fontSize(s)), common, c.thresholds)
	if level == 0 {
		res.Content = append(res.Content, ir.DocumentElement{
			Kind:  ir.KindParagraph,
			Text:  text,
			Style: ir.StyleBody,
		})
		return
	}

	res.Content = append(res.Content, ir.DocumentElement{
		Kind:  ir.KindHeading,
		Text:  text,
		Level: level,
		Style: ir.StyleForLevel(level),
	})
	if level == 1 && res.Title == "" {
		res.Title = text
	}
}

// tableRows collects cell text per row. The header flag is set when the
// first row uses <th> cells or sits in a <thead>.
func tableRows(s *goquery.Selection) ([][]string, bool) {
	var rows [][]string
	header := false
	s.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() == 0 {
			return
		}
		if i == 0 && (tr.Find("th").Length() > 0 || tr.ParentsFiltered("thead").Length() > 0) {
			header = true
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cleanText(cell.Text()))
		})
		rows = append(rows, row)
	})
	return rows, header
}

// SizeHistogram counts font sizes, remembering first-encounter order.
type SizeHistogram struct {
	Keys   []string
	Counts map[string]int
}

// CountSizes builds a histogram over sizes.
func CountSizes(sizes []string) SizeHistogram {
	h := SizeHistogram{Counts: make(map[string]int)}
	for _, size := range sizes {
		if _, seen := h.Counts[size]; !seen {
			h.Keys = append(h.Keys, size)
		}
		h.Counts[size]++
	}
	return h
}

// MostCommonSize returns the most frequent size in px. On a tie the size
// encountered first wins. An empty histogram yields the default size.
func MostCommonSize(h SizeHistogram) float64 {
	best := ""
	bestCount := 0
	for _, key := range h.Keys {
		if n := h.Counts[key]; n > bestCount {
			best, bestCount = key, n
		}
	}
	if best == "" {
		return defaultFontPx
	}
	return parsePx(best)
}

// HeadingLevel returns 1-3 when size exceeds common by more than the
// matching threshold, and 0 for body text.
func HeadingLevel(size, common float64, t Thresholds) int {
	switch {
	case size > common+t.Title:
		return 1
	case size > common+t.Subtitle:
		return 2
	case size > common+t.Subheading:
		return 3
	default:
		return 0
	}
}

// fontSize returns the literal inline font-size of s, or DefaultFontSize.
// Sizes inherited from ancestors or stylesheets are not resolved.
func fontSize(s *goquery.Selection) string {
	style, ok := s.Attr("style")
	if !ok {
		return DefaultFontSize
	}
	for _, decl := range strings.Split(style, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "font-size") {
			if v := strings.TrimSpace(value); v != "" {
				return v
			}
		}
	}
	return DefaultFontSize
}

// parsePx reads the leading number of a CSS length. Values without one
// fall back to the default size.
func parsePx(value string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(value))
	if m == "" {
		return defaultFontPx
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return defaultFontPx
	}
	return f
}

// cleanText collapses whitespace and applies NFC normalization.
func cleanText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}
