package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownFormat indicates an output format name is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Format identifies an output document format.
type Format string

// Output formats.
const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// DefaultTOCTitle heads the table of contents when no title is configured.
const DefaultTOCTitle = "Table of Contents"

// defaultBaseName names output files of untitled documents.
const defaultBaseName = "document"

// maxSlugLen bounds the length of generated file names.
const maxSlugLen = 80

// ParseFormat maps a user supplied name to a Format.
// "markdown" is accepted as an alias of "md"; empty selects PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "html", "htm":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q (available: pdf, docx, html, md)", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the media type of documents in format f.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Options control content-level rendering features shared by all sinks.
type Options struct {
	TOC      bool   // emit a table of contents before the content
	TOCTitle string // heading of the table of contents, DefaultTOCTitle when empty
	Harvard  bool   // substitute citations with their Harvard form
}

func (o Options) tocTitle() string {
	if t := strings.TrimSpace(o.TOCTitle); t != "" {
		return t
	}
	return DefaultTOCTitle
}

// Result is a rendered document.
type Result struct {
	Data     []byte
	Filename string
	MIMEType string
}

// NewResult wraps rendered bytes with a filename derived from title.
func NewResult(data []byte, title string, f Format) *Result {
	return &Result{
		Data:     data,
		Filename: Filename(title, f),
		MIMEType: f.MIMEType(),
	}
}

// Filename derives an output file name from a document title.
// Untitled documents are named "document".
func Filename(title string, f Format) string {
	return Slug(title) + "." + f.Extension()
}

// Slug lowercases title, folds accents and joins words with hyphens.
// It returns "document" when nothing usable remains.
func Slug(title string) string {
	var buf strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && buf.Len() > 0 {
				buf.WriteByte('-')
			}
			pendingDash = false
			buf.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}

	slug := buf.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(truncateRunes(slug, maxSlugLen), "-")
	}
	if slug == "" {
		return defaultBaseName
	}
	return slug
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
