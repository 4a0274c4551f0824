// Package layout resolves named layout styles into concrete typography,
// spacing, color and page-geometry settings.
//
// Presets live in a read-only registry built at package initialization.
// Resolve always returns a copy, so overrides never reach the registry.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for layout resolution.
var (
	// ErrConfig indicates a configuration error rather than bad document content.
	ErrConfig = errors.New("configuration error")

	// ErrUnknownLayout indicates the requested layout style is not a preset.
	ErrUnknownLayout = fmt.Errorf("%w: unknown layout style", ErrConfig)
)

// Preset names.
const (
	Business = "business"
	Academic = "academic"
	Novel    = "novel"
	Modern   = "modern"
	Classic  = "classic"
)

// DefaultName is the layout used when none is configured.
const DefaultName = Business

// Fonts holds the font family for each typographic role.
type Fonts struct {
	Title   string
	Heading string
	Body    string
}

// Sizes holds font sizes in points.
type Sizes struct {
	Title   float64
	Heading float64
	Body    float64
}

// Colors holds CSS color values.
type Colors struct {
	Text    string
	Heading string
	Accent  string
}

// LayoutConfig fully specifies how a document is laid out.
// It contains only value fields, so assignment copies it completely.
type LayoutConfig struct {
	Name             string
	Fonts            Fonts
	Sizes            Sizes
	LineHeight       float64
	ParagraphSpacing string // CSS length between paragraphs
	Indent           string // first-line indent, "" for none
	TextAlign        string // "left" or "justify"
	Colors           Colors
	PageSize         string // "A4" or "Letter"
	Margin           string // CSS length applied to all four sides
}

// Overrides replace preset fields. Empty strings leave the preset value.
type Overrides struct {
	Margin     string
	FontFamily string
}

// order fixes the listing order of presets.
var order = []string{Business, Academic, Novel, Modern, Classic}

// presets is the read-only registry. Never hand out references into it.
var presets = map[string]LayoutConfig{
	Business: {
		Name:             Business,
		Fonts:            Fonts{Title: "Helvetica, Arial, sans-serif", Heading: "Helvetica, Arial, sans-serif", Body: "Helvetica, Arial, sans-serif"},
		Sizes:            Sizes{Title: 24, Heading: 16, Body: 11},
		LineHeight:       1.5,
		ParagraphSpacing: "0.8em",
		TextAlign:        "left",
		Colors:           Colors{Text: "#222222", Heading: "#1f3864", Accent: "#2e74b5"},
		PageSize:         "A4",
		Margin:           "2cm",
	},
	Academic: {
		Name:             Academic,
		Fonts:            Fonts{Title: "Times New Roman, Times, serif", Heading: "Times New Roman, Times, serif", Body: "Times New Roman, Times, serif"},
		Sizes:            Sizes{Title: 16, Heading: 14, Body: 12},
		LineHeight:       2.0,
		ParagraphSpacing: "0",
		Indent:           "1.27cm",
		TextAlign:        "left",
		Colors:           Colors{Text: "#000000", Heading: "#000000", Accent: "#000000"},
		PageSize:         "Letter",
		Margin:           "2.54cm",
	},
	Novel: {
		Name:             Novel,
		Fonts:            Fonts{Title: "Garamond, Georgia, serif", Heading: "Garamond, Georgia, serif", Body: "Garamond, Georgia, serif"},
		Sizes:            Sizes{Title: 28, Heading: 18, Body: 11.5},
		LineHeight:       1.6,
		ParagraphSpacing: "0",
		Indent:           "1.5em",
		TextAlign:        "justify",
		Colors:           Colors{Text: "#1a1a1a", Heading: "#1a1a1a", Accent: "#5a4632"},
		PageSize:         "A4",
		Margin:           "2.5cm",
	},
	Modern: {
		Name:             Modern,
		Fonts:            Fonts{Title: "Montserrat, Helvetica, sans-serif", Heading: "Montserrat, Helvetica, sans-serif", Body: "Open Sans, Arial, sans-serif"},
		Sizes:            Sizes{Title: 30, Heading: 18, Body: 10.5},
		LineHeight:       1.7,
		ParagraphSpacing: "1em",
		TextAlign:        "left",
		Colors:           Colors{Text: "#333333", Heading: "#111111", Accent: "#00a3a1"},
		PageSize:         "A4",
		Margin:           "1.8cm",
	},
	Classic: {
		Name:             Classic,
		Fonts:            Fonts{Title: "Baskerville, Georgia, serif", Heading: "Baskerville, Georgia, serif", Body: "Georgia, serif"},
		Sizes:            Sizes{Title: 26, Heading: 16, Body: 12},
		LineHeight:       1.5,
		ParagraphSpacing: "0.6em",
		TextAlign:        "justify",
		Colors:           Colors{Text: "#222222", Heading: "#3b2f2f", Accent: "#7b1e1e"},
		PageSize:         "A4",
		Margin:           "2.5cm",
	},
}

// Canonical maps a user-supplied style name to a preset key: surrounding
// space and case are ignored and an empty name selects DefaultName. The
// result is not validated; pass it to Resolve or IsValid.
func Canonical(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultName
	}
	return key
}

// Resolve returns a copy of the named preset with overrides applied.
// name must be one of Names exactly; anything else, including the empty
// string, returns ErrUnknownLayout. Use Canonical for user input.
func Resolve(name string, o Overrides) (LayoutConfig, error) {
	cfg, ok := preset(name)
	if !ok {
		return LayoutConfig{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownLayout, name, strings.Join(order, ", "))
	}

	if m := strings.TrimSpace(o.Margin); m != "" {
		cfg.Margin = m
	}
	if f := strings.TrimSpace(o.FontFamily); f != "" {
		cfg.Fonts = Fonts{Title: f, Heading: f, Body: f}
	}
	return cfg, nil
}

// Names returns the preset names in a stable order.
func Names() []string {
	return append([]string(nil), order...)
}

// IsValid reports whether name is exactly a known preset name.
func IsValid(name string) bool {
	_, ok := presets[name]
	return ok
}

// preset returns a copy of the named preset without overrides.
func preset(name string) (LayoutConfig, bool) {
	cfg, ok := presets[name]
	return cfg, ok
}
