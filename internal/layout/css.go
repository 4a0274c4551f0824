package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Orphan and widow line counts for printed paragraphs.
const (
	defaultOrphans = 2
	defaultWidows  = 2
)

// CSS renders the configuration as a print stylesheet.
func (c LayoutConfig) CSS() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, `@page {
  size: %s;
  margin: %s;
}
`, c.pageSize(), c.Margin)

	fmt.Fprintf(&buf, `
body {
  font-family: %s;
  font-size: %spt;
  line-height: %s;
  color: %s;
  text-align: %s;
  margin: 0;
}
`, fontStack(c.Fonts.Body), pt(c.Sizes.Body), pt(c.LineHeight), c.Colors.Text, c.TextAlign)

	fmt.Fprintf(&buf, `
p {
  margin: 0 0 %s 0;
  text-indent: %s;
}
`, zeroIfEmpty(c.ParagraphSpacing), zeroIfEmpty(c.Indent))

	fmt.Fprintf(&buf, `
h1.title, .doc-title {
  font-family: %s;
  font-size: %spt;
  color: %s;
  text-align: center;
}
`, fontStack(c.Fonts.Title), pt(c.Sizes.Title), c.Colors.Heading)

	fmt.Fprintf(&buf, `
h1, h2, h3, h4, h5, h6 {
  font-family: %s;
  color: %s;
  line-height: 1.25;
  text-indent: 0;
}
`, fontStack(c.Fonts.Heading), c.Colors.Heading)

	// Heading sizes step down from the heading size towards the body size.
	steps := []float64{1.4, 1.0, 0.9, 0.8, 0.75, 0.7}
	for i, f := range steps {
		size := c.Sizes.Heading * f
		if size < c.Sizes.Body {
			size = c.Sizes.Body
		}
		fmt.Fprintf(&buf, "h%d { font-size: %spt; }\n", i+1, pt(size))
	}

	fmt.Fprintf(&buf, `
a { color: %s; }
blockquote { border-left: 3px solid %s; margin-left: 0; padding-left: 1em; }
`, c.Colors.Accent, c.Colors.Accent)

	buf.WriteString(`
img { max-width: 100%; height: auto; }
figure { margin: 1em 0; text-align: center; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; text-indent: 0; }
th, td { border: 1px solid #999; padding: 0.3em 0.5em; text-align: left; }
pre { white-space: pre-wrap; font-size: 0.9em; padding: 0.6em; background: #f6f8fa; }
code { font-family: Menlo, Consolas, monospace; }
`)

	fmt.Fprintf(&buf, `
nav.toc { margin-bottom: 2em; text-indent: 0; }
nav.toc h2 { color: %s; }
nav.toc ol { list-style: none; padding-left: 0; }
nav.toc .toc-index { display: inline-block; min-width: 2em; color: %s; }
`, c.Colors.Heading, c.Colors.Accent)

	buf.WriteString(pageBreaksCSS())
	return buf.String()
}

// pageBreaksCSS keeps headings with the following content and applies
// orphan and widow control.
func pageBreaksCSS() string {
	return fmt.Sprintf(`
h1, h2, h3, h4, h5, h6 {
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
p, li, blockquote {
  orphans: %d;
  widows: %d;
}
nav.toc {
  break-after: page;
  page-break-after: always;
}
`, defaultOrphans, defaultWidows)
}

func (c LayoutConfig) pageSize() string {
	if c.PageSize == "" {
		return "A4"
	}
	return c.PageSize
}

// genericFamilies are the CSS generic font keywords, emitted unquoted.
var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-serif": true, "ui-sans-serif": true,
	"ui-monospace": true, "ui-rounded": true, "math": true, "emoji": true,
	"fangsong": true,
}

// fontStack quotes every family name except generic keywords, so no family
// can close the declaration it is written into.
func fontStack(families string) string {
	parts := strings.Split(families, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && (p[0] == '"' || p[0] == '\'') && p[len(p)-1] == p[0] {
			p = strings.TrimSpace(p[1 : len(p)-1])
		}
		if p == "" {
			continue
		}
		if genericFamilies[strings.ToLower(p)] {
			out = append(out, strings.ToLower(p))
			continue
		}
		out = append(out, `"`+escapeCSSString(p)+`"`)
	}
	if len(out) == 0 {
		return "sans-serif"
	}
	return strings.Join(out, ", ")
}

// escapeCSSString escapes a value placed inside a quoted CSS string.
func escapeCSSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\A `)
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

func pt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
