package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// CodeStyle is the chroma style used for highlighted code blocks.
const CodeStyle = "github"

// htmlTemplate wraps the rendered body in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// tocIndentEm is the left padding added per heading level in the TOC.
const tocIndentEm = 1.5

// HTMLRenderer renders documents as standalone HTML styled by the layout.
type HTMLRenderer struct {
	code     goldmark.Markdown
	extraCSS string
	log      *zap.Logger
}

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*HTMLRenderer)

// WithExtraCSS appends css after the layout stylesheet.
func WithExtraCSS(css string) HTMLOption {
	return func(r *HTMLRenderer) {
		r.extraCSS = css
	}
}

// WithHTMLLogger sets the logger. A nil logger disables logging.
func WithHTMLLogger(log *zap.Logger) HTMLOption {
	return func(r *HTMLRenderer) {
		if log != nil {
			r.log = log
		}
	}
}

// NewHTMLRenderer creates an HTMLRenderer. Code blocks are highlighted with
// CSS classes so the stylesheet controls their colors.
func NewHTMLRenderer(opts ...HTMLOption) *HTMLRenderer {
	r := &HTMLRenderer{
		code: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(CodeStyle),
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithRendererOptions(
				goldhtml.WithXHTML(),
			),
		),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces a complete HTML document with the layout stylesheet
// embedded in its head.
func (r *HTMLRenderer) Render(ctx context.Context, doc *ir.DocumentStructure, cfg layout.LayoutConfig, opts Options) ([]byte, error) {
	body, err := r.Body(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	title := doc.Title
	if title == "" {
		title = "Document"
	}
	page := fmt.Sprintf(htmlTemplate, html.EscapeString(title), body)
	return []byte(injectCSS(page, r.Stylesheet(cfg))), nil
}

// Body renders the document content as an HTML fragment, table of
// contents included when requested.
func (r *HTMLRenderer) Body(ctx context.Context, doc *ir.DocumentStructure, opts Options) (string, error) {
	if err := begin(ctx, doc); err != nil {
		return "", err
	}

	p := prepare(doc, opts)
	var buf strings.Builder
	buf.WriteString(tocHTML(p.TOC, p.TOCTitle))

	for i, el := range p.Blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := r.writeBlock(&buf, p, i, el); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Stylesheet returns the CSS embedded by Render: the layout rules, the code
// highlighting rules and any extra CSS.
func (r *HTMLRenderer) Stylesheet(cfg layout.LayoutConfig) string {
	var buf strings.Builder
	buf.WriteString(cfg.CSS())
	buf.WriteString(highlightCSS())
	if r.extraCSS != "" {
		buf.WriteString("\n")
		buf.WriteString(r.extraCSS)
	}
	return buf.String()
}

func (r *HTMLRenderer) writeBlock(buf *strings.Builder, p *prepared, i int, el ir.DocumentElement) error {
	switch el.Kind {
	case ir.KindHeading:
		level := clampLevel(el.Level)
		fmt.Fprintf(buf, `<h%d id="%s"`, level, p.anchor(i))
		if el.Style != "" && el.Style != ir.StyleBody {
			fmt.Fprintf(buf, ` class="%s"`, html.EscapeString(string(el.Style)))
		}
		fmt.Fprintf(buf, ">%s</h%d>\n", inlineHTML(el.Text, p), level)

	case ir.KindParagraph:
		fmt.Fprintf(buf, "<p>%s</p>\n", inlineHTML(el.Text, p))

	case ir.KindImage:
		img, ok := p.image(el.ImageIndex)
		if !ok {
			r.log.Debug("image element out of range", zap.Int("index", el.ImageIndex))
			return nil
		}
		buf.WriteString("<figure>")
		buf.WriteString(imgTag(img, ""))
		if img.Alt != "" {
			fmt.Fprintf(buf, "<figcaption>%s</figcaption>", html.EscapeString(img.Alt))
		}
		buf.WriteString("</figure>\n")

	case ir.KindList:
		tag := "ul"
		if el.Ordered {
			tag = "ol"
		}
		fmt.Fprintf(buf, "<%s>\n", tag)
		for _, item := range el.Items {
			fmt.Fprintf(buf, "<li>%s</li>\n", inlineHTML(item, p))
		}
		fmt.Fprintf(buf, "</%s>\n", tag)

	case ir.KindTable:
		writeTableHTML(buf, p, el)

	case ir.KindCode:
		code, err := r.codeHTML(el)
		if err != nil {
			return err
		}
		buf.WriteString(code)
	}
	return nil
}

func writeTableHTML(buf *strings.Builder, p *prepared, el ir.DocumentElement) {
	rows := el.Rows
	buf.WriteString("<table>\n")
	if el.Header && len(rows) > 0 {
		buf.WriteString("<thead><tr>")
		for _, cell := range rows[0] {
			fmt.Fprintf(buf, "<th>%s</th>", inlineHTML(cell, p))
		}
		buf.WriteString("</tr></thead>\n")
		rows = rows[1:]
	}
	buf.WriteString("<tbody>\n")
	for _, row := range rows {
		buf.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(buf, "<td>%s</td>", inlineHTML(cell, p))
		}
		buf.WriteString("</tr>\n")
	}
	buf.WriteString("</tbody>\n</table>\n")
}

// codeHTML highlights a code element by rendering it as a fenced block.
func (r *HTMLRenderer) codeHTML(el ir.DocumentElement) (string, error) {
	fence := "```"
	for strings.Contains(el.Text, fence) {
		fence += "`"
	}
	src := fence + el.Language + "\n" + el.Text + "\n" + fence + "\n"

	var buf bytes.Buffer
	if err := r.code.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// inlineHTML formats element text and resolves image placeholders.
func inlineHTML(s string, p *prepared) string {
	var buf strings.Builder
	for _, sp := range parseSpans(s, p.Syntax) {
		for _, pc := range splitPlaceholders(sp.Text, len(p.Images)) {
			if pc.Image >= 0 {
				buf.WriteString(imgTag(p.Images[pc.Image], "inline"))
				continue
			}
			buf.WriteString(spanHTML(sp, pc.Text))
		}
	}
	return buf.String()
}

// spanHTML escapes text and wraps it in the tags of the span's style.
func spanHTML(sp span, text string) string {
	out := html.EscapeString(text)
	out = strings.ReplaceAll(out, "\n", "<br />\n")
	if sp.Code {
		out = "<code>" + out + "</code>"
	}
	if sp.Strike {
		out = "<del>" + out + "</del>"
	}
	if sp.Italic {
		out = "<em>" + out + "</em>"
	}
	if sp.Bold {
		out = "<strong>" + out + "</strong>"
	}
	if sp.Link != "" && !goldhtml.IsDangerousURL([]byte(sp.Link)) {
		out = `<a href="` + html.EscapeString(sp.Link) + `">` + out + "</a>"
	}
	return out
}

func imgTag(img ir.ImageElement, class string) string {
	var buf strings.Builder
	buf.WriteString("<img")
	if class != "" {
		fmt.Fprintf(&buf, ` class="%s"`, class)
	}
	fmt.Fprintf(&buf, ` src="%s" alt="%s" />`, html.EscapeString(imageSource(img)), html.EscapeString(img.Alt))
	return buf.String()
}

// tocHTML builds the table of contents. Each entry shows the heading's
// sequential index in place of a page number.
func tocHTML(entries []tocEntry, title string) string {
	if len(entries) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)
	buf.WriteString(`<h2 class="toc-title">`)
	buf.WriteString(html.EscapeString(title))
	buf.WriteString(`</h2><ol>`)

	for _, e := range entries {
		buf.WriteString(`<li class="toc-item"`)
		if indent := float64(clampLevel(e.Level)-1) * tocIndentEm; indent > 0 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, indent)
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(e.ID))
		buf.WriteString(`"><span class="toc-index">`)
		buf.WriteString(strconv.Itoa(e.Index))
		buf.WriteString(`</span> `)
		buf.WriteString(html.EscapeString(e.Text))
		buf.WriteString(`</a></li>`)
	}

	buf.WriteString("</ol></nav>\n")
	return buf.String()
}

// injectCSS inserts a <style> block before </head>, after <body>, or at
// the start of the document, in that order of preference.
func injectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(css) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}
	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}
	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could close the <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// highlightCSS returns the class rules for CodeStyle.
func highlightCSS() string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(CodeStyle)); err != nil {
		return ""
	}
	return buf.String()
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	default:
		return level
	}
}
