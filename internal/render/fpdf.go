package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// ErrFPDFGeneration indicates the pure-Go PDF writer failed.
var ErrFPDFGeneration = errors.New("PDF generation failed")

// Geometry in millimeters.
const (
	mmPerPoint      = 25.4 / 72
	mmPerPixel      = 25.4 / 96
	defaultMarginMM = 20.0
	tocIndentMM     = 6.0
	cellPaddingMM   = 1.5
)

// FPDFRenderer writes PDF files without a browser. It maps layout fonts to
// the PDF core fonts and supports the Windows-1252 character set.
type FPDFRenderer struct {
	log *zap.Logger
}

// NewFPDFRenderer creates an FPDFRenderer. A nil logger disables logging.
func NewFPDFRenderer(log *zap.Logger) *FPDFRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &FPDFRenderer{log: log}
}

// Render produces the PDF bytes.
func (f *FPDFRenderer) Render(ctx context.Context, doc *ir.DocumentStructure, cfg layout.LayoutConfig, opts Options) ([]byte, error) {
	if err := begin(ctx, doc); err != nil {
		return nil, err
	}

	w := newFPDFWriter(prepare(doc, opts), cfg, f.log)
	w.writeTOC()
	for i, el := range w.p.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.writeBlock(i, el)
		if w.pdf.Err() {
			return nil, fmt.Errorf("%w: %v", ErrFPDFGeneration, w.pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

type rgb struct{ r, g, b int }

// fpdfWriter holds the state of one PDF being written.
type fpdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	p   *prepared
	cfg layout.LayoutConfig
	log *zap.Logger

	bodyFont    string
	headingFont string
	titleFont   string
	text        rgb
	heading     rgb
	accent      rgb

	margin   float64
	contentW float64
	lineH    float64 // body line height
	spacing  float64 // space after paragraphs
	indent   float64 // first-line indent
	links    map[string]int
	images   int
}

func newFPDFWriter(p *prepared, cfg layout.LayoutConfig, log *zap.Logger) *fpdfWriter {
	pdf := gofpdf.New("P", "mm", pageSizeName(cfg.PageSize), "")

	margin, err := cfg.MarginMM()
	if err != nil {
		log.Debug("invalid margin, using default", zap.String("margin", cfg.Margin), zap.Error(err))
		margin = defaultMarginMM
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	if p.Title != "" {
		pdf.SetTitle(p.Title, true)
	}
	pdf.SetCreator("go-docstyle", true)

	pageW, _ := pdf.GetPageSize()
	w := &fpdfWriter{
		pdf:         pdf,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		p:           p,
		cfg:         cfg,
		log:         log,
		bodyFont:    coreFont(cfg.Fonts.Body),
		headingFont: coreFont(cfg.Fonts.Heading),
		titleFont:   coreFont(cfg.Fonts.Title),
		text:        parseRGB(cfg.Colors.Text),
		heading:     parseRGB(cfg.Colors.Heading),
		accent:      parseRGB(cfg.Colors.Accent),
		margin:      margin,
		contentW:    pageW - 2*margin,
		lineH:       cfg.Sizes.Body * cfg.LineHeight * mmPerPoint,
		spacing:     float64(lengthTwips(cfg.ParagraphSpacing, cfg.Sizes.Body)) / 20 * mmPerPoint,
		indent:      float64(lengthTwips(cfg.Indent, cfg.Sizes.Body)) / 20 * mmPerPoint,
		links:       make(map[string]int),
	}

	for _, id := range p.anchors {
		w.links[id] = pdf.AddLink()
	}
	pdf.AddPage()
	return w
}

func (w *fpdfWriter) color(c rgb) {
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *fpdfWriter) writeTOC() {
	if len(w.p.TOC) == 0 {
		return
	}
	pdf := w.pdf
	w.color(w.heading)
	pdf.SetFont(w.headingFont, "B", w.cfg.Sizes.Heading)
	pdf.MultiCell(0, w.cfg.Sizes.Heading*1.4*mmPerPoint, w.tr(w.p.TOCTitle), "", "L", false)
	pdf.Ln(w.spacing + 2)

	w.color(w.text)
	pdf.SetFont(w.bodyFont, "", w.cfg.Sizes.Body)
	for _, e := range w.p.TOC {
		pdf.SetX(w.margin + float64(clampLevel(e.Level)-1)*tocIndentMM)
		pdf.WriteLinkID(w.lineH, w.tr(strconv.Itoa(e.Index)+". "+e.Text), w.links[e.ID])
		pdf.Ln(w.lineH)
	}
	pdf.AddPage()
}

func (w *fpdfWriter) writeBlock(i int, el ir.DocumentElement) {
	pdf := w.pdf
	switch el.Kind {
	case ir.KindHeading:
		w.writeHeading(i, el)

	case ir.KindParagraph:
		w.color(w.text)
		pdf.SetX(w.margin + w.indent)
		w.writeInline(el.Text, "", w.cfg.Sizes.Body, w.lineH)
		pdf.Ln(w.lineH)
		pdf.Ln(w.spacing)

	case ir.KindImage:
		img, ok := w.p.image(el.ImageIndex)
		if !ok {
			return
		}
		w.writeImage(img)
		if img.Alt != "" {
			w.color(w.text)
			pdf.SetFont(w.bodyFont, "I", w.cfg.Sizes.Body*0.9)
			pdf.MultiCell(0, w.lineH, w.tr(img.Alt), "", "C", false)
		}
		pdf.Ln(w.spacing)

	case ir.KindList:
		w.color(w.text)
		for n, item := range el.Items {
			marker := "• "
			if el.Ordered {
				marker = strconv.Itoa(n+1) + ". "
			}
			pdf.SetX(w.margin + tocIndentMM)
			pdf.SetFont(w.bodyFont, "", w.cfg.Sizes.Body)
			pdf.Write(w.lineH, w.tr(marker))
			w.writeInline(item, "", w.cfg.Sizes.Body, w.lineH)
			pdf.Ln(w.lineH)
		}
		pdf.Ln(w.spacing)

	case ir.KindTable:
		w.writeTable(el)
		pdf.Ln(w.spacing + 2)

	case ir.KindCode:
		w.color(w.text)
		pdf.SetFillColor(246, 248, 250)
		size := w.cfg.Sizes.Body * 0.9
		pdf.SetFont("Courier", "", size)
		pdf.MultiCell(0, size*1.3*mmPerPoint, w.tr(el.Text), "", "L", true)
		pdf.Ln(w.spacing + 1)
	}
}

func (w *fpdfWriter) writeHeading(i int, el ir.DocumentElement) {
	pdf := w.pdf
	level := clampLevel(el.Level)
	size := w.cfg.Sizes.Heading * headingScale[level-1]
	if size < w.cfg.Sizes.Body {
		size = w.cfg.Sizes.Body
	}
	font, align := w.headingFont, "L"
	if el.Style == ir.StyleTitle {
		size, font, align = w.cfg.Sizes.Title, w.titleFont, "C"
	}
	h := size * 1.25 * mmPerPoint

	// Keep the heading with at least two following lines.
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h+2*w.lineH > pageH-w.margin {
		pdf.AddPage()
	}

	pdf.Ln(h * 0.4)
	if id, ok := w.links[w.p.anchor(i)]; ok {
		pdf.SetLink(id, pdf.GetY(), pdf.PageNo())
	}
	w.color(w.heading)
	pdf.SetFont(font, "B", size)
	pdf.MultiCell(0, h, w.tr(plainText(el.Text, w.p.Syntax)), "", align, false)
	pdf.Ln(h * 0.3)
}

// writeInline writes formatted runs at the current position, breaking out
// to block images for resolved placeholders.
func (w *fpdfWriter) writeInline(s, baseStyle string, size, h float64) {
	pdf := w.pdf
	for _, sp := range parseSpans(s, w.p.Syntax) {
		style := baseStyle
		if sp.Bold && !strings.Contains(style, "B") {
			style += "B"
		}
		if sp.Italic {
			style += "I"
		}
		family := w.bodyFont
		if sp.Code {
			family = "Courier"
		}

		for _, pc := range splitPlaceholders(sp.Text, len(w.p.Images)) {
			if pc.Image >= 0 {
				if pdf.GetX() > w.margin+0.01 {
					pdf.Ln(h)
				}
				w.writeImage(w.p.Images[pc.Image])
				continue
			}
			if sp.Link != "" {
				pdf.SetFont(family, style+"U", size)
				w.color(w.accent)
				pdf.WriteLinkString(h, w.tr(pc.Text), sp.Link)
				w.color(w.text)
				continue
			}
			pdf.SetFont(family, style, size)
			pdf.Write(h, w.tr(pc.Text))
		}
	}
}

// writeImage draws img centered at the current position, scaled to the
// content width. Images without usable bytes are replaced by their label.
func (w *fpdfWriter) writeImage(img ir.ImageElement) {
	pdf := w.pdf
	e, ok := embed(img)
	if !ok {
		w.imageLabel(img)
		return
	}

	w.images++
	name := "img" + strconv.Itoa(w.images)
	opts := gofpdf.ImageOptions{ImageType: imageType(e.Format)}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(e.Data))
	if pdf.Err() {
		w.log.Warn("image rejected by PDF writer", zap.String("url", truncateURL(img.URL)), zap.Error(pdf.Error()))
		pdf.ClearError()
		w.imageLabel(img)
		return
	}

	wmm := float64(e.Width) * mmPerPixel
	hmm := float64(e.Height) * mmPerPixel
	if wmm > w.contentW {
		hmm = hmm * w.contentW / wmm
		wmm = w.contentW
	}
	_, pageH := pdf.GetPageSize()
	if maxH := pageH - 2*w.margin; hmm > maxH {
		wmm = wmm * maxH / hmm
		hmm = maxH
	}
	if pdf.GetY()+hmm > pageH-w.margin {
		pdf.AddPage()
	}

	y := pdf.GetY()
	pdf.ImageOptions(name, w.margin+(w.contentW-wmm)/2, y, wmm, hmm, false, opts, 0, "")
	pdf.SetY(y + hmm + 1)
}

func (w *fpdfWriter) imageLabel(img ir.ImageElement) {
	label := img.Alt
	if label == "" {
		label = img.URL
	}
	w.color(w.text)
	w.pdf.SetFont(w.bodyFont, "I", w.cfg.Sizes.Body)
	w.pdf.MultiCell(0, w.lineH, w.tr("["+label+"]"), "", "C", false)
}

// writeTable draws a grid with equal column widths. Rows grow to fit the
// tallest cell and move to a new page when they would not fit.
func (w *fpdfWriter) writeTable(el ir.DocumentElement) {
	pdf := w.pdf
	cols := 0
	for _, row := range el.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	size := w.cfg.Sizes.Body * 0.95
	h := size * 1.3 * mmPerPoint
	colW := w.contentW / float64(cols)
	_, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(153, 153, 153)
	w.color(w.text)

	for r, row := range el.Rows {
		style := ""
		if el.Header && r == 0 {
			style = "B"
		}
		pdf.SetFont(w.bodyFont, style, size)

		cells := make([]string, cols)
		lines := 1
		for c := range cells {
			if c < len(row) {
				cells[c] = w.tr(plainText(row[c], w.p.Syntax))
			}
			n := len(pdf.SplitLines([]byte(cells[c]), colW-2*cellPaddingMM))
			lines = max(lines, n)
		}
		rowH := float64(lines)*h + 2*cellPaddingMM

		if pdf.GetY()+rowH > pageH-w.margin {
			pdf.AddPage()
		}
		y := pdf.GetY()
		for c, cell := range cells {
			x := w.margin + float64(c)*colW
			pdf.Rect(x, y, colW, rowH, "D")
			pdf.SetXY(x+cellPaddingMM, y+cellPaddingMM)
			pdf.MultiCell(colW-2*cellPaddingMM, h, cell, "", "L", false)
		}
		pdf.SetXY(w.margin, y+rowH)
	}
}

// coreFont maps a CSS font stack to a PDF core font family.
func coreFont(stack string) string {
	s := strings.ToLower(stack)
	switch {
	case strings.Contains(s, "mono"), strings.Contains(s, "courier"), strings.Contains(s, "consolas"):
		return "Courier"
	case strings.Contains(s, "sans"):
		return "Helvetica"
	case strings.Contains(s, "serif"), strings.Contains(s, "times"), strings.Contains(s, "georgia"),
		strings.Contains(s, "garamond"), strings.Contains(s, "baskerville"):
		return "Times"
	default:
		return "Helvetica"
	}
}

func pageSizeName(size string) string {
	if strings.EqualFold(strings.TrimSpace(size), "letter") {
		return "Letter"
	}
	return "A4"
}

func imageType(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// parseRGB reads "#rrggbb"; anything else is black.
func parseRGB(c string) rgb {
	hex := hexColor(c)
	if hex == "auto" {
		return rgb{}
	}
	v, _ := strconv.ParseUint(hex, 16, 32)
	return rgb{r: int(v >> 16 & 0xff), g: int(v >> 8 & 0xff), b: int(v & 0xff)}
}
