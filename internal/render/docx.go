package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// ErrDOCXGeneration indicates the OOXML package could not be written.
var ErrDOCXGeneration = errors.New("DOCX generation failed")

// OOXML namespaces and relationship types.
const (
	nsMain    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic     = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relLink   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Unit conversions.
const (
	twipsPerInch = 1440
	emuPerInch   = 914400
	emuPerPixel  = 9525 // at 96 dpi
	codeFont     = "Courier New"
)

// headingScale steps heading sizes down from the layout heading size.
var headingScale = [6]float64{1.4, 1.0, 0.9, 0.8, 0.75, 0.7}

// DOCXRenderer writes documents as Word OOXML packages.
type DOCXRenderer struct {
	log *zap.Logger
}

// NewDOCXRenderer creates a DOCXRenderer. A nil logger disables logging.
func NewDOCXRenderer(log *zap.Logger) *DOCXRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DOCXRenderer{log: log}
}

// Render builds the .docx package. Images are embedded when their bytes are
// available and decodable; other images fall back to their alt text.
func (d *DOCXRenderer) Render(ctx context.Context, doc *ir.DocumentStructure, cfg layout.LayoutConfig, opts Options) ([]byte, error) {
	if err := begin(ctx, doc); err != nil {
		return nil, err
	}

	w := newDocxWriter(prepare(doc, opts), cfg, d.log)
	body, err := w.document(ctx)
	if err != nil {
		return nil, err
	}
	return w.pack(body)
}

type docxRel struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type docxMedia struct {
	Name string
	Data []byte
}

// docxWriter accumulates the parts of one package.
type docxWriter struct {
	p   *prepared
	cfg layout.LayoutConfig
	log *zap.Logger

	rels      []docxRel
	media     []docxMedia
	links     map[string]string // URL -> relationship id
	drawings  int
	maxWidth  int64 // content width in EMU
	titleUsed bool
}

func newDocxWriter(p *prepared, cfg layout.LayoutConfig, log *zap.Logger) *docxWriter {
	w := &docxWriter{
		p:     p,
		cfg:   cfg,
		log:   log,
		rels:  []docxRel{{ID: "rId1", Type: relStyles, Target: "styles.xml"}},
		links: make(map[string]string),
	}
	pageW, _ := cfg.PageInches()
	w.maxWidth = int64((pageW - 2*w.marginInches()) * emuPerInch)
	return w
}

func (w *docxWriter) marginInches() float64 {
	m, err := w.cfg.MarginInches()
	if err != nil {
		w.log.Debug("invalid margin, using 1in", zap.String("margin", w.cfg.Margin), zap.Error(err))
		return 1
	}
	return m
}

func (w *docxWriter) addRel(typ, target string, external bool) string {
	id := "rId" + strconv.Itoa(len(w.rels)+1)
	w.rels = append(w.rels, docxRel{ID: id, Type: typ, Target: target, External: external})
	return id
}

// document renders word/document.xml.
func (w *docxWriter) document(ctx context.Context) (string, error) {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&buf, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`,
		nsMain, nsRel, nsWP, nsA, nsPic)

	w.writeTOC(&buf)

	lastTable := false
	for i, el := range w.p.Blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		w.writeBlock(&buf, i, el)
		lastTable = el.Kind == ir.KindTable
	}
	if lastTable {
		buf.WriteString(`<w:p/>`)
	}

	w.writeSection(&buf)
	buf.WriteString(`</w:body></w:document>`)
	return buf.String(), nil
}

func (w *docxWriter) writeTOC(buf *strings.Builder) {
	if len(w.p.TOC) == 0 {
		return
	}
	fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="TOCHeading"/></w:pPr>%s</w:p>`, textRun(w.p.TOCTitle, ""))
	for _, e := range w.p.TOC {
		indent := (clampLevel(e.Level) - 1) * 360
		fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="TOC1"/><w:ind w:left="%d"/></w:pPr><w:hyperlink w:anchor="%s">%s</w:hyperlink></w:p>`,
			indent, bookmarkName(e.ID), textRun(strconv.Itoa(e.Index)+". "+e.Text, ""))
	}
	buf.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

func (w *docxWriter) writeBlock(buf *strings.Builder, i int, el ir.DocumentElement) {
	switch el.Kind {
	case ir.KindHeading:
		style := "Heading" + strconv.Itoa(clampLevel(el.Level))
		if !w.titleUsed && el.Level == 1 && w.p.Title != "" && plainText(el.Text, w.p.Syntax) == w.p.Title {
			style = "Title"
			w.titleUsed = true
		}
		bm := bookmarkName(w.p.anchor(i))
		fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr><w:bookmarkStart w:id="%d" w:name="%s"/>%s<w:bookmarkEnd w:id="%d"/></w:p>`,
			style, i, bm, w.runs(el.Text, false), i)

	case ir.KindParagraph:
		fmt.Fprintf(buf, `<w:p>%s</w:p>`, w.runs(el.Text, false))

	case ir.KindImage:
		img, ok := w.p.image(el.ImageIndex)
		if !ok {
			return
		}
		fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="Figure"/></w:pPr>%s</w:p>`, w.imageRun(img))
		if img.Alt != "" {
			fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="Caption"/></w:pPr>%s</w:p>`, textRun(img.Alt, ""))
		}

	case ir.KindList:
		for n, item := range el.Items {
			marker := "•\t"
			if el.Ordered {
				marker = strconv.Itoa(n+1) + ".\t"
			}
			fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="ListParagraph"/></w:pPr>%s%s</w:p>`,
				textRun(marker, ""), w.runs(item, false))
		}

	case ir.KindTable:
		w.writeTable(buf, el)

	case ir.KindCode:
		var runs strings.Builder
		for n, line := range strings.Split(el.Text, "\n") {
			if n > 0 {
				runs.WriteString(`<w:r><w:br/></w:r>`)
			}
			runs.WriteString(textRun(line, ""))
		}
		fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="Code"/></w:pPr>%s</w:p>`, runs.String())
	}
}

func (w *docxWriter) writeTable(buf *strings.Builder, el ir.DocumentElement) {
	cols := 0
	for _, row := range el.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}
	colW := int(float64(w.maxWidth) / emuPerInch * twipsPerInch / float64(cols))

	buf.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="5000" w:type="pct"/></w:tblPr><w:tblGrid>`)
	for c := 0; c < cols; c++ {
		fmt.Fprintf(buf, `<w:gridCol w:w="%d"/>`, colW)
	}
	buf.WriteString(`</w:tblGrid>`)

	for r, row := range el.Rows {
		header := el.Header && r == 0
		buf.WriteString(`<w:tr>`)
		if header {
			buf.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			fmt.Fprintf(buf, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p><w:pPr><w:pStyle w:val="TableText"/></w:pPr>%s</w:p></w:tc>`,
				colW, w.runs(cell, header))
		}
		buf.WriteString(`</w:tr>`)
	}
	buf.WriteString(`</w:tbl>`)
}

func (w *docxWriter) writeSection(buf *strings.Builder) {
	pageW, pageH := w.cfg.PageInches()
	m := int(math.Round(w.marginInches() * twipsPerInch))
	fmt.Fprintf(buf, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
		int(math.Round(pageW*twipsPerInch)), int(math.Round(pageH*twipsPerInch)), m, m, m, m)
}

// runs formats element text as a sequence of runs, resolving placeholders
// to inline drawings.
func (w *docxWriter) runs(s string, bold bool) string {
	var buf strings.Builder
	for _, sp := range parseSpans(s, w.p.Syntax) {
		if bold {
			sp.Bold = true
		}
		for _, pc := range splitPlaceholders(sp.Text, len(w.p.Images)) {
			if pc.Image >= 0 {
				buf.WriteString(w.imageRun(w.p.Images[pc.Image]))
				continue
			}
			w.writeSpan(&buf, sp, pc.Text)
		}
	}
	return buf.String()
}

func (w *docxWriter) writeSpan(buf *strings.Builder, sp span, text string) {
	var rPr strings.Builder
	if sp.Link != "" {
		rPr.WriteString(`<w:rStyle w:val="Hyperlink"/>`)
	}
	if sp.Code {
		fmt.Fprintf(&rPr, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, codeFont, codeFont, codeFont)
	}
	if sp.Bold {
		rPr.WriteString(`<w:b/>`)
	}
	if sp.Italic {
		rPr.WriteString(`<w:i/>`)
	}
	if sp.Strike {
		rPr.WriteString(`<w:strike/>`)
	}

	var runs strings.Builder
	for n, line := range strings.Split(text, "\n") {
		if n > 0 {
			fmt.Fprintf(&runs, `<w:r>%s<w:br/></w:r>`, wrapRPr(rPr.String()))
		}
		if line != "" {
			runs.WriteString(textRun(line, rPr.String()))
		}
	}

	if sp.Link == "" {
		buf.WriteString(runs.String())
		return
	}
	id, ok := w.links[sp.Link]
	if !ok {
		id = w.addRel(relLink, sp.Link, true)
		w.links[sp.Link] = id
	}
	fmt.Fprintf(buf, `<w:hyperlink r:id="%s">%s</w:hyperlink>`, id, runs.String())
}

// imageRun embeds img as an inline drawing, or writes its alt text when
// the bytes are not available.
func (w *docxWriter) imageRun(img ir.ImageElement) string {
	e, ok := embed(img)
	if !ok {
		label := img.Alt
		if label == "" {
			label = img.URL
		}
		w.log.Debug("image not embeddable, using alt text", zap.String("url", truncateURL(img.URL)))
		return textRun("["+label+"]", `<w:i/>`)
	}

	w.drawings++
	n := w.drawings
	name := fmt.Sprintf("image%d.%s", n, e.Extension())
	w.media = append(w.media, docxMedia{Name: "word/media/" + name, Data: e.Data})
	rid := w.addRel(relImage, "media/"+name, false)
	cx, cy := w.extent(e)

	return fmt.Sprintf(`<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d" descr="%s"/>`+
		`<a:graphic><a:graphicData uri="%s"><pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, n, n, xmlEscape(img.Alt), nsPic, n, name, rid, cx, cy)
}

// extent scales the image to at most the content width.
func (w *docxWriter) extent(e embedded) (cx, cy int64) {
	cx = int64(e.Width) * emuPerPixel
	cy = int64(e.Height) * emuPerPixel
	if w.maxWidth > 0 && cx > w.maxWidth {
		cy = cy * w.maxWidth / cx
		cx = w.maxWidth
	}
	return cx, cy
}

// pack zips the package parts.
func (w *docxWriter) pack(document string) ([]byte, error) {
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(w.contentTypes())},
		{"_rels/.rels", []byte(packageRels)},
		{"docProps/core.xml", []byte(w.coreProps())},
		{"word/document.xml", []byte(document)},
		{"word/styles.xml", []byte(w.styles())},
		{"word/_rels/document.xml.rels", []byte(w.documentRels())},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		if err := writeZipPart(zw, part.name, part.data); err != nil {
			return nil, err
		}
	}
	for _, m := range w.media {
		if err := writeZipPart(zw, m.Name, m.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
	}
	return buf.Bytes(), nil
}

func writeZipPart(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrDOCXGeneration, name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrDOCXGeneration, name, err)
	}
	return nil
}

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

func (w *docxWriter) contentTypes() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Default Extension="jpg" ContentType="image/jpeg"/>` +
		`<Default Extension="gif" ContentType="image/gif"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
		`</Types>`
}

func (w *docxWriter) coreProps() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + xmlEscape(w.p.Title) + `</dc:title><dc:creator>go-docstyle</dc:creator></cp:coreProperties>`
}

func (w *docxWriter) documentRels() string {
	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range w.rels {
		fmt.Fprintf(&buf, `<Relationship Id="%s" Type="%s" Target="%s"`, r.ID, r.Type, xmlEscape(r.Target))
		if r.External {
			buf.WriteString(` TargetMode="External"`)
		}
		buf.WriteString(`/>`)
	}
	buf.WriteString(`</Relationships>`)
	return buf.String()
}

// styles renders word/styles.xml from the layout configuration.
func (w *docxWriter) styles() string {
	c := w.cfg
	body := firstFamily(c.Fonts.Body)
	heading := firstFamily(c.Fonts.Heading)
	title := firstFamily(c.Fonts.Title)
	jc := "left"
	if c.TextAlign == "justify" {
		jc = "both"
	}

	var buf strings.Builder
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&buf, `<w:styles xmlns:w="%s">`, nsMain)

	fmt.Fprintf(&buf, `<w:docDefaults><w:rPrDefault><w:rPr>%s<w:color w:val="%s"/>%s</w:rPr></w:rPrDefault>`+
		`<w:pPrDefault><w:pPr><w:spacing w:after="%d" w:line="%d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`,
		fontsXML(body), hexColor(c.Colors.Text), sizeXML(c.Sizes.Body),
		lengthTwips(c.ParagraphSpacing, c.Sizes.Body), int(math.Round(c.LineHeight*240)))

	fmt.Fprintf(&buf, `<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/>`+
		`<w:pPr><w:ind w:firstLine="%d"/><w:jc w:val="%s"/></w:pPr></w:style>`,
		lengthTwips(c.Indent, c.Sizes.Body), jc)

	fmt.Fprintf(&buf, `<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`+
		`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="240"/><w:ind w:firstLine="0"/><w:jc w:val="center"/></w:pPr>`+
		`<w:rPr>%s<w:b/><w:color w:val="%s"/>%s</w:rPr></w:style>`,
		fontsXML(title), hexColor(c.Colors.Heading), sizeXML(c.Sizes.Title))

	for i, f := range headingScale {
		level := i + 1
		size := math.Max(c.Sizes.Heading*f, c.Sizes.Body)
		fmt.Fprintf(&buf, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`+
			`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:ind w:firstLine="0"/><w:jc w:val="left"/><w:outlineLvl w:val="%d"/></w:pPr>`+
			`<w:rPr>%s<w:b/><w:color w:val="%s"/>%s</w:rPr></w:style>`,
			level, level, level-1, fontsXML(heading), hexColor(c.Colors.Heading), sizeXML(size))
	}

	fmt.Fprintf(&buf, `<w:style w:type="paragraph" w:styleId="TOCHeading"><w:name w:val="TOC Heading"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>`+
		`<w:pPr><w:spacing w:after="120"/><w:ind w:firstLine="0"/></w:pPr><w:rPr>%s<w:b/><w:color w:val="%s"/>%s</w:rPr></w:style>`,
		fontsXML(heading), hexColor(c.Colors.Heading), sizeXML(c.Sizes.Heading))

	buf.WriteString(`<w:style w:type="paragraph" w:styleId="TOC1"><w:name w:val="toc 1"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:spacing w:after="60"/><w:ind w:firstLine="0"/><w:jc w:val="left"/></w:pPr></w:style>`)

	buf.WriteString(`<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs><w:ind w:left="720" w:hanging="360"/><w:jc w:val="left"/></w:pPr></w:style>`)

	buf.WriteString(`<w:style w:type="paragraph" w:styleId="TableText"><w:name w:val="Table Text"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/><w:ind w:firstLine="0"/><w:jc w:val="left"/></w:pPr></w:style>`)

	buf.WriteString(`<w:style w:type="paragraph" w:styleId="Figure"><w:name w:val="Figure"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:keepNext/><w:ind w:firstLine="0"/><w:jc w:val="center"/></w:pPr></w:style>`)

	buf.WriteString(`<w:style w:type="paragraph" w:styleId="Caption"><w:name w:val="caption"/><w:basedOn w:val="Normal"/>` +
		`<w:pPr><w:ind w:firstLine="0"/><w:jc w:val="center"/></w:pPr><w:rPr><w:i/></w:rPr></w:style>`)

	fmt.Fprintf(&buf, `<w:style w:type="paragraph" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/>`+
		`<w:pPr><w:shd w:val="clear" w:color="auto" w:fill="F6F8FA"/><w:spacing w:line="240" w:lineRule="auto"/><w:ind w:firstLine="0"/><w:jc w:val="left"/></w:pPr>`+
		`<w:rPr>%s%s</w:rPr></w:style>`, fontsXML(codeFont), sizeXML(c.Sizes.Body*0.9))

	fmt.Fprintf(&buf, `<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/>`+
		`<w:rPr><w:color w:val="%s"/><w:u w:val="single"/></w:rPr></w:style>`, hexColor(c.Colors.Accent))

	buf.WriteString(`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="999999"/><w:left w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="999999"/><w:right w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="999999"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`</w:tblBorders><w:tblCellMar><w:left w:w="108" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>`)

	buf.WriteString(`</w:styles>`)
	return buf.String()
}

func textRun(text, rPr string) string {
	return `<w:r>` + wrapRPr(rPr) + `<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r>`
}

func wrapRPr(rPr string) string {
	if rPr == "" {
		return ""
	}
	return `<w:rPr>` + rPr + `</w:rPr>`
}

func fontsXML(family string) string {
	f := xmlEscape(family)
	return fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, f, f, f)
}

// sizeXML expresses a point size in half-points.
func sizeXML(pt float64) string {
	hp := int(math.Round(pt * 2))
	return fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, hp, hp)
}

// lengthTwips converts a CSS length to twentieths of a point. Em lengths
// are relative to bodyPt. Unparseable lengths yield 0.
func lengthTwips(length string, bodyPt float64) int {
	s := strings.TrimSpace(length)
	if s == "" || s == "0" {
		return 0
	}
	if v, ok := strings.CutSuffix(s, "em"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f * bodyPt * 20))
	}
	in, err := layout.ToInches(s)
	if err != nil {
		return 0
	}
	return int(math.Round(in * twipsPerInch))
}

// firstFamily returns the first family of a CSS font stack.
func firstFamily(stack string) string {
	first, _, _ := strings.Cut(stack, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	if first == "" {
		return "Calibri"
	}
	return first
}

// hexColor converts "#rrggbb" to the OOXML form.
func hexColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	if len(c) != 6 {
		return "auto"
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return "auto"
	}
	return strings.ToUpper(c)
}

// bookmarkName turns a heading id into a valid bookmark name.
func bookmarkName(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}

func xmlEscape(s string) string {
	var buf strings.Builder
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncateURL shortens data URLs for logging.
func truncateURL(u string) string {
	const n = 64
	if len(u) <= n {
		return u
	}
	return u[:n] + "..."
}
