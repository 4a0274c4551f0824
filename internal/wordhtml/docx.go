package wordhtml

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
)

// Sentinel errors for DOCX conversion.
var (
	ErrInvalidDOCX      = errors.New("not a valid Word document")
	ErrMissingDocument  = errors.New("word/document.xml not found in archive")
	ErrMalformedDocXML  = errors.New("malformed word/document.xml")
	ErrDocumentTooLarge = errors.New("document part exceeds maximum size")
)

// maxPartSize bounds any single part read from the archive (64MB).
const maxPartSize = 64 << 20

// docxPaths of the parts read during conversion.
const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
	relsPart     = "word/_rels/document.xml.rels"
)

// ConvertDOCX converts a Word document into simple HTML suitable for
// Classify. Each body paragraph becomes <p> or <hN> with its resolved font
// size written as a literal inline "font-size:Npx" style. Images become
// top-level <img> siblings carrying data URLs; numbered paragraphs become
// list items and tables keep their cell text.
func ConvertDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDOCX, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docFile, ok := files[documentPart]
	if !ok {
		return "", ErrMissingDocument
	}

	// Styles and relationships are optional; a document without them still converts.
	styles := newStyleSheet(nil)
	if f, ok := files[stylesPart]; ok {
		if raw, err := readPart(f); err == nil {
			styles = parseStyles(raw)
		}
	}
	rels := map[string]relationship{}
	if f, ok := files[relsPart]; ok {
		if raw, err := readPart(f); err == nil {
			rels = parseRelationships(raw)
		}
	}

	raw, err := readPart(docFile)
	if err != nil {
		return "", err
	}
	blocks, err := parseDocument(raw)
	if err != nil {
		return "", err
	}

	w := &htmlWriter{styles: styles, rels: rels, files: files}
	return w.write(blocks), nil
}

// readPart reads an archive member with a size cap.
func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrDocumentTooLarge, f.Name)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// styles.xml
// ---------------------------------------------------------------------------

type valAttr struct {
	Val string `xml:"val,attr"`
}

type stylesXML struct {
	DocDefaults struct {
		RPrDefault struct {
			RPr struct {
				Sz valAttr `xml:"sz"`
			} `xml:"rPr"`
		} `xml:"rPrDefault"`
	} `xml:"docDefaults"`
	Styles []styleXML `xml:"style"`
}

type styleXML struct {
	Type    string  `xml:"type,attr"`
	StyleID string  `xml:"styleId,attr"`
	Default string  `xml:"default,attr"`
	Name    valAttr `xml:"name"`
	BasedOn valAttr `xml:"basedOn"`
	PPr     struct {
		OutlineLvl *valAttr `xml:"outlineLvl"`
	} `xml:"pPr"`
	RPr struct {
		Sz valAttr `xml:"sz"`
	} `xml:"rPr"`
}

// styleSheet resolves paragraph style properties through basedOn chains.
type styleSheet struct {
	byID           map[string]styleXML
	defaultPara    string
	defaultSizeHpt int
}

func newStyleSheet(s *stylesXML) *styleSheet {
	sheet := &styleSheet{byID: map[string]styleXML{}}
	if s == nil {
		return sheet
	}
	sheet.defaultSizeHpt = atoi(s.DocDefaults.RPrDefault.RPr.Sz.Val)
	for _, st := range s.Styles {
		sheet.byID[st.StyleID] = st
		if st.Type == "paragraph" && (st.Default == "1" || st.Default == "true") {
			sheet.defaultPara = st.StyleID
		}
	}
	return sheet
}

func parseStyles(raw []byte) *styleSheet {
	var s stylesXML
	if err := xml.Unmarshal(raw, &s); err != nil {
		return newStyleSheet(nil)
	}
	return newStyleSheet(&s)
}

// sizeHpt returns the font size in half-points for a paragraph style,
// following basedOn links and falling back to document defaults.
func (s *styleSheet) sizeHpt(styleID string) int {
	if styleID == "" {
		styleID = s.defaultPara
	}
	seen := map[string]bool{}
	for id := styleID; id != "" && !seen[id]; {
		seen[id] = true
		st, ok := s.byID[id]
		if !ok {
			break
		}
		if n := atoi(st.RPr.Sz.Val); n > 0 {
			return n
		}
		id = st.BasedOn.Val
	}
	return s.defaultSizeHpt
}

// headingLevel returns 1-6 for heading-like paragraph styles, 0 otherwise.
func (s *styleSheet) headingLevel(styleID string) int {
	st, ok := s.byID[styleID]
	name := strings.ToLower(strings.TrimSpace(st.Name.Val))
	if !ok || name == "" {
		name = strings.ToLower(styleID)
	}
	switch {
	case name == "title":
		return 1
	case name == "subtitle":
		return 2
	}
	name = strings.TrimSpace(strings.TrimPrefix(name, "heading"))
	if len(name) == 1 && name[0] >= '1' && name[0] <= '6' {
		return int(name[0] - '0')
	}
	if ok && st.PPr.OutlineLvl != nil {
		if lvl := atoi(st.PPr.OutlineLvl.Val); lvl >= 0 && lvl < 6 {
			return lvl + 1
		}
	}
	return 0
}

// ---------------------------------------------------------------------------
// document.xml.rels
// ---------------------------------------------------------------------------

type relationship struct {
	Target   string
	External bool
}

type relationshipsXML struct {
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

func parseRelationships(raw []byte) map[string]relationship {
	var r relationshipsXML
	rels := map[string]relationship{}
	if err := xml.Unmarshal(raw, &r); err != nil {
		return rels
	}
	for _, rel := range r.Relationships {
		rels[rel.ID] = relationship{Target: rel.Target, External: rel.TargetMode == "External"}
	}
	return rels
}

// ---------------------------------------------------------------------------
// document.xml (streaming)
// ---------------------------------------------------------------------------

type docImage struct {
	relID string
	alt   string
}

type docParagraph struct {
	styleID  string
	numbered bool
	text     strings.Builder
	maxHpt   int
	images   []docImage
}

type docBlock struct {
	para *docParagraph
	rows [][]string // non-nil for tables
}

// docParser tracks paragraph, run and table context while streaming tokens.
type docParser struct {
	blocks []docBlock

	para     *docParagraph
	inRun    bool
	inRPr    bool
	inText   bool
	runHpt   int
	pendAlt  string
	tblDepth int
	rows     [][]string
	cell     *strings.Builder
}

func parseDocument(raw []byte) ([]docBlock, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	p := &docParser{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t.Name.Local)
		case xml.CharData:
			if p.inText && p.para != nil {
				p.addText(string(t))
			}
		}
	}
	return p.blocks, nil
}

func (p *docParser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.tblDepth++
		if p.tblDepth == 1 {
			p.rows = [][]string{}
		}
	case "tr":
		if p.tblDepth == 1 {
			p.rows = append(p.rows, nil)
		}
	case "tc":
		if p.tblDepth == 1 {
			p.cell = &strings.Builder{}
		}
	case "p":
		p.para = &docParagraph{}
	case "pStyle":
		if p.para != nil {
			p.para.styleID = attr(t, "val")
		}
	case "numPr":
		if p.para != nil {
			p.para.numbered = true
		}
	case "r":
		p.inRun = true
		p.runHpt = 0
	case "rPr":
		p.inRPr = p.inRun
	case "sz":
		if p.inRPr {
			p.runHpt = atoi(attr(t, "val"))
		}
	case "t":
		p.inText = p.inRun
	case "tab":
		if p.inRun && p.para != nil {
			p.para.text.WriteByte('\t')
		}
	case "br", "cr":
		if p.inRun && p.para != nil {
			p.para.text.WriteByte('\n')
		}
	case "docPr":
		p.pendAlt = attr(t, "descr")
	case "blip":
		if p.para != nil {
			if id := attr(t, "embed"); id != "" {
				p.para.images = append(p.para.images, docImage{relID: id, alt: p.pendAlt})
			} else if id := attr(t, "link"); id != "" {
				p.para.images = append(p.para.images, docImage{relID: id, alt: p.pendAlt})
			}
		}
	}
}

func (p *docParser) end(local string) {
	switch local {
	case "t":
		p.inText = false
	case "rPr":
		p.inRPr = false
	case "r":
		p.inRun = false
	case "p":
		p.endParagraph()
	case "tc":
		if p.tblDepth == 1 && p.cell != nil && len(p.rows) > 0 {
			last := len(p.rows) - 1
			p.rows[last] = append(p.rows[last], strings.TrimSpace(p.cell.String()))
			p.cell = nil
		}
	case "tbl":
		if p.tblDepth == 1 {
			p.blocks = append(p.blocks, docBlock{rows: p.rows})
			p.rows = nil
		}
		p.tblDepth--
	}
}

func (p *docParser) addText(s string) {
	p.para.text.WriteString(s)
	if strings.TrimSpace(s) != "" && p.runHpt > p.para.maxHpt {
		p.para.maxHpt = p.runHpt
	}
}

func (p *docParser) endParagraph() {
	para := p.para
	p.para = nil
	if para == nil {
		return
	}
	if p.tblDepth > 0 {
		if p.tblDepth == 1 && p.cell != nil {
			if p.cell.Len() > 0 {
				p.cell.WriteByte(' ')
			}
			p.cell.WriteString(strings.TrimSpace(para.text.String()))
		}
		return
	}
	p.blocks = append(p.blocks, docBlock{para: para})
}

// attr returns the value of the attribute with the given local name.
func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ---------------------------------------------------------------------------
// HTML output
// ---------------------------------------------------------------------------

type htmlWriter struct {
	styles *styleSheet
	rels   map[string]relationship
	files  map[string]*zip.File
	buf    strings.Builder
	inList bool
}

func (w *htmlWriter) write(blocks []docBlock) string {
	w.buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n")
	for _, b := range blocks {
		if b.rows != nil {
			w.closeList()
			w.writeTable(b.rows)
			continue
		}
		w.writeParagraph(b.para)
	}
	w.closeList()
	w.buf.WriteString("</body>\n</html>\n")
	return w.buf.String()
}

func (w *htmlWriter) writeParagraph(para *docParagraph) {
	text := strings.TrimSpace(para.text.String())
	hpt := para.maxHpt
	if hpt == 0 {
		hpt = w.styles.sizeHpt(para.styleID)
	}
	style := sizeStyle(hpt)

	if text != "" {
		switch level := w.styles.headingLevel(para.styleID); {
		case para.numbered && level == 0:
			if !w.inList {
				w.buf.WriteString("<ul" + sizeStyle(w.styles.sizeHpt("")) + ">\n")
				w.inList = true
			}
			w.buf.WriteString("<li" + style + ">" + html.EscapeString(text) + "</li>\n")
		case level > 0:
			w.closeList()
			tag := "h" + strconv.Itoa(level)
			w.buf.WriteString("<" + tag + style + ">" + html.EscapeString(text) + "</" + tag + ">\n")
		default:
			w.closeList()
			w.buf.WriteString("<p" + style + ">" + html.EscapeString(text) + "</p>\n")
		}
	}

	for _, img := range para.images {
		src := w.imageSource(img.relID)
		if src == "" {
			continue
		}
		w.closeList()
		w.buf.WriteString(`<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(img.alt) + `">` + "\n")
	}
}

func (w *htmlWriter) writeTable(rows [][]string) {
	style := sizeStyle(w.styles.sizeHpt(""))
	w.buf.WriteString("<table" + style + ">\n")
	for _, row := range rows {
		w.buf.WriteString("<tr" + style + ">")
		for _, cell := range row {
			w.buf.WriteString("<td" + style + ">" + html.EscapeString(cell) + "</td>")
		}
		w.buf.WriteString("</tr>\n")
	}
	w.buf.WriteString("</table>\n")
}

func (w *htmlWriter) closeList() {
	if w.inList {
		w.buf.WriteString("</ul>\n")
		w.inList = false
	}
}

// imageSource resolves a relationship to a data URL for embedded media or
// the target itself for external links.
func (w *htmlWriter) imageSource(relID string) string {
	rel, ok := w.rels[relID]
	if !ok {
		return ""
	}
	if rel.External {
		return rel.Target
	}

	name := strings.TrimPrefix(rel.Target, "/")
	if !strings.HasPrefix(name, "word/") {
		name = path.Join("word", name)
	}
	f, ok := w.files[name]
	if !ok {
		return ""
	}
	data, err := readPart(f)
	if err != nil {
		return ""
	}
	return "data:" + mimeForName(name) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// sizeStyle renders a half-point size as an inline px style attribute.
// Zero means unknown and yields no attribute.
func sizeStyle(hpt int) string {
	if hpt <= 0 {
		return ""
	}
	px := math.Round(float64(hpt)*2/3*100) / 100
	return ` style="font-size:` + strconv.FormatFloat(px, 'f', -1, 64) + `px"`
}

func mimeForName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".emf":
		return "image/emf"
	case ".wmf":
		return "image/wmf"
	default:
		return "application/octet-stream"
	}
}
