package wordhtml

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-docstyle/internal/ir"
)

const testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="24"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:rPr><w:sz w:val="48"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Heading1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/></w:style>
</w:styles>`

const testRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
  <Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="https://example.com/remote.png" TargetMode="External"/>
</Relationships>`

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<w:body>` + body + `</w:body></w:document>`
}

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestConvertDOCX_FontSizes(t *testing.T) {
	t.Parallel()

	body := `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Report</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Inherited</w:t></w:r></w:p>
<w:p><w:r><w:t>Body text</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Quote"/></w:pPr><w:r><w:t>Quoted</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:sz w:val="28"/></w:rPr><w:t>Direct</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>`

	html, err := ConvertDOCX(buildDOCX(t, map[string]string{
		"word/document.xml": wrapBody(body),
		"word/styles.xml":   testStyles,
	}))
	if err != nil {
		t.Fatalf("ConvertDOCX() unexpected error: %v", err)
	}

	wants := []string{
		`<h1 style="font-size:32px">Report</h1>`,
		`<h2 style="font-size:32px">Inherited</h2>`,
		`<p style="font-size:16px">Body text</p>`,
		`<p style="font-size:16px">Quoted</p>`,
		`<p style="font-size:18.67px">Direct</p>`,
	}
	for _, w := range wants {
		if !strings.Contains(html, w) {
			t.Errorf("output missing %q\n%s", w, html)
		}
	}
	if strings.Count(html, "<p") != 3 {
		t.Errorf("whitespace-only paragraph should be dropped:\n%s", html)
	}
}

func TestConvertDOCX_DocDefaultsWithoutNormalSize(t *testing.T) {
	t.Parallel()

	styles := `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
</w:styles>`
	html, err := ConvertDOCX(buildDOCX(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>x</w:t></w:r></w:p>`),
		"word/styles.xml":   styles,
	}))
	if err != nil {
		t.Fatalf("ConvertDOCX() unexpected error: %v", err)
	}
	if !strings.Contains(html, `<p style="font-size:14.67px">x</p>`) {
		t.Errorf("docDefaults size not applied:\n%s", html)
	}
}

func TestConvertDOCX_ImagesListsTables(t *testing.T) {
	t.Parallel()

	body := `
<w:p><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:drawing><wp:inline><wp:docPr id="1" name="Picture 1" descr="A chart"/>
  <a:graphic><a:graphicData><a:blip r:embed="rId5"/></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>
<w:p><w:r><w:drawing><wp:inline><wp:docPr id="2" name="Picture 2"/>
  <a:graphic><a:graphicData><a:blip r:link="rId6"/></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>first</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>second</w:t></w:r></w:p>
<w:tbl>
  <w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p><w:p><w:r><w:t>more</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Outro</w:t></w:r></w:p>`

	html, err := ConvertDOCX(buildDOCX(t, map[string]string{
		"word/document.xml":            wrapBody(body),
		"word/styles.xml":              testStyles,
		"word/_rels/document.xml.rels": testRels,
		"word/media/image1.png":        "PNGDATA",
	}))
	if err != nil {
		t.Fatalf("ConvertDOCX() unexpected error: %v", err)
	}

	res, err := NewClassifier(nil).Classify(html)
	if err != nil {
		t.Fatalf("Classify() unexpected error: %v", err)
	}

	if len(res.Images) != 2 {
		t.Fatalf("got %d images, want 2:\n%s", len(res.Images), html)
	}
	if res.Images[0].URL != "data:image/png;base64,UE5HREFUQQ==" || res.Images[0].Alt != "A chart" {
		t.Errorf("embedded image = %+v", res.Images[0])
	}
	if res.Images[1].URL != "https://example.com/remote.png" {
		t.Errorf("linked image = %+v", res.Images[1])
	}

	kinds := make([]ir.ElementKind, 0, len(res.Content))
	for _, el := range res.Content {
		kinds = append(kinds, el.Kind)
	}
	wantKinds := []ir.ElementKind{
		ir.KindParagraph, ir.KindImage, ir.KindImage, ir.KindList, ir.KindTable, ir.KindParagraph,
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
	}

	if items := res.Content[3].Items; !reflect.DeepEqual(items, []string{"first", "second"}) {
		t.Errorf("list items = %q", items)
	}
	if rows := res.Content[4].Rows; !reflect.DeepEqual(rows, [][]string{{"A", "B"}, {"1 more", "2"}}) {
		t.Errorf("table rows = %q", rows)
	}
}

func TestConvertDOCX_RunsAndBreaks(t *testing.T) {
	t.Parallel()

	body := `<w:p><w:r><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:t>&amp; world</w:t><w:tab/><w:t>x</w:t></w:r></w:p>`
	html, err := ConvertDOCX(buildDOCX(t, map[string]string{"word/document.xml": wrapBody(body)}))
	if err != nil {
		t.Fatalf("ConvertDOCX() unexpected error: %v", err)
	}
	if !strings.Contains(html, "<p>Hello &amp; world\tx</p>") {
		t.Errorf("unexpected output:\n%s", html)
	}
}

func TestConvertDOCX_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not a zip", []byte("plain text"), ErrInvalidDOCX},
		{"empty", nil, ErrInvalidDOCX},
		{"zip without document", buildDOCX(t, map[string]string{"other.txt": "x"}), ErrMissingDocument},
		{"broken xml", buildDOCX(t, map[string]string{"word/document.xml": "<w:document><w:body>"}), ErrMalformedDocXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ConvertDOCX(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("ConvertDOCX() error = %v, want %v", err, tt.want)
			}
		})
	}
}
