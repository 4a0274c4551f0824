package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/alnah/go-docstyle/internal/ir"
	"github.com/alnah/go-docstyle/internal/layout"
)

// testPNG returns a small solid PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// sampleDoc builds a Markdown-sourced document exercising every element kind.
func sampleDoc(t *testing.T) *ir.DocumentStructure {
	t.Helper()
	return &ir.DocumentStructure{
		Title:  "Quarterly Report",
		Syntax: ir.SyntaxMarkdown,
		Content: []ir.DocumentElement{
			{Kind: ir.KindHeading, Text: "Quarterly Report", Level: 1, Style: ir.StyleTitle},
			{Kind: ir.KindParagraph, Text: "Growth was **strong** as noted (Smith, 2019, p. 4). See IMAGE_PLACEHOLDER_0 and IMAGE_PLACEHOLDER_7.", Style: ir.StyleBody},
			{Kind: ir.KindHeading, Text: "Details", Level: 2, Style: ir.StyleSubtitle},
			{Kind: ir.KindList, Items: []string{"first *item*", "second"}, Style: ir.StyleBody},
			{Kind: ir.KindTable, Rows: [][]string{{"Region", "Sales"}, {"North", "42"}}, Header: true, Style: ir.StyleBody},
			{Kind: ir.KindImage, ImageIndex: 1, Style: ir.StyleBody},
			{Kind: ir.KindCode, Text: "func main() {}", Language: "go", Style: ir.StyleBody},
		},
		Images: []ir.ImageElement{
			{URL: "chart.png", Alt: "Chart", Blob: testPNG(t, 4, 2), MIMEType: "image/png"},
			{URL: "https://example.com/remote.png", Alt: "Remote figure"},
		},
		Citations: []ir.Citation{
			{Original: "(Smith, 2019, p. 4)", Harvard: "(Smith, 2019)", Position: 42},
		},
	}
}

func businessLayout(t *testing.T) layout.LayoutConfig {
	t.Helper()
	cfg, err := layout.Resolve(layout.Business, layout.Overrides{})
	if err != nil {
		t.Fatalf("resolving layout: %v", err)
	}
	return cfg
}
