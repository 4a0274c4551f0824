package docstyle_test

import (
	"context"
	"fmt"
	"log"

	docstyle "github.com/alnah/go-docstyle"
)

// ExampleConverter_Extract shows the document structure built from Markdown.
func ExampleConverter_Extract() {
	conv, err := docstyle.NewConverter()
	if err != nil {
		log.Fatal(err)
	}
	defer conv.Close()

	doc, err := conv.Extract(context.Background(), docstyle.Input{
		Filename: "notes.md",
		Data:     []byte("# Field Notes\n\nRainfall doubled (Okafor, 2021, p. 12).\n"),
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(doc.Title)
	for _, c := range doc.Citations {
		fmt.Println(c.Original, "->", c.Harvard)
	}
	// Output:
	// Field Notes
	// (Okafor, 2021, p. 12) -> (Okafor, 2021)
}

// ExampleConverter_Convert converts Markdown to Word without a browser.
func ExampleConverter_Convert() {
	conv, err := docstyle.NewConverter()
	if err != nil {
		log.Fatal(err)
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), docstyle.Input{
		Filename: "thesis.md",
		Data:     []byte("# My Thesis\n\nIntroduction."),
		Layout:   docstyle.LayoutAcademic,
		Format:   "docx",
		TOC:      true,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Filename)
	// Output: my-thesis.docx
}

// ExampleLayoutNames lists the built-in layout styles.
func ExampleLayoutNames() {
	fmt.Println(docstyle.LayoutNames())
	// Output: [business academic novel modern classic]
}

// ExampleConverterPool demonstrates parallel batch processing.
func ExampleConverterPool() {
	pool := docstyle.NewConverterPool(2, docstyle.WithEngine(docstyle.EngineFPDF))
	defer pool.Close()

	ctx := context.Background()
	conv, err := pool.Acquire(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Release(conv)

	result, err := conv.Convert(ctx, docstyle.Input{Filename: "memo.md", Data: []byte("# Memo\n\nShip it.")})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.Filename, result.MIMEType)
	// Output: memo.pdf application/pdf
}
