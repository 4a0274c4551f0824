// Package docstyle restyles Markdown and Word documents with named layouts.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := docstyle.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, docstyle.Input{
//	    Filename: "report.md",
//	    Data:     []byte("# Report\n\nAs shown (Smith, 2019, p. 4)."),
//	    Layout:   docstyle.LayoutAcademic,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Data, 0644)
//
// The result carries the rendered bytes, a filename derived from the document
// title, and the extracted DocumentStructure for inspection.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Structure extraction: Markdown through Goldmark, Word through a
//     font-size annotated HTML form classified into headings by size
//  2. Citation scan over the raw source text
//  3. Image resolution: relative files from Input.SourceDir, remote images
//     when Input.FetchImages is set
//  4. Layout resolution: business, academic, novel, modern or classic, with
//     margin and font overrides
//  5. Rendering to PDF (headless Chrome or pure Go), DOCX, HTML or Markdown
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := docstyle.NewConverter(
//	    docstyle.WithTimeout(2 * time.Minute),
//	    docstyle.WithEngine(docstyle.EngineFPDF),
//	    docstyle.WithLogger(logger),
//	)
//
// Per-document options are passed via Input:
//
//	result, err := conv.Convert(ctx, docstyle.Input{
//	    Filename:    "thesis.docx",
//	    Data:        data,
//	    Layout:      "academic",
//	    Margin:      "2cm",
//	    Format:      "docx",
//	    TOC:         true,
//	    Harvard:     true,
//	    FetchImages: true,
//	})
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browser instances:
//
//	pool := docstyle.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Browser Requirements
//
// The default PDF engine requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). EngineFPDF needs no browser.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package docstyle
