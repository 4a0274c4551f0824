// Package render turns a document structure into output bytes.
//
// Every sink reads the same prepared view of the document: citations are
// already in Harvard form when requested, headings carry sequential table of
// contents indices, and image placeholders are resolved against the image
// table at the last moment so that unmatched ones stay literal.
//
// Sinks:
//   - HTMLRenderer: standalone HTML with the layout stylesheet embedded,
//     also the input of the Chrome PDF engine.
//   - DOCXRenderer: an OOXML package.
//   - FPDFRenderer: a pure-Go PDF writer for hosts without Chrome.
//   - MarkdownRenderer: Markdown regenerated from the HTML output.
package render
