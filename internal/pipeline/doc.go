// Package pipeline turns raw input files into a DocumentStructure.
//
// The pipeline has three stages, all synchronous and free of side effects:
//   - format detection by filename suffix
//   - structure extraction (Markdown parser or Word converter + classifier)
//   - citation extraction over the raw source, then IR assembly
//
// Rendering is handled by the root docstyle package and internal/render.
// Cancelling the context simply discards the in-memory result.
package pipeline
