// Package reconstruct merges native text runs, OCR output, tables, and
// images into the intermediate document model consumed by the exporters.
//
// Per page, the source of text depends on the page classification: native
// fragments for TEXT pages, recognized spans for IMAGE pages, and a
// region-priority merge for HYBRID pages (native text wins where present,
// OCR fills the rest). Fragments are grouped into lines, lines into
// paragraphs, and paragraphs are promoted to headings by font-size ratio.
//
// Table detection clusters fragment bounding boxes into aligned columns
// and rows, with drawn rectangles as supporting gridline evidence.
// Detections below the configured confidence bar are kept as paragraphs
// with a possible-table hint rather than being forced into table
// structure.
package reconstruct
