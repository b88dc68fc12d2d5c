// Package pdfread opens PDF documents and exposes the raw material the
// conversion pipeline works from: page count, per-page native text
// fragments, and page raster images for scanned documents.
//
// The native text layer is read through rsc.io/pdf. Raster streams are
// located by a raw scan of the file for image XObjects, which covers the
// common scan-per-page layout of scanned documents without a full content
// stream interpreter.
//
// Pages decode lazily: opening a document parses only the cross-reference
// structures, and each page's content is parsed on first request and
// memoized. Concurrent requests for different pages are safe.
package pdfread
