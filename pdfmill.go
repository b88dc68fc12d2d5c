// Package pdfmill provides a fluent API for converting PDF files to
// text, DOCX, images, HTML, Markdown, and XLSX.
//
// Basic usage:
//
//	text, warnings, err := pdfmill.Open("document.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfmill.FormatWarnings(warnings))
//	}
//
// With options:
//
//	warnings, err := pdfmill.Open("report.pdf").
//	    Pages(1, 2, 3).
//	    Languages("eng", "deu").
//	    Save("report.docx")
//
// For batch conversion with progress events, see Submit. The
// lower-level pdfread, reconstruct, export, and batch packages are
// also available for advanced use.
package pdfmill

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdfmill/pdfmill/batch"
	"github.com/pdfmill/pdfmill/export"
	"github.com/pdfmill/pdfmill/model"
)

// Warning is a non-fatal condition recorded while converting, such as
// a page that needed OCR fallback or an image a format cannot carry.
type Warning = model.Advisory

// FormatWarnings renders warnings one per line for display or logging.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Open prepares a conversion of the given PDF file. Configuration
// methods return new Converter instances, so a Converter can be shared
// and specialized safely.
//
// Example:
//
//	text, warnings, err := pdfmill.Open("document.pdf").Text()
func Open(filename string) *Converter {
	return &Converter{
		source:  filename,
		ctx:     context.Background(),
		options: defaultOptions(),
	}
}

// Spec describes one job for Submit: a source PDF, a target format,
// and where to write the artifact.
type Spec = batch.Spec

// Run is an in-flight batch started by Submit.
type Run = batch.Run

// Submit starts converting several files concurrently and returns
// immediately. The caller must drain Run.Events until it closes.
//
// Example:
//
//	run := pdfmill.Submit(ctx, specs, pdfmill.DefaultOptions())
//	for ev := range run.Events() {
//	    // report progress
//	}
func Submit(ctx context.Context, specs []Spec, opts Options) *Run {
	return batch.Submit(ctx, specs, opts.batchConfig())
}

// DefaultOptions returns the documented conversion defaults for use
// with Submit.
func DefaultOptions() Options {
	return defaultOptions()
}

// ParseFormat resolves a format name such as "txt" or "markdown".
func ParseFormat(name string) (export.Format, error) {
	f := export.Parse(name)
	if f == export.Unknown {
		return f, fmt.Errorf("%w: %q", export.ErrUnknownFormat, name)
	}
	return f, nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	format := pdfmill.Must(pdfmill.ParseFormat("docx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text(), Markdown(), or
// HTML() and panics if the error is non-nil. It discards warnings and
// returns just the value.
//
// Example:
//
//	text := pdfmill.MustText(pdfmill.Open("document.pdf").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
