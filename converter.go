package pdfmill

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pdfmill/pdfmill/batch"
	"github.com/pdfmill/pdfmill/export"
	"github.com/pdfmill/pdfmill/model"
	"github.com/pdfmill/pdfmill/ocr"
)

// Converter provides a fluent interface for converting one PDF file.
// Each configuration method returns a new Converter instance, making
// it safe for concurrent use and allowing method chaining.
type Converter struct {
	source  string
	ctx     context.Context
	options Options
}

// clone creates a shallow copy of the Converter with a deep copy of
// options. This ensures immutability: each chain method returns a new
// instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		source:  c.source,
		ctx:     c.ctx,
		options: c.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// WithContext attaches a context to the conversion. Cancellation is
// honored at page boundaries.
func (c *Converter) WithContext(ctx context.Context) *Converter {
	newConv := c.clone()
	newConv.ctx = ctx
	return newConv
}

// Pages restricts conversion to the given pages (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	text, _, err := pdfmill.Open("doc.pdf").Pages(1, 3, 5).Text()
func (c *Converter) Pages(pages ...int) *Converter {
	newConv := c.clone()
	newConv.options.pages = append(newConv.options.pages, pages...)
	return newConv
}

// PageRange restricts conversion to a range of pages (1-indexed,
// inclusive). An end of 0 means through the last page.
//
// Example:
//
//	text, _, err := pdfmill.Open("doc.pdf").PageRange(5, 10).Text()
func (c *Converter) PageRange(start, end int) *Converter {
	newConv := c.clone()
	newConv.options.rangeStart = start
	newConv.options.rangeEnd = end
	return newConv
}

// Password supplies the password for an encrypted source.
func (c *Converter) Password(password string) *Converter {
	newConv := c.clone()
	newConv.options.password = password
	return newConv
}

// Languages sets the recognition language hints for scanned pages,
// as ISO 639-2 codes such as "eng" or "deu".
//
// Example:
//
//	text, _, err := pdfmill.Open("scan.pdf").Languages("eng", "fra").Text()
func (c *Converter) Languages(langs ...string) *Converter {
	newConv := c.clone()
	newConv.options.languages = append([]string(nil), langs...)
	return newConv
}

// OCRTimeout sets the per-page recognition deadline. A page that
// exceeds it degrades to a warning instead of failing the conversion.
func (c *Converter) OCRTimeout(d time.Duration) *Converter {
	newConv := c.clone()
	newConv.options.ocrTimeout = d
	return newConv
}

// Preprocess enables image cleanup before recognition.
func (c *Converter) Preprocess() *Converter {
	newConv := c.clone()
	newConv.options.preprocess = true
	return newConv
}

// Engine overrides the OCR backend. The default is the built-in
// Tesseract binding.
func (c *Converter) Engine(engine ocr.Engine) *Converter {
	newConv := c.clone()
	newConv.options.engine = engine
	return newConv
}

// Concurrency bounds parallel page processing.
func (c *Converter) Concurrency(n int) *Converter {
	newConv := c.clone()
	newConv.options.concurrency = n
	return newConv
}

// ClassificationThreshold overrides the native character density, in
// characters per square inch, above which a page's text layer counts
// as usable without OCR.
func (c *Converter) ClassificationThreshold(density float64) *Converter {
	newConv := c.clone()
	newConv.options.classifyThreshold = density
	return newConv
}

// TableSensitivity selects how aggressively table detection runs:
// "low", "medium" (default), or "high".
//
// Example:
//
//	warnings, err := pdfmill.Open("report.pdf").TableSensitivity("high").Save("report.xlsx")
func (c *Converter) TableSensitivity(level string) *Converter {
	newConv := c.clone()
	newConv.options.tableSensitivity = level
	return newConv
}

// DPI sets the render resolution for image output.
func (c *Converter) DPI(dpi int) *Converter {
	newConv := c.clone()
	newConv.options.dpi = dpi
	return newConv
}

// Quality sets the JPEG quality (1-100) for image output.
func (c *Converter) Quality(q int) *Converter {
	newConv := c.clone()
	newConv.options.quality = q
	return newConv
}

// Encoding sets the text output encoding: "utf-8" (default),
// "utf-16", "utf-16be", or "gbk".
func (c *Converter) Encoding(enc string) *Converter {
	newConv := c.clone()
	newConv.options.encoding = enc
	return newConv
}

// LineEnding sets the text output line ending: "lf" (default) or
// "crlf".
func (c *Converter) LineEnding(le string) *Converter {
	newConv := c.clone()
	newConv.options.lineEnding = le
	return newConv
}

// LinkedAssets writes images as sidecar files next to the artifact
// instead of embedding them, for HTML and Markdown output.
func (c *Converter) LinkedAssets() *Converter {
	newConv := c.clone()
	newConv.options.embedAssets = false
	return newConv
}

// Stylesheet links an external CSS file from HTML output instead of
// inlining the default styles.
func (c *Converter) Stylesheet(href string) *Converter {
	newConv := c.clone()
	newConv.options.cssHref = href
	return newConv
}

// NoTOC suppresses the table of contents in Markdown output.
func (c *Converter) NoTOC() *Converter {
	newConv := c.clone()
	newConv.options.includeTOC = false
	return newConv
}

// SheetPerTable writes each detected table to its own worksheet in
// XLSX output instead of stacking everything on one sheet.
func (c *Converter) SheetPerTable() *Converter {
	newConv := c.clone()
	newConv.options.sheetPerTable = true
	return newConv
}

// Options returns the converter's accumulated configuration, for use
// with Submit.
func (c *Converter) Options() Options {
	return c.options.clone()
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document runs the conversion pipeline and returns the reconstructed
// document. Warnings indicate non-fatal issues such as pages that
// needed OCR fallback.
//
// Example:
//
//	doc, warnings, err := pdfmill.Open("document.pdf").Document()
func (c *Converter) Document() (*model.Document, []Warning, error) {
	return batch.Document(c.ctx, c.source, c.options.password, c.options.batchConfig())
}

// Export converts the source and writes the artifact in the given
// format to w. Formats that produce side files, such as linked images,
// need an asset sink and report a warning without one.
func (c *Converter) Export(w io.Writer, f export.Format) ([]Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return warnings, err
	}
	exp, err := export.For(f)
	if err != nil {
		return warnings, err
	}
	exportWarnings, err := exp.Export(doc, w, c.options.exportOptions())
	warnings = append(warnings, exportWarnings...)
	return warnings, err
}

// Text converts the source to plain text.
//
// Example:
//
//	text, warnings, err := pdfmill.Open("document.pdf").Text()
func (c *Converter) Text() (string, []Warning, error) {
	return c.render(export.TXT)
}

// Markdown converts the source to GitHub-flavored Markdown.
//
// Example:
//
//	md, warnings, err := pdfmill.Open("document.pdf").NoTOC().Markdown()
func (c *Converter) Markdown() (string, []Warning, error) {
	return c.render(export.Markdown)
}

// HTML converts the source to a standalone HTML document.
func (c *Converter) HTML() (string, []Warning, error) {
	return c.render(export.HTML)
}

func (c *Converter) render(f export.Format) (string, []Warning, error) {
	var buf bytes.Buffer
	warnings, err := c.Export(&buf, f)
	if err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}

// Save converts the source and writes the artifact to path, picking
// the format from the file extension.
//
// Example:
//
//	warnings, err := pdfmill.Open("report.pdf").Save("report.docx")
func (c *Converter) Save(path string) ([]Warning, error) {
	f := export.Parse(filepath.Ext(path))
	if f == export.Unknown {
		return nil, fmt.Errorf("%w: cannot infer format from %q", export.ErrUnknownFormat, path)
	}
	return c.SaveAs(path, f)
}

// SaveAs converts the source and writes the artifact to path in the
// given format. Side files, such as later pages of multi-page image
// output, are written next to the artifact.
func (c *Converter) SaveAs(path string, f export.Format) ([]Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return warnings, err
	}
	saveWarnings, err := export.ToFile(doc, path, f, c.options.exportOptions())
	warnings = append(warnings, saveWarnings...)
	return warnings, err
}
