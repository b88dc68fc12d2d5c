// Package export renders the intermediate document model into output
// formats. Every exporter consumes the same read-only model; none of
// them reach back into the source document.
//
// Exporters write their primary artifact to an io.Writer. Formats that
// produce sidecar files (linked images, per-page rasters) send them
// through the AssetSink in Options; without a sink such content is
// skipped and recorded as an advisory, never silently dropped.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// Format identifies a supported output format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// TXT indicates plain text output.
	TXT
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PNG indicates per-page PNG images.
	PNG
	// JPG indicates per-page JPEG images.
	JPG
	// HTML indicates a standalone HTML document.
	HTML
	// Markdown indicates a Markdown document.
	Markdown
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case TXT:
		return "TXT"
	case DOCX:
		return "DOCX"
	case PNG:
		return "PNG"
	case JPG:
		return "JPG"
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case XLSX:
		return "XLSX"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case TXT:
		return ".txt"
	case DOCX:
		return ".docx"
	case PNG:
		return ".png"
	case JPG:
		return ".jpg"
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case XLSX:
		return ".xlsx"
	default:
		return ""
	}
}

// Parse maps a format name or extension to a Format.
func Parse(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "txt", "text":
		return TXT
	case "docx":
		return DOCX
	case "png":
		return PNG
	case "jpg", "jpeg":
		return JPG
	case "html", "htm":
		return HTML
	case "md", "markdown":
		return Markdown
	case "xlsx":
		return XLSX
	default:
		return Unknown
	}
}

// ErrUnknownFormat is returned when no exporter is registered for a
// requested format.
var ErrUnknownFormat = errors.New("export: unknown format")

// AssetSink opens a named sidecar file next to the primary artifact.
// The caller owns naming collisions; exporters derive names from page
// and block indexes.
type AssetSink func(name string) (io.WriteCloser, error)

// Options carries per-format output settings. The zero value is not
// useful; start from DefaultOptions.
type Options struct {
	// Encoding selects the text encoding for TXT output: "utf-8",
	// "utf-16", "utf-16be", or "gbk".
	Encoding string

	// LineEnding selects "lf" or "crlf" line endings for TXT output.
	LineEnding string

	// DPI is the render resolution for image output.
	DPI int

	// Quality is the JPEG encoder quality, 1 to 100.
	Quality int

	// SinglePage restricts image output to the first page.
	SinglePage bool

	// EmbedImages inlines images as data URIs in HTML and Markdown
	// output instead of writing linked asset files.
	EmbedImages bool

	// CSSHref references an external stylesheet from HTML output
	// instead of the built-in inline styles.
	CSSHref string

	// IncludeTOC prepends a table of contents built from headings to
	// Markdown output.
	IncludeTOC bool

	// SheetPerTable gives each table its own worksheet in XLSX output
	// instead of stacking tables on one sheet.
	SheetPerTable bool

	// Assets receives sidecar files. May be nil.
	Assets AssetSink
}

// DefaultOptions returns the documented default settings.
func DefaultOptions() Options {
	return Options{
		Encoding:    "utf-8",
		LineEnding:  "lf",
		DPI:         200,
		Quality:     90,
		EmbedImages: true,
		IncludeTOC:  true,
	}
}

// Exporter renders a document to a single target format.
type Exporter interface {
	Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error)
}

// For returns the exporter registered for the format.
func For(f Format) (Exporter, error) {
	switch f {
	case TXT:
		return &textExporter{}, nil
	case DOCX:
		return &docxExporter{}, nil
	case PNG:
		return &imageExporter{format: model.RasterPNG}, nil
	case JPG:
		return &imageExporter{format: model.RasterJPEG}, nil
	case HTML:
		return &htmlExporter{}, nil
	case Markdown:
		return &markdownExporter{}, nil
	case XLSX:
		return &xlsxExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// OutputPath derives an artifact path from a source path, an output
// directory, and the target format: the source stem plus the format's
// extension.
func OutputPath(source, dir string, f Format) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, stem+f.Extension())
}

// ToFile renders the document to path, wiring an asset sink that
// places sidecar files in the same directory with names prefixed by
// the artifact stem.
func ToFile(doc *model.Document, path string, f Format, opts Options) ([]model.Advisory, error) {
	exp, err := For(f)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	if opts.Assets == nil {
		dir := filepath.Dir(path)
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		opts.Assets = func(name string) (io.WriteCloser, error) {
			return os.Create(filepath.Join(dir, stem+"_"+name))
		}
	}

	advisories, err := exp.Export(doc, out, opts)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return advisories, err
}
