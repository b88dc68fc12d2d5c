package model

// Document is the format-agnostic intermediate representation consumed by
// every exporter. Exporters read it and never touch the source PDF.
type Document struct {
	Metadata Metadata
	Pages    []*Page
}

// Metadata contains document-level information.
type Metadata struct {
	Title     string
	Author    string
	Source    string // path of the source file
	PageCount int
}

// NewDocument creates a new empty document.
func NewDocument() *Document {
	return &Document{Pages: make([]*Page, 0)}
}

// AddPage appends a page, keeping source page order.
func (d *Document) AddPage(page *Page) {
	d.Pages = append(d.Pages, page)
}

// PageCount returns the number of reconstructed pages.
func (d *Document) PageCount() int { return len(d.Pages) }

// Blocks returns all blocks across all pages in page order.
func (d *Document) Blocks() []Block {
	var blocks []Block
	for _, page := range d.Pages {
		blocks = append(blocks, page.Blocks...)
	}
	return blocks
}

// Tables returns all table blocks across all pages in page order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, page := range d.Pages {
		for _, b := range page.Blocks {
			if t, ok := b.(*Table); ok {
				tables = append(tables, t)
			}
		}
	}
	return tables
}

// Text concatenates the text of all text blocks, page by page.
func (d *Document) Text() string {
	var sb []byte
	for _, page := range d.Pages {
		for _, b := range page.Blocks {
			if tb, ok := b.(TextBlock); ok {
				sb = append(sb, tb.GetText()...)
				sb = append(sb, '\n')
			}
		}
	}
	return string(sb)
}

// Page is one reconstructed page. Blocks are ordered top to bottom in
// reading order. A page becomes immutable once reconstruction completes.
type Page struct {
	Index          int // zero-based source page index
	Width          float64
	Height         float64
	Classification Classification
	Blocks         []Block

	// Raster holds the page's dominant scan image, if any. Exporters that
	// render pages (PNG/JPG) use it instead of reconstructed text.
	Raster *Raster
}

// AddBlock appends a block to the page.
func (p *Page) AddBlock(b Block) {
	p.Blocks = append(p.Blocks, b)
}

// Classification is the per-page text-vs-scan decision. It is decided
// exactly once, before reconstruction, and is a pure function of page
// content.
type Classification int

const (
	// ClassUnknown means the page has not been classified yet.
	ClassUnknown Classification = iota
	// ClassText means the native text layer is usable on its own.
	ClassText
	// ClassImage means the page has no usable text layer and needs OCR.
	ClassImage
	// ClassHybrid means the page mixes usable text with scanned regions.
	ClassHybrid
)

func (c Classification) String() string {
	switch c {
	case ClassText:
		return "TEXT"
	case ClassImage:
		return "IMAGE"
	case ClassHybrid:
		return "HYBRID"
	default:
		return "UNKNOWN"
	}
}

// TextFragment is a positioned run of native text as read from the PDF
// text layer.
type TextFragment struct {
	Text     string
	BBox     BBox
	FontSize float64
	FontName string
	Style    TextStyle

	// FromOCR marks fragments produced by recognition rather than the
	// native text layer. LowConfidence marks OCR fragments whose
	// confidence fell below the configured threshold; such text is
	// flagged, never dropped.
	FromOCR       bool
	LowConfidence bool
}

// Raster is an encoded page image.
type Raster struct {
	Data   []byte
	Format RasterFormat
	Width  int // pixels
	Height int // pixels
}

// PageContent is the loader's view of one source page: the raw material
// the classifier and reconstructor work from.
type PageContent struct {
	Index     int
	Width     float64 // points
	Height    float64 // points
	Fragments []TextFragment
	Raster    *Raster

	// Rects are rectangles drawn in the page content stream. Table
	// detection uses them as gridline evidence.
	Rects []BBox

	// ParseError records a content-stream parse failure. The page may
	// still carry a raster for recognition, but any native text was
	// lost and the loss must surface as an advisory, never silently.
	ParseError string
}

// CharCount returns the number of non-whitespace characters in the
// native text layer.
func (pc *PageContent) CharCount() int {
	n := 0
	for _, f := range pc.Fragments {
		for _, r := range f.Text {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				n++
			}
		}
	}
	return n
}

// TextCoverage returns the fraction of the page area covered by native
// text fragment bounding boxes, clamped to [0,1].
func (pc *PageContent) TextCoverage() float64 {
	pageArea := pc.Width * pc.Height
	if pageArea <= 0 {
		return 0
	}
	var covered float64
	for _, f := range pc.Fragments {
		covered += f.BBox.Area()
	}
	frac := covered / pageArea
	if frac > 1 {
		frac = 1
	}
	return frac
}

// RasterCoverage estimates how much of the page a scan image covers.
// A raster whose aspect ratio tracks the page and whose pixel count is
// large enough to be a full-page scan counts as full coverage.
func (pc *PageContent) RasterCoverage() float64 {
	if pc.Raster == nil || pc.Width <= 0 || pc.Height <= 0 {
		return 0
	}
	r := pc.Raster
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	pageAspect := pc.Width / pc.Height
	imgAspect := float64(r.Width) / float64(r.Height)
	ratio := imgAspect / pageAspect
	if ratio > 0.8 && ratio < 1.25 {
		return 1
	}
	// Partial region scan: scale by pixel area against a 150 DPI page.
	pagePixels := (pc.Width / 72 * 150) * (pc.Height / 72 * 150)
	frac := float64(r.Width*r.Height) / pagePixels
	if frac > 1 {
		frac = 1
	}
	return frac
}
