package model

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	BlockKindUnknown BlockKind = iota
	BlockKindParagraph
	BlockKindHeading
	BlockKindTable
	BlockKindImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockKindParagraph:
		return "Paragraph"
	case BlockKindHeading:
		return "Heading"
	case BlockKindTable:
		return "Table"
	case BlockKindImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// Block is the interface for all content blocks in a reconstructed document.
// Blocks are immutable once a page has been handed to an exporter.
type Block interface {
	Kind() BlockKind
	Bounds() BBox
}

// TextBlock is implemented by blocks that carry text content.
type TextBlock interface {
	Block
	GetText() string
}

// SizeClass buckets font sizes so exporters can map styling without
// caring about exact point sizes.
type SizeClass int

const (
	SizeSmall SizeClass = iota
	SizeBody
	SizeLarge
	SizeHuge
)

func (s SizeClass) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeLarge:
		return "large"
	case SizeHuge:
		return "huge"
	default:
		return "body"
	}
}

// ClassifySize maps a font size in points to a SizeClass relative to the
// dominant body size of the page.
func ClassifySize(size, bodySize float64) SizeClass {
	if bodySize <= 0 {
		bodySize = 12
	}
	ratio := size / bodySize
	switch {
	case ratio < 0.85:
		return SizeSmall
	case ratio >= 1.8:
		return SizeHuge
	case ratio >= 1.15:
		return SizeLarge
	default:
		return SizeBody
	}
}

// TextStyle carries the style hints shared by multiple exporters.
type TextStyle struct {
	Bold   bool
	Italic bool
}

// Alignment represents horizontal text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// Paragraph is a block of running text.
type Paragraph struct {
	Text      string
	BBox      BBox
	FontSize  float64
	FontName  string
	Size      SizeClass
	Style     TextStyle
	Alignment Alignment

	// PossibleTable marks text that looked tabular but did not meet the
	// detection confidence bar. The structure is preserved as text rather
	// than being forced into a table that may not exist.
	PossibleTable bool

	// LowConfidence marks OCR output whose confidence fell below the
	// configured threshold. The text is kept, never dropped.
	LowConfidence bool
}

func (p *Paragraph) Kind() BlockKind { return BlockKindParagraph }
func (p *Paragraph) Bounds() BBox    { return p.BBox }
func (p *Paragraph) GetText() string { return p.Text }

// Heading is a title or section heading with a level from 1 to 6.
type Heading struct {
	Text     string
	Level    int
	BBox     BBox
	FontSize float64
	Size     SizeClass
	Style    TextStyle
}

func (h *Heading) Kind() BlockKind { return BlockKindHeading }
func (h *Heading) Bounds() BBox    { return h.BBox }
func (h *Heading) GetText() string { return h.Text }

// Image is an embedded raster image.
type Image struct {
	Data   []byte
	Format RasterFormat
	BBox   BBox
	DPI    float64
}

func (i *Image) Kind() BlockKind { return BlockKindImage }
func (i *Image) Bounds() BBox    { return i.BBox }

// RasterFormat identifies the encoding of raster image data.
type RasterFormat int

const (
	RasterUnknown RasterFormat = iota
	RasterJPEG
	RasterPNG
)

func (f RasterFormat) String() string {
	switch f {
	case RasterJPEG:
		return "jpeg"
	case RasterPNG:
		return "png"
	default:
		return "unknown"
	}
}

// Extension returns the conventional file extension, without the dot.
func (f RasterFormat) Extension() string {
	switch f {
	case RasterJPEG:
		return "jpg"
	case RasterPNG:
		return "png"
	default:
		return "bin"
	}
}

// MIMEType returns the media type for the format.
func (f RasterFormat) MIMEType() string {
	switch f {
	case RasterJPEG:
		return "image/jpeg"
	case RasterPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
