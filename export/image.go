package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdfmill/pdfmill/model"
)

// imageExporter renders each page to a raster image. Pages that carry a
// scan raster are rescaled to the target resolution; pages without one
// are rasterized from their text blocks. The first page goes to the
// primary writer, later pages to the asset sink.
type imageExporter struct {
	format model.RasterFormat
}

func (e *imageExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	var advisories []model.Advisory

	pages := doc.Pages
	if opts.SinglePage && len(pages) > 1 {
		pages = pages[:1]
	}

	for i, page := range pages {
		img := renderPage(page, opts.DPI)

		var buf bytes.Buffer
		var err error
		switch e.format {
		case model.RasterJPEG:
			quality := opts.Quality
			if quality <= 0 || quality > 100 {
				quality = 90
			}
			err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
		default:
			err = png.Encode(&buf, img)
		}
		if err != nil {
			return advisories, fmt.Errorf("encoding page %d: %w", page.Index+1, err)
		}

		if i == 0 {
			if _, err := w.Write(buf.Bytes()); err != nil {
				return advisories, fmt.Errorf("writing page %d: %w", page.Index+1, err)
			}
			continue
		}
		if opts.Assets == nil {
			advisories = append(advisories, model.Advisory{
				Code:   model.AdvisoryUnsupportedFeature,
				Page:   page.Index,
				Detail: "page image omitted: no destination for additional pages",
			})
			continue
		}
		name := fmt.Sprintf("page_%d.%s", page.Index+1, e.format.Extension())
		f, err := opts.Assets(name)
		if err == nil {
			_, err = f.Write(buf.Bytes())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return advisories, fmt.Errorf("writing page %d: %w", page.Index+1, err)
		}
	}
	return advisories, nil
}

// renderPage produces the page bitmap at the requested resolution.
func renderPage(page *model.Page, dpi int) image.Image {
	if dpi <= 0 {
		dpi = 200
	}
	scale := float64(dpi) / 72
	pxW := int(page.Width*scale + 0.5)
	pxH := int(page.Height*scale + 0.5)
	if pxW < 1 {
		pxW = 1
	}
	if pxH < 1 {
		pxH = 1
	}

	if page.Raster != nil {
		if src, _, err := image.Decode(bytes.NewReader(page.Raster.Data)); err == nil {
			dst := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
			draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			return dst
		}
		// Fall through to text rasterization on decode failure.
	}

	dst := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for _, block := range page.Blocks {
		tb, ok := block.(model.TextBlock)
		if !ok {
			continue
		}
		bounds := block.Bounds()
		x := int(bounds.Left() * scale)
		y := int((page.Height - bounds.Top()) * scale)
		for _, line := range strings.Split(tb.GetText(), "\n") {
			y += basicfont.Face7x13.Height
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(strings.ReplaceAll(line, "\t", "    "))
		}
	}
	return dst
}
