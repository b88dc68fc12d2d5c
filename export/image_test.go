package export

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/pdfmill/pdfmill/model"
)

func TestImageExportPNGDimensions(t *testing.T) {
	opts := DefaultOptions()
	opts.DPI = 36

	var buf bytes.Buffer
	advisories, err := (&imageExporter{format: model.RasterPNG}).Export(sampleDoc(), &buf, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	// 612x792 points at 36 DPI is half the point size.
	if cfg.Width != 306 || cfg.Height != 396 {
		t.Errorf("dimensions = %dx%d, want 306x396", cfg.Width, cfg.Height)
	}
}

func TestImageExportScansRaster(t *testing.T) {
	doc := model.NewDocument()
	doc.AddPage(&model.Page{
		Index: 0, Width: 100, Height: 100,
		Classification: model.ClassImage,
		Raster:         &model.Raster{Data: tinyPNG(), Format: model.RasterPNG, Width: 2, Height: 2},
	})

	opts := DefaultOptions()
	opts.DPI = 72
	var buf bytes.Buffer
	if _, err := (&imageExporter{format: model.RasterPNG}).Export(doc, &buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("raster not scaled to page size: %v", img.Bounds())
	}
}

func TestImageExportJPEG(t *testing.T) {
	opts := DefaultOptions()
	opts.DPI = 36
	opts.Quality = 70

	var buf bytes.Buffer
	if _, err := (&imageExporter{format: model.RasterJPEG}).Export(sampleDoc(), &buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
}

func TestImageExportMultiPage(t *testing.T) {
	doc := sampleDoc()
	doc.AddPage(&model.Page{Index: 1, Width: 612, Height: 792})
	doc.AddPage(&model.Page{Index: 2, Width: 612, Height: 792})

	opts := DefaultOptions()
	opts.DPI = 36
	written := map[string][]byte{}
	opts.Assets = memorySink(written)

	var buf bytes.Buffer
	advisories, err := (&imageExporter{format: model.RasterPNG}).Export(doc, &buf, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}
	for _, name := range []string{"page_2.png", "page_3.png"} {
		data, ok := written[name]
		if !ok {
			t.Fatalf("%s not written, have %d assets", name, len(written))
		}
		if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
			t.Errorf("%s is not a PNG: %v", name, err)
		}
	}
}

func TestImageExportMultiPageWithoutSink(t *testing.T) {
	doc := sampleDoc()
	doc.AddPage(&model.Page{Index: 1, Width: 612, Height: 792})

	opts := DefaultOptions()
	opts.DPI = 36
	opts.Assets = nil

	var buf bytes.Buffer
	advisories, err := (&imageExporter{format: model.RasterPNG}).Export(doc, &buf, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 1 || advisories[0].Code != model.AdvisoryUnsupportedFeature {
		t.Fatalf("advisories = %v", advisories)
	}
}

func TestImageExportSinglePage(t *testing.T) {
	doc := sampleDoc()
	doc.AddPage(&model.Page{Index: 1, Width: 612, Height: 792})

	opts := DefaultOptions()
	opts.DPI = 36
	opts.SinglePage = true

	var buf bytes.Buffer
	advisories, err := (&imageExporter{format: model.RasterPNG}).Export(doc, &buf, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
}

func TestRenderPageBlankWithoutContent(t *testing.T) {
	page := &model.Page{Index: 0, Width: 72, Height: 72}
	img := renderPage(page, 72)
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("unexpected image type %T", img)
	}
	r, g, b, _ := rgba.At(36, 36).RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF {
		t.Error("empty page did not render white")
	}
}
