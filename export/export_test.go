package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfmill/pdfmill/model"
)

// sampleDoc builds a document exercising every block variant.
func sampleDoc() *model.Document {
	doc := model.NewDocument()
	doc.Metadata.Title = "Quarterly Report"

	table := model.NewTable(2, 2)
	table.Rows[0][0] = model.Cell{Text: "Region", IsHeader: true, Style: model.TextStyle{Bold: true}}
	table.Rows[0][1] = model.Cell{Text: "Revenue", IsHeader: true, Style: model.TextStyle{Bold: true}}
	table.Rows[1][0] = model.Cell{Text: "North"}
	table.Rows[1][1] = model.Cell{Text: "1250.50"}
	table.BBox = model.NewBBox(72, 400, 300, 40)

	page := &model.Page{
		Index: 0, Width: 612, Height: 792,
		Classification: model.ClassText,
	}
	page.AddBlock(&model.Heading{
		Text: "Results", Level: 1,
		BBox: model.NewBBox(72, 700, 200, 24), FontSize: 24,
	})
	page.AddBlock(&model.Paragraph{
		Text: "Revenue grew in every region.",
		BBox: model.NewBBox(72, 650, 400, 12), FontSize: 12,
	})
	page.AddBlock(table)
	page.AddBlock(&model.Image{
		Data:   tinyPNG(),
		Format: model.RasterPNG,
		BBox:   model.NewBBox(72, 100, 144, 144),
	})
	doc.AddPage(page)
	return doc
}

// memorySink returns an AssetSink that collects written files in m.
func memorySink(m map[string][]byte) AssetSink {
	return func(name string) (io.WriteCloser, error) {
		return &memoryAsset{name: name, m: m}, nil
	}
}

type memoryAsset struct {
	bytes.Buffer
	name string
	m    map[string][]byte
}

func (a *memoryAsset) Close() error {
	a.m[a.name] = a.Buffer.Bytes()
	return nil
}

// tableWithCell builds a 1x1 table holding the given text.
func tableWithCell(text string) *model.Table {
	table := model.NewTable(1, 1)
	table.Rows[0][0] = model.Cell{Text: text}
	return table
}

// tinyPNG returns a 2x2 encoded PNG.
func tinyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"txt", TXT},
		{".txt", TXT},
		{"markdown", Markdown},
		{"md", Markdown},
		{"JPEG", JPG},
		{"xlsx", XLSX},
		{"exe", Unknown},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestForUnknownFormat(t *testing.T) {
	if _, err := For(Unknown); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/in/report.pdf", "/out", Markdown)
	want := filepath.Join("/out", "report.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToFileWritesArtifactAndAssets(t *testing.T) {
	doc := sampleDoc()
	doc.AddPage(&model.Page{Index: 1, Width: 612, Height: 792})

	dir := t.TempDir()
	path := filepath.Join(dir, "report.png")
	opts := DefaultOptions()
	opts.DPI = 36

	if _, err := ToFile(doc, path, PNG, opts); err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("primary artifact missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report_page_2.png")); err != nil {
		t.Errorf("second page asset missing: %v", err)
	}
}
