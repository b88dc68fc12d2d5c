package model

import (
	"strings"
	"testing"
)

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)

	if b.Left() != 10 {
		t.Errorf("Left: got %f, want 10", b.Left())
	}
	if b.Right() != 110 {
		t.Errorf("Right: got %f, want 110", b.Right())
	}
	if b.Bottom() != 20 {
		t.Errorf("Bottom: got %f, want 20", b.Bottom())
	}
	if b.Top() != 70 {
		t.Errorf("Top: got %f, want 70", b.Top())
	}
	if b.Area() != 5000 {
		t.Errorf("Area: got %f, want 5000", b.Area())
	}
}

func TestBBoxIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want bool
	}{
		{"overlapping", NewBBox(0, 0, 10, 10), NewBBox(5, 5, 10, 10), true},
		{"touching edges", NewBBox(0, 0, 10, 10), NewBBox(10, 0, 10, 10), true},
		{"disjoint horizontal", NewBBox(0, 0, 10, 10), NewBBox(20, 0, 10, 10), false},
		{"disjoint vertical", NewBBox(0, 0, 10, 10), NewBBox(0, 20, 10, 10), false},
		{"contained", NewBBox(0, 0, 100, 100), NewBBox(10, 10, 5, 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(20, 20, 10, 10)
	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Width != 30 || u.Height != 30 {
		t.Errorf("Union: got %+v", u)
	}

	empty := BBox{}
	if got := empty.Union(a); got != a {
		t.Errorf("Union with empty: got %+v, want %+v", got, a)
	}
}

func TestClassifySize(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		bodySize float64
		want     SizeClass
	}{
		{"body text", 12, 12, SizeBody},
		{"footnote", 8, 12, SizeSmall},
		{"subheading", 15, 12, SizeLarge},
		{"title", 24, 12, SizeHuge},
		{"zero body falls back to 12pt", 12, 0, SizeBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySize(tt.size, tt.bodySize); got != tt.want {
				t.Errorf("ClassifySize(%f, %f): got %v, want %v", tt.size, tt.bodySize, got, tt.want)
			}
		})
	}
}

func TestTableGetText(t *testing.T) {
	tbl := NewTable(2, 2)
	tbl.Rows[0][0].Text = "Name"
	tbl.Rows[0][1].Text = "Qty"
	tbl.Rows[1][0].Text = "Widget"
	tbl.Rows[1][1].Text = "3"

	got := tbl.GetText()
	want := "Name\tQty\nWidget\t3\n"
	if got != want {
		t.Errorf("GetText: got %q, want %q", got, want)
	}
}

func TestTableColCountRagged(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{Text: "a"}, {Text: "b"}},
		{{Text: "c"}, {Text: "d"}, {Text: "e"}},
	}}
	if got := tbl.ColCount(); got != 3 {
		t.Errorf("ColCount: got %d, want 3", got)
	}
}

func TestDocumentText(t *testing.T) {
	doc := NewDocument()
	page := &Page{Index: 0}
	page.AddBlock(&Heading{Text: "Title", Level: 1})
	page.AddBlock(&Paragraph{Text: "Body text."})
	page.AddBlock(&Image{Data: []byte{1, 2, 3}, Format: RasterJPEG})
	doc.AddPage(page)

	got := doc.Text()
	if !strings.Contains(got, "Title") || !strings.Contains(got, "Body text.") {
		t.Errorf("Text missing content: %q", got)
	}
}

func TestPageContentCharCount(t *testing.T) {
	pc := &PageContent{
		Fragments: []TextFragment{
			{Text: "hello world"},
			{Text: "  \t\n"},
			{Text: "ab"},
		},
	}
	if got := pc.CharCount(); got != 12 {
		t.Errorf("CharCount: got %d, want 12", got)
	}
}

func TestRasterCoverageFullPageScan(t *testing.T) {
	// US Letter page with a 200 DPI full-page scan.
	pc := &PageContent{
		Width:  612,
		Height: 792,
		Raster: &Raster{Width: 1700, Height: 2200, Format: RasterJPEG},
	}
	if got := pc.RasterCoverage(); got != 1 {
		t.Errorf("RasterCoverage: got %f, want 1", got)
	}
}

func TestRasterCoverageNoRaster(t *testing.T) {
	pc := &PageContent{Width: 612, Height: 792}
	if got := pc.RasterCoverage(); got != 0 {
		t.Errorf("RasterCoverage: got %f, want 0", got)
	}
}

func TestAdvisoryString(t *testing.T) {
	a := Advisory{Code: AdvisoryOCRTimeout, Page: 2, Detail: "recognition exceeded 30s"}
	got := a.String()
	if !strings.Contains(got, "page 3") || !strings.Contains(got, "OcrTimeout") {
		t.Errorf("String: got %q", got)
	}

	b := Advisory{Code: AdvisoryUnsupportedFeature, Page: -1, Detail: "image blocks"}
	if strings.Contains(b.String(), "page") {
		t.Errorf("String should omit page for -1: got %q", b.String())
	}
}

func TestAdvisoryDegrading(t *testing.T) {
	if !(Advisory{Code: AdvisoryOCRTimeout}).Degrading() {
		t.Error("OcrTimeout should be degrading")
	}
	if (Advisory{Code: AdvisoryClassificationMismatch}).Degrading() {
		t.Error("ClassificationMismatch should not be degrading")
	}
}

func TestClassificationString(t *testing.T) {
	tests := []struct {
		c    Classification
		want string
	}{
		{ClassText, "TEXT"},
		{ClassImage, "IMAGE"},
		{ClassHybrid, "HYBRID"},
		{ClassUnknown, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String: got %q, want %q", got, tt.want)
		}
	}
}
