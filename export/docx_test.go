package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/pdfmill/pdfmill/model"
)

// readZipPart extracts one file from an in-memory zip archive.
func readZipPart(t *testing.T, data []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return content
	}
	t.Fatalf("part %s missing from archive", name)
	return nil
}

// scanXML tokenizes a document, returning the text content and a count
// per element local name. Fails the test on malformed XML.
func scanXML(t *testing.T, data []byte) (string, map[string]int) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	var text strings.Builder
	counts := map[string]int{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("malformed XML: %v", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			counts[tk.Name.Local]++
		case xml.CharData:
			text.Write(tk)
		}
	}
	return text.String(), counts
}

func TestDOCXExport(t *testing.T) {
	var buf bytes.Buffer
	advisories, err := (&docxExporter{}).Export(sampleDoc(), &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}

	data := buf.Bytes()
	for _, part := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/_rels/document.xml.rels",
	} {
		readZipPart(t, data, part)
	}

	docXML := readZipPart(t, data, "word/document.xml")
	text, counts := scanXML(t, docXML)

	if !strings.Contains(text, "Results") {
		t.Error("heading text missing from document")
	}
	if !strings.Contains(text, "Revenue grew in every region.") {
		t.Error("paragraph text missing from document")
	}
	if !strings.Contains(text, "Region") || !strings.Contains(text, "1250.50") {
		t.Error("table cell text missing from document")
	}
	if counts["tbl"] != 1 {
		t.Errorf("expected 1 table, got %d", counts["tbl"])
	}
	if counts["tr"] != 2 || counts["tc"] != 4 {
		t.Errorf("table shape wrong: %d rows, %d cells", counts["tr"], counts["tc"])
	}
	if counts["drawing"] != 1 {
		t.Errorf("expected 1 embedded image, got %d", counts["drawing"])
	}
	if counts["pStyle"] != 1 {
		t.Errorf("expected 1 heading style reference, got %d", counts["pStyle"])
	}

	media := readZipPart(t, data, "word/media/image1.png")
	if !bytes.Equal(media, tinyPNG()) {
		t.Error("embedded image bytes differ from source")
	}

	relsXML := readZipPart(t, data, "word/_rels/document.xml.rels")
	if !strings.Contains(string(relsXML), "media/image1.png") {
		t.Error("image relationship missing")
	}
}

func TestDOCXAlignmentAndStyle(t *testing.T) {
	doc := sampleDoc()
	doc.Pages[0].Blocks = nil
	doc.Pages[0].AddBlock(&model.Paragraph{
		Text:      "centered bold",
		Style:     model.TextStyle{Bold: true},
		Alignment: model.AlignCenter,
		FontSize:  14,
	})

	var buf bytes.Buffer
	if _, err := (&docxExporter{}).Export(doc, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	docXML := string(readZipPart(t, buf.Bytes(), "word/document.xml"))
	if !strings.Contains(docXML, `<w:jc w:val="center"/>`) {
		t.Error("center alignment missing")
	}
	if !strings.Contains(docXML, "<w:b/>") {
		t.Error("bold run property missing")
	}
	if !strings.Contains(docXML, `<w:sz w:val="28"/>`) {
		t.Error("font size in half-points missing")
	}
}

func TestDOCXEscapesText(t *testing.T) {
	doc := sampleDoc()
	doc.Pages[0].Blocks = nil
	doc.Pages[0].AddBlock(&model.Paragraph{Text: "a < b & c"})

	var buf bytes.Buffer
	if _, err := (&docxExporter{}).Export(doc, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	text, _ := scanXML(t, readZipPart(t, buf.Bytes(), "word/document.xml"))
	if !strings.Contains(text, "a < b & c") {
		t.Error("special characters lost in round-trip")
	}
}
