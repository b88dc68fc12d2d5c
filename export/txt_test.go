package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextExport(t *testing.T) {
	var buf bytes.Buffer
	advisories, err := (&textExporter{}).Export(sampleDoc(), &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}

	out := buf.String()
	if !strings.Contains(out, "Results") {
		t.Error("heading text missing")
	}
	if !strings.Contains(out, "Revenue grew in every region.") {
		t.Error("paragraph text missing")
	}
	if !strings.Contains(out, "North\t1250.50") {
		t.Error("table not flattened to tab-separated rows")
	}
	if strings.Contains(out, "data:") || strings.Contains(out, "PNG") {
		t.Error("image content leaked into plain text")
	}
}

func TestTextExportCRLF(t *testing.T) {
	opts := DefaultOptions()
	opts.LineEnding = "crlf"
	var buf bytes.Buffer
	if _, err := (&textExporter{}).Export(sampleDoc(), &buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\r\n") {
		t.Error("no CRLF line endings in output")
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Error("bare LF remains alongside CRLF")
	}
}

func TestTextExportUTF16(t *testing.T) {
	opts := DefaultOptions()
	opts.Encoding = "utf-16"
	var buf bytes.Buffer
	if _, err := (&textExporter{}).Export(sampleDoc(), &buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.Bytes()
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xFE {
		t.Errorf("missing little-endian BOM, got % x", out[:2])
	}
}

func TestTextExportUnknownEncoding(t *testing.T) {
	opts := DefaultOptions()
	opts.Encoding = "ebcdic"
	var buf bytes.Buffer
	if _, err := (&textExporter{}).Export(sampleDoc(), &buf, opts); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}
