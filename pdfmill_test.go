package pdfmill

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfmill/pdfmill/batch"
	"github.com/pdfmill/pdfmill/classify"
	"github.com/pdfmill/pdfmill/export"
	"github.com/pdfmill/pdfmill/internal/testpdf"
	"github.com/pdfmill/pdfmill/model"
	"github.com/pdfmill/pdfmill/reconstruct"
)

// fixturePDF writes a synthetic PDF into dir and returns its path.
func fixturePDF(t *testing.T, dir string, doc *testpdf.Doc) string {
	t.Helper()
	path := filepath.Join(dir, "fixture.pdf")
	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func twoPageDoc() *testpdf.Doc {
	doc := &testpdf.Doc{Title: "Fixture Report"}
	doc.AddTextPage(
		"Opening chapter text fills the first page with native characters.",
		"Several more words keep the density comfortably above threshold.",
		"A third line completes the page and anchors classification here.",
	)
	doc.AddTextPage(
		"Second chapter continues on the following page with fresh text.",
		"It too carries enough native characters to classify as text.",
		"Closing line of the second and final page of this fixture file.",
	)
	return doc
}

func TestOpenMissingFile(t *testing.T) {
	_, _, err := Open("nonexistent.pdf").Text()
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestTextExtraction(t *testing.T) {
	path := fixturePDF(t, t.TempDir(), twoPageDoc())

	text, warnings, err := Open(path).Text()
	if err != nil {
		t.Fatalf("failed to convert: %v", err)
	}
	if !strings.Contains(text, "Opening chapter") {
		t.Errorf("text missing page 1 content:\n%s", text)
	}
	if !strings.Contains(text, "Second chapter") {
		t.Errorf("text missing page 2 content:\n%s", text)
	}
	for _, w := range warnings {
		if w.Degrading() {
			t.Errorf("unexpected degrading warning: %v", w)
		}
	}
}

func TestPageSelection(t *testing.T) {
	path := fixturePDF(t, t.TempDir(), twoPageDoc())

	page1, _, err := Open(path).Pages(1).Text()
	if err != nil {
		t.Fatalf("failed to convert page 1: %v", err)
	}
	all, _, err := Open(path).Text()
	if err != nil {
		t.Fatalf("failed to convert all pages: %v", err)
	}

	if strings.Contains(page1, "Second chapter") {
		t.Error("page 1 output contains page 2 content")
	}
	if len(page1) >= len(all) {
		t.Error("expected page 1 to be shorter than all pages")
	}
}

func TestPageRangeInverted(t *testing.T) {
	path := fixturePDF(t, t.TempDir(), twoPageDoc())

	_, _, err := Open(path).PageRange(2, 1).Text()
	if err == nil {
		t.Error("expected error for inverted page range")
	}
}

func TestChainingIsImmutable(t *testing.T) {
	base := Open("doc.pdf")
	derived := base.Pages(1).Languages("deu").NoTOC()

	if base.options.pages != nil {
		t.Error("base pages mutated by chained call")
	}
	if base.options.languages != nil {
		t.Error("base languages mutated by chained call")
	}
	if !base.options.includeTOC {
		t.Error("base TOC setting mutated by chained call")
	}
	if len(derived.options.pages) != 1 || derived.options.pages[0] != 1 {
		t.Errorf("derived pages = %v", derived.options.pages)
	}
}

func TestAnalysisOptionsReachPipelineConfig(t *testing.T) {
	opts := Open("doc.pdf").
		ClassificationThreshold(3.5).
		TableSensitivity("high").
		Options()
	cfg := opts.batchConfig()

	if cfg.Classify.DensityThreshold != 3.5 {
		t.Errorf("density threshold = %v, want 3.5", cfg.Classify.DensityThreshold)
	}
	want := reconstruct.TableConfigFor(reconstruct.SensitivityHigh)
	if cfg.Reconstruct.Tables != want {
		t.Errorf("table config = %+v, want %+v", cfg.Reconstruct.Tables, want)
	}

	// Defaults survive when neither option is set.
	cfg = Open("doc.pdf").Options().batchConfig()
	if cfg.Classify.DensityThreshold != classify.DefaultConfig().DensityThreshold {
		t.Errorf("default density threshold = %v", cfg.Classify.DensityThreshold)
	}
	if cfg.Reconstruct.Tables != reconstruct.TableConfigFor(reconstruct.SensitivityMedium) {
		t.Errorf("default table config = %+v", cfg.Reconstruct.Tables)
	}
}

func TestMarkdownIncludesTitle(t *testing.T) {
	path := fixturePDF(t, t.TempDir(), twoPageDoc())

	md, _, err := Open(path).NoTOC().Markdown()
	if err != nil {
		t.Fatalf("failed to convert: %v", err)
	}
	if !strings.Contains(md, "# Fixture Report") {
		t.Errorf("markdown missing document title:\n%s", md)
	}
}

func TestHTMLIsStandalone(t *testing.T) {
	path := fixturePDF(t, t.TempDir(), twoPageDoc())

	html, _, err := Open(path).HTML()
	if err != nil {
		t.Fatalf("failed to convert: %v", err)
	}
	if !strings.Contains(html, "<html") || !strings.Contains(html, "</html>") {
		t.Error("output is not a standalone HTML document")
	}
}

func TestSaveInfersFormat(t *testing.T) {
	dir := t.TempDir()
	path := fixturePDF(t, dir, twoPageDoc())
	out := filepath.Join(dir, "fixture.txt")

	if _, err := Open(path).Save(out); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if !strings.Contains(string(data), "Opening chapter") {
		t.Error("saved artifact missing content")
	}

	if _, err := Open(path).Save(filepath.Join(dir, "fixture.zip")); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestSubmitBatch(t *testing.T) {
	dir := t.TempDir()
	path := fixturePDF(t, dir, twoPageDoc())
	out := filepath.Join(dir, "out.md")

	run := Submit(context.Background(), []Spec{
		{Source: path, Output: out, Format: export.Markdown},
	}, DefaultOptions())
	for range run.Events() {
	}
	run.Wait()

	if got := run.Jobs()[0].Status(); got != batch.StatusSucceeded {
		t.Fatalf("status = %v, err = %v", got, run.Jobs()[0].Err())
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("markdown")
	if err != nil || f != export.Markdown {
		t.Errorf("ParseFormat(markdown) = %v, %v", f, err)
	}
	if _, err := ParseFormat("wav"); err == nil {
		t.Error("expected error for unknown format name")
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Code: model.AdvisoryOCRTimeout, Page: 1, Detail: "recognition exceeded 30s"},
		{Code: model.AdvisoryUnsupportedFeature, Page: -1, Detail: "images not representable"},
	}
	got := FormatWarnings(warnings)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "page 2") {
		t.Errorf("first line missing 1-based page: %q", lines[0])
	}
}

func TestMustTextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustText(Open("nonexistent.pdf").Text())
}
