// Package ocr converts page images into recognized text with bounding
// boxes and confidence scores.
//
// Recognition backends implement the [Engine] interface and are stateless
// per call, so pages can be recognized independently and concurrently.
// The Tesseract backend wraps the gosseract library and is compiled in
// with the "ocr" build tag:
//
//	go build -tags ocr
//
// It requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag, [NewTesseract] returns a stub whose calls fail with
// [ErrUnavailable].
package ocr

import (
	"context"
	"errors"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// ErrUnavailable is returned when no OCR backend can service the call,
// either because support was not compiled in or the engine cannot start.
var ErrUnavailable = errors.New("ocr: engine unavailable")

// ErrTimeout is returned when a single recognition call exceeded its
// context deadline. The call's page is degraded; the document is not.
var ErrTimeout = errors.New("ocr: recognition timed out")

// Input is a single image submitted for recognition.
type Input struct {
	// Image is the encoded image payload.
	Image []byte
	// Format identifies the image encoding.
	Format model.RasterFormat
	// PageIndex links the input back to the zero-based source page.
	PageIndex int
	// DPI is the effective resolution of the image; zero means unknown.
	DPI int
	// Languages holds Tesseract language hints (e.g. "eng", "deu").
	// Empty means the backend default.
	Languages []string
	// Preprocess applies grayscale and threshold binarization before
	// recognition, which can help low-contrast scans.
	Preprocess bool
}

// Span is one recognized run of text with its position and confidence.
// Bounds are in image pixel coordinates with the origin at the top left.
type Span struct {
	Text       string
	Bounds     model.BBox
	Confidence float64 // 0..1
}

// Result is the outcome of recognizing one image. Spans appear in the
// engine's reading order. A backend reports exactly what the model
// returned; it never invents text.
type Result struct {
	PageIndex int
	Spans     []Span
}

// Text joins span texts with newlines.
func (r Result) Text() string {
	parts := make([]string, len(r.Spans))
	for i, s := range r.Spans {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n")
}

// MinConfidence returns the lowest span confidence, or 1 for an empty
// result.
func (r Result) MinConfidence() float64 {
	min := 1.0
	for _, s := range r.Spans {
		if s.Confidence < min {
			min = s.Confidence
		}
	}
	return min
}

// Engine is the capability interface for OCR backends. Implementations
// must be safe for concurrent use and must not keep state between calls.
type Engine interface {
	// Name identifies the backend (e.g. "tesseract").
	Name() string
	// Recognize extracts text from one image. The context carries the
	// per-call timeout; implementations must honor cancellation.
	Recognize(ctx context.Context, input Input) (Result, error)
}

// InputOption mutates an Input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI sets the effective resolution on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithPreprocess enables image preprocessing before recognition.
func WithPreprocess() InputOption {
	return func(in *Input) { in.Preprocess = true }
}

// NewInput builds an Input for a page raster.
func NewInput(raster *model.Raster, pageIndex int, opts ...InputOption) Input {
	in := Input{
		Image:     raster.Data,
		Format:    raster.Format,
		PageIndex: pageIndex,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// langSpec joins language hints into Tesseract's "+"-separated syntax,
// defaulting to English.
func langSpec(langs []string) string {
	if len(langs) == 0 {
		return "eng"
	}
	return strings.Join(langs, "+")
}
