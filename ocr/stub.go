//go:build !ocr

package ocr

import "context"

// Tesseract is the stub engine used when the "ocr" build tag is not set.
// All calls fail with ErrUnavailable. Rebuild with -tags ocr to enable
// real recognition.
type Tesseract struct{}

// NewTesseract returns the stub engine.
func NewTesseract() Engine {
	return Tesseract{}
}

// Name implements Engine.
func (Tesseract) Name() string { return "tesseract" }

// Recognize implements Engine by failing with ErrUnavailable.
func (Tesseract) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{}, ErrUnavailable
}
