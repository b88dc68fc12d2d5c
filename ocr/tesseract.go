//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdfmill/pdfmill/model"
)

// Tesseract recognizes text through the system Tesseract installation via
// gosseract. Each Recognize call creates and closes its own client, so a
// single Tesseract value is safe for concurrent use and keeps no memory
// between pages.
type Tesseract struct{}

// NewTesseract returns the Tesseract-backed engine.
func NewTesseract() Engine {
	return Tesseract{}
}

// Name implements Engine.
func (Tesseract) Name() string { return "tesseract" }

// Recognize implements Engine. The work runs on its own goroutine so the
// caller's context deadline is honored even while Tesseract is busy.
func (Tesseract) Recognize(ctx context.Context, input Input) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := recognizeSync(input)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("page %d: %w", input.PageIndex, ErrTimeout)
		}
		return Result{}, ctx.Err()
	case out := <-done:
		return out.res, out.err
	}
}

func recognizeSync(input Input) (Result, error) {
	data := input.Image
	if input.Preprocess {
		pre, err := preprocess(data, input.Format)
		if err == nil {
			data = pre
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(langSpec(input.Languages)); err != nil {
		return Result{}, fmt.Errorf("set language: %w", ErrUnavailable)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}

	res := Result{PageIndex: input.PageIndex}
	for _, box := range boxes {
		text := box.Word
		if text == "" {
			continue
		}
		res.Spans = append(res.Spans, Span{
			Text: text,
			Bounds: model.NewBBox(
				float64(box.Box.Min.X),
				float64(box.Box.Min.Y),
				float64(box.Box.Dx()),
				float64(box.Box.Dy()),
			),
			Confidence: box.Confidence / 100,
		})
	}
	return res, nil
}
