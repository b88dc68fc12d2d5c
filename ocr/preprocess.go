package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/pdfmill/pdfmill/model"
)

// binarizeThreshold is the gray level above which a pixel becomes white
// during preprocessing.
const binarizeThreshold = 150

// preprocess decodes the input image, converts it to grayscale, applies
// threshold binarization, and re-encodes it as PNG. Low-contrast scans
// recognize measurably better after this pass.
func preprocess(data []byte, format model.RasterFormat) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case model.RasterJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case model.RasterPNG:
		img, err = png.Decode(bytes.NewReader(data))
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < binarizeThreshold {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}
