// Package classify decides, per page, whether the native text layer is
// usable on its own (TEXT), the page is a scan needing OCR (IMAGE), or the
// page mixes both (HYBRID).
//
// Classification is a pure function of page content: no hidden state, and
// the same page bytes always produce the same result.
package classify

import "github.com/pdfmill/pdfmill/model"

// Config holds classification thresholds.
type Config struct {
	// DensityThreshold is the minimum native character density, in
	// characters per square inch of page area, for a page to qualify as
	// TEXT on the strength of its text layer alone. A density exactly at
	// the threshold classifies as TEXT: the text path is cheaper, and the
	// reconstructor's OCR fallback covers extraction failures.
	DensityThreshold float64

	// HybridRasterMin is the minimum raster coverage fraction for a page
	// with a sparse text layer to be treated as HYBRID rather than TEXT.
	HybridRasterMin float64

	// TextCoverageMin is the minimum fraction of the page area the text
	// layer's bounding boxes must cover for density alone to prove TEXT.
	// Dense text whose boxes cover almost nothing of a scanned page is
	// an overlay on the scan, not a usable text layer.
	TextCoverageMin float64
}

// DefaultConfig returns thresholds tuned for typical office documents.
// 1.6 chars/in^2 corresponds to roughly 150 characters on a US Letter page.
func DefaultConfig() Config {
	return Config{
		DensityThreshold: 1.6,
		HybridRasterMin:  0.5,
		TextCoverageMin:  0.05,
	}
}

// Classify determines the classification for one page. It inspects only
// the given content and configuration, and is safe to call concurrently.
func Classify(pc *model.PageContent, cfg Config) model.Classification {
	chars := pc.CharCount()
	if chars == 0 {
		return model.ClassImage
	}

	density := charDensity(pc, chars)
	if density >= cfg.DensityThreshold {
		// Density alone is not enough: the text must also occupy the
		// visible region. A dense layer covering a sliver of a scanned
		// page is mixed content and still needs recognition.
		if pc.TextCoverage() < cfg.TextCoverageMin && pc.RasterCoverage() >= cfg.HybridRasterMin {
			return model.ClassHybrid
		}
		return model.ClassText
	}

	// Sparse text layer. A substantial scan underneath means mixed
	// content; without one, the sparse text is all the page holds.
	if pc.RasterCoverage() >= cfg.HybridRasterMin {
		return model.ClassHybrid
	}
	return model.ClassText
}

// charDensity returns characters per square inch of page area.
func charDensity(pc *model.PageContent, chars int) float64 {
	areaSqIn := (pc.Width / 72) * (pc.Height / 72)
	if areaSqIn <= 0 {
		return 0
	}
	return float64(chars) / areaSqIn
}
