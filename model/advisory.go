package model

import (
	"fmt"
	"strings"
)

// AdvisoryCode identifies the category of a non-fatal condition recorded
// against a conversion.
type AdvisoryCode string

const (
	// AdvisoryClassificationMismatch is recorded when a page classified as
	// having a text layer produced an empty extraction and was re-routed
	// through OCR.
	AdvisoryClassificationMismatch AdvisoryCode = "ClassificationMismatch"

	// AdvisoryUnsupportedFeature is recorded when an exporter skips a block
	// it cannot represent in its target format.
	AdvisoryUnsupportedFeature AdvisoryCode = "UnsupportedFeature"

	// AdvisoryOCRTimeout is recorded when recognition of one page exceeded
	// the configured timeout and the page's content was degraded.
	AdvisoryOCRTimeout AdvisoryCode = "OcrTimeout"

	// AdvisoryOCRUnavailable is recorded when the OCR engine could not be
	// reached for a page that needed it.
	AdvisoryOCRUnavailable AdvisoryCode = "OcrUnavailable"

	// AdvisoryLowConfidence is recorded when OCR output for a page fell
	// below the configured confidence threshold.
	AdvisoryLowConfidence AdvisoryCode = "LowConfidence"

	// AdvisoryPageError is recorded when one page could not be read or
	// reconstructed and the conversion continued without it.
	AdvisoryPageError AdvisoryCode = "PageError"
)

// Advisory is a non-fatal condition attached to a conversion result for
// visibility. Advisories never cause a job to fail; they downgrade a
// successful job to PARTIAL when content was degraded.
type Advisory struct {
	Code   AdvisoryCode
	Page   int // zero-based page index, -1 when not page-specific
	Detail string
}

func (a Advisory) String() string {
	if a.Page >= 0 {
		return fmt.Sprintf("%s (page %d): %s", a.Code, a.Page+1, a.Detail)
	}
	return fmt.Sprintf("%s: %s", a.Code, a.Detail)
}

// Degrading reports whether the advisory represents degraded content, as
// opposed to purely informational conditions.
func (a Advisory) Degrading() bool {
	switch a.Code {
	case AdvisoryOCRTimeout, AdvisoryOCRUnavailable, AdvisoryUnsupportedFeature, AdvisoryPageError:
		return true
	}
	return false
}

// FormatAdvisories renders advisories one per line for display.
func FormatAdvisories(advisories []Advisory) string {
	if len(advisories) == 0 {
		return ""
	}
	lines := make([]string, len(advisories))
	for i, a := range advisories {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}
