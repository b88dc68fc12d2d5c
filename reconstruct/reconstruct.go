package reconstruct

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdfmill/pdfmill/model"
	"github.com/pdfmill/pdfmill/ocr"
)

// Config holds reconstruction parameters.
type Config struct {
	// LowConfidence is the OCR confidence threshold below which spans are
	// flagged LOW_CONFIDENCE.
	LowConfidence float64

	// Tables holds table detection parameters.
	Tables TableConfig
}

// DefaultConfig returns the default reconstruction parameters.
func DefaultConfig() Config {
	return Config{
		LowConfidence: 0.60,
		Tables:        TableConfigFor(SensitivityMedium),
	}
}

// RecognizeFunc runs OCR on a page raster. The batch orchestrator
// supplies one wrapping its timeout and language policy; reconstruction
// uses it only for the corrective fallback on misclassified pages.
type RecognizeFunc func(ctx context.Context, raster *model.Raster, pageIndex int) (ocr.Result, error)

// Reconstructor builds intermediate-model pages from classified page
// content. It is stateless across pages and safe for concurrent use.
type Reconstructor struct {
	cfg       Config
	recognize RecognizeFunc
}

// New creates a Reconstructor. recognize may be nil, which disables the
// OCR fallback for misclassified pages.
func New(cfg Config, recognize RecognizeFunc) *Reconstructor {
	return &Reconstructor{cfg: cfg, recognize: recognize}
}

// Page reconstructs one page. rec carries the OCR result for IMAGE and
// HYBRID pages, or nil when recognition was not run or failed; the
// orchestrator records those failures. The returned page is complete and
// must not be mutated afterward.
func (r *Reconstructor) Page(ctx context.Context, pc *model.PageContent, class model.Classification, rec *ocr.Result) (*model.Page, []model.Advisory) {
	page := &model.Page{
		Index:          pc.Index,
		Width:          pc.Width,
		Height:         pc.Height,
		Classification: class,
		Raster:         pc.Raster,
	}
	var advisories []model.Advisory

	var fragments []model.TextFragment
	switch class {
	case model.ClassText:
		fragments = pc.Fragments
		if emptyText(fragments) {
			// The text layer was reported usable but extracted nothing.
			// Re-route through OCR instead of failing the page.
			ocrFrags, adv := r.fallbackOCR(ctx, pc)
			advisories = append(advisories, adv...)
			fragments = ocrFrags
		}
	case model.ClassImage:
		if rec != nil {
			fragments = r.spanFragments(*rec, pc)
		}
	case model.ClassHybrid:
		fragments = pc.Fragments
		if rec != nil {
			fragments = append(fragments, r.mergeHybrid(*rec, pc)...)
		}
	default:
		fragments = pc.Fragments
	}

	if low := countLowConfidence(fragments); low > 0 {
		advisories = append(advisories, model.Advisory{
			Code:   model.AdvisoryLowConfidence,
			Page:   pc.Index,
			Detail: fmt.Sprintf("%d recognized span(s) below confidence threshold", low),
		})
	}

	r.assemble(page, fragments, pc)
	return page, advisories
}

// fallbackOCR runs the corrective recognition pass for a TEXT page whose
// extraction came back empty.
func (r *Reconstructor) fallbackOCR(ctx context.Context, pc *model.PageContent) ([]model.TextFragment, []model.Advisory) {
	advisories := []model.Advisory{{
		Code:   model.AdvisoryClassificationMismatch,
		Page:   pc.Index,
		Detail: "text layer present but extraction was empty; re-routed through OCR",
	}}

	if r.recognize == nil || pc.Raster == nil {
		return nil, advisories
	}
	rec, err := r.recognize(ctx, pc.Raster, pc.Index)
	if err != nil {
		advisories = append(advisories, ocrFailureAdvisory(err, pc.Index))
		return nil, advisories
	}
	return r.spanFragments(rec, pc), advisories
}

// ocrFailureAdvisory maps a recognition error to its advisory.
func ocrFailureAdvisory(err error, pageIndex int) model.Advisory {
	code := model.AdvisoryOCRUnavailable
	if errors.Is(err, ocr.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		code = model.AdvisoryOCRTimeout
	}
	return model.Advisory{Code: code, Page: pageIndex, Detail: err.Error()}
}

// spanFragments converts OCR spans to page-coordinate text fragments.
// OCR bounds are pixels with a top-left origin; page coordinates are
// points with a bottom-left origin.
func (r *Reconstructor) spanFragments(rec ocr.Result, pc *model.PageContent) []model.TextFragment {
	sx, sy := 1.0, 1.0
	if pc.Raster != nil && pc.Raster.Width > 0 && pc.Raster.Height > 0 {
		sx = pc.Width / float64(pc.Raster.Width)
		sy = pc.Height / float64(pc.Raster.Height)
	}

	var fragments []model.TextFragment
	for _, span := range rec.Spans {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		h := span.Bounds.Height * sy
		y := pc.Height - (span.Bounds.Y+span.Bounds.Height)*sy
		fragments = append(fragments, model.TextFragment{
			Text:          text,
			BBox:          model.NewBBox(span.Bounds.X*sx, y, span.Bounds.Width*sx, h),
			FontSize:      h,
			FromOCR:       true,
			LowConfidence: span.Confidence < r.cfg.LowConfidence,
		})
	}
	return fragments
}

// mergeHybrid returns the OCR fragments that fill regions the native
// text layer does not cover. Native text has priority where both exist.
func (r *Reconstructor) mergeHybrid(rec ocr.Result, pc *model.PageContent) []model.TextFragment {
	ocrFrags := r.spanFragments(rec, pc)
	var kept []model.TextFragment
	for _, of := range ocrFrags {
		covered := false
		for _, nf := range pc.Fragments {
			if of.BBox.OverlapX(nf.BBox) > of.BBox.Width*0.5 &&
				of.BBox.OverlapY(nf.BBox) > of.BBox.Height*0.5 {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, of)
		}
	}
	return kept
}

// assemble turns fragments into ordered blocks on the page.
func (r *Reconstructor) assemble(page *model.Page, fragments []model.TextFragment, pc *model.PageContent) {
	lines := buildLines(fragments)
	if len(lines) == 0 {
		r.appendScanImage(page)
		return
	}

	tables, possible, consumed := detectTables(lines, pc.Rects, r.cfg.Tables)
	body := bodyFontSize(lines)

	// Collect blocks with their top edge so tables and text interleave
	// in reading order.
	type placed struct {
		top   float64
		block model.Block
	}
	var blocks []placed

	for _, t := range tables {
		blocks = append(blocks, placed{top: t.BBox.Top(), block: t})
	}

	possibleLines := make([]bool, len(lines))
	for _, span := range possible {
		for i := span[0]; i <= span[1]; i++ {
			possibleLines[i] = true
		}
	}

	// Paragraph grouping runs over maximal unconsumed runs so a table in
	// the middle of a page splits the surrounding text correctly.
	start := 0
	for start < len(lines) {
		if consumed[start] {
			start++
			continue
		}
		end := start
		for end+1 < len(lines) && !consumed[end+1] {
			end++
		}
		for _, para := range buildParagraphs(lines[start : end+1]) {
			block := r.paragraphBlock(para, body, pc.Width, possibleLines[start])
			blocks = append(blocks, placed{top: block.Bounds().Top(), block: block})
		}
		start = end + 1
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].top > blocks[j].top })
	for _, p := range blocks {
		page.AddBlock(p.block)
	}
	r.appendScanImage(page)
}

// paragraphBlock builds a paragraph or heading block from grouped lines.
func (r *Reconstructor) paragraphBlock(para []line, bodySize, pageWidth float64, possibleTable bool) model.Block {
	text := paraText(para)
	bbox := paraBBox(para)
	size := para[0].fontSize
	style := para[0].style
	lowConf := false
	fromOCR := true
	for _, ln := range para {
		for _, f := range ln.fragments {
			lowConf = lowConf || f.LowConfidence
			fromOCR = fromOCR && f.FromOCR
		}
	}

	if !possibleTable && !fromOCR {
		if level := headingLevel(para, bodySize); level > 0 {
			return &model.Heading{
				Text:     strings.ReplaceAll(text, "\n", " "),
				Level:    level,
				BBox:     bbox,
				FontSize: size,
				Size:     model.ClassifySize(size, bodySize),
				Style:    style,
			}
		}
	}

	return &model.Paragraph{
		Text:          text,
		BBox:          bbox,
		FontSize:      size,
		FontName:      para[0].fontName(),
		Size:          model.ClassifySize(size, bodySize),
		Style:         style,
		Alignment:     detectAlignment(bbox, pageWidth),
		PossibleTable: possibleTable,
		LowConfidence: lowConf,
	}
}

// appendScanImage attaches the page scan as an image block on hybrid
// pages, where the raster holds regions the text does not represent.
func (r *Reconstructor) appendScanImage(page *model.Page) {
	if page.Classification != model.ClassHybrid || page.Raster == nil {
		return
	}
	format := page.Raster.Format
	page.AddBlock(&model.Image{
		Data:   page.Raster.Data,
		Format: format,
		BBox:   model.NewBBox(0, 0, page.Width, page.Height),
	})
}

func emptyText(fragments []model.TextFragment) bool {
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			return false
		}
	}
	return true
}

func countLowConfidence(fragments []model.TextFragment) int {
	n := 0
	for _, f := range fragments {
		if f.LowConfidence {
			n++
		}
	}
	return n
}

func (l line) fontName() string {
	if len(l.fragments) > 0 {
		return l.fragments[0].FontName
	}
	return ""
}
