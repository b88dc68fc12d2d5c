package reconstruct

import (
	"sort"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// line is a row of fragments sharing a baseline.
type line struct {
	fragments []model.TextFragment
	text      string
	bbox      model.BBox
	fontSize  float64
	style     model.TextStyle
}

// xTolerance is the X comparison slack, as a fraction of font size, for
// fragments whose coordinates slightly overlap. Some PDF generators emit
// fragments in correct stream order with marginally disordered X values.
const xTolerance = 0.25

// buildLines groups fragments into lines by baseline proximity.
func buildLines(fragments []model.TextFragment) []line {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]model.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].BBox.Y - sorted[j].BBox.Y
		if abs(yDiff) > lineSlack(sorted[i]) {
			return yDiff > 0 // higher on the page first
		}
		tolerance := sorted[i].FontSize * xTolerance
		if abs(sorted[i].BBox.X-sorted[j].BBox.X) < tolerance {
			return false // effectively equal, preserve stream order
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var lines []line
	current := newLine(sorted[0])
	for _, frag := range sorted[1:] {
		if abs(frag.BBox.Y-current.bbox.Y) <= lineSlack(frag) {
			current.add(frag)
		} else {
			current.finish()
			lines = append(lines, current)
			current = newLine(frag)
		}
	}
	current.finish()
	lines = append(lines, current)
	return lines
}

func lineSlack(f model.TextFragment) float64 {
	if f.FontSize > 0 {
		return f.FontSize * 0.5
	}
	return 6
}

func newLine(f model.TextFragment) line {
	return line{
		fragments: []model.TextFragment{f},
		bbox:      f.BBox,
		fontSize:  f.FontSize,
		style:     f.Style,
	}
}

func (l *line) add(f model.TextFragment) {
	l.fragments = append(l.fragments, f)
	l.bbox = l.bbox.Union(f.BBox)
	if f.FontSize > l.fontSize {
		l.fontSize = f.FontSize
	}
	// A line is bold/italic only if every fragment in it is.
	l.style.Bold = l.style.Bold && f.Style.Bold
	l.style.Italic = l.style.Italic && f.Style.Italic
}

// finish assembles the line text, inserting spaces at word gaps.
func (l *line) finish() {
	var sb strings.Builder
	var lastEnd float64
	for i, f := range l.fragments {
		if i > 0 {
			gap := f.BBox.X - lastEnd
			if gap > f.FontSize*0.3 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(f.Text)
		lastEnd = f.BBox.Right()
	}
	l.text = strings.TrimRight(sb.String(), " ")
}

// paragraphGap is the line spacing multiple beyond which consecutive
// lines belong to different paragraphs.
const paragraphGap = 1.5

// buildParagraphs groups lines into paragraph candidates.
func buildParagraphs(lines []line) [][]line {
	if len(lines) == 0 {
		return nil
	}
	var paras [][]line
	current := []line{lines[0]}
	for _, ln := range lines[1:] {
		prev := current[len(current)-1]
		gap := prev.bbox.Bottom() - ln.bbox.Top()
		height := ln.fontSize
		if height <= 0 {
			height = 12
		}
		if gap > height*paragraphGap || gap < -height {
			paras = append(paras, current)
			current = []line{ln}
		} else {
			current = append(current, ln)
		}
	}
	paras = append(paras, current)
	return paras
}

// bodyFontSize returns the dominant font size, weighted by text length.
func bodyFontSize(lines []line) float64 {
	weights := make(map[float64]int)
	for _, ln := range lines {
		size := roundHalf(ln.fontSize)
		weights[size] += len(ln.text)
	}
	var best float64
	bestWeight := -1
	for size, weight := range weights {
		if weight > bestWeight || (weight == bestWeight && size < best) {
			best = size
			bestWeight = weight
		}
	}
	if best <= 0 {
		return 12
	}
	return best
}

// headingLevel maps a font-size ratio to a heading level, or 0 when the
// paragraph is not a heading.
func headingLevel(para []line, bodySize float64) int {
	if len(para) > 2 || bodySize <= 0 {
		return 0
	}
	size := para[0].fontSize
	ratio := size / bodySize
	bold := true
	for _, ln := range para {
		bold = bold && ln.style.Bold
	}
	switch {
	case ratio >= 1.8:
		return 1
	case ratio >= 1.5:
		return 2
	case ratio >= 1.3:
		return 3
	case ratio >= 1.15:
		return 4
	case bold && ratio >= 0.95:
		// Bold body-size text standing alone reads as a minor heading.
		if len(para) == 1 && len(para[0].text) < 80 {
			return 5
		}
	}
	return 0
}

// detectAlignment infers horizontal alignment from the margins a
// paragraph leaves on the page.
func detectAlignment(bbox model.BBox, pageWidth float64) model.Alignment {
	if pageWidth <= 0 {
		return model.AlignLeft
	}
	left := bbox.Left()
	right := pageWidth - bbox.Right()
	if left > pageWidth*0.15 && right > pageWidth*0.15 && abs(left-right) < pageWidth*0.08 {
		return model.AlignCenter
	}
	if left > right*2 && right < pageWidth*0.1 {
		return model.AlignRight
	}
	return model.AlignLeft
}

// paraText joins line texts with newlines.
func paraText(para []line) string {
	parts := make([]string, len(para))
	for i, ln := range para {
		parts[i] = ln.text
	}
	return strings.Join(parts, "\n")
}

// paraBBox returns the union of line boxes.
func paraBBox(para []line) model.BBox {
	var b model.BBox
	for _, ln := range para {
		b = b.Union(ln.bbox)
	}
	return b
}

func roundHalf(v float64) float64 {
	return float64(int(v*2+0.5)) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
