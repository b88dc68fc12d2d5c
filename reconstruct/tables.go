package reconstruct

import (
	"math"
	"sort"

	"github.com/pdfmill/pdfmill/model"
)

// Sensitivity selects how aggressively table detection runs. Higher
// sensitivity finds more tables at the cost of more false candidates;
// candidates below the confidence bar degrade to possible-table
// paragraphs either way.
type Sensitivity int

const (
	SensitivityLow Sensitivity = iota
	SensitivityMedium
	SensitivityHigh
)

func (s Sensitivity) String() string {
	switch s {
	case SensitivityLow:
		return "low"
	case SensitivityHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParseSensitivity maps a configuration string to a Sensitivity,
// defaulting to medium.
func ParseSensitivity(s string) Sensitivity {
	switch s {
	case "low":
		return SensitivityLow
	case "high":
		return SensitivityHigh
	default:
		return SensitivityMedium
	}
}

// TableConfig holds table detection parameters.
type TableConfig struct {
	MinRows        int
	MinCols        int
	AlignTolerance float64 // points
	MinConfidence  float64
	CellGap        float64 // minimum whitespace separating two cells, points
}

// TableConfigFor returns the parameter preset for a sensitivity level.
func TableConfigFor(s Sensitivity) TableConfig {
	switch s {
	case SensitivityLow:
		return TableConfig{MinRows: 3, MinCols: 2, AlignTolerance: 3, MinConfidence: 0.8, CellGap: 14}
	case SensitivityHigh:
		return TableConfig{MinRows: 2, MinCols: 2, AlignTolerance: 8, MinConfidence: 0.5, CellGap: 10}
	default:
		return TableConfig{MinRows: 2, MinCols: 2, AlignTolerance: 5, MinConfidence: 0.65, CellGap: 12}
	}
}

// tableCandidate is a run of consecutive multi-cell lines.
type tableCandidate struct {
	start, end int // line index range, inclusive
	cols       []float64
	confidence float64
}

// detectTables finds table regions in the line list. consumed marks lines
// claimed by a confident table; possible holds candidate ranges that
// failed the confidence bar and should surface as hinted paragraphs.
func detectTables(lines []line, rects []model.BBox, cfg TableConfig) (tables []*model.Table, possible [][2]int, consumed []bool) {
	consumed = make([]bool, len(lines))

	cells := make([][][]model.TextFragment, len(lines))
	for i := range lines {
		cells[i] = splitCells(lines[i], cfg.CellGap)
	}

	i := 0
	for i < len(lines) {
		if len(cells[i]) < cfg.MinCols {
			i++
			continue
		}
		// Extend the run while alignment holds.
		end := i
		for end+1 < len(lines) &&
			len(cells[end+1]) >= cfg.MinCols &&
			aligned(cells[i], cells[end+1], cfg.AlignTolerance) {
			end++
		}
		rows := end - i + 1
		if rows < cfg.MinRows {
			i = end + 1
			continue
		}

		cand := tableCandidate{start: i, end: end}
		cand.cols = clusterColumns(cells[i:end+1], cfg.AlignTolerance)
		region := regionOf(lines[i : end+1])
		hasGrid := gridEvidence(region, rects, rows, len(cand.cols))
		cand.confidence = scoreCandidate(lines[i:end+1], cells[i:end+1], cand.cols, cfg, hasGrid)

		if cand.confidence >= cfg.MinConfidence {
			tables = append(tables, buildTable(lines[i:end+1], cells[i:end+1], cand, hasGrid))
			for j := i; j <= end; j++ {
				consumed[j] = true
			}
		} else {
			possible = append(possible, [2]int{i, end})
		}
		i = end + 1
	}
	return tables, possible, consumed
}

// splitCells breaks a line's fragments into cells at large horizontal
// gaps. Fragments within a cell are merged left to right.
func splitCells(ln line, cellGap float64) [][]model.TextFragment {
	if len(ln.fragments) == 0 {
		return nil
	}
	frags := make([]model.TextFragment, len(ln.fragments))
	copy(frags, ln.fragments)
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].BBox.X < frags[j].BBox.X })

	var cells [][]model.TextFragment
	current := []model.TextFragment{frags[0]}
	for _, f := range frags[1:] {
		gap := f.BBox.X - current[len(current)-1].BBox.Right()
		if gap > math.Max(cellGap, f.FontSize*1.2) {
			cells = append(cells, current)
			current = []model.TextFragment{f}
		} else {
			current = append(current, f)
		}
	}
	cells = append(cells, current)
	return cells
}

// aligned reports whether two rows share column start positions. The
// first row anchors the comparison; extra trailing cells are tolerated
// (ragged last column).
func aligned(anchor, row [][]model.TextFragment, tol float64) bool {
	matched := 0
	for _, cell := range row {
		x := cell[0].BBox.X
		for _, ref := range anchor {
			if abs(ref[0].BBox.X-x) <= tol {
				matched++
				break
			}
		}
	}
	need := len(row)
	if need > len(anchor) {
		need = len(anchor)
	}
	return matched >= need
}

// clusterColumns derives column X positions from all cell starts.
func clusterColumns(rows [][][]model.TextFragment, tol float64) []float64 {
	var starts []float64
	for _, row := range rows {
		for _, cell := range row {
			starts = append(starts, cell[0].BBox.X)
		}
	}
	sort.Float64s(starts)

	var cols []float64
	for _, x := range starts {
		if len(cols) == 0 || x-cols[len(cols)-1] > tol {
			cols = append(cols, x)
		}
	}
	return cols
}

// regionOf returns the bounding box of a run of lines.
func regionOf(lines []line) model.BBox {
	var b model.BBox
	for _, ln := range lines {
		b = b.Union(ln.bbox)
	}
	return b
}

// gridEvidence reports whether drawn rectangles plausibly form a grid
// over the region: enough distinct rect edges intersecting it to cover
// the row and column boundaries.
func gridEvidence(region model.BBox, rects []model.BBox, rows, cols int) bool {
	if len(rects) == 0 {
		return false
	}
	count := 0
	for _, r := range rects {
		if r.Intersects(region) {
			count++
		}
	}
	// A ruled table draws at least one rect per cell row or a frame plus
	// separators; a low bar is enough as supporting evidence.
	return count >= rows || count >= cols
}

// scoreCandidate computes detection confidence from alignment quality,
// row spacing regularity, and gridline evidence.
func scoreCandidate(lines []line, rows [][][]model.TextFragment, cols []float64, cfg TableConfig, hasGrid bool) float64 {
	if len(cols) < cfg.MinCols {
		return 0
	}

	// Alignment: fraction of cell starts landing on a column position.
	total, matched := 0, 0
	for _, row := range rows {
		for _, cell := range row {
			total++
			x := cell[0].BBox.X
			for _, col := range cols {
				if abs(col-x) <= cfg.AlignTolerance {
					matched++
					break
				}
			}
		}
	}
	alignQuality := 0.0
	if total > 0 {
		alignQuality = float64(matched) / float64(total)
	}

	// Regularity: coefficient of variation of row spacing.
	regularity := 1.0
	if len(lines) > 2 {
		var gaps []float64
		for i := 1; i < len(lines); i++ {
			gaps = append(gaps, lines[i-1].bbox.Y-lines[i].bbox.Y)
		}
		mean := 0.0
		for _, g := range gaps {
			mean += g
		}
		mean /= float64(len(gaps))
		if mean > 0 {
			variance := 0.0
			for _, g := range gaps {
				variance += (g - mean) * (g - mean)
			}
			cv := math.Sqrt(variance/float64(len(gaps))) / mean
			regularity = 1 - math.Min(cv, 1)
		}
	}

	grid := 0.0
	if hasGrid {
		grid = 1.0
	}
	return alignQuality*0.5 + regularity*0.3 + grid*0.2
}

// buildTable materializes the model table for a confident candidate.
func buildTable(lines []line, rows [][][]model.TextFragment, cand tableCandidate, hasGrid bool) *model.Table {
	t := model.NewTable(len(rows), len(cand.cols))
	t.HasGrid = hasGrid
	t.Confidence = cand.confidence
	t.BBox = regionOf(lines)

	for i, row := range rows {
		for _, cell := range row {
			col := nearestColumn(cand.cols, cell[0].BBox.X)
			text := joinFragments(cell)
			target := &t.Rows[i][col]
			if target.Text != "" {
				target.Text += " "
			}
			target.Text += text
			target.BBox = target.BBox.Union(cellBBox(cell))
			target.Style = cell[0].Style
		}
	}

	// A bold first row reads as a header row.
	header := true
	for _, c := range t.Rows[0] {
		if c.Text != "" && !c.Style.Bold {
			header = false
			break
		}
	}
	if header {
		for j := range t.Rows[0] {
			t.Rows[0][j].IsHeader = true
		}
	}
	return t
}

func nearestColumn(cols []float64, x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, col := range cols {
		if d := abs(col - x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func joinFragments(cell []model.TextFragment) string {
	text := ""
	var lastEnd float64
	for i, f := range cell {
		if i > 0 && f.BBox.X-lastEnd > f.FontSize*0.3 {
			text += " "
		}
		text += f.Text
		lastEnd = f.BBox.Right()
	}
	return text
}

func cellBBox(cell []model.TextFragment) model.BBox {
	var b model.BBox
	for _, f := range cell {
		b = b.Union(f.BBox)
	}
	return b
}
