package model

import "strings"

// Table represents a detected table with cells organized in rows.
type Table struct {
	Rows    [][]Cell
	BBox    BBox
	HasGrid bool // whether visible gridlines backed the detection

	// Confidence is the detection confidence in [0,1]. Low-confidence
	// detections are not emitted as tables at all; see the reconstruct
	// package.
	Confidence float64
}

func (t *Table) Kind() BlockKind { return BlockKindTable }
func (t *Table) Bounds() BBox    { return t.BBox }

// GetText flattens the table to tab-separated rows.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewTable creates a table with the given dimensions and full confidence.
func NewTable(rows, cols int) *Table {
	t := &Table{
		Rows:       make([][]Cell, rows),
		Confidence: 1.0,
	}
	for i := range t.Rows {
		t.Rows[i] = make([]Cell, cols)
	}
	return t
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColCount returns the widest row's column count.
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Cell represents one table cell.
type Cell struct {
	Text     string
	BBox     BBox
	IsHeader bool
	Style    TextStyle
}
