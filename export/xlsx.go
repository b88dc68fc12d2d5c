package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// xlsxExporter writes a SpreadsheetML workbook. Only tables and
// number-like paragraphs land in cells; images cannot be represented
// and are recorded as advisories. Strings are written inline so no
// shared-string part is needed.
type xlsxExporter struct{}

const (
	xlsxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`
)

// sheet is one worksheet being assembled: rows of string or numeric
// cell values.
type sheet struct {
	name string
	rows [][]xlsxCell
}

type xlsxCell struct {
	value   string
	numeric bool
}

func (e *xlsxExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	var advisories []model.Advisory
	sheets := e.layout(doc, opts, &advisories)

	zw := zip.NewWriter(w)
	write := func(name, content string) error {
		pw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := pw.Write([]byte(content)); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		return nil
	}

	if err := write("[Content_Types].xml", xlsxContentTypes(len(sheets))); err != nil {
		return advisories, err
	}
	if err := write("_rels/.rels", xlsxRels); err != nil {
		return advisories, err
	}
	if err := write("xl/workbook.xml", xlsxWorkbook(sheets)); err != nil {
		return advisories, err
	}
	if err := write("xl/_rels/workbook.xml.rels", xlsxWorkbookRels(len(sheets))); err != nil {
		return advisories, err
	}
	for i, s := range sheets {
		if err := write(fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), xlsxSheet(s)); err != nil {
			return advisories, err
		}
	}

	if err := zw.Close(); err != nil {
		return advisories, fmt.Errorf("finalizing xlsx: %w", err)
	}
	return advisories, nil
}

// layout distributes document blocks over worksheets. SheetPerTable
// gives each table its own sheet; otherwise everything stacks on one
// sheet with a blank row between tables.
func (e *xlsxExporter) layout(doc *model.Document, opts Options, advisories *[]model.Advisory) []sheet {
	var sheets []sheet
	stacked := &sheet{name: "Sheet1"}
	values := &sheet{name: "Values"}

	appendTable := func(t *model.Table) {
		rows := make([][]xlsxCell, 0, t.RowCount())
		for _, row := range t.Rows {
			cells := make([]xlsxCell, len(row))
			for i, c := range row {
				cells[i] = makeCell(c.Text)
			}
			rows = append(rows, cells)
		}
		if opts.SheetPerTable {
			sheets = append(sheets, sheet{
				name: fmt.Sprintf("Table%d", len(sheets)+1),
				rows: rows,
			})
			return
		}
		if len(stacked.rows) > 0 {
			stacked.rows = append(stacked.rows, nil)
		}
		stacked.rows = append(stacked.rows, rows...)
	}

	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *model.Table:
				appendTable(b)
			case *model.Paragraph:
				// Number-like prose earns a cell; other text has no
				// place in a spreadsheet. In sheet-per-table mode the
				// loose values get a sheet of their own rather than
				// disappearing.
				cell := makeCell(strings.TrimSpace(b.Text))
				if !cell.numeric {
					break
				}
				if opts.SheetPerTable {
					values.rows = append(values.rows, []xlsxCell{cell})
				} else {
					stacked.rows = append(stacked.rows, []xlsxCell{cell})
				}
			case *model.Image:
				*advisories = append(*advisories, model.Advisory{
					Code:   model.AdvisoryUnsupportedFeature,
					Page:   page.Index,
					Detail: "image block skipped: not representable in a workbook",
				})
			}
		}
	}

	if opts.SheetPerTable && len(values.rows) > 0 {
		sheets = append(sheets, *values)
	}
	// A workbook needs at least one sheet.
	if len(sheets) == 0 {
		sheets = append(sheets, *stacked)
	}
	return sheets
}

func makeCell(text string) xlsxCell {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
			return xlsxCell{value: strings.ReplaceAll(trimmed, ",", ""), numeric: true}
		}
	}
	return xlsxCell{value: text}
}

func xlsxContentTypes(sheetCount int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>`)
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&sb, `
  <Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`, i)
	}
	sb.WriteString("\n</Types>")
	return sb.String()
}

func xlsxWorkbook(sheets []sheet) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>`)
	for i, s := range sheets {
		fmt.Fprintf(&sb, `
    <sheet name="%s" sheetId="%d" r:id="rId%d"/>`, xmlEscape(s.name), i+1, i+1)
	}
	sb.WriteString(`
  </sheets>
</workbook>`)
	return sb.String()
}

func xlsxWorkbookRels(sheetCount int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&sb, `
  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, i, i)
	}
	sb.WriteString("\n</Relationships>")
	return sb.String()
}

func xlsxSheet(s sheet) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>`)
	for r, row := range s.rows {
		if len(row) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n    <row r=\"%d\">", r+1)
		for c, cell := range row {
			ref := columnName(c) + strconv.Itoa(r+1)
			if cell.numeric {
				fmt.Fprintf(&sb, `<c r="%s"><v>%s</v></c>`, ref, cell.value)
			} else if cell.value != "" {
				fmt.Fprintf(&sb, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`,
					ref, xmlEscape(cell.value))
			}
		}
		sb.WriteString("</row>")
	}
	sb.WriteString(`
  </sheetData>
</worksheet>`)
	return sb.String()
}

// columnName converts a zero-based column index to A1 notation.
func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
