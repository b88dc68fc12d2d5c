package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// docxExporter writes a WordprocessingML package: paragraphs and
// headings with run properties, native tables, and embedded images.
type docxExporter struct{}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Default Extension="jpg" ContentType="image/jpeg"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	// Heading1 through Heading5 with descending half-point sizes.
	docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:rPr><w:b/><w:sz w:val="36"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading4"><w:name w:val="heading 4"/><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading5"><w:name w:val="heading 5"/><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
</w:styles>`
)

// emuPerPoint converts points to English Metric Units used by
// DrawingML extents.
const emuPerPoint = 12700

func (e *docxExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	zw := zip.NewWriter(w)

	var body strings.Builder
	var media []*model.Image
	imageN := 0
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *model.Heading:
				writeDocxHeading(&body, b)
			case *model.Paragraph:
				writeDocxParagraph(&body, b)
			case *model.Table:
				writeDocxTable(&body, b)
			case *model.Image:
				imageN++
				media = append(media, b)
				writeDocxImage(&body, b, imageN)
			}
		}
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/styles.xml", docxStyles},
		{"word/_rels/document.xml.rels", docxDocumentRels(media)},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">
  <w:body>` + body.String() + `</w:body>
</w:document>`},
	}
	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := pw.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	for i, img := range media {
		name := fmt.Sprintf("word/media/image%d.%s", i+1, img.Format.Extension())
		pw, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := pw.Write(img.Data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing docx: %w", err)
	}
	return nil, nil
}

// docxDocumentRels builds the document part's relationship file.
// Image relationship IDs start at rId10 to stay clear of the fixed
// style relationship.
func docxDocumentRels(media []*model.Image) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for i, img := range media {
		fmt.Fprintf(&sb, `
  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image%d.%s"/>`,
			10+i, i+1, img.Format.Extension())
	}
	sb.WriteString("\n</Relationships>")
	return sb.String()
}

func writeDocxHeading(sb *strings.Builder, h *model.Heading) {
	level := h.Level
	if level > 5 {
		level = 5
	}
	fmt.Fprintf(sb, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		level, docxRunProps(model.TextStyle{Bold: true}, h.FontSize), xmlEscape(h.Text))
	sb.WriteString("\n")
}

func writeDocxParagraph(sb *strings.Builder, p *model.Paragraph) {
	var pPr string
	switch p.Alignment {
	case model.AlignCenter:
		pPr = `<w:pPr><w:jc w:val="center"/></w:pPr>`
	case model.AlignRight:
		pPr = `<w:pPr><w:jc w:val="right"/></w:pPr>`
	}
	text := strings.ReplaceAll(xmlEscape(p.Text), "\n", `</w:t><w:br/><w:t xml:space="preserve">`)
	fmt.Fprintf(sb, `<w:p>%s<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		pPr, docxRunProps(p.Style, p.FontSize), text)
	sb.WriteString("\n")
}

// docxRunProps renders run properties; sz takes half-points.
func docxRunProps(style model.TextStyle, fontSize float64) string {
	var sb strings.Builder
	sb.WriteString("<w:rPr>")
	if style.Bold {
		sb.WriteString("<w:b/>")
	}
	if style.Italic {
		sb.WriteString("<w:i/>")
	}
	if fontSize > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/>`, int(fontSize*2+0.5))
	}
	sb.WriteString("</w:rPr>")
	return sb.String()
}

func writeDocxTable(sb *strings.Builder, t *model.Table) {
	sb.WriteString(`<w:tbl><w:tblPr><w:tblBorders><w:top w:val="single"/><w:bottom w:val="single"/><w:left w:val="single"/><w:right w:val="single"/><w:insideH w:val="single"/><w:insideV w:val="single"/></w:tblBorders></w:tblPr>`)
	cols := t.ColCount()
	sb.WriteString("<w:tblGrid>")
	for i := 0; i < cols; i++ {
		sb.WriteString(`<w:gridCol w:w="2400"/>`)
	}
	sb.WriteString("</w:tblGrid>")
	for _, row := range t.Rows {
		sb.WriteString("<w:tr>")
		for i := 0; i < cols; i++ {
			var cell model.Cell
			if i < len(row) {
				cell = row[i]
			}
			style := cell.Style
			if cell.IsHeader {
				style.Bold = true
			}
			fmt.Fprintf(sb, `<w:tc><w:p><w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`,
				docxRunProps(style, 0), xmlEscape(cell.Text))
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>\n")
}

func writeDocxImage(sb *strings.Builder, img *model.Image, n int) {
	cx := int64(img.BBox.Width * emuPerPoint)
	cy := int64(img.BBox.Height * emuPerPoint)
	if cx <= 0 || cy <= 0 {
		cx, cy = 5486400, 7315200 // 6in by 8in fallback
	}
	fmt.Fprintf(sb, `<w:p><w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/><a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr><pic:blipFill><a:blip r:embed="rId%d"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill><pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, n, n, n, n, 9+n, cx, cy)
	sb.WriteString("\n")
}

func xmlEscape(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(text)
}
