// Package testpdf builds small, structurally valid PDF files for tests.
// Offsets in the cross-reference table are computed while writing, so the
// output parses with strict readers.
package testpdf

import (
	"bytes"
	"fmt"
)

// TextRun places one string on a page.
type TextRun struct {
	Text string
	X    float64
	Y    float64
	Size float64
}

// Page describes one page of a generated document. Exactly one of Runs or
// JPEG should be set: a text page or a scanned page.
type Page struct {
	Runs []TextRun

	// JPEG embeds the bytes as a DCTDecode image XObject, making the
	// page look like a scan.
	JPEG   []byte
	ImageW int
	ImageH int

	// Raw, when set, is written verbatim as the page's content stream,
	// letting tests craft streams readers cannot interpret.
	Raw string
}

// Doc accumulates pages for generation.
type Doc struct {
	Pages []Page

	// Title, when set, is written to the document information dictionary.
	Title string

	// Encrypt adds a standard-security /Encrypt dictionary with unusable
	// owner/user hashes, producing a document no password can open.
	Encrypt bool
}

// AddTextPage appends a page holding the given lines of 12pt text,
// starting near the top-left margin.
func (d *Doc) AddTextPage(lines ...string) {
	var runs []TextRun
	y := 720.0
	for _, line := range lines {
		runs = append(runs, TextRun{Text: line, X: 72, Y: y, Size: 12})
		y -= 16
	}
	d.Pages = append(d.Pages, Page{Runs: runs})
}

// AddImagePage appends a scanned-looking page embedding the JPEG bytes.
func (d *Doc) AddImagePage(jpeg []byte, w, h int) {
	d.Pages = append(d.Pages, Page{JPEG: jpeg, ImageW: w, ImageH: h})
}

// AddCorruptPage appends a page whose content stream tokenizes but is
// operationally malformed (wrong operand count), which strict content
// interpreters reject mid-parse.
func (d *Doc) AddCorruptPage() {
	d.Pages = append(d.Pages, Page{Raw: "1 2 3 cm\n"})
}

// Bytes renders the document.
func (d *Doc) Bytes() []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n")

	// Object numbering: 1 catalog, 2 page tree, 3 font, then two objects
	// per page (page dict, then its content or image stream). Info and
	// Encrypt dictionaries, when present, follow.
	pageObj := func(i int) int { return 4 + 2*i }
	bodyObj := func(i int) int { return 5 + 2*i }
	nextObj := 4 + 2*len(d.Pages)

	kids := ""
	for i := range d.Pages {
		kids += fmt.Sprintf("%d 0 R ", pageObj(i))
	}

	w.obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(d.Pages)))
	w.obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/FirstChar 32 /LastChar 126 /Widths ["+widths()+"] >>")

	for i, p := range d.Pages {
		if p.JPEG != nil {
			w.obj(pageObj(i), fmt.Sprintf(
				"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
					"/Resources << /XObject << /Im0 %d 0 R >> >> >>", bodyObj(i)))
			dict := fmt.Sprintf(
				"<< /Type /XObject /Subtype /Image /Width %d /Height %d "+
					"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>",
				p.ImageW, p.ImageH, len(p.JPEG))
			w.stream(bodyObj(i), dict, p.JPEG)
			continue
		}

		var content bytes.Buffer
		if p.Raw != "" {
			content.WriteString(p.Raw)
		}
		for _, run := range p.Runs {
			fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n",
				run.Size, run.X, run.Y, escape(run.Text))
		}
		w.obj(pageObj(i), fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", bodyObj(i)))
		w.stream(bodyObj(i), fmt.Sprintf("<< /Length %d >>", content.Len()), content.Bytes())
	}

	trailerExtra := ""
	if d.Title != "" {
		infoObj := nextObj
		nextObj++
		w.obj(infoObj, fmt.Sprintf("<< /Title (%s) >>", escape(d.Title)))
		trailerExtra += fmt.Sprintf(" /Info %d 0 R", infoObj)
	}
	if d.Encrypt {
		encObj := nextObj
		nextObj++
		w.obj(encObj, "<< /Filter /Standard /V 1 /R 2 /P -44 "+
			"/O <"+hex32()+"> /U <"+hex32()+"> >>")
		trailerExtra += fmt.Sprintf(" /Encrypt %d 0 R", encObj)
	}

	xrefPos := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", nextObj)
	w.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < nextObj; i++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[i])
	}
	fmt.Fprintf(&w.buf,
		"trailer\n<< /Size %d /Root 1 0 R /ID [<0123456789abcdef0123456789abcdef> <0123456789abcdef0123456789abcdef>]%s >>\nstartxref\n%d\n%%%%EOF\n",
		nextObj, trailerExtra, xrefPos)
	return w.buf.Bytes()
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) mark(num int) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[num] = w.buf.Len()
}

func (w *writer) obj(num int, body string) {
	w.mark(num)
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *writer) stream(num int, dict string, data []byte) {
	w.mark(num)
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nstream\n", num, dict)
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func escape(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '(' || c == ')' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// widths returns constant glyph widths for the printable ASCII range.
func widths() string {
	var buf bytes.Buffer
	for c := 32; c <= 126; c++ {
		if c > 32 {
			buf.WriteByte(' ')
		}
		buf.WriteString("500")
	}
	return buf.String()
}

func hex32() string {
	var buf bytes.Buffer
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&buf, "%02x", (i*37+11)%256)
	}
	return buf.String()
}
