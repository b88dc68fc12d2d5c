package pdfread

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	rpdf "rsc.io/pdf"

	"github.com/pdfmill/pdfmill/model"
)

// Load-time failures. All are fatal to the job converting the document;
// other jobs in a batch are unaffected.
var (
	// ErrCorrupt means the file is not a structurally valid PDF.
	ErrCorrupt = errors.New("pdfread: corrupt document")
	// ErrUnreadable means the file could not be read at all.
	ErrUnreadable = errors.New("pdfread: unreadable document")
	// ErrEncrypted means the document is encrypted and no password was
	// supplied.
	ErrEncrypted = errors.New("pdfread: document is encrypted")
	// ErrInvalidPassword means the supplied password was wrong. Callers
	// must not retry automatically.
	ErrInvalidPassword = errors.New("pdfread: invalid password")
)

// Reader provides access to one open PDF document. It owns the underlying
// file exclusively; Close releases it.
type Reader struct {
	path string
	file *os.File
	doc  *rpdf.Reader

	mu      sync.Mutex
	pages   map[int]*model.PageContent // decoded page cache
	rasters []*model.Raster            // one slot per page, set by scanImages
}

// Open opens an unencrypted PDF document.
func Open(path string) (*Reader, error) {
	return open(path, "")
}

// OpenWithPassword opens a PDF document, decrypting it with the given
// password if needed.
func OpenWithPassword(path, password string) (*Reader, error) {
	return open(path, password)
}

func open(path, password string) (_ *Reader, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	// rsc.io/pdf reports parse failures through panics in places; keep
	// them inside this package boundary.
	defer func() {
		if r := recover(); r != nil {
			file.Close()
			err = fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	var pw func() string
	if password != "" {
		attempted := false
		pw = func() string {
			// rsc.io/pdf calls the password function repeatedly; a wrong
			// password must fail rather than loop.
			if attempted {
				return ""
			}
			attempted = true
			return password
		}
	}

	doc, err := rpdf.NewReaderEncrypted(file, info.Size(), pw)
	if err != nil {
		file.Close()
		if err == rpdf.ErrInvalidPassword || strings.Contains(err.Error(), "password") {
			if password == "" {
				return nil, ErrEncrypted
			}
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	r := &Reader{
		path:  path,
		file:  file,
		doc:   doc,
		pages: make(map[int]*model.PageContent),
	}
	r.rasters = scanImages(path, r.PageCount())
	return r, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Path returns the path the document was opened from.
func (r *Reader) Path() string { return r.path }

// PageCount returns the number of pages.
func (r *Reader) PageCount() int { return r.doc.NumPage() }

// Metadata reads the document information dictionary.
func (r *Reader) Metadata() model.Metadata {
	md := model.Metadata{
		Source:    r.path,
		PageCount: r.PageCount(),
	}
	defer func() { recover() }()
	info := r.doc.Trailer().Key("Info")
	if title := info.Key("Title"); title.Kind() == rpdf.String {
		md.Title = title.Text()
	}
	if author := info.Key("Author"); author.Kind() == rpdf.String {
		md.Author = author.Text()
	}
	return md
}

// Page returns the content of the zero-based page index. The first call
// for a page parses it; later calls return the memoized content.
// Different pages may be requested concurrently.
func (r *Reader) Page(index int) (*model.PageContent, error) {
	if index < 0 || index >= r.PageCount() {
		return nil, fmt.Errorf("pdfread: page %d out of range [0,%d)", index, r.PageCount())
	}

	r.mu.Lock()
	if pc, ok := r.pages[index]; ok {
		r.mu.Unlock()
		return pc, nil
	}
	r.mu.Unlock()

	pc, err := r.decodePage(index)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.pages[index] = pc
	r.mu.Unlock()
	return pc, nil
}

// decodePage parses one page's text layer. rsc.io/pdf panics on content
// streams it cannot parse; a panic degrades to a page with no fragments
// and a recorded ParseError, which the classifier routes through OCR
// and the orchestrator surfaces as an advisory.
func (r *Reader) decodePage(index int) (*model.PageContent, error) {
	pc := &model.PageContent{Index: index}
	if index < len(r.rasters) {
		pc.Raster = r.rasters[index]
	}

	content, err := r.pageContent(index, pc)
	if err != nil {
		pc.Fragments = nil
		pc.ParseError = err.Error()
		if pc.Width == 0 || pc.Height == 0 {
			pc.Width, pc.Height = 612, 792
		}
		return pc, nil
	}

	for _, rect := range content.Rect {
		pc.Rects = append(pc.Rects, model.NewBBox(
			rect.Min.X, rect.Min.Y,
			rect.Max.X-rect.Min.X, rect.Max.Y-rect.Min.Y))
	}

	for _, txt := range content.Text {
		if txt.S == "" {
			continue
		}
		pc.Fragments = append(pc.Fragments, model.TextFragment{
			Text:     txt.S,
			BBox:     model.NewBBox(txt.X, txt.Y, txt.W, txt.FontSize),
			FontSize: txt.FontSize,
			FontName: txt.Font,
			Style:    styleFromFont(txt.Font),
		})
	}
	return pc, nil
}

// pageContent parses one page under the reader lock, converting
// rsc.io/pdf's panics into errors. The deferred recover must run
// inside this function so the lock is released on the panic path.
// rsc.io/pdf pages are 1-indexed. Serializing content parsing keeps
// concurrent readers of different pages from interleaving seeks on
// the shared file handle.
func (r *Reader) pageContent(index int, pc *model.PageContent) (content rpdf.Content, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content stream: %v", rec)
		}
	}()

	page := r.doc.Page(index + 1)
	pc.Width, pc.Height = mediaSize(page)
	content = page.Content()
	return content, nil
}

// mediaSize resolves the page MediaBox, following Parent links for
// inherited values. Defaults to US Letter when absent.
func mediaSize(page rpdf.Page) (w, h float64) {
	w, h = 612, 792
	v := page.V
	for i := 0; i < 16 && !v.IsNull(); i++ {
		box := v.Key("MediaBox")
		if box.Kind() == rpdf.Array && box.Len() == 4 {
			x0 := box.Index(0).Float64()
			y0 := box.Index(1).Float64()
			x1 := box.Index(2).Float64()
			y1 := box.Index(3).Float64()
			if x1 > x0 && y1 > y0 {
				return x1 - x0, y1 - y0
			}
		}
		v = v.Key("Parent")
	}
	return w, h
}

// styleFromFont infers bold/italic hints from a PostScript font name
// (e.g. "Helvetica-BoldOblique", "TimesNewRomanPS-ItalicMT").
func styleFromFont(name string) model.TextStyle {
	lower := strings.ToLower(name)
	return model.TextStyle{
		Bold:   strings.Contains(lower, "bold"),
		Italic: strings.Contains(lower, "italic") || strings.Contains(lower, "oblique"),
	}
}
