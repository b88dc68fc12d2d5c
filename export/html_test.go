package export

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/pdfmill/pdfmill/model"
)

// findNodes walks a parsed tree collecting elements with the tag name.
func findNodes(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findNodes(c, tag)...)
	}
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func TestHTMLExport(t *testing.T) {
	var buf bytes.Buffer
	advisories, err := (&htmlExporter{}).Export(sampleDoc(), &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}

	root, err := html.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not parseable HTML: %v", err)
	}

	titles := findNodes(root, "title")
	if len(titles) != 1 || nodeText(titles[0]) != "Quarterly Report" {
		t.Errorf("title missing or wrong")
	}
	h1s := findNodes(root, "h1")
	if len(h1s) != 1 || nodeText(h1s[0]) != "Results" {
		t.Errorf("h1 missing or wrong: %v", h1s)
	}
	if ps := findNodes(root, "p"); len(ps) == 0 {
		t.Error("no paragraphs in output")
	}
	ths := findNodes(root, "th")
	if len(ths) != 2 {
		t.Errorf("expected 2 header cells, got %d", len(ths))
	}
	tds := findNodes(root, "td")
	if len(tds) != 2 {
		t.Errorf("expected 2 data cells, got %d", len(tds))
	}
	imgs := findNodes(root, "img")
	if len(imgs) != 1 {
		t.Fatalf("expected 1 img, got %d", len(imgs))
	}
	if !strings.HasPrefix(attr(imgs[0], "src"), "data:image/png;base64,") {
		t.Errorf("img src is not a data URI: %q", attr(imgs[0], "src"))
	}
	if len(findNodes(root, "style")) != 1 {
		t.Error("inline stylesheet missing")
	}
}

func TestHTMLExportExternalCSS(t *testing.T) {
	opts := DefaultOptions()
	opts.CSSHref = "style.css"
	var buf bytes.Buffer
	if _, err := (&htmlExporter{}).Export(sampleDoc(), &buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	root, err := html.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	links := findNodes(root, "link")
	if len(links) != 1 || attr(links[0], "href") != "style.css" {
		t.Error("external stylesheet link missing")
	}
	if len(findNodes(root, "style")) != 0 {
		t.Error("inline styles present alongside external stylesheet")
	}
}

func TestHTMLExportLinkedImages(t *testing.T) {
	written := map[string][]byte{}
	opts := DefaultOptions()
	opts.EmbedImages = false
	opts.Assets = memorySink(written)

	var buf bytes.Buffer
	advisories, err := (&htmlExporter{}).Export(sampleDoc(), &buf, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(advisories) != 0 {
		t.Errorf("unexpected advisories: %v", advisories)
	}
	data, ok := written["image_1.png"]
	if !ok {
		t.Fatalf("asset not written, have %v", written)
	}
	if !bytes.Equal(data, tinyPNG()) {
		t.Error("asset content differs from source image")
	}
	if !strings.Contains(buf.String(), `src="image_1.png"`) {
		t.Error("img does not reference the asset")
	}
}

func TestHTMLEscapesText(t *testing.T) {
	doc := sampleDoc()
	doc.Pages[0].Blocks = nil
	doc.Pages[0].AddBlock(&model.Paragraph{Text: "a < b & c"})

	var buf bytes.Buffer
	if _, err := (&htmlExporter{}).Export(doc, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "a &lt; b &amp; c") {
		t.Error("special characters not escaped")
	}
}
