package export

import (
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// htmlExporter writes a standalone HTML document. Style hints map to
// CSS classes; images embed as data URIs or link to sidecar files.
type htmlExporter struct{}

const htmlStyles = `body { font-family: serif; max-width: 50em; margin: 2em auto; }
p { line-height: 1.5; }
p.small { font-size: 0.8em; }
p.large { font-size: 1.2em; }
p.center { text-align: center; }
p.right { text-align: right; }
table { border-collapse: collapse; margin: 1em 0; }
td, th { border: 1px solid #999; padding: 0.3em 0.6em; }
img { max-width: 100%; }
.page { margin-bottom: 2em; }`

func (e *htmlExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	var advisories []model.Advisory
	var sb strings.Builder

	title := doc.Metadata.Title
	if title == "" {
		title = "Converted document"
	}
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	if opts.CSSHref != "" {
		fmt.Fprintf(&sb, "<link rel=\"stylesheet\" href=\"%s\">\n", html.EscapeString(opts.CSSHref))
	} else {
		fmt.Fprintf(&sb, "<style>\n%s\n</style>\n", htmlStyles)
	}
	sb.WriteString("</head>\n<body>\n")

	imageN := 0
	for _, page := range doc.Pages {
		fmt.Fprintf(&sb, "<div class=\"page\" id=\"page-%d\">\n", page.Index+1)
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *model.Heading:
				level := b.Level
				if level > 6 {
					level = 6
				}
				fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(b.Text), level)
			case *model.Paragraph:
				writeHTMLParagraph(&sb, b)
			case *model.Table:
				writeHTMLTable(&sb, b)
			case *model.Image:
				imageN++
				src, adv := imageSrc(b, imageN, page.Index, opts)
				if adv != nil {
					advisories = append(advisories, *adv)
					continue
				}
				fmt.Fprintf(&sb, "<img src=\"%s\" alt=\"page %d image\">\n", src, page.Index+1)
			}
		}
		sb.WriteString("</div>\n")
	}
	sb.WriteString("</body>\n</html>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return advisories, fmt.Errorf("writing html: %w", err)
	}
	return advisories, nil
}

func writeHTMLParagraph(sb *strings.Builder, p *model.Paragraph) {
	var classes []string
	switch p.Size {
	case model.SizeSmall:
		classes = append(classes, "small")
	case model.SizeLarge, model.SizeHuge:
		classes = append(classes, "large")
	}
	switch p.Alignment {
	case model.AlignCenter:
		classes = append(classes, "center")
	case model.AlignRight:
		classes = append(classes, "right")
	}

	sb.WriteString("<p")
	if len(classes) > 0 {
		fmt.Fprintf(sb, " class=\"%s\"", strings.Join(classes, " "))
	}
	sb.WriteString(">")

	text := html.EscapeString(p.Text)
	text = strings.ReplaceAll(text, "\n", "<br>\n")
	if p.Style.Bold {
		text = "<strong>" + text + "</strong>"
	}
	if p.Style.Italic {
		text = "<em>" + text + "</em>"
	}
	sb.WriteString(text)
	sb.WriteString("</p>\n")
}

func writeHTMLTable(sb *strings.Builder, t *model.Table) {
	sb.WriteString("<table>\n")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			tag := "td"
			if cell.IsHeader {
				tag = "th"
			}
			fmt.Fprintf(sb, "<%s>%s</%s>", tag, html.EscapeString(cell.Text), tag)
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
}

// imageSrc returns the img src attribute value, writing a sidecar file
// when images are not embedded.
func imageSrc(img *model.Image, n, pageIndex int, opts Options) (string, *model.Advisory) {
	if opts.EmbedImages {
		return "data:" + img.Format.MIMEType() + ";base64," +
			base64.StdEncoding.EncodeToString(img.Data), nil
	}
	if opts.Assets == nil {
		return "", &model.Advisory{
			Code:   model.AdvisoryUnsupportedFeature,
			Page:   pageIndex,
			Detail: "linked image omitted: no asset destination",
		}
	}
	name := fmt.Sprintf("image_%d.%s", n, img.Format.Extension())
	f, err := opts.Assets(name)
	if err == nil {
		_, err = f.Write(img.Data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return "", &model.Advisory{
			Code:   model.AdvisoryUnsupportedFeature,
			Page:   pageIndex,
			Detail: fmt.Sprintf("linked image omitted: %v", err),
		}
	}
	return name, nil
}
