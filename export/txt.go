package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdfmill/pdfmill/model"
)

// textExporter writes plain text. Tables are flattened to tab-separated
// rows; images and styling are dropped, as the format cannot carry them.
type textExporter struct{}

func (e *textExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	enc, err := encoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, block := range page.Blocks {
			tb, ok := block.(model.TextBlock)
			if !ok {
				continue
			}
			if j > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(tb.GetText())
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	if opts.LineEnding == "crlf" {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}

	if enc != nil {
		tw := transform.NewWriter(w, enc)
		if _, err := io.WriteString(tw, text); err != nil {
			return nil, fmt.Errorf("writing text: %w", err)
		}
		if err := tw.Close(); err != nil {
			return nil, fmt.Errorf("encoding text: %w", err)
		}
		return nil, nil
	}
	if _, err := io.WriteString(w, text); err != nil {
		return nil, fmt.Errorf("writing text: %w", err)
	}
	return nil, nil
}

// encoderFor maps an encoding name to a transformer, or nil for UTF-8
// passthrough.
func encoderFor(name string) (*encoding.Encoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "utf-16", "utf-16le", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder(), nil
	case "gbk":
		return simplifiedchinese.GBK.NewEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", name)
	}
}
