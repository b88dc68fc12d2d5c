package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdfmill/pdfmill/model"
)

// markdownExporter writes Markdown with pipe tables and optional TOC.
// Only bold and italic survive from the style hints.
type markdownExporter struct{}

func (e *markdownExporter) Export(doc *model.Document, w io.Writer, opts Options) ([]model.Advisory, error) {
	var advisories []model.Advisory
	var sb strings.Builder

	if doc.Metadata.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(doc.Metadata.Title))
	}
	if opts.IncludeTOC {
		writeTOC(&sb, doc)
	}

	imageN := 0
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *model.Heading:
				level := b.Level
				if level > 6 {
					level = 6
				}
				fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", level), escapeMarkdown(b.Text))
			case *model.Paragraph:
				text := escapeMarkdown(strings.ReplaceAll(b.Text, "\n", " "))
				switch {
				case b.Style.Bold && b.Style.Italic:
					text = "***" + text + "***"
				case b.Style.Bold:
					text = "**" + text + "**"
				case b.Style.Italic:
					text = "*" + text + "*"
				}
				sb.WriteString(text)
				sb.WriteString("\n\n")
			case *model.Table:
				writePipeTable(&sb, b)
			case *model.Image:
				imageN++
				ref, adv := imageSrc(b, imageN, page.Index, opts)
				if adv != nil {
					advisories = append(advisories, *adv)
					continue
				}
				fmt.Fprintf(&sb, "![page %d image](%s)\n\n", page.Index+1, ref)
			}
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return advisories, fmt.Errorf("writing markdown: %w", err)
	}
	return advisories, nil
}

func writeTOC(sb *strings.Builder, doc *model.Document) {
	var entries []string
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if h, ok := block.(*model.Heading); ok {
				indent := strings.Repeat("  ", h.Level-1)
				entries = append(entries, fmt.Sprintf("%s- [%s](#%s)",
					indent, escapeMarkdown(h.Text), anchorFor(h.Text)))
			}
		}
	}
	if len(entries) == 0 {
		return
	}
	sb.WriteString("## Contents\n\n")
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// anchorFor mirrors the common heading-anchor convention: lowercase,
// spaces to hyphens, punctuation removed.
func anchorFor(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

func writePipeTable(sb *strings.Builder, t *model.Table) {
	cols := t.ColCount()
	if cols == 0 {
		return
	}

	rows := t.Rows
	headerRow := make([]string, cols)
	if len(rows) > 0 && len(rows[0]) > 0 && rows[0][0].IsHeader {
		for i, c := range rows[0] {
			headerRow[i] = c.Text
		}
		rows = rows[1:]
	}
	writePipeRow(sb, headerRow, cols)
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		texts := make([]string, cols)
		for i, c := range row {
			if i < cols {
				texts[i] = c.Text
			}
		}
		writePipeRow(sb, texts, cols)
	}
	sb.WriteString("\n")
}

func writePipeRow(sb *strings.Builder, cells []string, cols int) {
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		text = strings.ReplaceAll(text, "|", "\\|")
		text = strings.ReplaceAll(text, "\n", " ")
		sb.WriteString(" " + text + " |")
	}
	sb.WriteString("\n")
}

func escapeMarkdown(text string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return r.Replace(text)
}
