package layout

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders the document as a standalone page with an embedded print
// stylesheet, ready for an external HTML-to-PDF renderer. Page size,
// margins, column widths and gap come from the document's geometry.
func (d *Document) HTML() string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(d.Title))
	b.WriteString("<style>\n")
	b.WriteString(d.css())
	b.WriteString("</style>\n</head>\n<body>\n")

	fmt.Fprintf(&b, "<header class=\"page-header\"><h1>%s</h1></header>\n",
		html.EscapeString(d.Header))

	b.WriteString("<div class=\"content-grid\">\n")

	b.WriteString("<div class=\"verses-column\">\n")
	if d.Superscription != "" {
		fmt.Fprintf(&b, "<p class=\"superscription\">%s</p>\n",
			html.EscapeString(d.Superscription))
	}
	for _, v := range d.Verses {
		writeVerse(&b, v)
	}
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"study-column\">\n")
	if len(d.Panel) == 0 {
		b.WriteString("<p class=\"panel-empty\">No study materials for this chapter.</p>\n")
	}
	for _, entry := range d.Panel {
		writePanelEntry(&b, entry, d.Geometry.AnnotationStyle)
	}
	b.WriteString("</div>\n")

	b.WriteString("</div>\n")

	fmt.Fprintf(&b, "<footer class=\"page-footer\"><p>%s</p></footer>\n",
		html.EscapeString(d.Footer))
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// writeVerse interleaves the verse text with its marker glyphs. A glyph
// still embedded in the text is raised in place; glyphs trimmed from the
// verse edges at extraction follow the text.
func writeVerse(b *strings.Builder, v VerseBlock) {
	fmt.Fprintf(b, "<p class=\"verse\" data-verse=\"%d\">", v.Number)
	fmt.Fprintf(b, "<span class=\"verse-num\">%d</span>", v.Number)

	pos := 0
	var trailing []string
	for _, g := range v.Glyphs {
		idx := strings.Index(v.Text[pos:], g)
		if idx < 0 {
			trailing = append(trailing, g)
			continue
		}
		idx += pos
		b.WriteString(html.EscapeString(v.Text[pos:idx]))
		fmt.Fprintf(b, "<sup>%s</sup>", html.EscapeString(g))
		pos = idx + len(g)
	}
	b.WriteString(html.EscapeString(v.Text[pos:]))
	for _, g := range trailing {
		fmt.Fprintf(b, "<sup>%s</sup>", html.EscapeString(g))
	}
	b.WriteString("</p>\n")
}

// writePanelEntry emits one verse's annotation group. The wrapping div is
// the unbreakable unit the stylesheet protects from page-break-inside, so
// a heading and its items always travel together across page breaks.
func writePanelEntry(b *strings.Builder, entry PanelEntry, style AnnotationStyle) {
	fmt.Fprintf(b, "<div class=\"panel-entry\" data-verse=\"%d\">\n", entry.Verse)
	fmt.Fprintf(b, "<div class=\"verse-heading\">%s</div>\n", html.EscapeString(entry.Heading))

	for _, fn := range entry.Footnotes {
		fmt.Fprintf(b, "<div class=\"study-item\"><span class=\"footnote-marker\">%s</span><span class=\"footnote-content\">%s</span></div>\n",
			html.EscapeString(fn.Glyph), html.EscapeString(fn.Content))
	}
	for _, xr := range entry.CrossRefs {
		writeCrossRef(b, xr, style)
	}
	for _, sn := range entry.StudyNotes {
		b.WriteString("<div class=\"study-item\">")
		if sn.Title != "" {
			fmt.Fprintf(b, "<strong class=\"note-title\">%s:</strong> ", html.EscapeString(sn.Title))
		}
		fmt.Fprintf(b, "<span class=\"study-note-content\">%s</span></div>\n", html.EscapeString(sn.Content))
	}

	b.WriteString("</div>\n")
}

func writeCrossRef(b *strings.Builder, xr PanelCrossRef, style AnnotationStyle) {
	b.WriteString("<div class=\"study-item\">")
	fmt.Fprintf(b, "<span class=\"crossref-marker\">%s</span><span class=\"crossref-citation\">%s</span>\n",
		html.EscapeString(xr.Glyph), html.EscapeString(xr.Citation))

	if xr.CitationOnly {
		b.WriteString("</div>\n")
		return
	}

	switch style {
	case StyleInline:
		b.WriteString("<p class=\"crossref-inline\">")
		for i, t := range xr.Targets {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "<strong>%s.</strong> %s",
				html.EscapeString(t.Citation), html.EscapeString(t.Content))
		}
		b.WriteString("</p>\n")

	case StyleBoxed:
		for _, t := range xr.Targets {
			b.WriteString("<div class=\"crossref-box\">")
			fmt.Fprintf(b, "<span class=\"crossref-target-citation\">%s</span>", html.EscapeString(t.Citation))
			if t.Category != "" {
				fmt.Fprintf(b, "<span class=\"crossref-category\">%s</span>", html.EscapeString(t.Category))
			}
			fmt.Fprintf(b, "<p class=\"crossref-content\">%s</p></div>\n", html.EscapeString(t.Content))
		}

	default: // StyleParagraphs
		for _, t := range xr.Targets {
			b.WriteString("<div class=\"crossref-verse\">")
			fmt.Fprintf(b, "<div class=\"crossref-target-heading\"><span class=\"crossref-target-citation\">%s</span>",
				html.EscapeString(t.Citation))
			if t.Category != "" {
				fmt.Fprintf(b, " <span class=\"crossref-category\">%s</span>", html.EscapeString(t.Category))
			}
			b.WriteString("</div>")
			fmt.Fprintf(b, "<p class=\"crossref-content\">%s</p></div>\n", html.EscapeString(t.Content))
		}
	}

	b.WriteString("</div>\n")
}

// css builds the geometry-parameterized print stylesheet.
func (d *Document) css() string {
	g := d.Geometry
	left := g.ColumnRatio * 100
	right := (1 - g.ColumnRatio) * 100

	return fmt.Sprintf(`
@page {
    size: %gmm %gmm;
    margin: %gmm %gmm %gmm %gmm;
}

* {
    margin: 0;
    padding: 0;
    box-sizing: border-box;
}

body {
    font-family: 'Georgia', 'Times New Roman', serif;
    font-size: 11pt;
    line-height: 1.6;
    color: #333;
}

.page-header {
    text-align: center;
    margin-bottom: 15px;
    padding-bottom: 10px;
    border-bottom: 2px solid #333;
}

.page-header h1 {
    font-size: 18pt;
    font-weight: bold;
}

.content-grid {
    display: grid;
    grid-template-columns: %.1f%% %.1f%%;
    gap: %gmm;
}

.verses-column {
    padding-right: 5mm;
}

.study-column {
    background-color: #f5f5f5;
    padding: 10px;
    border-left: 1px solid #ccc;
}

.verse {
    margin-bottom: 0.5em;
    page-break-inside: avoid;
}

.verse-num {
    font-weight: bold;
    margin-right: 0.3em;
}

.superscription {
    font-style: italic;
    margin-bottom: 1em;
    color: #555;
}

sup {
    font-size: 0.8em;
    font-weight: bold;
}

.panel-entry {
    page-break-inside: avoid;
    break-inside: avoid;
    margin-bottom: 1em;
}

.verse-heading {
    font-weight: bold;
    margin-bottom: 0.5em;
    color: #222;
}

.study-item {
    margin-bottom: 1em;
    padding-left: 1em;
}

.footnote-marker,
.crossref-marker {
    font-weight: bold;
    margin-right: 0.3em;
}

.study-note-content,
.footnote-content,
.crossref-content {
    color: #444;
}

.crossref-citation,
.crossref-target-citation {
    font-weight: bold;
    color: #000;
}

.crossref-category {
    font-style: italic;
    color: #666;
    margin-left: 0.5em;
}

.crossref-verse {
    margin-left: 1em;
    color: #555;
}

.crossref-box {
    margin-left: 1em;
    padding: 4px 8px;
    border: 1px solid #bbb;
    margin-bottom: 0.5em;
}

.page-footer {
    margin-top: 20px;
    padding-top: 10px;
    border-top: 1px solid #ccc;
    text-align: center;
    font-size: 9pt;
    color: #666;
}

@media print {
    body {
        background: white;
    }

    .page-header,
    .page-footer {
        position: fixed;
    }

    .page-header {
        top: 0;
    }

    .page-footer {
        bottom: 0;
    }

    .verse,
    .study-item,
    .panel-entry {
        page-break-inside: avoid;
    }
}
`, g.PageWidth, g.PageHeight,
		g.MarginTop, g.MarginRight, g.MarginBottom, g.MarginLeft,
		left, right, g.ColumnGap)
}
