// Package layout turns a validated chapter into a two-column, paginatable
// print document: the verse stream on the left, a verse-keyed annotation
// panel on the right.
//
// The engine produces a structured Document plus an HTML rendering with an
// embedded print stylesheet; conversion to a final paginated binary (PDF)
// belongs to an external renderer consuming that markup. Page geometry is
// caller-supplied and validated up front: a bad Geometry is a programming
// error, reported immediately as a *GeometryError, never worked around.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/FocuswithJustin/StudyPress/core/model"
)

// AnnotationStyle selects how cross-reference target verses are visually
// delimited in the annotation panel. The style is purely presentational;
// every style renders the same TargetVerse data.
type AnnotationStyle string

const (
	// StyleParagraphs renders one paragraph per target verse with a
	// heading line per entry.
	StyleParagraphs AnnotationStyle = "paragraphs"

	// StyleInline renders a single flowing paragraph with bold inline
	// citation labels.
	StyleInline AnnotationStyle = "inline"

	// StyleBoxed renders an indented, bordered block per target verse.
	StyleBoxed AnnotationStyle = "boxed"
)

// IsValid reports whether s is a known presentation style.
func (s AnnotationStyle) IsValid() bool {
	switch s {
	case StyleParagraphs, StyleInline, StyleBoxed:
		return true
	}
	return false
}

// Geometry configures the printed page. All dimensions are millimeters.
type Geometry struct {
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`

	MarginTop    float64 `json:"margin_top"`
	MarginBottom float64 `json:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left"`
	MarginRight  float64 `json:"margin_right"`

	// ColumnRatio is the left column's share of the content width,
	// strictly between 0 and 1.
	ColumnRatio float64 `json:"column_ratio"`

	// ColumnGap is the inter-column gap.
	ColumnGap float64 `json:"column_gap"`

	AnnotationStyle AnnotationStyle `json:"annotation_style"`
}

// A4 returns the default print geometry: A4 portrait, 20mm top and bottom
// margins, 15mm side margins, a 60/40 column split with a 10mm gap, and
// paragraph-style cross-references.
func A4() Geometry {
	return Geometry{
		PageWidth:       210,
		PageHeight:      297,
		MarginTop:       20,
		MarginBottom:    20,
		MarginLeft:      15,
		MarginRight:     15,
		ColumnRatio:     0.6,
		ColumnGap:       10,
		AnnotationStyle: StyleParagraphs,
	}
}

// GeometryError reports an invalid geometry configuration. It always
// indicates a caller bug, never a data problem, and is never recoverable.
type GeometryError struct {
	Field  string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("layout geometry: %s: %s", e.Field, e.Reason)
}

// Validate checks every geometry field. The returned error, when non-nil,
// is always a *GeometryError.
func (g Geometry) Validate() error {
	if g.PageWidth <= 0 {
		return &GeometryError{Field: "page_width", Reason: "must be positive"}
	}
	if g.PageHeight <= 0 {
		return &GeometryError{Field: "page_height", Reason: "must be positive"}
	}
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"margin_top", g.MarginTop},
		{"margin_bottom", g.MarginBottom},
		{"margin_left", g.MarginLeft},
		{"margin_right", g.MarginRight},
	} {
		if m.value < 0 {
			return &GeometryError{Field: m.name, Reason: "must not be negative"}
		}
	}
	if g.MarginLeft+g.MarginRight >= g.PageWidth {
		return &GeometryError{Field: "margin_left", Reason: "horizontal margins leave no content width"}
	}
	if g.MarginTop+g.MarginBottom >= g.PageHeight {
		return &GeometryError{Field: "margin_top", Reason: "vertical margins leave no content height"}
	}
	if g.ColumnRatio <= 0 || g.ColumnRatio >= 1 {
		return &GeometryError{Field: "column_ratio", Reason: "must be strictly between 0 and 1"}
	}
	if g.ColumnGap < 0 {
		return &GeometryError{Field: "column_gap", Reason: "must not be negative"}
	}
	if !g.AnnotationStyle.IsValid() {
		return &GeometryError{Field: "annotation_style", Reason: fmt.Sprintf("unknown style %q", g.AnnotationStyle)}
	}
	return nil
}

// Document is the paginatable layout result. It carries structured blocks
// for both columns; HTML renders it to standalone print markup.
type Document struct {
	Title          string
	Header         string
	Footer         string
	Geometry       Geometry
	Superscription string
	Verses         []VerseBlock
	Panel          []PanelEntry
}

// VerseBlock is one verse in the left column: the verse text followed by
// the raised glyphs of its resolved inline markers.
type VerseBlock struct {
	Number int
	Text   string
	Glyphs []string
}

// PanelEntry groups one verse's annotations under a single keyed heading.
// The heading and its items form one unbreakable unit, so a page break may
// fall between entries but never detaches an annotation from its verse
// heading.
type PanelEntry struct {
	Verse   int
	Heading string

	Footnotes  []PanelFootnote
	CrossRefs  []PanelCrossRef
	StudyNotes []PanelNote
}

// PanelFootnote is one footnote item in the annotation panel.
type PanelFootnote struct {
	Glyph   string
	Content string
}

// PanelCrossRef is one cross-reference item in the annotation panel. A
// citation-only record renders just its citation line.
type PanelCrossRef struct {
	Glyph        string
	Citation     string
	CitationOnly bool
	Targets      []PanelTarget
}

// PanelTarget is one referenced target verse.
type PanelTarget struct {
	Citation string
	Category string
	Content  string
}

// PanelNote is one study note item in the annotation panel.
type PanelNote struct {
	Title   string
	Content string
}

// ErrFatalChapter is returned when the chapter carries a fatal validation
// finding; such chapters must not reach layout.
var ErrFatalChapter = errors.New("chapter has fatal validation findings")

// Layout builds the two-column document for a chapter. The geometry is
// validated first and an invalid configuration fails immediately with a
// *GeometryError. A chapter with fatal validation findings is refused with
// ErrFatalChapter; warnings and errors do not block layout, that call is
// the caller's to make before invoking the engine.
func Layout(c *model.Chapter, g Geometry) (*Document, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if model.HasFatal(model.Validate(c)) {
		return nil, fmt.Errorf("laying out %s: %w", c.Reference(), ErrFatalChapter)
	}

	doc := &Document{
		Title:          fmt.Sprintf("%s - Study Edition", c.Reference()),
		Header:         c.Reference(),
		Footer:         fmt.Sprintf("%s - Study Edition", c.Reference()),
		Geometry:       g,
		Superscription: c.Superscription,
	}

	verses := make([]*model.Verse, len(c.Verses))
	copy(verses, c.Verses)
	sort.Slice(verses, func(i, j int) bool { return verses[i].Number < verses[j].Number })

	for _, v := range verses {
		block := VerseBlock{Number: v.Number, Text: v.Text}
		for _, m := range v.Markers {
			if m.Resolved() {
				block.Glyphs = append(block.Glyphs, m.Glyph)
			}
		}
		doc.Verses = append(doc.Verses, block)

		if entry, ok := panelEntry(c, v.Number); ok {
			doc.Panel = append(doc.Panel, entry)
		}
	}

	return doc, nil
}

// panelEntry assembles the annotation panel entry for one verse, in the
// fixed order footnotes, cross-references, study notes. A verse without
// annotations contributes no entry.
func panelEntry(c *model.Chapter, verse int) (PanelEntry, bool) {
	entry := PanelEntry{
		Verse:   verse,
		Heading: c.VerseReference(verse),
	}

	for _, fn := range c.FootnotesFor(verse) {
		entry.Footnotes = append(entry.Footnotes, PanelFootnote{
			Glyph:   fn.Glyph,
			Content: fn.Content,
		})
	}
	for _, xr := range c.CrossReferencesFor(verse) {
		item := PanelCrossRef{
			Glyph:        xr.Glyph,
			Citation:     xr.Citation,
			CitationOnly: xr.CitationOnly,
		}
		for _, t := range xr.Targets {
			item.Targets = append(item.Targets, PanelTarget{
				Citation: t.Citation,
				Category: t.Category,
				Content:  t.Content,
			})
		}
		entry.CrossRefs = append(entry.CrossRefs, item)
	}
	for _, sn := range c.StudyNotesFor(verse) {
		entry.StudyNotes = append(entry.StudyNotes, PanelNote{
			Title:   sn.Title,
			Content: sn.Content,
		})
	}

	if len(entry.Footnotes) == 0 && len(entry.CrossRefs) == 0 && len(entry.StudyNotes) == 0 {
		return PanelEntry{}, false
	}
	return entry, true
}
