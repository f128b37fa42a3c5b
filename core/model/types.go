package model

// types.go - Consolidated chapter content model type definitions.
// Extraction, validation, and layout all share these types; extraction
// populates them and the later stages treat them as read-only.

import (
	"fmt"
	"strings"
)

// MarkerKind identifies which annotation family an inline glyph belongs to.
type MarkerKind string

// Marker kind constants.
const (
	MarkerFootnote       MarkerKind = "footnote"
	MarkerCrossReference MarkerKind = "cross_reference"
	MarkerStudyNote      MarkerKind = "study_note"
)

// validMarkerKinds is the set of valid marker kinds.
var validMarkerKinds = map[MarkerKind]bool{
	MarkerFootnote:       true,
	MarkerCrossReference: true,
	MarkerStudyNote:      true,
}

// IsValid returns true if the marker kind is valid.
func (k MarkerKind) IsValid() bool {
	return validMarkerKinds[k]
}

// Marker represents a single inline reference glyph occurrence inside verse
// text. Markers are created and owned by the resolver; a Verse and the
// matching annotation record both reference the same Marker.
type Marker struct {
	// Kind indicates the annotation family (footnote, cross_reference,
	// study_note).
	Kind MarkerKind `json:"kind"`

	// Glyph is the symbol or letter as it appears inline (e.g., "*", "d").
	Glyph string `json:"glyph"`

	// Verse is the number of the verse the glyph was found in.
	Verse int `json:"verse"`

	// AnnotationID is the id of the matched annotation record, empty while
	// the marker is unresolved.
	AnnotationID string `json:"annotation_id,omitempty"`
}

// Resolved returns true once the marker has been bound to an annotation.
func (m *Marker) Resolved() bool {
	return m.AnnotationID != ""
}

// Verse is one numbered verse of the chapter. Text holds the body with the
// leading numeral token and inline glyphs already stripped.
type Verse struct {
	// Number is the verse number (positive).
	Number int `json:"number"`

	// Text is the verse body after glyph stripping.
	Text string `json:"text"`

	// Markers are the inline reference glyphs found in this verse, in order
	// of appearance. The slice holds references; the resolver owns them.
	Markers []*Marker `json:"markers,omitempty"`
}

// NewVerse constructs a Verse, rejecting non-positive numbers and text that
// is empty after trimming. Callers drop rejected verses with an omission
// record rather than aborting extraction.
func NewVerse(number int, text string) (*Verse, error) {
	if number <= 0 {
		return nil, fmt.Errorf("verse number must be positive, got %d", number)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("verse %d has no text after glyph stripping", number)
	}
	return &Verse{Number: number, Text: text}, nil
}

// Footnote is a sidebar footnote record. One Footnote maps to exactly one
// Marker of kind footnote.
type Footnote struct {
	// ID is the annotation identifier from the markup, or a generated one.
	ID string `json:"id"`

	// Glyph is the inline symbol this footnote is keyed by (e.g., "*").
	Glyph string `json:"glyph"`

	// Verse is the owning verse number.
	Verse int `json:"verse"`

	// Content is the footnote text.
	Content string `json:"content"`
}

// TargetVerse is the resolved text of one passage a cross-reference cites.
type TargetVerse struct {
	// Citation is the human-readable label (e.g., "Exodus 1:8-10").
	Citation string `json:"citation"`

	// Category is the optional relationship label (e.g., "General").
	Category string `json:"category,omitempty"`

	// Content is the referenced verse text. Empty content means the entry
	// did not resolve.
	Content string `json:"content"`
}

// Resolved returns true if the target carries non-empty verse text.
func (t *TargetVerse) Resolved() bool {
	return strings.TrimSpace(t.Content) != ""
}

// CrossReference is a sidebar cross-reference record. The header (glyph and
// citation string) is always present in the markup; the Targets are
// populated lazily by client-side templating and may arrive on a later
// extraction pass.
type CrossReference struct {
	// ID is the annotation identifier from the markup, or a generated one.
	ID string `json:"id"`

	// Glyph is the inline letter this cross-reference is keyed by.
	Glyph string `json:"glyph"`

	// Verse is the owning verse number.
	Verse int `json:"verse"`

	// Citation is the human-readable reference string
	// (e.g., "Ex 1:8-10; 2Ch 20:1").
	Citation string `json:"citation"`

	// CitationOnly marks a record whose target text has not been resolved
	// yet. Distinct from a record whose targets resolved empty.
	CitationOnly bool `json:"citation_only"`

	// Targets are the resolved passages, in citation order.
	Targets []*TargetVerse `json:"targets,omitempty"`
}

// Resolved returns true if at least one target carries verse text.
func (cr *CrossReference) Resolved() bool {
	for _, t := range cr.Targets {
		if t.Resolved() {
			return true
		}
	}
	return false
}

// StudyNote is a sidebar study note record.
type StudyNote struct {
	// ID is the annotation identifier from the markup, or a generated one.
	ID string `json:"id"`

	// Verse is the owning verse number.
	Verse int `json:"verse"`

	// Title is the optional bolded lead phrase of the note.
	Title string `json:"title,omitempty"`

	// Content is the note text.
	Content string `json:"content"`
}

// Chapter is the root of the content model: one extracted Bible chapter and
// every entity belonging to it. Collections preserve insertion order.
type Chapter struct {
	// Book is the book name (e.g., "Psalms").
	Book string `json:"book"`

	// Number is the chapter number.
	Number int `json:"chapter"`

	// Superscription is the optional leading heading text (Psalms).
	Superscription string `json:"superscription,omitempty"`

	// Verses is the ordered verse stream.
	Verses []*Verse `json:"verses"`

	// Footnotes, CrossReferences, and StudyNotes hold the sidebar
	// annotation records in the order their sections listed them.
	Footnotes       []*Footnote       `json:"footnotes,omitempty"`
	CrossReferences []*CrossReference `json:"cross_references,omitempty"`
	StudyNotes      []*StudyNote      `json:"study_notes,omitempty"`
}

// NewChapter constructs an empty Chapter for the given book and number.
func NewChapter(book string, number int) *Chapter {
	return &Chapter{Book: book, Number: number}
}

// AddVerse appends a verse to the stream.
func (c *Chapter) AddVerse(v *Verse) {
	c.Verses = append(c.Verses, v)
}

// VerseByNumber returns the verse with the given number, or nil.
func (c *Chapter) VerseByNumber(n int) *Verse {
	for _, v := range c.Verses {
		if v.Number == n {
			return v
		}
	}
	return nil
}

// CrossReferenceByID returns the cross-reference with the given id, or nil.
func (c *Chapter) CrossReferenceByID(id string) *CrossReference {
	for _, cr := range c.CrossReferences {
		if cr.ID == id {
			return cr
		}
	}
	return nil
}

// FootnotesFor returns the footnotes owned by verse n, in insertion order.
func (c *Chapter) FootnotesFor(n int) []*Footnote {
	var out []*Footnote
	for _, fn := range c.Footnotes {
		if fn.Verse == n {
			out = append(out, fn)
		}
	}
	return out
}

// CrossReferencesFor returns the cross-references owned by verse n.
func (c *Chapter) CrossReferencesFor(n int) []*CrossReference {
	var out []*CrossReference
	for _, cr := range c.CrossReferences {
		if cr.Verse == n {
			out = append(out, cr)
		}
	}
	return out
}

// StudyNotesFor returns the study notes owned by verse n.
func (c *Chapter) StudyNotesFor(n int) []*StudyNote {
	var out []*StudyNote
	for _, sn := range c.StudyNotes {
		if sn.Verse == n {
			out = append(out, sn)
		}
	}
	return out
}

// HasAnnotations reports whether verse n owns at least one annotation of
// any kind.
func (c *Chapter) HasAnnotations(n int) bool {
	return len(c.FootnotesFor(n)) > 0 ||
		len(c.CrossReferencesFor(n)) > 0 ||
		len(c.StudyNotesFor(n)) > 0
}

// Reference returns the human-readable chapter reference (e.g., "Psalms 83").
func (c *Chapter) Reference() string {
	return fmt.Sprintf("%s %d", c.Book, c.Number)
}

// VerseReference returns the reference for one verse (e.g., "Psalms 83:5").
func (c *Chapter) VerseReference(n int) string {
	return fmt.Sprintf("%s %d:%d", c.Book, c.Number, n)
}
