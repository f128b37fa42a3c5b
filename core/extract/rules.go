package extract

import (
	"encoding/json"
	"fmt"

	"github.com/FocuswithJustin/StudyPress/core/markup"
)

// Field names one semantic slot in the chapter markup. Rules map fields to
// tree-query patterns so the engine never hard-codes a markup dialect.
type Field string

// Semantic field constants.
const (
	// Chapter-level fields.
	FieldChapterHeading Field = "chapter_heading"
	FieldSuperscription Field = "superscription"

	// Verse stream fields. Marker fields are evaluated relative to a verse
	// container.
	FieldVerseContainer  Field = "verse_container"
	FieldVerseNumber     Field = "verse_number"
	FieldFootnoteMarker  Field = "footnote_marker"
	FieldCrossRefMarker  Field = "cross_ref_marker"
	FieldStudyNoteMarker Field = "study_note_marker"

	// Footnote sidebar fields, relative to a footnote item.
	FieldFootnoteItem      Field = "footnote_item"
	FieldFootnoteGlyph     Field = "footnote_glyph"
	FieldFootnoteReference Field = "footnote_reference"
	FieldFootnoteContent   Field = "footnote_content"

	// Cross-reference sidebar fields. The detail sub-tree is populated
	// lazily by client-side templating and may be absent or empty.
	FieldCrossRefItem     Field = "cross_ref_item"
	FieldCrossRefGlyph    Field = "cross_ref_glyph"
	FieldCrossRefCitation Field = "cross_ref_citation"
	FieldCrossRefDetail   Field = "cross_ref_detail"
	FieldCrossRefTarget   Field = "cross_ref_target"
	FieldTargetCitation   Field = "target_citation"
	FieldTargetCategory   Field = "target_category"
	FieldTargetContent    Field = "target_content"

	// Study note sidebar fields.
	FieldStudyNoteItem      Field = "study_note_item"
	FieldStudyNoteTitle     Field = "study_note_title"
	FieldStudyNoteReference Field = "study_note_reference"
	FieldStudyNoteContent   Field = "study_note_content"
)

// requiredFields must be present in every rule set; without them no verse
// stream can be located at all.
var requiredFields = []Field{FieldVerseContainer, FieldVerseNumber}

// Rules is a declarative, versioned selection-rule set: semantic field to
// XPath pattern. Rule sets are passed explicitly to Extract, never held as
// ambient state, so multiple markup dialects can run concurrently.
type Rules struct {
	// Version identifies the markup dialect this rule set targets.
	Version string `json:"version"`

	// Patterns maps each semantic field to its XPath pattern.
	Patterns map[Field]string `json:"patterns"`
}

// Pattern returns the pattern for a field, or "" when the rule set does not
// cover it. A missing optional field yields an empty collection during
// extraction, not an error.
func (r Rules) Pattern(f Field) string {
	return r.Patterns[f]
}

// Validate compiles every pattern and checks the required fields are
// present. Called by Extract before any tree work.
func (r Rules) Validate() error {
	for _, f := range requiredFields {
		if r.Patterns[f] == "" {
			return fmt.Errorf("rule set %q: required field %q has no pattern", r.Version, f)
		}
	}
	for f, p := range r.Patterns {
		if err := markup.Compile(p); err != nil {
			return fmt.Errorf("rule set %q: field %q: %w", r.Version, f, err)
		}
	}
	return nil
}

// LoadRules parses a rule set from JSON.
func LoadRules(data []byte) (Rules, error) {
	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing rule set: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// cls builds the exact-class XPath predicate for space-separated class
// attributes.
func cls(name string) string {
	return fmt.Sprintf(`contains(concat(" ", normalize-space(@class), " "), " %s ")`, name)
}

// DefaultRules returns the rule set for the study-edition markup dialect,
// derived from live-verified selectors.
func DefaultRules() Rules {
	return Rules{
		Version: "study-edition-2026",
		Patterns: map[Field]string{
			FieldChapterHeading: `//h1[` + cls("sectionHeading") + `]`,
			FieldSuperscription: `//div[` + cls("superscription") + `]`,

			FieldVerseContainer:  `//p[` + cls("sb") + `]`,
			FieldVerseNumber:     `.//span[` + cls("verseNum") + `]`,
			FieldFootnoteMarker:  `.//a[` + cls("fn") + `]`,
			FieldCrossRefMarker:  `.//a[` + cls("b") + `]`,
			FieldStudyNoteMarker: `.//a[` + cls("study-note-ref") + `]`,

			FieldFootnoteItem:      `//div[` + cls("footnotes") + `]//div[` + cls("footnote") + `]`,
			FieldFootnoteGlyph:     `.//span[` + cls("fnSymbol") + `]`,
			FieldFootnoteReference: `.//a[` + cls("fnReference") + `]`,
			FieldFootnoteContent:   `.//span[` + cls("fnContent") + `]`,

			FieldCrossRefItem:     `//div[` + cls("xRefs") + `]//div[` + cls("xRef") + `]`,
			FieldCrossRefGlyph:    `.//span[` + cls("xRefID") + `]`,
			FieldCrossRefCitation: `.//span[` + cls("targetCitation") + `]`,
			FieldCrossRefDetail:   `.//div[` + cls("jsCollapsableBlock") + `]`,
			FieldCrossRefTarget:   `.//div[` + cls("xRefVerse") + `]`,
			FieldTargetCitation:   `.//span[` + cls("xRefCitation") + `]`,
			FieldTargetCategory:   `.//span[` + cls("xRefCategory") + `]`,
			FieldTargetContent:    `.//p[` + cls("xRefContent") + `]`,

			FieldStudyNoteItem:      `//div[` + cls("studyNotes") + `]//div[` + cls("studyNote") + `]`,
			FieldStudyNoteTitle:     `.//strong[` + cls("noteTitle") + `]`,
			FieldStudyNoteReference: `.//span[` + cls("reference") + `]`,
			FieldStudyNoteContent:   `.//div[` + cls("noteContent") + `]`,
		},
	}
}
