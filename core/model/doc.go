// Package model provides the content model for a single extracted Bible
// study chapter.
//
// The model is a passive data container: one Chapter owns an ordered verse
// stream plus the footnotes, cross-references, and study notes extracted
// from the chapter's sidebar. No entity outlives its Chapter.
//
// # Core Types
//
//   - Chapter: the sole root, one per extracted page
//   - Verse: numbered text with resolved inline Markers
//   - Marker: an inline reference glyph bound to an annotation record
//   - Footnote, CrossReference, StudyNote: sidebar annotation records
//   - TargetVerse: resolved text of a passage a cross-reference cites
//
// # Citation-only Cross-References
//
// A CrossReference whose target text has not yet been resolved (the detail
// block is populated lazily by client-side templating) is recorded as
// citation-only. That state is distinct from a cross-reference whose targets
// were resolved but came back empty, which the validator reports as broken.
//
// # Validation
//
// Validate runs the fixed set of structural completeness checks and returns
// Violations categorized warning/error/fatal. It never mutates the Chapter.
//
// # Fingerprinting
//
// Chapter content is hashed with BLAKE3 over the canonical JSON encoding for
// change detection and idempotent storage.
//
// # Example
//
//	ch := model.NewChapter("Psalms", 83)
//	v, _ := model.NewVerse(1, "O God, do not be silent.")
//	ch.AddVerse(v)
//	for _, viol := range model.Validate(ch) {
//	    fmt.Println(viol)
//	}
package model
