package model

import (
	"fmt"
	"sort"
	"strings"
)

// Severity categorizes how a violation affects downstream processing.
type Severity string

// Severity constants. Warnings never block layout, errors indicate broken
// content the caller may still choose to lay out, a fatal finding must
// block layout.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// ViolationKind identifies which structural rule was broken.
type ViolationKind string

// Violation kind constants.
const (
	// ViolationNoVerses: the chapter has no verses at all.
	ViolationNoVerses ViolationKind = "no_verses"

	// ViolationVerseNumbering: verse numbers are not exactly 1..N.
	ViolationVerseNumbering ViolationKind = "verse_numbering"

	// ViolationUnresolvedMarker: an inline glyph has no matching
	// annotation record.
	ViolationUnresolvedMarker ViolationKind = "unresolved_marker"

	// ViolationOrphanAnnotation: an annotation record has no matching
	// inline glyph.
	ViolationOrphanAnnotation ViolationKind = "orphan_annotation"

	// ViolationEmptyContent: a footnote or study note has empty content.
	ViolationEmptyContent ViolationKind = "empty_content"

	// ViolationEmptyTargets: a cross-reference is neither citation-only nor
	// resolved with at least one non-empty target.
	ViolationEmptyTargets ViolationKind = "empty_targets"

	// ViolationTargetOverflow: a cross-reference carries more targets than
	// its citation names passages.
	ViolationTargetOverflow ViolationKind = "target_overflow"

	// ViolationGlyphCollision: the same glyph appears under more than one
	// marker kind within a single verse.
	ViolationGlyphCollision ViolationKind = "glyph_collision"

	// ViolationBadCitation: a citation passage does not parse or names an
	// unknown book or chapter.
	ViolationBadCitation ViolationKind = "bad_citation"
)

// Violation is one structural completeness finding.
type Violation struct {
	// Kind identifies the broken rule.
	Kind ViolationKind `json:"kind"`

	// Severity is warning, error, or fatal.
	Severity Severity `json:"severity"`

	// Entity names the offending entity (e.g., "verse 5", "footnote fn2").
	Entity string `json:"entity"`

	// Message describes the finding.
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s: %s", v.Severity, v.Kind, v.Entity, v.Message)
}

// HasFatal reports whether any violation is fatal. Callers must refuse to
// lay out a chapter with a fatal finding.
func HasFatal(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Validate runs the fixed set of structural completeness checks against a
// populated chapter and returns every finding. It never mutates the chapter
// and never panics for recoverable issues.
func Validate(c *Chapter) []Violation {
	var out []Violation

	if len(c.Verses) == 0 {
		out = append(out, Violation{
			Kind:     ViolationNoVerses,
			Severity: SeverityFatal,
			Entity:   c.Reference(),
			Message:  "chapter has no verses; nothing can be laid out",
		})
		return out
	}

	out = append(out, checkNumbering(c)...)
	out = append(out, checkMarkers(c)...)
	out = append(out, checkContents(c)...)
	out = append(out, checkCrossReferences(c)...)
	out = append(out, checkGlyphCollisions(c)...)

	return out
}

// checkNumbering verifies that the verse numbers form the contiguous run
// 1..N with no gaps or duplicates. Content may legitimately start mid-range
// in rare sources, so this is a warning, never blocking.
func checkNumbering(c *Chapter) []Violation {
	nums := make([]int, len(c.Verses))
	for i, v := range c.Verses {
		nums[i] = v.Number
	}
	sorted := append([]int(nil), nums...)
	sort.Ints(sorted)

	contiguous := true
	for i, n := range sorted {
		if n != i+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		return nil
	}
	return []Violation{{
		Kind:     ViolationVerseNumbering,
		Severity: SeverityWarning,
		Entity:   c.Reference(),
		Message: fmt.Sprintf("verse numbers %v do not form the contiguous run 1..%d",
			nums, len(nums)),
	}}
}

// checkMarkers runs the orphan checks in both directions: every inline
// marker should be resolved to an annotation, and every annotation should
// be reachable from an inline marker.
func checkMarkers(c *Chapter) []Violation {
	var out []Violation

	referenced := map[string]bool{}
	for _, v := range c.Verses {
		for _, m := range v.Markers {
			if !m.Resolved() {
				out = append(out, Violation{
					Kind:     ViolationUnresolvedMarker,
					Severity: SeverityWarning,
					Entity:   fmt.Sprintf("verse %d glyph %q", m.Verse, m.Glyph),
					Message:  "inline glyph has no matching annotation record",
				})
				continue
			}
			referenced[m.AnnotationID] = true
		}
	}

	orphan := func(kind MarkerKind, id string, verse int) Violation {
		return Violation{
			Kind:     ViolationOrphanAnnotation,
			Severity: SeverityWarning,
			Entity:   fmt.Sprintf("%s %s", kind, id),
			Message:  fmt.Sprintf("annotation for verse %d has no matching inline glyph", verse),
		}
	}
	for _, fn := range c.Footnotes {
		if !referenced[fn.ID] {
			out = append(out, orphan(MarkerFootnote, fn.ID, fn.Verse))
		}
	}
	for _, cr := range c.CrossReferences {
		if !referenced[cr.ID] {
			out = append(out, orphan(MarkerCrossReference, cr.ID, cr.Verse))
		}
	}
	for _, sn := range c.StudyNotes {
		if !referenced[sn.ID] {
			out = append(out, orphan(MarkerStudyNote, sn.ID, sn.Verse))
		}
	}

	return out
}

// checkContents verifies that footnotes and study notes carry text.
func checkContents(c *Chapter) []Violation {
	var out []Violation
	for _, fn := range c.Footnotes {
		if strings.TrimSpace(fn.Content) == "" {
			out = append(out, Violation{
				Kind:     ViolationEmptyContent,
				Severity: SeverityError,
				Entity:   fmt.Sprintf("footnote %s", fn.ID),
				Message:  "footnote has empty content",
			})
		}
	}
	for _, sn := range c.StudyNotes {
		if strings.TrimSpace(sn.Content) == "" {
			out = append(out, Violation{
				Kind:     ViolationEmptyContent,
				Severity: SeverityError,
				Entity:   fmt.Sprintf("study note %s", sn.ID),
				Message:  "study note has empty content",
			})
		}
	}
	return out
}

// checkCrossReferences verifies that every cross-reference is either
// explicitly citation-only or resolved with at least one non-empty target.
// Targets present but all empty indicates a broken resolution rather than
// an intentional partial state. The printed citation itself is checked
// passage by passage against the citation grammar and the canon table;
// citation-only records carry the citation header too, so they are checked
// as well.
func checkCrossReferences(c *Chapter) []Violation {
	var out []Violation
	for _, cr := range c.CrossReferences {
		for _, part := range splitCitation(cr.Citation) {
			ref := parsePassage(part)
			if ref == nil {
				out = append(out, Violation{
					Kind:     ViolationBadCitation,
					Severity: SeverityWarning,
					Entity:   fmt.Sprintf("cross-reference %s", cr.ID),
					Message:  fmt.Sprintf("citation passage %q does not parse", part),
				})
				continue
			}
			if !KnownRef(ref) {
				out = append(out, Violation{
					Kind:     ViolationBadCitation,
					Severity: SeverityWarning,
					Entity:   fmt.Sprintf("cross-reference %s", cr.ID),
					Message:  fmt.Sprintf("citation passage %q names an unknown book or chapter", part),
				})
			}
		}
		if cr.CitationOnly {
			continue
		}
		if !cr.Resolved() {
			out = append(out, Violation{
				Kind:     ViolationEmptyTargets,
				Severity: SeverityError,
				Entity:   fmt.Sprintf("cross-reference %s", cr.ID),
				Message:  "neither citation-only nor resolved with non-empty target text",
			})
			continue
		}
		if k := PassageCount(cr.Citation); len(cr.Targets) > k {
			out = append(out, Violation{
				Kind:     ViolationTargetOverflow,
				Severity: SeverityWarning,
				Entity:   fmt.Sprintf("cross-reference %s", cr.ID),
				Message: fmt.Sprintf("%d targets but citation %q names %d passages",
					len(cr.Targets), cr.Citation, k),
			})
		}
	}
	return out
}

// checkGlyphCollisions reports glyphs that appear under more than one marker
// kind inside the same verse. Matching is scoped to (kind, owning verse), so
// a collision is ambiguous rather than wrong; it is surfaced as a warning
// instead of silently picking one interpretation.
func checkGlyphCollisions(c *Chapter) []Violation {
	var out []Violation
	for _, v := range c.Verses {
		kinds := map[string]map[MarkerKind]bool{}
		for _, m := range v.Markers {
			if kinds[m.Glyph] == nil {
				kinds[m.Glyph] = map[MarkerKind]bool{}
			}
			kinds[m.Glyph][m.Kind] = true
		}
		for glyph, ks := range kinds {
			if len(ks) > 1 {
				out = append(out, Violation{
					Kind:     ViolationGlyphCollision,
					Severity: SeverityWarning,
					Entity:   fmt.Sprintf("verse %d glyph %q", v.Number, glyph),
					Message:  "glyph is shared by multiple marker kinds in the same verse",
				})
			}
		}
	}
	return out
}
