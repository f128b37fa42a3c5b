// Package resolve binds inline reference glyphs to sidebar annotation
// records.
//
// Glyphs are consumed strictly in left-to-right order of appearance within
// each verse; annotation records of the same kind are consumed in the order
// their container section listed them. Matching is always scoped to the
// (kind, owning verse) pair: footnote symbols reset per verse while
// cross-reference letters do not, so a glyph is only ever matched against
// records that declare the same owning verse, never globally.
//
// Resolution never fails hard. An inline glyph with no matching record is
// kept unresolved and reported as a Gap; a record with no matching glyph is
// retained in the chapter and reported as an Orphan.
package resolve

import (
	"github.com/FocuswithJustin/StudyPress/core/model"
)

// Gap records an inline glyph occurrence that no annotation record matched.
type Gap struct {
	// Marker is the unresolved marker, kept in place in its verse.
	Marker *model.Marker
}

// Orphan records an annotation that no inline glyph referenced.
type Orphan struct {
	Kind  model.MarkerKind
	ID    string
	Verse int
}

// Result enumerates the outcome of one resolution pass.
type Result struct {
	// Bound is the number of marker-to-annotation bindings made.
	Bound int

	// Gaps are inline glyphs left unresolved.
	Gaps []Gap

	// Orphans are annotation records no glyph referenced.
	Orphans []Orphan
}

// record is one annotation entry in a per-verse consumption queue.
type record struct {
	id       string
	glyph    string
	consumed bool
}

// Chapter resolves every inline marker in the chapter against the sidebar
// annotation records of the matching kind. Markers gain their AnnotationID
// in place; the annotation collections themselves are not modified.
func Chapter(c *model.Chapter) Result {
	queues := map[model.MarkerKind]map[int][]*record{
		model.MarkerFootnote:       {},
		model.MarkerCrossReference: {},
		model.MarkerStudyNote:      {},
	}
	push := func(kind model.MarkerKind, verse int, id, glyph string) *record {
		r := &record{id: id, glyph: glyph}
		queues[kind][verse] = append(queues[kind][verse], r)
		return r
	}

	// Container order is preserved per (kind, verse).
	var all []struct {
		kind  model.MarkerKind
		verse int
		rec   *record
	}
	track := func(kind model.MarkerKind, verse int, rec *record) {
		all = append(all, struct {
			kind  model.MarkerKind
			verse int
			rec   *record
		}{kind, verse, rec})
	}
	for _, fn := range c.Footnotes {
		track(model.MarkerFootnote, fn.Verse, push(model.MarkerFootnote, fn.Verse, fn.ID, fn.Glyph))
	}
	for _, cr := range c.CrossReferences {
		track(model.MarkerCrossReference, cr.Verse, push(model.MarkerCrossReference, cr.Verse, cr.ID, cr.Glyph))
	}
	for _, sn := range c.StudyNotes {
		// Study notes carry no printed glyph of their own; they are keyed by
		// verse alone and matched by position.
		track(model.MarkerStudyNote, sn.Verse, push(model.MarkerStudyNote, sn.Verse, sn.ID, ""))
	}

	var res Result

	for _, v := range c.Verses {
		for _, m := range v.Markers {
			if m.Resolved() {
				// Re-resolution pass: keep the existing binding and take its
				// record out of circulation.
				consumeByID(queues[m.Kind][m.Verse], m.AnnotationID)
				res.Bound++
				continue
			}
			rec := consume(queues[m.Kind][m.Verse], m.Glyph)
			if rec == nil {
				res.Gaps = append(res.Gaps, Gap{Marker: m})
				continue
			}
			m.AnnotationID = rec.id
			res.Bound++
		}
	}

	for _, entry := range all {
		if !entry.rec.consumed {
			res.Orphans = append(res.Orphans, Orphan{
				Kind:  entry.kind,
				ID:    entry.rec.id,
				Verse: entry.verse,
			})
		}
	}

	return res
}

// consumeByID marks the record carrying the given annotation id consumed.
func consumeByID(queue []*record, id string) {
	for _, r := range queue {
		if r.id == id {
			r.consumed = true
			return
		}
	}
}

// consume takes the first unconsumed record whose glyph matches, in
// container order. A record with an empty glyph matches any glyph of its
// kind (study notes).
func consume(queue []*record, glyph string) *record {
	for _, r := range queue {
		if r.consumed {
			continue
		}
		if r.glyph == "" || r.glyph == glyph {
			r.consumed = true
			return r
		}
	}
	return nil
}
