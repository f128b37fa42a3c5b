// Package extract walks a tree-queryable markup representation of one
// chapter and populates a content model instance.
//
// The engine is driven entirely by a declarative, versioned rule set
// (semantic field to XPath pattern), so it is isolated from any one markup
// dialect. Absent sections yield empty collections; elements missing an
// expected child field are skipped with a recorded Omission rather than
// raising. Extraction never fails for data reasons, only for an invalid
// rule set.
//
// A chapter may be re-extracted after lazily-populated sub-trees (the
// cross-reference detail blocks) have been filled in by client-side
// templating; Merge folds the newly resolved targets into the existing
// chapter without duplicating header data.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/StudyPress/core/markup"
	"github.com/FocuswithJustin/StudyPress/core/model"
)

// Omission records a single non-fatal absence encountered during
// extraction. Omissions never halt extraction and are individually
// enumerable for diagnostics.
type Omission struct {
	// Field is the semantic field that was absent or unusable.
	Field Field `json:"field"`

	// Context names the element the field was expected in.
	Context string `json:"context"`

	// Reason describes why the field could not be extracted.
	Reason string `json:"reason"`
}

func (o Omission) String() string {
	return fmt.Sprintf("%s: %s: %s", o.Context, o.Field, o.Reason)
}

// extraction carries the per-call state of one engine run.
type extraction struct {
	doc       markup.Node
	rules     Rules
	omissions []Omission
}

// Extract parses the chapter markup under the given rule set. The returned
// omissions enumerate every skipped element and dropped field; the error is
// non-nil only for an invalid rule set.
func Extract(doc markup.Node, rules Rules) (*model.Chapter, []Omission, error) {
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}

	ex := &extraction{doc: doc, rules: rules}

	book, number := ex.chapterHeading()
	c := model.NewChapter(book, number)
	c.Superscription = ex.superscription()
	ex.verses(c)
	ex.footnotes(c)
	ex.crossReferences(c)
	ex.studyNotes(c)

	return c, ex.omissions, nil
}

// Merge re-extracts updated markup for the same chapter and folds newly
// resolved content into c in place. Cross-references that were
// citation-only gain their targets, matched by id, with the header glyph
// and citation left untouched. Annotation records absent from c are
// appended; existing records and the verse stream are never duplicated.
func Merge(c *model.Chapter, doc markup.Node, rules Rules) ([]Omission, error) {
	fresh, omissions, err := Extract(doc, rules)
	if err != nil {
		return nil, err
	}

	for _, upd := range fresh.CrossReferences {
		cur := c.CrossReferenceByID(upd.ID)
		if cur == nil {
			c.CrossReferences = append(c.CrossReferences, upd)
			continue
		}
		if cur.CitationOnly && upd.Resolved() {
			cur.Targets = upd.Targets
			cur.CitationOnly = false
		}
	}

	for _, fn := range fresh.Footnotes {
		if !hasFootnote(c, fn.ID) {
			c.Footnotes = append(c.Footnotes, fn)
		}
	}
	for _, sn := range fresh.StudyNotes {
		if !hasStudyNote(c, sn.ID) {
			c.StudyNotes = append(c.StudyNotes, sn)
		}
	}

	return omissions, nil
}

func hasFootnote(c *model.Chapter, id string) bool {
	for _, fn := range c.Footnotes {
		if fn.ID == id {
			return true
		}
	}
	return false
}

func hasStudyNote(c *model.Chapter, id string) bool {
	for _, sn := range c.StudyNotes {
		if sn.ID == id {
			return true
		}
	}
	return false
}

// omit records one omission.
func (ex *extraction) omit(f Field, context, reason string) {
	ex.omissions = append(ex.omissions, Omission{Field: f, Context: context, Reason: reason})
}

// query runs a rule pattern against a node. A field the rule set does not
// cover yields nothing. Pattern compilation was checked by Validate, so a
// query error here means a predicate failed against this tree shape; that
// is a data problem and is recorded, not raised.
func (ex *extraction) query(n markup.Node, f Field, context string) []markup.Node {
	pattern := ex.rules.Pattern(f)
	if pattern == "" {
		return nil
	}
	nodes, err := n.Query(pattern)
	if err != nil {
		ex.omit(f, context, err.Error())
		return nil
	}
	return nodes
}

// queryFirst is query for single-valued fields.
func (ex *extraction) queryFirst(n markup.Node, f Field, context string) markup.Node {
	pattern := ex.rules.Pattern(f)
	if pattern == "" {
		return nil
	}
	node, err := n.QueryFirst(pattern)
	if err != nil {
		ex.omit(f, context, err.Error())
		return nil
	}
	return node
}

// headingRe splits "Psalms 83" into book name and chapter number.
var headingRe = regexp.MustCompile(`^(.*\S)\s+(\d+)$`)

// chapterHeading extracts the book name and chapter number.
func (ex *extraction) chapterHeading() (string, int) {
	h := ex.queryFirst(ex.doc, FieldChapterHeading, "document")
	if h == nil {
		ex.omit(FieldChapterHeading, "document", "no chapter heading found")
		return "", 0
	}
	m := headingRe.FindStringSubmatch(h.Text())
	if m == nil {
		ex.omit(FieldChapterHeading, "document",
			fmt.Sprintf("heading %q does not end in a chapter number", h.Text()))
		return h.Text(), 0
	}
	number, _ := strconv.Atoi(m[2])
	return m[1], number
}

// superscription extracts the optional leading heading text. Absence is not
// an omission; most chapters have none.
func (ex *extraction) superscription() string {
	s := ex.queryFirst(ex.doc, FieldSuperscription, "document")
	if s == nil {
		return ""
	}
	return s.Text()
}

// leadingIntRe pulls the numeral out of a verse number token like "2" or
// "2 ".
var leadingIntRe = regexp.MustCompile(`^\s*(\d+)`)

// verses extracts the verse stream. Verse containers whose numeral token
// fails integer parsing, or whose body is empty after stripping, are
// dropped entirely with an omission.
func (ex *extraction) verses(c *model.Chapter) {
	for i, container := range ex.query(ex.doc, FieldVerseContainer, "document") {
		context := fmt.Sprintf("verse container %d", i+1)

		numNode := ex.queryFirst(container, FieldVerseNumber, context)
		if numNode == nil {
			ex.omit(FieldVerseNumber, context, "no verse number token")
			continue
		}
		numText := numNode.Text()
		m := leadingIntRe.FindStringSubmatch(numText)
		if m == nil {
			ex.omit(FieldVerseNumber, context,
				fmt.Sprintf("numeral token %q does not parse as an integer", numText))
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil || number <= 0 {
			ex.omit(FieldVerseNumber, context,
				fmt.Sprintf("numeral token %q is not a positive integer", numText))
			continue
		}

		markers := ex.inlineMarkers(container, number, context)

		body := strings.TrimSpace(strings.TrimPrefix(container.Text(), numText))
		body = trimEdgeGlyphs(body, markers)

		verse, err := model.NewVerse(number, body)
		if err != nil {
			ex.omit(FieldVerseContainer, context, err.Error())
			continue
		}
		verse.Markers = markers
		c.AddVerse(verse)
	}
}

// inlineMarkers collects the reference glyphs inside one verse container,
// in document order per kind.
func (ex *extraction) inlineMarkers(container markup.Node, verse int, context string) []*model.Marker {
	var markers []*model.Marker
	collect := func(f Field, kind model.MarkerKind) {
		for _, n := range ex.query(container, f, context) {
			glyph := n.Text()
			if glyph == "" {
				ex.omit(f, context, "marker element has no glyph text")
				continue
			}
			markers = append(markers, &model.Marker{Kind: kind, Glyph: glyph, Verse: verse})
		}
	}
	collect(FieldFootnoteMarker, model.MarkerFootnote)
	collect(FieldCrossRefMarker, model.MarkerCrossReference)
	collect(FieldStudyNoteMarker, model.MarkerStudyNote)
	return markers
}

// trimEdgeGlyphs strips leading and trailing reference glyphs from the
// verse body. Glyphs embedded mid-text stay in the raw text; layout raises
// them in place when it renders the verse.
func trimEdgeGlyphs(body string, markers []*model.Marker) string {
	for {
		trimmed := strings.TrimSpace(body)
		for _, m := range markers {
			if rest, ok := strings.CutPrefix(trimmed, m.Glyph); ok {
				trimmed = strings.TrimSpace(rest)
				continue
			}
			if rest, ok := strings.CutSuffix(trimmed, m.Glyph); ok {
				trimmed = strings.TrimSpace(rest)
			}
		}
		if trimmed == body {
			return trimmed
		}
		body = trimmed
	}
}

// owningVerse determines the verse number an annotation item belongs to:
// the data-verse attribute when present, otherwise the trailing verse part
// of a reference like "83:5" or "83:6-8" (first verse of a range).
func (ex *extraction) owningVerse(item markup.Node, refField Field, context string) (int, bool) {
	if attr := item.Attr("data-verse"); attr != "" {
		n, err := strconv.Atoi(attr)
		if err == nil && n > 0 {
			return n, true
		}
		ex.omit(refField, context, fmt.Sprintf("data-verse %q is not a positive integer", attr))
		return 0, false
	}

	refNode := ex.queryFirst(item, refField, context)
	if refNode == nil {
		ex.omit(refField, context, "no owning-verse reference")
		return 0, false
	}
	ref := refNode.Text()
	idx := strings.LastIndex(ref, ":")
	if idx < 0 || idx == len(ref)-1 {
		ex.omit(refField, context, fmt.Sprintf("reference %q has no verse part", ref))
		return 0, false
	}
	versePart := ref[idx+1:]
	if dash := strings.IndexAny(versePart, "-–"); dash > 0 {
		versePart = versePart[:dash]
	}
	n, err := strconv.Atoi(strings.TrimSpace(versePart))
	if err != nil || n <= 0 {
		ex.omit(refField, context, fmt.Sprintf("reference %q has an unparseable verse part", ref))
		return 0, false
	}
	return n, true
}

// itemID returns the annotation id carried by the markup, or a
// deterministic fallback so repeated extraction of identical markup stays
// field-for-field equal.
func itemID(item markup.Node, prefix string, ordinal int) string {
	if id := item.Attr("id"); id != "" {
		return id
	}
	if id := item.Attr("data-id"); id != "" {
		return id
	}
	return fmt.Sprintf("%s-%d", prefix, ordinal)
}

// footnotes extracts the footnote sidebar section. Footnotes are never
// lazily populated, so glyph and content come straight off the item.
func (ex *extraction) footnotes(c *model.Chapter) {
	for i, item := range ex.query(ex.doc, FieldFootnoteItem, "document") {
		id := itemID(item, "fn", i+1)
		context := fmt.Sprintf("footnote %s", id)

		glyphNode := ex.queryFirst(item, FieldFootnoteGlyph, context)
		if glyphNode == nil {
			ex.omit(FieldFootnoteGlyph, context, "no glyph symbol")
			continue
		}
		contentNode := ex.queryFirst(item, FieldFootnoteContent, context)
		if contentNode == nil {
			ex.omit(FieldFootnoteContent, context, "no content")
			continue
		}
		verse, ok := ex.owningVerse(item, FieldFootnoteReference, context)
		if !ok {
			continue
		}

		c.Footnotes = append(c.Footnotes, &model.Footnote{
			ID:      id,
			Glyph:   glyphNode.Text(),
			Verse:   verse,
			Content: contentNode.Text(),
		})
	}
}

// crossReferences extracts the cross-reference sidebar section. The header
// (glyph and citation) is always visible; the detail sub-tree may be
// absent or present-but-empty until client-side templating populates it.
// Both of those states are recorded as citation-only, which downstream
// stages must keep distinguishable from "resolved but empty".
func (ex *extraction) crossReferences(c *model.Chapter) {
	for i, item := range ex.query(ex.doc, FieldCrossRefItem, "document") {
		id := itemID(item, "xr", i+1)
		context := fmt.Sprintf("cross-reference %s", id)

		glyphNode := ex.queryFirst(item, FieldCrossRefGlyph, context)
		if glyphNode == nil {
			ex.omit(FieldCrossRefGlyph, context, "no glyph letter")
			continue
		}
		citationNode := ex.queryFirst(item, FieldCrossRefCitation, context)
		if citationNode == nil {
			ex.omit(FieldCrossRefCitation, context, "no citation")
			continue
		}
		verse, ok := ex.owningVerse(item, FieldCrossRefCitation, context)
		if !ok {
			continue
		}

		cr := &model.CrossReference{
			ID:       id,
			Glyph:    glyphNode.Text(),
			Verse:    verse,
			Citation: citationNode.Text(),
		}
		ex.crossRefTargets(item, cr, context)
		c.CrossReferences = append(c.CrossReferences, cr)
	}
}

// crossRefTargets populates cr.Targets from the detail sub-tree, or marks
// the record citation-only.
func (ex *extraction) crossRefTargets(item markup.Node, cr *model.CrossReference, context string) {
	detail := ex.queryFirst(item, FieldCrossRefDetail, context)
	if detail == nil {
		// Absence of the detail block is the normal pre-population state,
		// not an omission.
		cr.CitationOnly = true
		return
	}

	var targets []*model.TargetVerse
	resolved := false
	for _, tn := range ex.query(detail, FieldCrossRefTarget, context) {
		citationNode := ex.queryFirst(tn, FieldTargetCitation, context)
		if citationNode == nil {
			ex.omit(FieldTargetCitation, context, "target entry has no citation label")
			continue
		}
		target := &model.TargetVerse{Citation: citationNode.Text()}
		if cat := ex.queryFirst(tn, FieldTargetCategory, context); cat != nil {
			target.Category = cat.Text()
		}
		if content := ex.queryFirst(tn, FieldTargetContent, context); content != nil {
			target.Content = content.Text()
		}
		if target.Resolved() {
			resolved = true
		}
		targets = append(targets, target)
	}

	if !resolved {
		// Detail block exists but nothing in it carries text yet: still
		// awaiting population, so citation-only rather than zero
		// legitimately-resolved targets.
		cr.CitationOnly = true
		return
	}
	cr.Targets = targets
}

// studyNotes extracts the study note sidebar section.
func (ex *extraction) studyNotes(c *model.Chapter) {
	for i, item := range ex.query(ex.doc, FieldStudyNoteItem, "document") {
		id := itemID(item, "sn", i+1)
		context := fmt.Sprintf("study note %s", id)

		contentNode := ex.queryFirst(item, FieldStudyNoteContent, context)
		if contentNode == nil {
			ex.omit(FieldStudyNoteContent, context, "no content")
			continue
		}
		verse, ok := ex.owningVerse(item, FieldStudyNoteReference, context)
		if !ok {
			continue
		}

		sn := &model.StudyNote{
			ID:      id,
			Verse:   verse,
			Content: contentNode.Text(),
		}
		if title := ex.queryFirst(item, FieldStudyNoteTitle, context); title != nil {
			sn.Title = strings.TrimSuffix(title.Text(), ":")
		}
		c.StudyNotes = append(c.StudyNotes, sn)
	}
}
