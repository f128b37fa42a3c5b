package extract

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/StudyPress/core/markup"
)

// psalm83 is a chapter in the study-edition dialect with every section
// populated: three verses carrying inline markers, a footnote, two
// cross-references (one with its detail block, one still collapsed), and a
// study note.
const psalm83 = `<!DOCTYPE html>
<html><body>
<h1 class="sectionHeading">Psalms 83</h1>
<div class="superscription">A song. A melody of Asaph.</div>

<p class="sb"><span class="verseNum">1 </span>O God, do not keep silent;<a class="fn">*</a> do not stay quiet.</p>
<p class="sb"><span class="verseNum">2 </span>For look! your enemies are in an uproar;<a class="b">a</a></p>
<p class="sb"><span class="verseNum">3 </span>With cunning they secretly plot<a class="study-note-ref">3a</a> against your people;<a class="b">b</a></p>

<div class="footnotes">
  <div class="footnote" id="fn83-1">
    <span class="fnSymbol">*</span>
    <a class="fnReference">83:1</a>
    <span class="fnContent">Or "do not be still."</span>
  </div>
</div>

<div class="xRefs">
  <div class="xRef" data-id="xr83-1" data-verse="2">
    <span class="xRefID">a</span>
    <span class="targetCitation">Ps 2:1</span>
  </div>
  <div class="xRef" data-id="xr83-2" data-verse="3">
    <span class="xRefID">b</span>
    <span class="targetCitation">Ps 64:2</span>
    <div class="jsCollapsableBlock">
      <div class="xRefVerse">
        <span class="xRefCitation">Ps 64:2</span>
        <span class="xRefCategory">parallel thought</span>
        <p class="xRefContent">Hide me from the secret plots of evil men.</p>
      </div>
    </div>
  </div>
</div>

<div class="studyNotes">
  <div class="studyNote" id="sn83-1" data-verse="3">
    <strong class="noteTitle">secretly plot:</strong>
    <span class="reference">83:3</span>
    <div class="noteContent">The Hebrew verb conveys cunning deliberation.</div>
  </div>
</div>
</body></html>`

func parseDoc(t *testing.T, src string) markup.Document {
	t.Helper()
	doc, err := markup.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestExtractChapter(t *testing.T) {
	c, omissions, err := Extract(parseDoc(t, psalm83), DefaultRules())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(omissions) != 0 {
		t.Fatalf("unexpected omissions: %v", omissions)
	}

	if c.Book != "Psalms" || c.Number != 83 {
		t.Errorf("heading = %q %d, want Psalms 83", c.Book, c.Number)
	}
	if c.Superscription != "A song. A melody of Asaph." {
		t.Errorf("superscription = %q", c.Superscription)
	}
	if len(c.Verses) != 3 {
		t.Fatalf("got %d verses, want 3", len(c.Verses))
	}

	v1 := c.VerseByNumber(1)
	if v1 == nil {
		t.Fatal("verse 1 missing")
	}
	if strings.HasPrefix(v1.Text, "1") {
		t.Errorf("verse 1 text retains numeral token: %q", v1.Text)
	}
	if len(v1.Markers) != 1 || v1.Markers[0].Glyph != "*" {
		t.Errorf("verse 1 markers = %+v", v1.Markers)
	}

	v3 := c.VerseByNumber(3)
	if len(v3.Markers) != 2 {
		t.Fatalf("verse 3 markers = %+v, want study-note and cross-ref", v3.Markers)
	}
	// Glyphs embedded mid-text stay in the raw verse text.
	if !strings.Contains(v3.Text, "3a") {
		t.Errorf("verse 3 lost its embedded glyph: %q", v3.Text)
	}

	if len(c.Footnotes) != 1 {
		t.Fatalf("got %d footnotes, want 1", len(c.Footnotes))
	}
	fn := c.Footnotes[0]
	if fn.ID != "fn83-1" || fn.Glyph != "*" || fn.Verse != 1 {
		t.Errorf("footnote = %+v", fn)
	}
	if fn.Content != `Or "do not be still."` {
		t.Errorf("footnote content = %q", fn.Content)
	}

	if len(c.CrossReferences) != 2 {
		t.Fatalf("got %d cross-references, want 2", len(c.CrossReferences))
	}
	collapsed := c.CrossReferenceByID("xr83-1")
	if collapsed == nil || !collapsed.CitationOnly || collapsed.Targets != nil {
		t.Errorf("xr83-1 = %+v, want citation-only", collapsed)
	}
	if collapsed.Citation != "Ps 2:1" || collapsed.Verse != 2 {
		t.Errorf("xr83-1 header = %+v", collapsed)
	}
	full := c.CrossReferenceByID("xr83-2")
	if full == nil || full.CitationOnly || len(full.Targets) != 1 {
		t.Fatalf("xr83-2 = %+v, want one resolved target", full)
	}
	target := full.Targets[0]
	if target.Citation != "Ps 64:2" || target.Category != "parallel thought" {
		t.Errorf("target = %+v", target)
	}

	if len(c.StudyNotes) != 1 {
		t.Fatalf("got %d study notes, want 1", len(c.StudyNotes))
	}
	sn := c.StudyNotes[0]
	if sn.ID != "sn83-1" || sn.Verse != 3 || sn.Title != "secretly plot" {
		t.Errorf("study note = %+v", sn)
	}
}

func TestExtractIdempotent(t *testing.T) {
	rules := DefaultRules()
	first, _, err := Extract(parseDoc(t, psalm83), rules)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, _, err := Extract(parseDoc(t, psalm83), rules)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	h1, err := first.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	h2, err := second.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if h1 != h2 {
		t.Errorf("repeated extraction diverged: %s vs %s", h1, h2)
	}
}

func TestExtractDropsUnparseableVerse(t *testing.T) {
	src := `<html><body>
<h1 class="sectionHeading">Psalms 83</h1>
<p class="sb"><span class="verseNum">1 </span>First verse.</p>
<p class="sb"><span class="verseNum">oops</span>Broken verse.</p>
<p class="sb"><span class="verseNum">3 </span>Third verse.</p>
</body></html>`

	c, omissions, err := Extract(parseDoc(t, src), DefaultRules())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(c.Verses) != 2 {
		t.Errorf("got %d verses, want 2 (broken container dropped)", len(c.Verses))
	}
	var found bool
	for _, o := range omissions {
		if o.Field == FieldVerseNumber && strings.Contains(o.Reason, "oops") {
			found = true
		}
	}
	if !found {
		t.Errorf("no omission for unparseable numeral, got %v", omissions)
	}
}

func TestExtractSkipsIncompleteAnnotations(t *testing.T) {
	src := `<html><body>
<h1 class="sectionHeading">Psalms 83</h1>
<p class="sb"><span class="verseNum">1 </span>A verse.</p>
<div class="footnotes">
  <div class="footnote" id="fn-broken">
    <span class="fnSymbol">*</span>
    <a class="fnReference">83:1</a>
  </div>
</div>
</body></html>`

	c, omissions, err := Extract(parseDoc(t, src), DefaultRules())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(c.Footnotes) != 0 {
		t.Errorf("content-less footnote kept: %+v", c.Footnotes)
	}
	if len(omissions) != 1 || omissions[0].Field != FieldFootnoteContent {
		t.Errorf("omissions = %v, want one footnote_content omission", omissions)
	}
}

func TestExtractOwningVerseFromReference(t *testing.T) {
	// No data-verse attribute: the verse comes from the reference text,
	// taking the first verse of a range.
	src := `<html><body>
<h1 class="sectionHeading">Psalms 83</h1>
<p class="sb"><span class="verseNum">6 </span>The tents of Edom.</p>
<div class="footnotes">
  <div class="footnote" id="fn83-2">
    <span class="fnSymbol">*</span>
    <a class="fnReference">83:6-8</a>
    <span class="fnContent">Lit., "the tents of."</span>
  </div>
</div>
</body></html>`

	c, omissions, err := Extract(parseDoc(t, src), DefaultRules())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(omissions) != 0 {
		t.Fatalf("unexpected omissions: %v", omissions)
	}
	if len(c.Footnotes) != 1 || c.Footnotes[0].Verse != 6 {
		t.Errorf("footnotes = %+v, want one owned by verse 6", c.Footnotes)
	}
}

func TestMergeResolvesCitationOnly(t *testing.T) {
	// Before templating runs, both detail blocks are collapsed.
	before := strings.Replace(psalm83,
		`<div class="jsCollapsableBlock">
      <div class="xRefVerse">
        <span class="xRefCitation">Ps 64:2</span>
        <span class="xRefCategory">parallel thought</span>
        <p class="xRefContent">Hide me from the secret plots of evil men.</p>
      </div>
    </div>`, "", 1)
	if before == psalm83 {
		t.Fatal("fixture replace did not apply")
	}

	rules := DefaultRules()
	c, _, err := Extract(parseDoc(t, before), rules)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if xr := c.CrossReferenceByID("xr83-2"); xr == nil || !xr.CitationOnly {
		t.Fatalf("xr83-2 before merge = %+v, want citation-only", xr)
	}

	omissions, err := Merge(c, parseDoc(t, psalm83), rules)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(omissions) != 0 {
		t.Fatalf("unexpected omissions: %v", omissions)
	}

	if len(c.CrossReferences) != 2 {
		t.Errorf("merge duplicated records: %d cross-references", len(c.CrossReferences))
	}
	xr := c.CrossReferenceByID("xr83-2")
	if xr.CitationOnly || len(xr.Targets) != 1 {
		t.Fatalf("xr83-2 after merge = %+v, want resolved", xr)
	}
	if xr.Glyph != "b" || xr.Citation != "Ps 64:2" {
		t.Errorf("merge touched header data: %+v", xr)
	}
	if still := c.CrossReferenceByID("xr83-1"); !still.CitationOnly {
		t.Errorf("xr83-1 should stay citation-only: %+v", still)
	}
	if len(c.Footnotes) != 1 {
		t.Errorf("merge duplicated footnotes: %d", len(c.Footnotes))
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	rules := DefaultRules()
	c, _, err := Extract(parseDoc(t, psalm83), rules)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	h1, err := c.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if _, err := Merge(c, parseDoc(t, psalm83), rules); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	h2, err := c.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if h1 != h2 {
		t.Errorf("merging identical markup changed the chapter: %s vs %s", h1, h2)
	}
}

func TestExtractEmptyDetailIsCitationOnly(t *testing.T) {
	// The detail block exists but templating has not filled it in yet.
	src := `<html><body>
<h1 class="sectionHeading">Psalms 83</h1>
<p class="sb"><span class="verseNum">2 </span>Your enemies are in an uproar.<a class="b">a</a></p>
<div class="xRefs">
  <div class="xRef" data-id="xr-empty" data-verse="2">
    <span class="xRefID">a</span>
    <span class="targetCitation">Ps 2:1</span>
    <div class="jsCollapsableBlock">
      <div class="xRefVerse">
        <span class="xRefCitation"></span>
        <p class="xRefContent"></p>
      </div>
    </div>
  </div>
</div>
</body></html>`

	c, _, err := Extract(parseDoc(t, src), DefaultRules())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	xr := c.CrossReferenceByID("xr-empty")
	if xr == nil {
		t.Fatal("xr-empty missing")
	}
	if !xr.CitationOnly || xr.Targets != nil {
		t.Errorf("xr-empty = %+v, want citation-only with nil targets", xr)
	}
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		ok    bool
	}{
		{"default", DefaultRules(), true},
		{"missing required", Rules{Version: "x", Patterns: map[Field]string{
			FieldVerseContainer: `//p`,
		}}, false},
		{"bad xpath", Rules{Version: "x", Patterns: map[Field]string{
			FieldVerseContainer: `//p`,
			FieldVerseNumber:    `//span[`,
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate accepted an invalid rule set")
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	data := []byte(`{"version":"test","patterns":{"verse_container":"//p","verse_number":".//span"}}`)
	r, err := LoadRules(data)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if r.Version != "test" || r.Pattern(FieldVerseContainer) != "//p" {
		t.Errorf("rules = %+v", r)
	}
	if _, err := LoadRules([]byte(`{not json`)); err == nil {
		t.Error("LoadRules accepted malformed JSON")
	}
}
