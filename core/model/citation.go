package model

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref represents one passage named by a cross-reference citation.
type Ref struct {
	// Book is the abbreviated book name as printed (e.g., "Ex", "2Ch").
	Book string `json:"book"`

	// Chapter is the chapter number.
	Chapter int `json:"chapter"`

	// Verse is the starting verse number.
	Verse int `json:"verse"`

	// VerseEnd is the ending verse for ranges (0 when not a range).
	VerseEnd int `json:"verse_end,omitempty"`
}

// String renders the reference back in citation form (e.g., "Ex 1:8-10").
func (r *Ref) String() string {
	if r.VerseEnd > 0 {
		return fmt.Sprintf("%s %d:%d-%d", r.Book, r.Chapter, r.Verse, r.VerseEnd)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// citationGrammar is the participle grammar for one citation passage.
// Examples: "Ex 1:8-10", "2Ch 20:1", "Ps 83:18"
type citationGrammar struct {
	BookPrefix string `parser:"@Int?"`
	BookName   string `parser:"@Ident"`
	Chapter    int    `parser:"@Int"`
	Verse      int    `parser:"':' @Int"`
	Range      *int   `parser:"( '-' @Int )?"`
}

// citationLexer defines the lexer for printed citations.
var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// citationParser is the participle parser for printed citations.
var citationParser = participle.MustBuild[citationGrammar](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
)

// ParseCitation parses a printed citation string into its passages.
// Passages are separated by semicolons: "Ex 1:8-10; 2Ch 20:1; Es 3:6".
// Passages that do not parse are skipped; they still count toward
// PassageCount since the citation names them.
func ParseCitation(s string) []*Ref {
	var refs []*Ref
	for _, part := range splitCitation(s) {
		ref := parsePassage(part)
		if ref != nil {
			refs = append(refs, ref)
		}
	}
	return refs
}

// PassageCount returns the number of distinct passages a citation names.
func PassageCount(s string) int {
	return len(splitCitation(s))
}

// splitCitation splits a citation into its non-empty passage parts.
func splitCitation(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// parsePassage parses a single passage like "Ex 1:8-10" or "2Ch 20:1".
func parsePassage(s string) *Ref {
	parsed, err := citationParser.ParseString("", s)
	if err != nil {
		return nil
	}

	ref := &Ref{
		Book:    parsed.BookPrefix + parsed.BookName,
		Chapter: parsed.Chapter,
		Verse:   parsed.Verse,
	}
	if parsed.Range != nil {
		ref.VerseEnd = *parsed.Range
	}
	return ref
}
