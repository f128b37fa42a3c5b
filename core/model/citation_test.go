package model

import "testing"

func TestParseCitation(t *testing.T) {
	tests := []struct {
		input string
		want  []Ref
	}{
		{
			"Ex 1:8-10; 2Ch 20:1; Es 3:6",
			[]Ref{
				{Book: "Ex", Chapter: 1, Verse: 8, VerseEnd: 10},
				{Book: "2Ch", Chapter: 20, Verse: 1},
				{Book: "Es", Chapter: 3, Verse: 6},
			},
		},
		{
			"Ps 83:18",
			[]Ref{{Book: "Ps", Chapter: 83, Verse: 18}},
		},
		{
			"Jg 7:25;  Jg 8:21",
			[]Ref{
				{Book: "Jg", Chapter: 7, Verse: 25},
				{Book: "Jg", Chapter: 8, Verse: 21},
			},
		},
		{"", nil},
		{" ; ; ", nil},
	}

	for _, tt := range tests {
		got := ParseCitation(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("ParseCitation(%q) returned %d refs, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, ref := range got {
			if *ref != tt.want[i] {
				t.Errorf("ParseCitation(%q)[%d] = %+v, want %+v", tt.input, i, *ref, tt.want[i])
			}
		}
	}
}

func TestParseCitationSkipsUnparseable(t *testing.T) {
	// The malformed middle passage is skipped but still counts as named.
	input := "Ex 1:8; ???; 2Ch 20:1"
	refs := ParseCitation(input)
	if len(refs) != 2 {
		t.Fatalf("ParseCitation(%q) returned %d refs, want 2", input, len(refs))
	}
	if got := PassageCount(input); got != 3 {
		t.Errorf("PassageCount(%q) = %d, want 3", input, got)
	}
}

func TestPassageCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Ex 1:8-10; 2Ch 20:1", 2},
		{"Ps 83:18", 1},
		{"", 0},
	}
	for _, tt := range tests {
		if got := PassageCount(tt.input); got != tt.want {
			t.Errorf("PassageCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Book: "Ex", Chapter: 1, Verse: 8, VerseEnd: 10}, "Ex 1:8-10"},
		{Ref{Book: "2Ch", Chapter: 20, Verse: 1}, "2Ch 20:1"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestLookupBook(t *testing.T) {
	b, ok := LookupBook("2Ch")
	if !ok || b.Name != "2 Chronicles" || b.Chapters != 36 {
		t.Errorf("LookupBook(2Ch) = %+v, %v", b, ok)
	}
	if _, ok := LookupBook("Xyz"); ok {
		t.Error("LookupBook(Xyz) ok = true, want false")
	}
	if got := BookName("Ps"); got != "Psalms" {
		t.Errorf("BookName(Ps) = %q, want Psalms", got)
	}
	if got := BookName("Unknown"); got != "Unknown" {
		t.Errorf("BookName(Unknown) = %q, want passthrough", got)
	}
}

func TestKnownRef(t *testing.T) {
	tests := []struct {
		ref  Ref
		want bool
	}{
		{Ref{Book: "Ps", Chapter: 83, Verse: 1}, true},
		{Ref{Book: "Ps", Chapter: 151, Verse: 1}, false},
		{Ref{Book: "Nope", Chapter: 1, Verse: 1}, false},
	}
	for _, tt := range tests {
		if got := KnownRef(&tt.ref); got != tt.want {
			t.Errorf("KnownRef(%+v) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
