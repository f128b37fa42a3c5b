package model

// books.go - Canonical book table used to expand citation abbreviations and
// sanity-check parsed references.

// Book describes one book of the canon.
type Book struct {
	// Name is the full book name (e.g., "2 Chronicles").
	Name string

	// Abbr is the printed citation abbreviation (e.g., "2Ch").
	Abbr string

	// Chapters is the number of chapters the book contains.
	Chapters int
}

// books lists the standard 66 books in canonical order with their printed
// abbreviations and chapter counts.
var books = []Book{
	{"Genesis", "Ge", 50},
	{"Exodus", "Ex", 40},
	{"Leviticus", "Le", 27},
	{"Numbers", "Nu", 36},
	{"Deuteronomy", "De", 34},
	{"Joshua", "Jos", 24},
	{"Judges", "Jg", 21},
	{"Ruth", "Ru", 4},
	{"1 Samuel", "1Sa", 31},
	{"2 Samuel", "2Sa", 24},
	{"1 Kings", "1Ki", 22},
	{"2 Kings", "2Ki", 25},
	{"1 Chronicles", "1Ch", 29},
	{"2 Chronicles", "2Ch", 36},
	{"Ezra", "Ezr", 10},
	{"Nehemiah", "Ne", 13},
	{"Esther", "Es", 10},
	{"Job", "Job", 42},
	{"Psalms", "Ps", 150},
	{"Proverbs", "Pr", 31},
	{"Ecclesiastes", "Ec", 12},
	{"Song of Solomon", "Ca", 8},
	{"Isaiah", "Isa", 66},
	{"Jeremiah", "Jer", 52},
	{"Lamentations", "La", 5},
	{"Ezekiel", "Eze", 48},
	{"Daniel", "Da", 12},
	{"Hosea", "Ho", 14},
	{"Joel", "Joe", 3},
	{"Amos", "Am", 9},
	{"Obadiah", "Ob", 1},
	{"Jonah", "Jon", 4},
	{"Micah", "Mic", 7},
	{"Nahum", "Na", 3},
	{"Habakkuk", "Hab", 3},
	{"Zephaniah", "Zep", 3},
	{"Haggai", "Hag", 2},
	{"Zechariah", "Zec", 14},
	{"Malachi", "Mal", 4},
	{"Matthew", "Mt", 28},
	{"Mark", "Mr", 16},
	{"Luke", "Lu", 24},
	{"John", "Joh", 21},
	{"Acts", "Ac", 28},
	{"Romans", "Ro", 16},
	{"1 Corinthians", "1Co", 16},
	{"2 Corinthians", "2Co", 13},
	{"Galatians", "Ga", 6},
	{"Ephesians", "Eph", 6},
	{"Philippians", "Php", 4},
	{"Colossians", "Col", 4},
	{"1 Thessalonians", "1Th", 5},
	{"2 Thessalonians", "2Th", 3},
	{"1 Timothy", "1Ti", 6},
	{"2 Timothy", "2Ti", 4},
	{"Titus", "Tit", 3},
	{"Philemon", "Phm", 1},
	{"Hebrews", "Heb", 13},
	{"James", "Jas", 5},
	{"1 Peter", "1Pe", 5},
	{"2 Peter", "2Pe", 3},
	{"1 John", "1Jo", 5},
	{"2 John", "2Jo", 1},
	{"3 John", "3Jo", 1},
	{"Jude", "Jude", 1},
	{"Revelation", "Re", 22},
}

// booksByAbbr indexes the canon by printed abbreviation.
var booksByAbbr = func() map[string]Book {
	m := make(map[string]Book, len(books))
	for _, b := range books {
		m[b.Abbr] = b
	}
	return m
}()

// booksByName indexes the canon by full name.
var booksByName = func() map[string]Book {
	m := make(map[string]Book, len(books))
	for _, b := range books {
		m[b.Name] = b
	}
	return m
}()

// LookupBook resolves a full name or printed abbreviation to its Book entry.
func LookupBook(nameOrAbbr string) (Book, bool) {
	if b, ok := booksByName[nameOrAbbr]; ok {
		return b, true
	}
	b, ok := booksByAbbr[nameOrAbbr]
	return b, ok
}

// BookName expands an abbreviation to the full book name. Unknown
// abbreviations are returned unchanged.
func BookName(abbr string) string {
	if b, ok := booksByAbbr[abbr]; ok {
		return b.Name
	}
	return abbr
}

// KnownRef reports whether a parsed reference names a known book and a
// chapter inside its range. Verse bounds are not tracked here.
func KnownRef(r *Ref) bool {
	b, ok := LookupBook(r.Book)
	if !ok {
		return false
	}
	return r.Chapter >= 1 && r.Chapter <= b.Chapters
}
