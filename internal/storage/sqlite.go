package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FocuswithJustin/StudyPress/core/model"
)

// DriverName returns the SQL driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns a string identifying the underlying implementation.
// Returns "purego" for modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO driver is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

// ErrChapterNotFound is returned when the archive has no row for a
// chapter reference.
var ErrChapterNotFound = errors.New("chapter not found in archive")

// Archive stores chapter records in SQLite, keyed by book and chapter
// number, with the content fingerprint alongside for change detection.
type Archive struct {
	db *sql.DB
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS chapters (
    book        TEXT NOT NULL,
    chapter     INTEGER NOT NULL,
    fingerprint TEXT NOT NULL,
    record      TEXT NOT NULL,
    archived_at TEXT NOT NULL,
    PRIMARY KEY (book, chapter)
);
`

// OpenArchive opens (creating if needed) a chapter archive at the given
// database path, using the configured driver.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Put upserts a chapter record. An unchanged fingerprint still refreshes
// the stored record and timestamp.
func (a *Archive) Put(c *model.Chapter) error {
	fingerprint, err := c.Fingerprint()
	if err != nil {
		return err
	}
	record, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding chapter: %w", err)
	}

	_, err = a.db.Exec(`
		INSERT INTO chapters (book, chapter, fingerprint, record, archived_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (book, chapter) DO UPDATE SET
		    fingerprint = excluded.fingerprint,
		    record = excluded.record,
		    archived_at = excluded.archived_at`,
		c.Book, c.Number, fingerprint, string(record),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("archiving %s: %w", c.Reference(), err)
	}
	return nil
}

// Get loads the archived record for a chapter reference.
func (a *Archive) Get(book string, chapter int) (*model.Chapter, error) {
	var record string
	err := a.db.QueryRow(
		`SELECT record FROM chapters WHERE book = ? AND chapter = ?`,
		book, chapter).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", book, chapter, ErrChapterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}

	var c model.Chapter
	if err := json.Unmarshal([]byte(record), &c); err != nil {
		return nil, fmt.Errorf("parsing archived chapter: %w", err)
	}
	return &c, nil
}

// Fingerprint returns the stored fingerprint for a chapter reference, so
// callers can skip re-archiving unchanged extractions.
func (a *Archive) Fingerprint(book string, chapter int) (string, error) {
	var fingerprint string
	err := a.db.QueryRow(
		`SELECT fingerprint FROM chapters WHERE book = ? AND chapter = ?`,
		book, chapter).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s %d: %w", book, chapter, ErrChapterNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("querying archive: %w", err)
	}
	return fingerprint, nil
}

// ArchivedChapter summarizes one archived row.
type ArchivedChapter struct {
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Fingerprint string `json:"fingerprint"`
	ArchivedAt  string `json:"archived_at"`
}

// List returns all archived chapters in book, chapter order.
func (a *Archive) List() ([]ArchivedChapter, error) {
	rows, err := a.db.Query(
		`SELECT book, chapter, fingerprint, archived_at FROM chapters ORDER BY book, chapter`)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	defer rows.Close()

	var out []ArchivedChapter
	for rows.Next() {
		var ac ArchivedChapter
		if err := rows.Scan(&ac.Book, &ac.Chapter, &ac.Fingerprint, &ac.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}
