// Package storage persists extracted chapters and raw markup snapshots.
//
// Chapters are written as plain JSON records and can additionally be
// exported as a verses CSV or archived into SQLite. Raw markup snapshots
// are xz-compressed and content-addressed by BLAKE3 hash, so re-saving
// identical markup is a no-op and any chapter can be re-extracted later
// from the exact bytes it came from.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/FocuswithJustin/StudyPress/core/model"
)

// SaveChapter writes a chapter as indented JSON, atomically via a temp
// file in the destination directory.
func SaveChapter(c *model.Chapter, path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chapter: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// LoadChapter reads a chapter from a JSON file.
func LoadChapter(path string) (*model.Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chapter: %w", err)
	}
	var c model.Chapter
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing chapter %s: %w", path, err)
	}
	return &c, nil
}

// ExportVersesCSV writes the verse stream as a CSV file with a header row
// (book, chapter, verse, text).
func ExportVersesCSV(c *model.Chapter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"book", "chapter", "verse", "text"}); err != nil {
		f.Close()
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, v := range c.Verses {
		record := []string{c.Book, strconv.Itoa(c.Number), strconv.Itoa(v.Number), v.Text}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing verse %d: %w", v.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	return f.Close()
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".chapter-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
