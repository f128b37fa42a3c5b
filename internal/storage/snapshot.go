package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/StudyPress/core/model"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a hash.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidHash is returned when a hash string is not a valid BLAKE3 hex
// string.
var ErrInvalidHash = errors.New("invalid hash format")

// hashPattern matches a valid lowercase BLAKE3 hex string (64 characters).
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// SnapshotStore keeps raw chapter markup, xz-compressed and addressed by
// BLAKE3 hash. Identical markup stores once; the returned hash ties a
// chapter record back to the exact bytes it was extracted from.
type SnapshotStore struct {
	root string
}

// NewSnapshotStore creates a snapshot store rooted at the given directory,
// creating it if needed.
func NewSnapshotStore(root string) (*SnapshotStore, error) {
	dir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &SnapshotStore{root: root}, nil
}

// Save stores raw markup and returns its BLAKE3 hash. Saving bytes that
// are already stored is a no-op.
func (s *SnapshotStore) Save(markup []byte) (string, error) {
	hash := model.FingerprintBytes(markup)

	path := s.pathForHash(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating prefix directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("creating xz writer: %w", err)
	}
	if _, err := w.Write(markup); err != nil {
		return "", fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finishing xz stream: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming snapshot: %w", err)
	}

	return hash, nil
}

// Load retrieves and decompresses the markup for a hash. Returns
// ErrSnapshotNotFound when no snapshot exists.
func (s *SnapshotStore) Load(hash string) ([]byte, error) {
	if !hashPattern.MatchString(hash) {
		return nil, ErrInvalidHash
	}

	f, err := os.Open(s.pathForHash(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading xz stream: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}

	// Verify content integrity against the address.
	if model.FingerprintBytes(data) != hash {
		return nil, fmt.Errorf("snapshot %s: content does not match hash", hash)
	}
	return data, nil
}

// Exists reports whether a snapshot is stored for the hash.
func (s *SnapshotStore) Exists(hash string) bool {
	if !hashPattern.MatchString(hash) {
		return false
	}
	_, err := os.Stat(s.pathForHash(hash))
	return err == nil
}

// pathForHash returns the file path for a snapshot:
// <root>/snapshots/<first2>/<hash>.xz
func (s *SnapshotStore) pathForHash(hash string) string {
	return filepath.Join(s.root, "snapshots", hash[:2], hash+".xz")
}
