package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the BLAKE3 hash of the chapter's canonical JSON
// encoding as a hex string. Two extractions of identical markup produce
// identical fingerprints, so storage layers can use it for change
// detection and deduplication.
func (c *Chapter) Fingerprint() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding chapter for fingerprint: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// FingerprintBytes returns the BLAKE3 hash of arbitrary content as a hex
// string. Used by the snapshot store to address raw markup.
func FingerprintBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
