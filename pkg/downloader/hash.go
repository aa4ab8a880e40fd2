package downloader

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns the first 12 hex characters of the
// SHA256 of s. It is only used to name cache entries.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
