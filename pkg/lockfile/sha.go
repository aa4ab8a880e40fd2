package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256 returns the hex encoded sha256 of the given data.
func Sha256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
