package lockfile

import (
	"bytes"

	"github.com/tailscale/hujson"
)

// Normalize converts bun's JSONC output (trailing commas and
// comments) into standard JSON. The input is left untouched.
func Normalize(data []byte) ([]byte, error) {
	return hujson.Standardize(bytes.Clone(data))
}
