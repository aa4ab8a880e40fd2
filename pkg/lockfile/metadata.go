package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
)

func (b *BinSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &b.Path)
	case '{':
		return json.Unmarshal(data, &b.Named)
	default:
		return fmt.Errorf("unexpected bin declaration: %s", data)
	}
}

func (b BinSpec) MarshalJSON() ([]byte, error) {
	if b.Path != "" {
		return json.Marshal(b.Path)
	}
	return json.Marshal(b.Named)
}

// Empty returns true if no executables are declared.
func (b BinSpec) Empty() bool {
	return b.Path == "" && len(b.Named) == 0
}

// Links returns the declared executables as a map of binary
// name to path relative to the package root. A single path
// declaration is named after the unscoped package name.
func (b BinSpec) Links(pkgName string) map[string]string {
	if b.Path != "" {
		return map[string]string{path.Base(pkgName): b.Path}
	}
	return b.Named
}

func decodeMetadata(raw json.RawMessage) (*Metadata, error) {
	raw = bytes.TrimSpace(raw)
	// anything that isn't an object carries no
	// metadata that we understand
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return &md, nil
}
