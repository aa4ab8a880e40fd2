// Package hasher computes reproducible content hashes
// of directories.
package hasher

import (
	"context"
	"fmt"

	v1 "github.com/djcass44/bunix/pkg/api/v1"
)

type Hasher interface {
	// Hash returns the SRI hash of the contents of dir.
	Hash(ctx context.Context, dir string) (string, error)
}

// New returns the Hasher for the given type. The nixHash
// argument is the path to the nix-hash binary and is only
// used by the nix hasher.
func New(kind v1.HasherType, nixHash string) (Hasher, error) {
	switch kind {
	case v1.HasherNix, "":
		return NewNix(nixHash), nil
	case v1.HasherDir:
		return &Dir{}, nil
	default:
		return nil, fmt.Errorf("unknown hasher: %s", kind)
	}
}
