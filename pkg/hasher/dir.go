package hasher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/mod/sumdb/dirhash"
)

// Dir hashes directories without any external tools. File
// names are hashed relative to the directory, so the result
// only depends on its contents. It is not a NAR hash, so Nix
// will not accept it for fetchgit.
type Dir struct{}

func (*Dir) Hash(ctx context.Context, dir string) (string, error) {
	dir = filepath.Clean(dir)
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir)
	log.V(2).Info("hashing directory")

	digest, err := dirhash.HashDir(dir, "", dirhash.Hash1)
	if err != nil {
		log.Error(err, "failed to generate directory digest")
		return "", err
	}
	sum, ok := strings.CutPrefix(digest, "h1:")
	if !ok {
		return "", fmt.Errorf("unexpected digest: %s", digest)
	}
	return "sha256-" + sum, nil
}
