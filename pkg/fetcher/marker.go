package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

// DefaultMarker is the file that bun writes into git
// checkouts to record where they came from.
const DefaultMarker = ".bun-tag"

// WithoutMarker removes the marker file from dir, runs fn and
// then puts the marker back with its original content. The
// marker is restored on every return path, including panics.
func WithoutMarker(ctx context.Context, dir, marker string, fn func() error) (err error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir, "marker", marker)
	path := filepath.Join(dir, marker)

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.V(1).Info("checkout has no marker file")
			return fn()
		}
		return fmt.Errorf("reading marker: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing marker: %w", err)
	}
	log.V(5).Info("removed marker file")

	defer func() {
		if rerr := os.WriteFile(path, content, info.Mode().Perm()); rerr != nil {
			log.Error(rerr, "failed to restore marker file")
			err = errors.Join(err, fmt.Errorf("restoring marker: %w", rerr))
			return
		}
		log.V(5).Info("restored marker file")
	}()

	return fn()
}
