package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/djcass44/bunix/pkg/hasher"
	"github.com/djcass44/bunix/pkg/origin"
	"github.com/djcass44/bunix/pkg/tree"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

type Generator struct {
	root        string
	hasher      hasher.Hasher
	marker      string
	concurrency int
}

type Option func(g *Generator)

func WithMarker(s string) Option {
	return func(g *Generator) {
		if s != "" {
			g.marker = s
		}
	}
}

func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// NewGenerator creates a Generator for the node_modules
// directory at root.
func NewGenerator(root string, h hasher.Hasher, opts ...Option) *Generator {
	g := &Generator{
		root:        root,
		hasher:      h,
		marker:      DefaultMarker,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a descriptor for every package. The result
// is in the same order as pkgs.
//
// Git checkouts that share a top-level package share a directory
// tree, so they are hashed one at a time. Unrelated trees are
// hashed in parallel.
func (g *Generator) Generate(ctx context.Context, pkgs []*tree.Package, origins []origin.Origin) ([]Descriptor, error) {
	log := logr.FromContextOrDiscard(ctx)
	if len(pkgs) != len(origins) {
		return nil, fmt.Errorf("got %d origins for %d packages", len(origins), len(pkgs))
	}

	out := make([]Descriptor, len(pkgs))
	subtrees := map[string][]int{}
	var roots []string
	for i, o := range origins {
		switch o := o.(type) {
		case *origin.Registry:
			out[i] = &RegistryFetch{
				Name:    o.Name,
				Version: o.Version,
				URL:     o.URL,
				Hash:    o.Integrity,
			}
		case *origin.VCS:
			root := pkgs[i].Root()
			if _, ok := subtrees[root]; !ok {
				roots = append(roots, root)
			}
			subtrees[root] = append(subtrees[root], i)
		default:
			return nil, fmt.Errorf("unknown origin type: %T", o)
		}
	}
	log.V(1).Info("deriving checkout hashes", "subtrees", len(roots), "concurrency", g.concurrency)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.concurrency)
	for _, root := range roots {
		root := root
		grp.Go(func() error {
			for _, i := range subtrees[root] {
				if err := ctx.Err(); err != nil {
					return err
				}
				d, err := g.vcs(ctx, pkgs[i], origins[i].(*origin.VCS))
				if err != nil {
					return err
				}
				out[i] = d
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generator) vcs(ctx context.Context, pkg *tree.Package, o *origin.VCS) (*VCSFetch, error) {
	dir := filepath.Join(g.root, filepath.FromSlash(pkg.ModulePath()))
	log := logr.FromContextOrDiscard(ctx).WithValues("key", pkg.Key, "dir", dir)

	info, err := os.Stat(dir)
	if err != nil {
		log.Error(err, "failed to locate checkout")
		return nil, &HashDerivationError{Key: pkg.Key, Dir: dir, Err: fmt.Errorf("%w: %w", ErrCheckoutMissing, err)}
	}
	if !info.IsDir() {
		return nil, &HashDerivationError{Key: pkg.Key, Dir: dir, Err: fmt.Errorf("%w: not a directory", ErrCheckoutMissing)}
	}

	var hash string
	err = WithoutMarker(ctx, dir, g.marker, func() error {
		var herr error
		hash, herr = g.hasher.Hash(ctx, dir)
		return herr
	})
	if err != nil {
		return nil, &HashDerivationError{Key: pkg.Key, Dir: dir, Err: err}
	}
	if hash == "" {
		return nil, &HashDerivationError{Key: pkg.Key, Dir: dir, Err: ErrEmptyHash}
	}
	log.V(1).Info("derived checkout hash", "hash", hash)
	return &VCSFetch{
		Name:     o.Name,
		URL:      o.Repository,
		Revision: o.Revision,
		Hash:     hash,
	}, nil
}
