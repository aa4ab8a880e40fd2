package tree

import (
	"context"
	"slices"
	"strings"

	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/go-logr/logr"
)

// Resolve recovers the nesting of every package in the
// lockfile from the structure of its keys.
func Resolve(ctx context.Context, lock *lockfile.Lock) *Tree {
	log := logr.FromContextOrDiscard(ctx)

	keys := lock.SortedKeys()
	t := &Tree{
		nodes: make(map[string]*Package, len(keys)),
		order: keys,
	}
	for _, k := range keys {
		parent, ok := ParentOf(k, lock.Packages)
		p := &Package{
			Entry:    lock.Packages[k],
			BaseName: k,
		}
		p.Key = k
		if ok {
			p.ParentKey = parent
			p.BaseName = k[len(parent)+len(Separator):]
		}
		t.nodes[k] = p
	}

	// walk the parent chain of every package. Each step
	// strictly shortens the key, so the walk always ends
	// at a top-level package.
	for _, k := range keys {
		p := t.nodes[k]
		var names []string
		for current := p; current != nil; {
			names = append(names, current.BaseName)
			if current.ParentKey == "" {
				break
			}
			current = t.nodes[current.ParentKey]
		}
		slices.Reverse(names)
		p.InstallPath = names
		log.V(5).Info("resolved package", "key", k, "parent", p.ParentKey, "path", p.ModulePath())
	}
	log.V(1).Info("resolved dependency tree", "count", len(keys))
	return t
}

// ParentOf returns the longest key in the set that is an
// ancestor of k. Candidates are tried from the last separator
// backwards so that the first match is the direct parent.
func ParentOf[V any](k string, keys map[string]V) (string, bool) {
	for i := strings.LastIndex(k, Separator); i > 0; i = strings.LastIndex(k[:i], Separator) {
		candidate := k[:i]
		if _, ok := keys[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}
