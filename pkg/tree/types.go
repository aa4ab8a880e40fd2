package tree

import (
	"strings"

	"github.com/djcass44/bunix/pkg/lockfile"
)

// Separator joins a parent key to the name of the
// package nested beneath it.
const Separator = "/"

// Package is a lockfile entry with its position in the
// installed node_modules tree.
type Package struct {
	lockfile.Entry

	BaseName string
	// ParentKey is empty for packages installed at
	// the top level.
	ParentKey   string
	InstallPath []string
}

// ModulePath returns the directory of the package relative
// to the top-level node_modules directory.
func (p *Package) ModulePath() string {
	return ModulePath(p.InstallPath)
}

// Depth returns the nesting depth of the package. Top-level
// packages have a depth of 1.
func (p *Package) Depth() int {
	return len(p.InstallPath)
}

// Root returns the name of the top-level package that this
// package is installed beneath.
func (p *Package) Root() string {
	return p.InstallPath[0]
}

// Name returns the name of the package as published, which
// differs from BaseName when the package is aliased.
func (p *Package) Name() string {
	if name := lockfile.PackageName(p.OriginSpec); name != "" {
		return name
	}
	return p.BaseName
}

// ModulePath joins an install path into a directory
// relative to the top-level node_modules directory.
func ModulePath(installPath []string) string {
	return strings.Join(installPath, "/node_modules/")
}

// Tree is an arena of packages indexed by key.
type Tree struct {
	nodes map[string]*Package
	order []string
}

// Get returns the package with the given key.
func (t *Tree) Get(key string) (*Package, bool) {
	p, ok := t.nodes[key]
	return p, ok
}

// Packages returns every package in traversal order.
func (t *Tree) Packages() []*Package {
	out := make([]*Package, len(t.order))
	for i, k := range t.order {
		out[i] = t.nodes[k]
	}
	return out
}

// Len returns the number of packages in the tree.
func (t *Tree) Len() int {
	return len(t.order)
}
