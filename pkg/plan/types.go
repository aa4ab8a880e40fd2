package plan

import (
	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/tree"
)

// Plan is everything a build needs to assemble
// a node_modules directory.
type Plan struct {
	// Lockfile is the sha256 of the lockfile
	// that the plan was generated from.
	Lockfile string
	Packages []Package
	Bins     []BinLink
}

type Package struct {
	Key         string
	InstallPath []string
	Descriptor  fetcher.Descriptor
}

// BinLink is an executable that is linked into
// the shared .bin directory. Names are unique
// within a plan.
type BinLink struct {
	Name        string
	InstallPath []string
	// Path is relative to the package directory.
	Path string
}

// ModulePath returns the directory of the package relative
// to the top-level node_modules directory.
func (p Package) ModulePath() string {
	return tree.ModulePath(p.InstallPath)
}

// Target returns the path of the executable relative to
// the top-level node_modules directory.
func (b BinLink) Target() string {
	return tree.ModulePath(b.InstallPath) + "/" + b.Path
}
