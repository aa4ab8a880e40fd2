package plan

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/tree"
)

var ErrUnresolvedHash = errors.New("descriptor has no content hash")

// Build combines packages with their descriptors. Packages
// keep the order that they are given in.
func Build(lockDigest string, pkgs []*tree.Package, descriptors []fetcher.Descriptor) (*Plan, error) {
	if len(pkgs) != len(descriptors) {
		return nil, fmt.Errorf("got %d descriptors for %d packages", len(descriptors), len(pkgs))
	}
	p := &Plan{
		Lockfile: lockDigest,
		Packages: make([]Package, len(pkgs)),
	}
	owners := binOwners(pkgs)
	for i, pkg := range pkgs {
		d := descriptors[i]
		if d == nil || d.ContentHash() == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedHash, pkg.Key)
		}
		p.Packages[i] = Package{
			Key:         pkg.Key,
			InstallPath: pkg.InstallPath,
			Descriptor:  d,
		}
		for _, link := range binLinks(pkg) {
			if owners[link.Name] == pkg {
				p.Bins = append(p.Bins, link)
			}
		}
	}
	return p, nil
}

// binOwners picks the package that provides each executable
// name. The shallowest package wins, then the first in order,
// so a nested copy never shadows the top-level one.
func binOwners(pkgs []*tree.Package) map[string]*tree.Package {
	owners := map[string]*tree.Package{}
	for _, pkg := range pkgs {
		if pkg.Metadata == nil {
			continue
		}
		for name := range pkg.Metadata.Bin.Links(pkg.Name()) {
			if cur, ok := owners[name]; ok && cur.Depth() <= pkg.Depth() {
				continue
			}
			owners[name] = pkg
		}
	}
	return owners
}

// binLinks returns one link per declared executable,
// ordered by name.
func binLinks(pkg *tree.Package) []BinLink {
	if pkg.Metadata == nil || pkg.Metadata.Bin.Empty() {
		return nil
	}
	links := pkg.Metadata.Bin.Links(pkg.Name())
	names := make([]string, 0, len(links))
	for k := range links {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]BinLink, len(names))
	for i, name := range names {
		out[i] = BinLink{
			Name:        name,
			InstallPath: pkg.InstallPath,
			Path:        path.Clean(links[name]),
		}
	}
	return out
}
