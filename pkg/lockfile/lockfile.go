package lockfile

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks that every package that was explicitly
// requested ended up in the lockfile. Requests are either
// "name[@range]" or a bare locator such as
// "github:owner/repo#rev".
func (l *Lock) Validate(specs []string) error {
	requested := l.Workspaces[RootWorkspace].Requested()
	for _, s := range specs {
		if !l.installed(s, requested) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, s)
		}
	}
	return nil
}

func (l *Lock) installed(spec string, requested map[string]string) bool {
	name := PackageName(spec)
	if _, ok := requested[name]; ok {
		return true
	}
	if _, ok := l.Packages[name]; ok {
		return true
	}
	// locators have no name until bun resolves them,
	// so look for them amongst the recorded specifiers
	for _, v := range requested {
		if sameLocator(v, spec) {
			return true
		}
	}
	for k, e := range l.Packages {
		if !topLevel(k) {
			continue
		}
		if _, locator := SplitSpec(e.OriginSpec); sameLocator(locator, spec) {
			return true
		}
	}
	return false
}

func topLevel(key string) bool {
	n := strings.Count(key, "/")
	if strings.HasPrefix(key, "@") {
		return n == 1
	}
	return n == 0
}

// sameLocator returns true if the recorded locator matches the
// requested one. A request without a revision matches any
// recorded revision.
func sameLocator(recorded, requested string) bool {
	if recorded == "" {
		return false
	}
	if recorded == requested {
		return true
	}
	if strings.Contains(requested, "#") {
		return false
	}
	base, _, _ := strings.Cut(recorded, "#")
	return base == requested
}

// SortedKeys returns package keys
// sorted alphabetically.
func (l *Lock) SortedKeys() []string {
	pkgKeys := make([]string, 0, len(l.Packages))
	for k := range l.Packages {
		pkgKeys = append(pkgKeys, k)
	}
	sort.Strings(pkgKeys)
	return pkgKeys
}

// PackageName strips the version or locator from a
// "name@something" specifier. Scoped names keep their
// leading '@'.
func PackageName(spec string) string {
	name, _ := SplitSpec(spec)
	return name
}

// SplitSpec splits a "name@something" specifier into
// its name and the remainder.
func SplitSpec(spec string) (string, string) {
	start := 0
	if strings.HasPrefix(spec, "@") {
		start = 1
	}
	i := strings.Index(spec[start:], "@")
	if i < 0 {
		return spec, ""
	}
	i += start
	return spec[:i], spec[i+1:]
}
