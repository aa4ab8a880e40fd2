package origin

// Origin is where the contents of a package come from.
// It is either a *Registry or a *VCS.
type Origin interface {
	isOrigin()
}

// Registry is a tarball published to an npm registry.
type Registry struct {
	Name      string
	Version   string
	URL       string
	Integrity string
}

// VCS is a git checkout pinned to a revision.
type VCS struct {
	Name       string
	Repository string
	Revision   string
}

func (*Registry) isOrigin() {}
func (*VCS) isOrigin()      {}
