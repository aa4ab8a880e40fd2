package fetcher

// Descriptor tells a build how to fetch and verify the contents
// of a single package. It is either a *RegistryFetch or a *VCSFetch.
type Descriptor interface {
	ContentHash() string
	isDescriptor()
}

// RegistryFetch downloads a registry tarball.
type RegistryFetch struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
	Hash    string `json:"hash"`
}

// VCSFetch clones a repository at a pinned revision. Hash is
// derived from the materialized checkout.
type VCSFetch struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Revision string `json:"rev"`
	Hash     string `json:"hash"`
}

func (r *RegistryFetch) ContentHash() string {
	return r.Hash
}

func (v *VCSFetch) ContentHash() string {
	return v.Hash
}

func (*RegistryFetch) isDescriptor() {}
func (*VCSFetch) isDescriptor()      {}
