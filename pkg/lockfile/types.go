package lockfile

import "encoding/json"

// Filename is the name of the text lockfile that bun
// writes next to package.json.
const Filename = "bun.lock"

type Lock struct {
	LockfileVersion int                  `json:"lockfileVersion"`
	Workspaces      map[string]Workspace `json:"workspaces,omitempty"`
	Packages        map[string]Entry     `json:"packages"`
	// Digest is the sha256 of the raw lockfile text.
	Digest string `json:"-"`
}

// RootWorkspace is the key of the workspace that
// holds the project's own package.json.
const RootWorkspace = ""

// Workspace is the dependency declaration of a single
// package.json, as recorded by bun.
type Workspace struct {
	Name                 string            `json:"name,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
}

// Requested merges every kind of dependency into a
// single map of name to requested specifier.
func (w Workspace) Requested() map[string]string {
	out := map[string]string{}
	for _, deps := range []map[string]string{w.PeerDependencies, w.OptionalDependencies, w.DevDependencies, w.Dependencies} {
		for k, v := range deps {
			out[k] = v
		}
	}
	return out
}

// Entry is a single package occurrence. Bun stores each one
// as a positional array of (originSpec, _, metadata, knownHash).
type Entry struct {
	Key        string
	OriginSpec string
	// Extra is the second tuple position. It is kept
	// verbatim and never interpreted.
	Extra     json.RawMessage
	Metadata  *Metadata
	KnownHash string
}

// HasHash returns true if the lockfile supplied an integrity
// hash for this entry.
func (e Entry) HasHash() bool {
	return e.KnownHash != ""
}

type Metadata struct {
	Bin BinSpec `json:"bin,omitempty"`
}

// BinSpec describes the executables that a package declares.
// It is either a single path, or a map of binary names to paths.
type BinSpec struct {
	Path  string
	Named map[string]string
}
