package emitter

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/plan"
)

// JSON renders the plan as a JSON document for
// tools that don't speak Nix.
type JSON struct{}

type jsonPlan struct {
	Lockfile string        `json:"lockfile,omitempty"`
	Packages []jsonPackage `json:"packages"`
	Bins     []jsonBin     `json:"bins"`
}

type jsonPackage struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Path        string   `json:"path"`
	InstallPath []string `json:"installPath"`
	Type        string   `json:"type"`
	URL         string   `json:"url"`
	Revision    string   `json:"rev,omitempty"`
	Hash        string   `json:"hash"`
}

type jsonBin struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

func (*JSON) Emit(w io.Writer, p *plan.Plan) error {
	out := jsonPlan{
		Lockfile: p.Lockfile,
		Packages: make([]jsonPackage, len(p.Packages)),
		Bins:     make([]jsonBin, len(p.Bins)),
	}
	for i, pkg := range p.Packages {
		jp := jsonPackage{
			Key:         pkg.Key,
			Path:        pkg.ModulePath(),
			InstallPath: pkg.InstallPath,
		}
		switch d := pkg.Descriptor.(type) {
		case *fetcher.RegistryFetch:
			jp.Type = "registry"
			jp.Name = d.Name
			jp.Version = d.Version
			jp.URL = d.URL
			jp.Hash = d.Hash
		case *fetcher.VCSFetch:
			jp.Type = "git"
			jp.Name = d.Name
			jp.URL = d.URL
			jp.Revision = d.Revision
			jp.Hash = d.Hash
		default:
			return unknownDescriptor(pkg)
		}
		out.Packages[i] = jp
	}
	for i, bin := range p.Bins {
		out.Bins[i] = jsonBin{
			Name:   bin.Name,
			Target: bin.Target(),
		}
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return flush(w, buf)
}
