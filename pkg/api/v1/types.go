package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type OutputFormat string

const (
	FormatNix   OutputFormat = "nix"
	FormatBazel OutputFormat = "bazel"
	FormatJSON  OutputFormat = "json"
)

type HasherType string

const (
	HasherNix HasherType = "nix"
	HasherDir HasherType = "dir"
)

type ConfigSpec struct {
	// Registry is the base URL that registry
	// tarballs are downloaded from.
	Registry string `json:"registry,omitempty"`
	// Marker is the name of the provenance file that
	// bun writes into git checkouts.
	Marker      string            `json:"marker,omitempty"`
	Hasher      HasherType        `json:"hasher,omitempty"`
	NixHash     string            `json:"nixHash,omitempty"`
	Format      OutputFormat      `json:"format,omitempty"`
	Forges      map[string]string `json:"forges,omitempty"`
	Concurrency int               `json:"concurrency,omitempty"`
}

type Config struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ConfigSpec `json:"spec"`
}
