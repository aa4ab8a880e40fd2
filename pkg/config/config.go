package config

import (
	"errors"
	"fmt"
	"os"

	v1 "github.com/djcass44/bunix/pkg/api/v1"
	"github.com/djcass44/bunix/pkg/envutil"
	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/hasher"
	"github.com/djcass44/bunix/pkg/origin"
	"k8s.io/apimachinery/pkg/util/yaml"
)

const (
	APIVersion = "bunix.dcas.dev/v1"
	Kind       = "Config"
)

// ErrHasherFormat is returned when the hasher produces hashes
// that the output format cannot use.
var ErrHasherFormat = errors.New("pkgs.fetchgit only accepts NAR hashes, use the nix hasher or another format")

// Default returns the configuration used when
// no file is provided.
func Default() v1.Config {
	cfg := v1.Config{}
	cfg.APIVersion = APIVersion
	cfg.Kind = Kind
	cfg.Spec = v1.ConfigSpec{
		Registry: origin.DefaultRegistry,
		Marker:   fetcher.DefaultMarker,
		Hasher:   v1.HasherNix,
		NixHash:  hasher.DefaultNixHash,
		Format:   v1.FormatNix,
	}
	return cfg
}

// Read loads the configuration file at path and fills in any
// values that it leaves out. An empty path returns the defaults.
func Read(path string) (v1.Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return v1.Config{}, err
	}
	defer f.Close()

	var cfg v1.Config
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&cfg); err != nil {
		return v1.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Kind != "" && cfg.Kind != Kind {
		return v1.Config{}, fmt.Errorf("unexpected kind: %s", cfg.Kind)
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg v1.Config) v1.Config {
	def := Default().Spec
	if cfg.Spec.Registry == "" {
		cfg.Spec.Registry = def.Registry
	}
	if cfg.Spec.Marker == "" {
		cfg.Spec.Marker = def.Marker
	}
	if cfg.Spec.Hasher == "" {
		cfg.Spec.Hasher = def.Hasher
	}
	if cfg.Spec.NixHash == "" {
		cfg.Spec.NixHash = def.NixHash
	}
	if cfg.Spec.Format == "" {
		cfg.Spec.Format = def.Format
	}
	cfg.Spec.Registry = envutil.ExpandEnv(cfg.Spec.Registry)
	cfg.Spec.NixHash = envutil.ExpandEnv(cfg.Spec.NixHash)
	return cfg
}

// Validate checks that the settings can be used together.
func Validate(spec v1.ConfigSpec) error {
	if spec.Hasher == v1.HasherDir && (spec.Format == v1.FormatNix || spec.Format == "") {
		return fmt.Errorf("%w: hasher %q, format %q", ErrHasherFormat, spec.Hasher, v1.FormatNix)
	}
	return nil
}
