package emitter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/plan"
)

// Nix renders the plan as a Nix expression that builds
// a node_modules derivation.
type Nix struct{}

const nixHeader = `{ pkgs ? import <nixpkgs> {}, ... }:
let
  lib = pkgs.lib;
  extractTarball =
    src:
    pkgs.runCommand "extracted-${src.name}" { } ''
      mkdir "$out"
      ${pkgs.libarchive}/bin/bsdtar -xf ${src} --strip-components 1 -C "$out"
    '';
  packages = {
`

const nixAssembly = `  };
  packageCommands = lib.pipe packages [
    (lib.mapAttrsToList (
      name: package: ''
        mkdir -p "$out/lib/node_modules/${name}"
        cp -Lr ${package}/. "$out/lib/node_modules/${name}"
        chmod -R u+w "$out/lib/node_modules/${name}"
      ''
    ))
    (lib.concatStringsSep "\n")
  ];
in
  (pkgs.runCommand "node_modules" {
    buildInputs = [ pkgs.nodejs ];
  } ''
    ${packageCommands}
    mkdir -p "$out/lib/node_modules/.bin"
`

const nixFooter = `    ln -s "$out/lib/node_modules/.bin" "$out/bin"
  '')
`

func (*Nix) Emit(w io.Writer, p *plan.Plan) error {
	buf := &bytes.Buffer{}
	if p.Lockfile != "" {
		fmt.Fprintf(buf, "# generated by bunix from bun.lock (sha256:%s)\n", p.Lockfile)
	}
	buf.WriteString(nixHeader)
	for _, pkg := range p.Packages {
		lines, err := nixFetch(pkg)
		if err != nil {
			return err
		}
		for _, l := range lines {
			buf.WriteString("    " + l + "\n")
		}
	}
	buf.WriteString(nixAssembly)
	for _, bin := range p.Bins {
		target := `"$out/lib/node_modules/` + shellPath(bin.Target()) + `"`
		fmt.Fprintf(buf, "    patchShebangs --host %s\n", target)
		fmt.Fprintf(buf, "    ln -s %s \"$out/lib/node_modules/.bin/%s\"\n", target, shellPath(bin.Name))
	}
	buf.WriteString(nixFooter)
	return flush(w, buf)
}

func nixFetch(pkg plan.Package) ([]string, error) {
	name := nixString(pkg.ModulePath())
	switch d := pkg.Descriptor.(type) {
	case *fetcher.RegistryFetch:
		return []string{
			name + " = extractTarball (",
			"  pkgs.fetchurl {",
			"    url = " + nixString(d.URL) + ";",
			"    hash = " + nixString(d.Hash) + ";",
			"  }",
			");",
		}, nil
	case *fetcher.VCSFetch:
		return []string{
			name + " = pkgs.fetchgit {",
			"  url = " + nixString(d.URL) + ";",
			"  rev = " + nixString(d.Revision) + ";",
			"  hash = " + nixString(d.Hash) + ";",
			"};",
		}, nil
	default:
		return nil, unknownDescriptor(pkg)
	}
}
