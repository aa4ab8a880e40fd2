package plan

import (
	"testing"

	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/djcass44/bunix/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	pkgs := []*tree.Package{
		{
			Entry: lockfile.Entry{
				Key:        "left-pad",
				OriginSpec: "left-pad@1.3.0",
				Metadata:   &lockfile.Metadata{},
			},
			BaseName:    "left-pad",
			InstallPath: []string{"left-pad"},
		},
		{
			Entry: lockfile.Entry{
				Key:        "left-pad/is-string",
				OriginSpec: "is-string@1.0.7",
				Metadata: &lockfile.Metadata{Bin: lockfile.BinSpec{Named: map[string]string{
					"is-string": "./cli.js",
					"is-str":    "bin/short.js",
				}}},
			},
			BaseName:    "is-string",
			ParentKey:   "left-pad",
			InstallPath: []string{"left-pad", "is-string"},
		},
		{
			Entry: lockfile.Entry{
				Key:        "@scope/tool",
				OriginSpec: "@scope/tool@2.0.0",
				Metadata:   &lockfile.Metadata{Bin: lockfile.BinSpec{Path: "bin/tool.js"}},
			},
			BaseName:    "@scope/tool",
			InstallPath: []string{"@scope/tool"},
		},
	}
	descriptors := []fetcher.Descriptor{
		&fetcher.RegistryFetch{URL: "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz", Hash: "sha-AAA"},
		&fetcher.RegistryFetch{URL: "https://registry.npmjs.org/is-string/-/is-string-1.0.7.tgz", Hash: "sha-BBB"},
		&fetcher.VCSFetch{URL: "https://github.com/scope/tool", Revision: "abc", Hash: "sha-CCC"},
	}

	t.Run("packages and bins", func(t *testing.T) {
		p, err := Build("digest", pkgs, descriptors)
		require.NoError(t, err)
		assert.EqualValues(t, "digest", p.Lockfile)
		require.Len(t, p.Packages, 3)

		assert.EqualValues(t, "left-pad", p.Packages[0].ModulePath())
		assert.EqualValues(t, []string{"left-pad", "is-string"}, p.Packages[1].InstallPath)
		assert.EqualValues(t, "left-pad/node_modules/is-string", p.Packages[1].ModulePath())
		assert.IsType(t, &fetcher.RegistryFetch{}, p.Packages[1].Descriptor)

		assert.EqualValues(t, []BinLink{
			{Name: "is-str", InstallPath: []string{"left-pad", "is-string"}, Path: "bin/short.js"},
			{Name: "is-string", InstallPath: []string{"left-pad", "is-string"}, Path: "cli.js"},
			{Name: "tool", InstallPath: []string{"@scope/tool"}, Path: "bin/tool.js"},
		}, p.Bins)
		assert.EqualValues(t, "left-pad/node_modules/is-string/cli.js", p.Bins[1].Target())
	})
	t.Run("unresolved hash", func(t *testing.T) {
		_, err := Build("", pkgs[:1], []fetcher.Descriptor{&fetcher.VCSFetch{URL: "https://github.com/owner/repo", Revision: "abc"}})
		assert.ErrorIs(t, err, ErrUnresolvedHash)
	})
	t.Run("missing descriptor", func(t *testing.T) {
		_, err := Build("", pkgs[:1], []fetcher.Descriptor{nil})
		assert.ErrorIs(t, err, ErrUnresolvedHash)
	})
	t.Run("mismatched input", func(t *testing.T) {
		_, err := Build("", pkgs, descriptors[:1])
		assert.Error(t, err)
	})
}

func TestBuild_DuplicateBins(t *testing.T) {
	bin := func(key string, installPath []string) *tree.Package {
		return &tree.Package{
			Entry: lockfile.Entry{
				Key:        key,
				OriginSpec: "semver@7.0.0",
				Metadata:   &lockfile.Metadata{Bin: lockfile.BinSpec{Named: map[string]string{"semver": "bin/semver.js"}}},
			},
			BaseName:    installPath[len(installPath)-1],
			InstallPath: installPath,
		}
	}
	descriptor := func() fetcher.Descriptor {
		return &fetcher.RegistryFetch{URL: "https://registry.npmjs.org/semver/-/semver-7.0.0.tgz", Hash: "sha-AAA"}
	}

	var cases = []struct {
		name  string
		pkgs  []*tree.Package
		owner []string
	}{
		{
			"top-level wins over nested",
			[]*tree.Package{
				bin("a/semver", []string{"a", "semver"}),
				bin("semver", []string{"semver"}),
			},
			[]string{"semver"},
		},
		{
			"first nested copy wins",
			[]*tree.Package{
				bin("a/semver", []string{"a", "semver"}),
				bin("b/semver", []string{"b", "semver"}),
			},
			[]string{"a", "semver"},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			descriptors := make([]fetcher.Descriptor, len(tt.pkgs))
			for i := range descriptors {
				descriptors[i] = descriptor()
			}
			p, err := Build("", tt.pkgs, descriptors)
			require.NoError(t, err)
			require.Len(t, p.Bins, 1)
			assert.EqualValues(t, "semver", p.Bins[0].Name)
			assert.EqualValues(t, tt.owner, p.Bins[0].InstallPath)
		})
	}
}
