package emitter

import (
	"bytes"
	"io"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/plan"
)

// Bazel renders the plan as a MODULE.bazel fragment that
// declares a repository per package.
type Bazel struct{}

// bazelUnwrap moves the contents of the single top-level
// directory of a tarball into the repository root. Most npm
// tarballs use "package", but not all of them.
const bazelUnwrap = `set -e; top="$(ls -d */)"; mv "$top" .bunix-unwrap; cp -R .bunix-unwrap/. .; rm -rf .bunix-unwrap`

const bazelPackageBuild = `filegroup(
    name = "pkg",
    srcs = glob(["**"]),
    visibility = ["//visibility:public"],
)
`

func (*Bazel) Emit(w io.Writer, p *plan.Plan) error {
	f := &build.File{
		Path: "MODULE.bazel",
		Type: build.TypeModule,
	}
	if p.Lockfile != "" {
		f.Comments.Before = append(f.Comments.Before, build.Comment{Token: "# generated by bunix from bun.lock (sha256:" + p.Lockfile + ")"})
	}
	f.Stmt = append(f.Stmt,
		useRepoRule("http_archive", "@bazel_tools//tools/build_defs/repo:http.bzl"),
		useRepoRule("git_repository", "@bazel_tools//tools/build_defs/repo:git.bzl"),
		assign("NODE_PACKAGE_BUILD", &build.StringExpr{Value: bazelPackageBuild, TripleQuote: true}),
		assign("NODE_PACKAGE_UNWRAP", &build.ListExpr{List: []build.Expr{str(bazelUnwrap)}}),
	)

	modules := &build.DictExpr{ForceMultiLine: true}
	for _, pkg := range p.Packages {
		name := repoName(pkg.InstallPath)
		call, err := bazelRepository(name, pkg)
		if err != nil {
			return err
		}
		f.Stmt = append(f.Stmt, call)
		modules.List = append(modules.List, &build.KeyValueExpr{
			Key:   str(pkg.ModulePath()),
			Value: str("@" + name + "//:pkg"),
		})
	}
	f.Stmt = append(f.Stmt, assign("NODE_MODULES", modules))

	bins := &build.DictExpr{ForceMultiLine: true}
	for _, bin := range p.Bins {
		bins.List = append(bins.List, &build.KeyValueExpr{
			Key:   str(bin.Name),
			Value: str(bin.Target()),
		})
	}
	f.Stmt = append(f.Stmt, assign("NODE_MODULES_BINS", bins))

	return flush(w, bytes.NewBuffer(build.Format(f)))
}

func bazelRepository(name string, pkg plan.Package) (*build.CallExpr, error) {
	switch d := pkg.Descriptor.(type) {
	case *fetcher.RegistryFetch:
		return call("http_archive",
			kwarg("name", str(name)),
			kwarg("urls", &build.ListExpr{List: []build.Expr{str(d.URL)}}),
			kwarg("integrity", str(d.Hash)),
			kwarg("patch_cmds", &build.Ident{Name: "NODE_PACKAGE_UNWRAP"}),
			kwarg("build_file_content", &build.Ident{Name: "NODE_PACKAGE_BUILD"}),
		), nil
	case *fetcher.VCSFetch:
		c := call("git_repository",
			kwarg("name", str(name)),
			kwarg("remote", str(d.URL)),
			kwarg("commit", str(d.Revision)),
			kwarg("build_file_content", &build.Ident{Name: "NODE_PACKAGE_BUILD"}),
		)
		// git_repository can't verify content, so
		// keep the hash for reference
		c.Comments.Before = append(c.Comments.Before, build.Comment{Token: "# nar hash: " + d.Hash})
		return c, nil
	default:
		return nil, unknownDescriptor(pkg)
	}
}

// repoName converts an install path into a valid
// Bazel repository name.
func repoName(installPath []string) string {
	parts := make([]string, len(installPath))
	for i, p := range installPath {
		parts[i] = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
				return r
			default:
				return '_'
			}
		}, p)
	}
	return "npm__" + strings.Join(parts, "__")
}

func useRepoRule(name, bzl string) build.Expr {
	return assign(name, call("use_repo_rule", str(bzl), str(name)))
}

func call(fn string, args ...build.Expr) *build.CallExpr {
	return &build.CallExpr{
		X:              &build.Ident{Name: fn},
		List:           args,
		ForceMultiLine: fn != "use_repo_rule",
	}
}

func kwarg(name string, value build.Expr) build.Expr {
	return assign(name, value)
}

func assign(name string, value build.Expr) *build.AssignExpr {
	return &build.AssignExpr{
		LHS: &build.Ident{Name: name},
		Op:  "=",
		RHS: value,
	}
}

func str(s string) *build.StringExpr {
	return &build.StringExpr{Value: s}
}
