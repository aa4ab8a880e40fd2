package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/djcass44/bunix/pkg/origin"
	"github.com/djcass44/bunix/pkg/tree"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHasher returns a hash derived from the directory name
// and lets tests observe the directory while it is hashed.
type fakeHasher struct {
	err     error
	observe func(dir string)
}

func (f *fakeHasher) Hash(_ context.Context, dir string) (string, error) {
	if f.observe != nil {
		f.observe(dir)
	}
	if f.err != nil {
		return "", f.err
	}
	return "sha512-" + filepath.Base(dir), nil
}

func newPackage(key string, installPath ...string) *tree.Package {
	return &tree.Package{
		Entry:       lockfile.Entry{Key: key},
		BaseName:    installPath[len(installPath)-1],
		InstallPath: installPath,
	}
}

// checkout creates a fake git checkout with a marker file.
func checkout(t *testing.T, root string, installPath ...string) string {
	dir := filepath.Join(root, tree.ModulePath(installPath))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultMarker), []byte("tag-"+filepath.Base(dir)), 0644))
	return dir
}

func TestGenerator_Generate(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	t.Run("registry packages need no filesystem", func(t *testing.T) {
		g := NewGenerator(filepath.Join(t.TempDir(), "missing"), &fakeHasher{err: errors.New("should not be called")})
		out, err := g.Generate(ctx,
			[]*tree.Package{newPackage("left-pad", "left-pad"), newPackage("left-pad/is-string", "left-pad", "is-string")},
			[]origin.Origin{
				&origin.Registry{Name: "left-pad", Version: "1.3.0", URL: "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz", Integrity: "sha512-AAA"},
				&origin.Registry{URL: "https://registry.npmjs.org/is-string/-/is-string-1.0.7.tgz", Integrity: "sha512-BBB"},
			},
		)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.EqualValues(t, &RegistryFetch{Name: "left-pad", Version: "1.3.0", URL: "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz", Hash: "sha512-AAA"}, out[0])
		assert.EqualValues(t, &RegistryFetch{URL: "https://registry.npmjs.org/is-string/-/is-string-1.0.7.tgz", Hash: "sha512-BBB"}, out[1])
	})
	t.Run("checkout hash excludes the marker", func(t *testing.T) {
		root := t.TempDir()
		dir := checkout(t, root, "is-even")

		h := &fakeHasher{observe: func(d string) {
			assert.EqualValues(t, dir, d)
			assert.NoFileExists(t, filepath.Join(d, DefaultMarker))
		}}
		out, err := NewGenerator(root, h).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			[]origin.Origin{&origin.VCS{Name: "is-even", Repository: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d"}},
		)
		require.NoError(t, err)
		assert.EqualValues(t, &VCSFetch{Name: "is-even", URL: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d", Hash: "sha512-is-even"}, out[0])

		data, err := os.ReadFile(filepath.Join(dir, DefaultMarker))
		require.NoError(t, err)
		assert.EqualValues(t, "tag-is-even", string(data))
	})
	t.Run("marker is restored when hashing fails", func(t *testing.T) {
		root := t.TempDir()
		dir := checkout(t, root, "is-even")

		_, err := NewGenerator(root, &fakeHasher{err: errors.New("nix-hash exited with status 1")}).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			[]origin.Origin{&origin.VCS{Repository: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d"}},
		)
		var herr *HashDerivationError
		require.ErrorAs(t, err, &herr)
		assert.EqualValues(t, "is-even", herr.Key)
		assert.EqualValues(t, dir, herr.Dir)

		data, err := os.ReadFile(filepath.Join(dir, DefaultMarker))
		require.NoError(t, err)
		assert.EqualValues(t, "tag-is-even", string(data))
	})
	t.Run("missing checkout", func(t *testing.T) {
		_, err := NewGenerator(t.TempDir(), &fakeHasher{}).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			[]origin.Origin{&origin.VCS{Repository: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d"}},
		)
		var herr *HashDerivationError
		require.ErrorAs(t, err, &herr)
		assert.ErrorIs(t, err, ErrCheckoutMissing)
	})
	t.Run("checkout is a file", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "is-even"), []byte("oops"), 0644))
		_, err := NewGenerator(root, &fakeHasher{}).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			[]origin.Origin{&origin.VCS{Repository: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d"}},
		)
		assert.ErrorIs(t, err, ErrCheckoutMissing)
	})
	t.Run("empty hash", func(t *testing.T) {
		root := t.TempDir()
		checkout(t, root, "is-even")
		h := &emptyHasher{}
		_, err := NewGenerator(root, h).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			[]origin.Origin{&origin.VCS{Repository: "https://github.com/jonschlinkert/is-even", Revision: "a1b2c3d"}},
		)
		assert.ErrorIs(t, err, ErrEmptyHash)
	})
	t.Run("mismatched input", func(t *testing.T) {
		_, err := NewGenerator(t.TempDir(), &fakeHasher{}).Generate(ctx,
			[]*tree.Package{newPackage("is-even", "is-even")},
			nil,
		)
		assert.Error(t, err)
	})
	t.Run("nested checkouts are hashed one at a time", func(t *testing.T) {
		root := t.TempDir()

		var pkgs []*tree.Package
		var origins []origin.Origin
		for _, ip := range [][]string{
			{"a"},
			{"a", "b"},
			{"a", "b", "c"},
			{"d"},
			{"d", "e"},
			{"f"},
		} {
			checkout(t, root, ip...)
			pkgs = append(pkgs, newPackage(tree.ModulePath(ip), ip...))
			origins = append(origins, &origin.VCS{Repository: "https://github.com/owner/" + ip[len(ip)-1], Revision: "abc"})
		}

		var mu sync.Mutex
		active := map[string]int{}
		h := &fakeHasher{observe: func(dir string) {
			rel, err := filepath.Rel(root, dir)
			assert.NoError(t, err)
			top, _, _ := strings.Cut(filepath.ToSlash(rel), "/")

			mu.Lock()
			active[top]++
			assert.EqualValues(t, 1, active[top], "concurrent access to subtree %s", top)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active[top]--
			mu.Unlock()
		}}

		out, err := NewGenerator(root, h, WithConcurrency(4)).Generate(ctx, pkgs, origins)
		require.NoError(t, err)
		require.Len(t, out, len(pkgs))
		for i, d := range out {
			assert.EqualValues(t, "sha512-"+pkgs[i].BaseName, d.ContentHash())
		}
	})
}

type emptyHasher struct{}

func (*emptyHasher) Hash(context.Context, string) (string, error) {
	return "", nil
}

func TestWithoutMarker(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	setup := func(t *testing.T) (string, string) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultMarker)
		require.NoError(t, os.WriteFile(path, []byte("github:owner/repo#abc"), 0600))
		return dir, path
	}

	t.Run("success", func(t *testing.T) {
		dir, path := setup(t)
		err := WithoutMarker(ctx, dir, DefaultMarker, func() error {
			assert.NoFileExists(t, path)
			return nil
		})
		assert.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.EqualValues(t, "github:owner/repo#abc", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.EqualValues(t, os.FileMode(0600), info.Mode().Perm())
	})
	t.Run("failure", func(t *testing.T) {
		dir, path := setup(t)
		expected := errors.New("hashing failed")
		err := WithoutMarker(ctx, dir, DefaultMarker, func() error {
			return expected
		})
		assert.ErrorIs(t, err, expected)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.EqualValues(t, "github:owner/repo#abc", string(data))
	})
	t.Run("panic", func(t *testing.T) {
		dir, path := setup(t)
		assert.Panics(t, func() {
			_ = WithoutMarker(ctx, dir, DefaultMarker, func() error {
				panic("boom")
			})
		})

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.EqualValues(t, "github:owner/repo#abc", string(data))
	})
	t.Run("no marker", func(t *testing.T) {
		dir := t.TempDir()
		var called bool
		err := WithoutMarker(ctx, dir, DefaultMarker, func() error {
			called = true
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, called)
		assert.NoFileExists(t, filepath.Join(dir, DefaultMarker))
	})
}
