package origin

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/djcass44/bunix/pkg/envutil"
	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/djcass44/bunix/pkg/tree"
	"github.com/go-logr/logr"
)

const DefaultRegistry = "https://registry.npmjs.org"

// DefaultForges maps the locator shorthands that bun
// understands to the base URL of the forge.
var DefaultForges = map[string]string{
	"github":    "https://github.com",
	"gitlab":    "https://gitlab.com",
	"bitbucket": "https://bitbucket.org",
}

type Classifier struct {
	registry string
	forges   map[string]string
	hosts    map[string]string
}

type Option func(c *Classifier)

// WithRegistry overrides the registry that tarballs
// are downloaded from.
func WithRegistry(s string) Option {
	return func(c *Classifier) {
		if s != "" {
			c.registry = strings.TrimSuffix(envutil.ExpandEnv(s), "/")
		}
	}
}

// WithForge adds a locator shorthand (e.g. "codeberg") that
// resolves to repositories under the given base URL.
func WithForge(name, baseURL string) Option {
	return func(c *Classifier) {
		c.forges[name] = strings.TrimSuffix(envutil.ExpandEnv(baseURL), "/")
	}
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		registry: DefaultRegistry,
		forges:   make(map[string]string, len(DefaultForges)),
		hosts:    map[string]string{},
	}
	for k, v := range DefaultForges {
		c.forges[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	for k, v := range c.forges {
		if u, err := url.Parse(v); err == nil && u.Host != "" {
			c.hosts[u.Host] = k
		}
	}
	return c
}

// Classify decides where the contents of a package come from.
func (c *Classifier) Classify(ctx context.Context, pkg *tree.Package) (Origin, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("key", pkg.Key, "spec", pkg.OriginSpec)

	// only registry packages carry an integrity hash
	if pkg.HasHash() {
		o := c.registryOrigin(pkg)
		log.V(5).Info("classified registry package", "url", o.URL)
		return o, nil
	}
	o, err := c.vcsOrigin(pkg)
	if err != nil {
		log.V(1).Info("failed to classify package", "err", err.Error())
		return nil, err
	}
	log.V(5).Info("classified git package", "repo", o.Repository, "rev", o.Revision)
	return o, nil
}

func (c *Classifier) registryOrigin(pkg *tree.Package) *Registry {
	name, version := lockfile.SplitSpec(pkg.OriginSpec)
	if name == "" {
		name = pkg.BaseName
	}
	spec := pkg.OriginSpec
	if spec == "" {
		spec = name
	}
	tarball := strings.ReplaceAll(path.Base(spec), "@", "-")
	return &Registry{
		Name:      name,
		Version:   version,
		URL:       c.registry + "/" + name + "/-/" + tarball + ".tgz",
		Integrity: pkg.KnownHash,
	}
}

func (c *Classifier) vcsOrigin(pkg *tree.Package) (*VCS, error) {
	unsupported := func(reason string) error {
		return &UnsupportedOriginError{Key: pkg.Key, Spec: pkg.OriginSpec, Reason: reason}
	}

	name, locator := lockfile.SplitSpec(pkg.OriginSpec)
	if locator == "" {
		return nil, unsupported("no locator")
	}
	scheme, rest, ok := strings.Cut(locator, ":")
	if !ok {
		return nil, unsupported("locator has no scheme")
	}

	o := &VCS{Name: name}

	if base, ok := c.forges[scheme]; ok {
		repo, rev, _ := strings.Cut(rest, "#")
		o.Repository = base + "/" + strings.Trim(repo, "/")
		o.Revision = rev
	} else {
		switch scheme {
		case "git", "git+https", "git+http", "git+ssh":
		default:
			return nil, unsupported("scheme " + scheme + " is not a supported forge")
		}
		u, err := url.Parse(strings.TrimPrefix(locator, "git+"))
		if err != nil {
			return nil, unsupported(err.Error())
		}
		if u.Host == "" {
			return nil, unsupported("locator has no host")
		}
		o.Revision = u.Fragment
		if u.Scheme == "ssh" {
			// ssh remotes can only be fetched without credentials
			// if they are hosted on a public forge
			forge, ok := c.hosts[u.Hostname()]
			if !ok {
				return nil, unsupported("ssh remote is not a known forge")
			}
			o.Repository = c.forges[forge] + u.Path
		} else {
			o.Repository = u.Scheme + "://" + u.Host + u.Path
		}
	}
	if o.Revision == "" {
		return nil, unsupported("missing revision")
	}
	return o, nil
}
