package pipeline

import (
	"context"
	"io"

	"github.com/djcass44/bunix/pkg/emitter"
	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/djcass44/bunix/pkg/origin"
	"github.com/djcass44/bunix/pkg/plan"
	"github.com/djcass44/bunix/pkg/tree"
	"github.com/go-logr/logr"
)

// Pipeline turns a parsed lockfile into build configuration.
type Pipeline struct {
	Classifier *origin.Classifier
	Generator  *fetcher.Generator
	Emitter    emitter.Emitter
}

func NewPipeline(c *origin.Classifier, g *fetcher.Generator, e emitter.Emitter) *Pipeline {
	return &Pipeline{
		Classifier: c,
		Generator:  g,
		Emitter:    e,
	}
}

// Plan resolves, classifies and hashes every package in
// the lockfile. Every package is classified before any
// checkout is hashed.
func (p *Pipeline) Plan(ctx context.Context, lock *lockfile.Lock) (*plan.Plan, error) {
	log := logr.FromContextOrDiscard(ctx)

	pkgs := tree.Resolve(ctx, lock).Packages()

	origins := make([]origin.Origin, len(pkgs))
	for i, pkg := range pkgs {
		o, err := p.Classifier.Classify(ctx, pkg)
		if err != nil {
			log.Error(err, "failed to classify package", "key", pkg.Key)
			return nil, err
		}
		origins[i] = o
	}

	descriptors, err := p.Generator.Generate(ctx, pkgs, origins)
	if err != nil {
		log.Error(err, "failed to generate fetch descriptors")
		return nil, err
	}

	out, err := plan.Build(lock.Digest, pkgs, descriptors)
	if err != nil {
		log.Error(err, "failed to build plan")
		return nil, err
	}
	log.V(1).Info("built plan", "packages", len(out.Packages), "bins", len(out.Bins))
	return out, nil
}

// Run builds the plan and writes it to w. Nothing is
// written unless every step succeeds.
func (p *Pipeline) Run(ctx context.Context, lock *lockfile.Lock, w io.Writer) error {
	out, err := p.Plan(ctx, lock)
	if err != nil {
		return err
	}
	if err := p.Emitter.Emit(w, out); err != nil {
		logr.FromContextOrDiscard(ctx).Error(err, "failed to emit plan")
		return err
	}
	return nil
}
