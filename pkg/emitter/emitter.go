// Package emitter renders a plan.Plan into build configuration.
//
// Every emitter renders the complete plan into memory before
// writing anything, so a failed render never produces
// partial output.
package emitter

import (
	"bytes"
	"fmt"
	"io"

	v1 "github.com/djcass44/bunix/pkg/api/v1"
	"github.com/djcass44/bunix/pkg/plan"
)

type Emitter interface {
	Emit(w io.Writer, p *plan.Plan) error
}

// New returns the Emitter for the given output format.
func New(format v1.OutputFormat) (Emitter, error) {
	switch format {
	case v1.FormatNix, "":
		return &Nix{}, nil
	case v1.FormatBazel:
		return &Bazel{}, nil
	case v1.FormatJSON:
		return &JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

func flush(w io.Writer, buf *bytes.Buffer) error {
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}

func unknownDescriptor(pkg plan.Package) error {
	return fmt.Errorf("unknown descriptor for package %s: %T", pkg.Key, pkg.Descriptor)
}
