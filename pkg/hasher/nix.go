package hasher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

const DefaultNixHash = "nix-hash"

// Nix hashes directories by running nix-hash, which
// produces the NAR hash that fetchgit expects.
type Nix struct {
	Binary string
	Type   string
}

func NewNix(binary string) *Nix {
	if binary == "" {
		binary = DefaultNixHash
	}
	return &Nix{
		Binary: binary,
		Type:   "sha512",
	}
}

func (n *Nix) Hash(ctx context.Context, dir string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir, "bin", n.Binary)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, n.Binary, "--base64", "--type", n.Type, "--sri", dir)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.V(2).Info("hashing directory")
	if err := cmd.Run(); err != nil {
		log.Error(err, "failed to hash directory", "stderr", stderr.String())
		return "", fmt.Errorf("running %s: %w: %s", n.Binary, err, strings.TrimSpace(stderr.String()))
	}
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.New("nix-hash produced no output")
	}
	return out, nil
}
