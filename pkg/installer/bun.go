package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

const DefaultBinary = "bun"

var ErrNoPackages = errors.New("no packages requested")

// Bun installs packages by shelling out to the bun
// package manager.
type Bun struct {
	Binary string
}

func NewBun(binary string) *Bun {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Bun{Binary: binary}
}

// Add runs "bun add" for the given packages inside dir,
// leaving a lockfile and node_modules tree behind.
func (b *Bun) Add(ctx context.Context, dir string, pkgs ...string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("dir", dir)
	if len(pkgs) == 0 {
		return ErrNoPackages
	}
	log.Info("installing packages", "packages", pkgs)

	args := append([]string{"add"}, pkgs...)
	cmd := exec.CommandContext(ctx, b.Binary, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		log.Error(err, "failed to install packages", "stderr", stderr.String())
		return fmt.Errorf("running %s add: %w: %s", b.Binary, err, strings.TrimSpace(stderr.String()))
	}
	log.V(2).Info("installed packages", "output", string(out))
	return nil
}

// TempDir creates a fresh working directory for
// an installation.
func TempDir() (string, error) {
	return os.MkdirTemp("", "bun-nix-")
}
