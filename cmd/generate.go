package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/djcass44/bunix/cmd/cache"
	"github.com/djcass44/bunix/internal/pipeline"
	v1 "github.com/djcass44/bunix/pkg/api/v1"
	"github.com/djcass44/bunix/pkg/config"
	"github.com/djcass44/bunix/pkg/downloader"
	"github.com/djcass44/bunix/pkg/emitter"
	"github.com/djcass44/bunix/pkg/fetcher"
	"github.com/djcass44/bunix/pkg/hasher"
	"github.com/djcass44/bunix/pkg/installer"
	"github.com/djcass44/bunix/pkg/lockfile"
	"github.com/djcass44/bunix/pkg/origin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [packages...]",
	Short: "generate a build plan for a bun project",
	Long: `Generate a build plan from a bun lockfile.

When packages are given they are installed into a fresh
temporary directory with "bun add". With --postinstall the
current directory is used as-is.`,
	RunE: generate,
}

const (
	flagConfig      = "config"
	flagPostInstall = "postinstall"
	flagLockfile    = "lockfile"
	flagFormat      = "format"
	flagHasher      = "hasher"
	flagRegistry    = "registry"
	flagOutput      = "output"
	flagConcurrency = "concurrency"
	flagBun         = "bun"
)

var (
	errNoSource      = errors.New("either --postinstall or a list of packages is required")
	errTooManySource = errors.New("--postinstall cannot be combined with a list of packages")
)

func init() {
	generateCmd.Flags().StringP(flagConfig, "c", "", "path to a configuration file")
	generateCmd.Flags().Bool(flagPostInstall, false, "use the lockfile and node_modules in the current directory")
	generateCmd.Flags().String(flagLockfile, "", "path or URL of the lockfile (defaults to bun.lock in the project directory)")
	generateCmd.Flags().String(flagFormat, "", "output format (nix, bazel or json)")
	generateCmd.Flags().String(flagHasher, "", "directory hasher (nix or dir)")
	generateCmd.Flags().String(flagRegistry, "", "base URL of the npm registry")
	generateCmd.Flags().StringP(flagOutput, "o", "", "file to write the plan to (defaults to stdout)")
	generateCmd.Flags().Int(flagConcurrency, 0, "maximum number of git checkouts to hash at once")
	generateCmd.Flags().String(flagBun, installer.DefaultBinary, "path to the bun binary")
	generateCmd.Flags().String(cache.FlagCacheDir, "", "cache directory for downloaded lockfiles (defaults to user cache dir)")

	_ = generateCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml", ".json")
	_ = generateCmd.MarkFlagDirname(cache.FlagCacheDir)
	_ = generateCmd.Flags().MarkHidden(flagBun)
}

func generate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logr.FromContextOrDiscard(ctx)

	postInstall, _ := cmd.Flags().GetBool(flagPostInstall)
	configPath, _ := cmd.Flags().GetString(flagConfig)
	lockPath, _ := cmd.Flags().GetString(flagLockfile)
	outputPath, _ := cmd.Flags().GetString(flagOutput)
	cacheDir, _ := cmd.Flags().GetString(cache.FlagCacheDir)
	bunPath, _ := cmd.Flags().GetString(flagBun)

	switch {
	case postInstall && len(args) > 0:
		return errTooManySource
	case !postInstall && len(args) == 0:
		return errNoSource
	}

	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg.Spec)
	if err := config.Validate(cfg.Spec); err != nil {
		return err
	}

	// figure out where the project lives
	var dir string
	if postInstall {
		dir, err = os.Getwd()
		if err != nil {
			return err
		}
	} else {
		dir, err = installer.TempDir()
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		log.V(3).Info("prepared project directory", "path", dir)

		if err := installer.NewBun(bunPath).Add(ctx, dir, args...); err != nil {
			return err
		}
	}

	if lockPath == "" {
		lockPath = lockfile.Name(dir)
	} else if isRemote(lockPath) {
		dl, err := downloader.NewDownloader(cache.Dir(cacheDir))
		if err != nil {
			return err
		}
		lockPath, err = dl.Download(ctx, lockPath)
		if err != nil {
			return err
		}
	}

	lock, err := lockfile.Read(ctx, lockPath)
	if err != nil {
		return err
	}
	if err := lock.Validate(args); err != nil {
		return err
	}

	p, err := newPipeline(dir, cfg.Spec)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := p.Run(ctx, lock, buf); err != nil {
		return err
	}
	if outputPath == "" {
		_, err := io.Copy(cmd.OutOrStdout(), buf)
		return err
	}
	log.Info("writing plan", "path", outputPath)
	return writeFile(outputPath, buf.Bytes())
}

func newPipeline(dir string, spec v1.ConfigSpec) (*pipeline.Pipeline, error) {
	opts := []origin.Option{origin.WithRegistry(spec.Registry)}
	for name, baseURL := range spec.Forges {
		opts = append(opts, origin.WithForge(name, baseURL))
	}

	h, err := hasher.New(spec.Hasher, spec.NixHash)
	if err != nil {
		return nil, err
	}
	e, err := emitter.New(spec.Format)
	if err != nil {
		return nil, err
	}
	gen := fetcher.NewGenerator(
		filepath.Join(dir, "node_modules"),
		h,
		fetcher.WithMarker(spec.Marker),
		fetcher.WithConcurrency(spec.Concurrency),
	)
	return pipeline.NewPipeline(origin.NewClassifier(opts...), gen, e), nil
}

// applyFlags overrides configuration values with any
// flags that were explicitly set.
func applyFlags(cmd *cobra.Command, spec *v1.ConfigSpec) {
	flags := cmd.Flags()
	if flags.Changed(flagFormat) {
		v, _ := flags.GetString(flagFormat)
		spec.Format = v1.OutputFormat(v)
	}
	if flags.Changed(flagHasher) {
		v, _ := flags.GetString(flagHasher)
		spec.Hasher = v1.HasherType(v)
	}
	if flags.Changed(flagRegistry) {
		spec.Registry, _ = flags.GetString(flagRegistry)
	}
	if flags.Changed(flagConcurrency) {
		spec.Concurrency, _ = flags.GetInt(flagConcurrency)
	}
}

func isRemote(s string) bool {
	if _, err := os.Stat(s); err == nil {
		return false
	}
	return strings.Contains(s, "://") || strings.Contains(s, "::")
}

// writeFile replaces the file at path without ever
// leaving it partially written.
func writeFile(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s-%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
