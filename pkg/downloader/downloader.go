package downloader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-getter"
)

func NewDownloader(cacheDir string) (*Downloader, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Downloader{cacheDir: cacheDir}, nil
}

// Download fetches a single file from any source that go-getter
// understands and returns its location in the cache.
func (d *Downloader) Download(ctx context.Context, src string) (string, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.Info("downloading file", "src", src)

	name, err := baseName(src)
	if err != nil {
		log.Error(err, "failed to parse url")
		return "", err
	}

	// download the file to a predictable location so that
	// we can avoid repeated downloads
	dst := filepath.Join(d.cacheDir, fmt.Sprintf("%s-%s", HashString(src), name))
	log.V(1).Info("preparing to download file", "dst", dst)

	client := &getter.Client{
		Ctx:             ctx,
		Src:             src,
		Dst:             dst,
		Mode:            getter.ClientModeFile,
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download file")
		return "", err
	}
	if err := os.Chmod(dst, 0644); err != nil {
		log.Error(err, "failed to update file permissions", "file", dst)
		return "", err
	}

	return dst, nil
}

// baseName returns the last path element of src, ignoring any
// go-getter forced getter prefix, subdirectory or query.
func baseName(src string) (string, error) {
	if _, after, ok := strings.Cut(src, "::"); ok {
		src = after
	}
	uri, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	p := uri.Path
	if uri.Opaque != "" {
		p = uri.Opaque
	}
	if _, sub, ok := strings.Cut(p, "//"); ok {
		p = sub
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return "", fmt.Errorf("cannot determine file name: %s", src)
	}
	return name, nil
}
