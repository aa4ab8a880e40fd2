package lockfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

// Read loads and parses the lockfile at the given path.
func Read(ctx context.Context, path string) (*Lock, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ParseError{Path: path, Err: ErrMissing}
		}
		log.Error(err, "failed to open lockfile")
		return nil, err
	}
	lock, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		log.Error(err, "failed to read lockfile")
		return nil, err
	}
	log.V(1).Info("read lockfile", "version", lock.LockfileVersion, "packages", len(lock.Packages))
	return lock, nil
}

type rawLock struct {
	LockfileVersion int                        `json:"lockfileVersion"`
	Workspaces      map[string]Workspace       `json:"workspaces"`
	Packages        map[string]json.RawMessage `json:"packages"`
}

// Parse normalizes and decodes the contents of a lockfile.
func Parse(data []byte) (*Lock, error) {
	std, err := Normalize(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	var raw rawLock
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw.Packages == nil {
		return nil, &ParseError{Err: ErrMissingPackages}
	}
	lock := &Lock{
		LockfileVersion: raw.LockfileVersion,
		Workspaces:      raw.Workspaces,
		Packages:        make(map[string]Entry, len(raw.Packages)),
		Digest:          Sha256(data),
	}
	for k, v := range raw.Packages {
		entry, err := parseEntry(k, v)
		if err != nil {
			return nil, &ParseError{Key: k, Err: err}
		}
		lock.Packages[k] = entry
	}
	return lock, nil
}

func parseEntry(key string, raw json.RawMessage) (Entry, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Entry{}, fmt.Errorf("expected an array: %w", err)
	}
	if len(fields) == 0 {
		return Entry{}, errors.New("empty package entry")
	}
	entry := Entry{Key: key}
	if err := json.Unmarshal(fields[0], &entry.OriginSpec); err != nil {
		return Entry{}, fmt.Errorf("reading origin: %w", err)
	}
	if len(fields) > 1 {
		entry.Extra = fields[1]
	}
	if len(fields) > 2 {
		md, err := decodeMetadata(fields[2])
		if err != nil {
			return Entry{}, err
		}
		entry.Metadata = md
	}
	if len(fields) > 3 {
		// a hash that isn't a string is treated
		// as if it were absent
		var hash string
		if err := json.Unmarshal(fields[3], &hash); err == nil {
			entry.KnownHash = hash
		}
	}
	return entry, nil
}

// Name returns the path of the lockfile within the given
// project directory.
func Name(dir string) string {
	return filepath.Join(dir, Filename)
}
