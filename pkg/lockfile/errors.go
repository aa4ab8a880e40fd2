package lockfile

import (
	"errors"
	"fmt"
)

var (
	ErrMissing         = errors.New("missing lockfile")
	ErrMissingPackages = errors.New("lockfile has no packages")
	ErrNotInstalled    = errors.New("requested package is missing from the lockfile")
)

// ParseError is returned when the lockfile cannot be
// read into a set of entries.
type ParseError struct {
	Path string
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := "parsing lockfile"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (package %q)", e.Key)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
