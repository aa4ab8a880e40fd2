package fetcher

import (
	"errors"
	"fmt"
)

var (
	ErrCheckoutMissing = errors.New("checkout directory is missing")
	ErrEmptyHash       = errors.New("hasher returned an empty hash")
)

// HashDerivationError is returned when the content hash of
// a git checkout cannot be computed.
type HashDerivationError struct {
	Key string
	Dir string
	Err error
}

func (e *HashDerivationError) Error() string {
	return fmt.Sprintf("deriving hash of package %q in %s: %s", e.Key, e.Dir, e.Err)
}

func (e *HashDerivationError) Unwrap() error {
	return e.Err
}
