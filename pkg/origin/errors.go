package origin

import "fmt"

// UnsupportedOriginError is returned when a package comes
// from somewhere other than a registry or a supported forge.
type UnsupportedOriginError struct {
	Key    string
	Spec   string
	Reason string
}

func (e *UnsupportedOriginError) Error() string {
	return fmt.Sprintf("unsupported origin for package %q: %s (%s)", e.Key, e.Spec, e.Reason)
}
