package envutil

import "github.com/drone/envsubst"

// ExpandEnv substitutes ${VAR} references using the
// current environment. Invalid expressions are returned
// unchanged.
func ExpandEnv(s string) string {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return s
	}
	return val
}
