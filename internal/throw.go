package internal

import "github.com/pkg/errors"

// Threading errors through every mesh primitive would make the topology code
// much harder to follow, and those primitives only fail when an invariant is
// already broken. They panic with a MeshError instead, and every public entry
// point recovers it into an ordinary error.

type MeshError error

// Panic with a MeshError.
func fatalf(format string, args ...interface{}) {
	panic(MeshError(errors.Errorf(format, args...)))
}

func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if meshError, ok := r.(MeshError); ok {
			return errors.Wrap(meshError, "internal mesh error")
		}
		panic(r)
	}
	return nil
}
