package internal

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// A predicate was requested on the infinite face or on too few real
	// points, or a coordinate is not finite.
	ErrDegenerateInput = errors.New("degenerate input")
	// The handle refers to a vertex, edge or face that has been removed.
	ErrInvalidHandle = errors.New("invalid handle")
	// A constraint would cross another constraint.
	ErrConstraintConflict = errors.New("constraint conflict")
)

// Reports the constraint that blocks a requested one. Matches
// ErrConstraintConflict with errors.Is.
type ConstraintConflictError struct {
	From, To                 VertexHandle
	BlockingFrom, BlockingTo VertexHandle
}

func (e *ConstraintConflictError) Error() string {
	return fmt.Sprintf("constraint %v-%v crosses existing constraint %v-%v",
		e.From, e.To, e.BlockingFrom, e.BlockingTo)
}

func (e *ConstraintConflictError) Is(target error) bool {
	return target == ErrConstraintConflict
}
