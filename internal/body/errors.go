package body

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveMass indicates a point with mass <= 0.
	ErrNonPositiveMass = errors.New("body: point mass must be positive")

	// ErrSelfLoop indicates a spring whose endpoints are the same point.
	ErrSelfLoop = errors.New("body: spring endpoints must differ")

	// ErrNilEndpoint indicates a spring with a missing endpoint.
	ErrNilEndpoint = errors.New("body: spring endpoint is nil")

	// ErrForeignEndpoint indicates a spring endpoint outside the body.
	ErrForeignEndpoint = errors.New("body: spring endpoint not in body")

	// ErrRestLength indicates a non-positive or non-finite rest length.
	ErrRestLength = errors.New("body: rest length must be positive")

	// ErrDuplicatePoint indicates a point listed twice.
	ErrDuplicatePoint = errors.New("body: point listed twice")
)

// Error names the element of a body that failed validation.
type Error struct {
	Kind    string
	Index   int
	Wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Index, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}
