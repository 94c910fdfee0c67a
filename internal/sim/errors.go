package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates an invalid world configuration.
	ErrConfig = errors.New("sim: invalid config")

	// ErrTimestep indicates a non-positive or non-finite dt.
	ErrTimestep = errors.New("sim: timestep must be positive")

	// ErrPointReused indicates a point that already belongs to a world.
	ErrPointReused = errors.New("sim: point already added to a world")

	// ErrDanglingSpring indicates a spring pointing at a point the world
	// does not hold, such as a deleted or never added one.
	ErrDanglingSpring = errors.New("sim: spring references a point outside the world")

	// ErrInvalidState indicates a point position that is NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the tick it happened on.
type StepError struct {
	Tick    uint64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
