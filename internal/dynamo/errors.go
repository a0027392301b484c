package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for landscape runs.
var (
	// ErrInvalidParameter indicates a parameter outside its domain. Raised
	// before any simulation work starts.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrUnmappedCondition indicates a profile/condition pair the mapping
	// table does not model.
	ErrUnmappedCondition = errors.New("dynamo: unmapped condition")

	// ErrNumericDivergence indicates the trajectory left the finite numbers.
	ErrNumericDivergence = errors.New("dynamo: numeric divergence (NaN or Inf position)")

	// ErrEmptyTrajectory indicates there is nothing to summarize.
	ErrEmptyTrajectory = errors.New("dynamo: empty trajectory")
)

// ParamError names the offending parameter.
type ParamError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%g %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
