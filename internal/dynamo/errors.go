package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidMass indicates a non-positive or non-finite body mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrDimensionMismatch indicates a state vector that does not line up
	// with the body count.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and bodies")

	// ErrDegenerateGeometry indicates a zero separation where a direction
	// or orbital speed is required.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate geometry (zero separation)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the solver used up its step budget before
	// reaching the end of the interval.
	ErrTooManySteps = errors.New("dynamo: step budget exhausted before end of interval")

	// ErrHalted is returned by a stepped integrator after a failure until
	// the failure is cleared.
	ErrHalted = errors.New("dynamo: integration halted after failure")

	// ErrIndexOutOfRange indicates a body index outside the registry.
	ErrIndexOutOfRange = errors.New("dynamo: body index out of range")

	// ErrNoPrimary indicates an operation that needs a primary body on an
	// empty registry.
	ErrNoPrimary = errors.New("dynamo: no primary body")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.1f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// IsIntegrationFailure reports whether err came from a solver that could not
// complete an interval.
func IsIntegrationFailure(err error) bool {
	return errors.Is(err, ErrTooManySteps) || errors.Is(err, ErrStepTooSmall) || errors.Is(err, ErrInvalidState)
}
