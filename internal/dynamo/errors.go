package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for hybrid simulation.
var (
	// ErrDiverged indicates the integrator produced a non-finite state.
	ErrDiverged = errors.New("dynamo: state diverged (NaN or Inf)")

	// ErrEventOrder indicates preset trigger times are not strictly increasing.
	ErrEventOrder = errors.New("dynamo: event trigger times not strictly increasing")

	// ErrEventUnreachable indicates a trigger time outside the integration span.
	ErrEventUnreachable = errors.New("dynamo: event trigger time outside time span")

	// ErrDimensionMismatch indicates mismatched state/drift/diffusion dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrBadConfig indicates a non-positive step size, horizon, or count.
	ErrBadConfig = errors.New("dynamo: invalid configuration")

	// ErrNoiseGrid indicates a noise realization that does not cover the
	// solver's step grid.
	ErrNoiseGrid = errors.New("dynamo: noise realization exhausted before horizon")
)

// TrajError attaches trajectory identity to a failure so ensemble callers can
// report which run failed instead of silently dropping it.
type TrajError struct {
	Traj    int
	Step    int
	Time    float64
	Wrapped error
}

func (e *TrajError) Error() string {
	return fmt.Sprintf("trajectory %d, step %d (t=%.4f): %v", e.Traj, e.Step, e.Time, e.Wrapped)
}

func (e *TrajError) Unwrap() error {
	return e.Wrapped
}
