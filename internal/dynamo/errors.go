package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for reduction and steady-state analysis.
var (
	// ErrNoRealBranch indicates a symbolic solve produced no usable real
	// solution. The reduction is undefined for that model configuration.
	ErrNoRealBranch = errors.New("dynamo: no real solution branch")

	// ErrEvaluation indicates a numeric evaluation produced NaN or Inf
	// (division by zero, square root of a negative number).
	ErrEvaluation = errors.New("dynamo: expression evaluation failed")

	// ErrNegativeState indicates a back-substituted state with a negative
	// concentration.
	ErrNegativeState = errors.New("dynamo: negative concentration in state")

	// ErrNonConvergence indicates a root finder stopped without reaching
	// its tolerance.
	ErrNonConvergence = errors.New("dynamo: root finder did not converge")

	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownParameter indicates a parameter name outside the model.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state and system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// EvalError wraps an evaluation failure with the point it happened at.
type EvalError struct {
	What    string
	Point   []float64
	Wrapped error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s at %v: %v", e.What, e.Point, e.Wrapped)
}

func (e *EvalError) Unwrap() error {
	return e.Wrapped
}
