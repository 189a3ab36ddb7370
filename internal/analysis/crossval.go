package analysis

import (
	"errors"
	"fmt"

	"github.com/san-kum/bistab/internal/dynamo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Result compares the planar and full-model stability of one steady state.
type Result struct {
	State    Point
	Full     dynamo.State
	J2       *mat.Dense
	J8       *mat.Dense
	Eig2     []complex128
	Eig8     []complex128
	Stab2    Stability
	Stab8    Stability
	Conflict bool
}

// Analyze lifts p to the full state, evaluates both Jacobians there and
// classifies each. A lifted state with a negative concentration fails with
// dynamo.ErrNegativeState; a non-finite evaluation with
// dynamo.ErrEvaluation.
func (c *Compiled) Analyze(p Point, tol float64) (*Result, error) {
	xy := []float64{p.X2, p.X4}
	lifted, err := c.Lift.Eval(xy)
	if err != nil {
		return nil, fmt.Errorf("lift %v: %w", p, err)
	}
	full := dynamo.State(lifted)
	if i := full.FirstNegative(); i >= 0 {
		return nil, fmt.Errorf("lift %v: x%d=%.4g: %w", p, i+1, full[i], dynamo.ErrNegativeState)
	}

	j2, err := c.J2.Eval(xy)
	if err != nil {
		return nil, fmt.Errorf("2D jacobian at %v: %w", p, err)
	}
	j8, err := c.J8.Eval(full)
	if err != nil {
		return nil, fmt.Errorf("8D jacobian at %v: %w", p, err)
	}
	eig2, err := Eigenvalues(j2)
	if err != nil {
		return nil, fmt.Errorf("2D eigenvalues at %v: %v: %w", p, err, dynamo.ErrEvaluation)
	}
	eig8, err := Eigenvalues(j8)
	if err != nil {
		return nil, fmt.Errorf("8D eigenvalues at %v: %v: %w", p, err, dynamo.ErrEvaluation)
	}

	r := &Result{
		State: p,
		Full:  full,
		J2:    j2,
		J8:    j8,
		Eig2:  eig2,
		Eig8:  eig8,
		Stab2: Classify(eig2, tol),
		Stab8: Classify(eig8, tol),
	}
	r.Conflict = r.Stab2.String() != r.Stab8.String()
	return r, nil
}

// AnalyzeAll analyzes every point, logging and skipping failures.
func AnalyzeAll(c *Compiled, points []Point, tol float64, log *zap.Logger) []*Result {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]*Result, 0, len(points))
	for _, p := range points {
		r, err := c.Analyze(p, tol)
		if err != nil {
			LogSkip(log, p, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// LogSkip reports a steady state dropped from analysis. Negative states
// are warnings; everything else is an error.
func LogSkip(log *zap.Logger, p Point, err error) {
	fields := []zap.Field{zap.Float64("x2", p.X2), zap.Float64("x4", p.X4), zap.Error(err)}
	if errors.Is(err, dynamo.ErrNegativeState) {
		log.Warn("skipping steady state with negative concentration", fields...)
		return
	}
	log.Error("skipping steady state after evaluation failure", fields...)
}
