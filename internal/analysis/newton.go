package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/symbolic"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewtonOptions controls the damped Newton iteration.
type NewtonOptions struct {
	MaxIter    int     `yaml:"max_iter"`
	Tol        float64 `yaml:"tol"`
	StepTol    float64 `yaml:"step_tol"`
	MinDamping float64 `yaml:"min_damping"`
}

func DefaultNewton() NewtonOptions {
	return NewtonOptions{
		MaxIter:    100,
		Tol:        1e-12,
		StepTol:    1e-12,
		MinDamping: 1e-10,
	}
}

// NewtonResult is where an iteration stopped.
type NewtonResult struct {
	X          []float64
	Iterations int
	Residual   float64
}

// Newton solves f(x) = 0 from x0 with the analytic Jacobian j. Each step
// is halved until the residual norm decreases; a full step below StepTol
// (relative to |x|) is taken as converged. Evaluation failures at the
// current iterate are returned as is; a stalled line search, a singular
// Jacobian or the iteration cap yield dynamo.ErrNonConvergence.
func Newton(f *symbolic.VecFunc, j *symbolic.MatFunc, x0 []float64, opts NewtonOptions) (NewtonResult, error) {
	n := len(x0)
	x := append([]float64(nil), x0...)
	res := NewtonResult{X: x}

	fx, err := f.Eval(x)
	if err != nil {
		return res, err
	}
	norm := floats.Norm(fx, 2)
	res.Residual = norm

	jac := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	var dx mat.VecDense
	xt := make([]float64, n)

	for it := 0; it < opts.MaxIter; it++ {
		res.Iterations = it
		if norm <= opts.Tol {
			return res, nil
		}
		if err := j.EvalInto(jac, x); err != nil {
			return res, err
		}
		for i, v := range fx {
			b.SetVec(i, -v)
		}
		if err := dx.SolveVec(jac, b); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return res, fmt.Errorf("newton: %v: %w", err, dynamo.ErrNonConvergence)
			}
		}
		step := dx.RawVector().Data
		if !finite(step) {
			return res, fmt.Errorf("newton: singular Jacobian at %v: %w", x, dynamo.ErrNonConvergence)
		}

		if floats.Norm(step, 2) <= opts.StepTol*(1+floats.Norm(x, 2)) {
			floats.Add(x, step)
			if fx, err = f.Eval(x); err != nil {
				return res, err
			}
			res.Residual = floats.Norm(fx, 2)
			res.Iterations = it + 1
			return res, nil
		}

		lambda := 1.0
		for {
			for i := range x {
				xt[i] = x[i] + lambda*step[i]
			}
			ft, err := f.Eval(xt)
			if err == nil {
				if tn := floats.Norm(ft, 2); tn < norm {
					copy(x, xt)
					fx, norm = ft, tn
					break
				}
			}
			lambda /= 2
			if lambda < opts.MinDamping {
				return res, fmt.Errorf("newton: line search stalled at %v: %w", x, dynamo.ErrNonConvergence)
			}
		}
		res.Residual = norm
		res.Iterations = it + 1
	}
	if norm <= opts.Tol {
		return res, nil
	}
	return res, fmt.Errorf("newton: %d iterations, residual %.3g: %w", opts.MaxIter, norm, dynamo.ErrNonConvergence)
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
