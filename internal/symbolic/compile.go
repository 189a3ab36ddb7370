package symbolic

import (
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
)

type evalFn func(x []float64) float64

// Func is an expression compiled against an ordered variable list with
// all parameters folded in as constants. It is safe for concurrent use.
type Func struct {
	name string
	vars []string
	fn   evalFn
}

// Bind substitutes numeric parameter values into e.
func Bind(e Expr, params map[string]float64) Expr {
	bindings := make(map[string]Expr, len(params))
	for k, v := range params {
		bindings[k] = Num(v)
	}
	return e.Subs(bindings)
}

// Compile binds params into e and builds an evaluator over vars. Every
// free symbol of e must be in vars or params.
func Compile(name string, e Expr, vars []string, params map[string]float64) (*Func, error) {
	bound := Bind(e, params)
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	for _, s := range Symbols(bound) {
		if _, ok := index[s]; !ok {
			return nil, fmt.Errorf("compile %s: unbound symbol %q", name, s)
		}
	}
	return &Func{name: name, vars: vars, fn: build(bound, index)}, nil
}

func build(e Expr, index map[string]int) evalFn {
	switch v := e.(type) {
	case *Const:
		c := v.V
		return func([]float64) float64 { return c }
	case *Symbol:
		i := index[v.Name]
		return func(x []float64) float64 { return x[i] }
	case *Sum:
		fs := make([]evalFn, len(v.Terms))
		for i, t := range v.Terms {
			fs[i] = build(t, index)
		}
		return func(x []float64) float64 {
			s := 0.0
			for _, f := range fs {
				s += f(x)
			}
			return s
		}
	case *Product:
		fs := make([]evalFn, len(v.Factors))
		for i, t := range v.Factors {
			fs[i] = build(t, index)
		}
		return func(x []float64) float64 {
			p := 1.0
			for _, f := range fs {
				p *= f(x)
			}
			return p
		}
	case *Power:
		b := build(v.Base, index)
		switch v.Exp {
		case -1:
			return func(x []float64) float64 { return 1 / b(x) }
		case 0.5:
			return func(x []float64) float64 { return math.Sqrt(b(x)) }
		case 2:
			return func(x []float64) float64 {
				y := b(x)
				return y * y
			}
		case -2:
			return func(x []float64) float64 {
				y := b(x)
				return 1 / (y * y)
			}
		}
		exp := v.Exp
		return func(x []float64) float64 { return math.Pow(b(x), exp) }
	}
	panic(fmt.Sprintf("symbolic: cannot compile %T", e))
}

func (f *Func) Name() string   { return f.name }
func (f *Func) Vars() []string { return f.vars }
func (f *Func) Dim() int       { return len(f.vars) }

// Eval evaluates f at x. Non-finite results are reported as
// dynamo.ErrEvaluation.
func (f *Func) Eval(x ...float64) (float64, error) {
	if len(x) != len(f.vars) {
		return 0, fmt.Errorf("%s: got %d values for %d variables: %w", f.name, len(x), len(f.vars), dynamo.ErrDimensionMismatch)
	}
	y := f.fn(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return y, evalErr(f.name, x)
	}
	return y, nil
}

// EvalSlice evaluates a one-variable function at every point of xs.
// Non-finite entries are left as NaN and reported by the returned error.
func (f *Func) EvalSlice(xs []float64) ([]float64, error) {
	if len(f.vars) != 1 {
		return nil, fmt.Errorf("%s: EvalSlice needs 1 variable, have %d: %w", f.name, len(f.vars), dynamo.ErrDimensionMismatch)
	}
	out := make([]float64, len(xs))
	var firstErr error
	buf := make([]float64, 1)
	for i, x := range xs {
		buf[0] = x
		y := f.fn(buf)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			y = math.NaN()
			if firstErr == nil {
				firstErr = evalErr(f.name, buf)
			}
		}
		out[i] = y
	}
	return out, firstErr
}

// EvalGrid evaluates a two-variable function on the grid xs × ys.
// The result is indexed [j][i] for (xs[i], ys[j]).
func (f *Func) EvalGrid(xs, ys []float64) ([][]float64, error) {
	if len(f.vars) != 2 {
		return nil, fmt.Errorf("%s: EvalGrid needs 2 variables, have %d: %w", f.name, len(f.vars), dynamo.ErrDimensionMismatch)
	}
	out := make([][]float64, len(ys))
	var firstErr error
	buf := make([]float64, 2)
	for j, y := range ys {
		row := make([]float64, len(xs))
		for i, x := range xs {
			buf[0], buf[1] = x, y
			v := f.fn(buf)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = math.NaN()
				if firstErr == nil {
					firstErr = evalErr(f.name, buf)
				}
			}
			row[i] = v
		}
		out[j] = row
	}
	return out, firstErr
}

func evalErr(what string, x []float64) error {
	point := make([]float64, len(x))
	copy(point, x)
	return &dynamo.EvalError{What: what, Point: point, Wrapped: dynamo.ErrEvaluation}
}
