package symbolic

import (
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Jacobian returns d exprs[i] / d vars[j].
func Jacobian(exprs []Expr, vars []string) [][]Expr {
	out := make([][]Expr, len(exprs))
	for i, e := range exprs {
		row := make([]Expr, len(vars))
		for j, v := range vars {
			row[j] = e.Diff(v)
		}
		out[i] = row
	}
	return out
}

// VecFunc evaluates a list of expressions at once.
type VecFunc struct {
	name  string
	vars  []string
	funcs []evalFn
}

func CompileVector(name string, exprs []Expr, vars []string, params map[string]float64) (*VecFunc, error) {
	v := &VecFunc{name: name, vars: vars, funcs: make([]evalFn, len(exprs))}
	for i, e := range exprs {
		f, err := Compile(fmt.Sprintf("%s[%d]", name, i), e, vars, params)
		if err != nil {
			return nil, err
		}
		v.funcs[i] = f.fn
	}
	return v, nil
}

func (v *VecFunc) Len() int       { return len(v.funcs) }
func (v *VecFunc) Vars() []string { return v.vars }

// Eval returns the vector of values at x.
func (v *VecFunc) Eval(x []float64) ([]float64, error) {
	out := make([]float64, len(v.funcs))
	return out, v.EvalInto(out, x)
}

// EvalInto writes the values at x into dst.
func (v *VecFunc) EvalInto(dst, x []float64) error {
	if len(x) != len(v.vars) || len(dst) != len(v.funcs) {
		return fmt.Errorf("%s: %w", v.name, dynamo.ErrDimensionMismatch)
	}
	for i, f := range v.funcs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return evalErr(fmt.Sprintf("%s[%d]", v.name, i), x)
		}
		dst[i] = y
	}
	return nil
}

// MatFunc evaluates a matrix of expressions, typically a Jacobian.
type MatFunc struct {
	name       string
	vars       []string
	rows, cols int
	funcs      []evalFn
}

func CompileMatrix(name string, m [][]Expr, vars []string, params map[string]float64) (*MatFunc, error) {
	rows := len(m)
	cols := 0
	if rows > 0 {
		cols = len(m[0])
	}
	mf := &MatFunc{name: name, vars: vars, rows: rows, cols: cols, funcs: make([]evalFn, 0, rows*cols)}
	for i, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("compile %s: ragged row %d: %w", name, i, dynamo.ErrDimensionMismatch)
		}
		for j, e := range row {
			f, err := Compile(fmt.Sprintf("%s[%d,%d]", name, i, j), e, vars, params)
			if err != nil {
				return nil, err
			}
			mf.funcs = append(mf.funcs, f.fn)
		}
	}
	return mf, nil
}

func (m *MatFunc) Dims() (int, int) { return m.rows, m.cols }

// Eval returns the matrix at x.
func (m *MatFunc) Eval(x []float64) (*mat.Dense, error) {
	dst := mat.NewDense(m.rows, m.cols, nil)
	return dst, m.EvalInto(dst, x)
}

// EvalInto writes the matrix at x into dst, which must be rows × cols.
func (m *MatFunc) EvalInto(dst *mat.Dense, x []float64) error {
	if len(x) != len(m.vars) {
		return fmt.Errorf("%s: %w", m.name, dynamo.ErrDimensionMismatch)
	}
	if r, c := dst.Dims(); r != m.rows || c != m.cols {
		return fmt.Errorf("%s: destination is %dx%d: %w", m.name, r, c, dynamo.ErrDimensionMismatch)
	}
	for k, f := range m.funcs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return evalErr(fmt.Sprintf("%s[%d,%d]", m.name, k/m.cols, k%m.cols), x)
		}
		dst.Set(k/m.cols, k%m.cols, y)
	}
	return nil
}
