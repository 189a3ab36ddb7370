package analysis

import (
	"fmt"

	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/reduce"
	"github.com/san-kum/bistab/internal/symbolic"
)

// Model is the parameter-free symbolic side of the analysis: the full
// right-hand sides, the planar reduction and both Jacobians. Build it once
// with NewModel and compile it for each parameter set.
type Model struct {
	RHS       []symbolic.Expr
	Reduction *reduce.Reduction
	Jac2      [][]symbolic.Expr
	Jac8      [][]symbolic.Expr
}

// NewModel reduces the apoptosis network. An error here means no real
// reduction exists and is fatal for the run.
func NewModel() (*Model, error) {
	rhs := model.Symbolic()
	red, err := reduce.Reduce(rhs)
	if err != nil {
		return nil, err
	}
	return &Model{
		RHS:       rhs,
		Reduction: red,
		Jac2:      symbolic.Jacobian([]symbolic.Expr{red.DX2, red.DX4}, reduce.Kept),
		Jac8:      symbolic.Jacobian(rhs, model.StateNames()),
	}, nil
}

// Compiled holds every numeric evaluator for one parameter set. It is
// immutable and safe to share between goroutines.
type Compiled struct {
	Params model.Params

	DX2     *symbolic.Func
	DX4     *symbolic.Func
	Reduced *symbolic.VecFunc
	J2      *symbolic.MatFunc

	Lift *symbolic.VecFunc
	RHS  *symbolic.VecFunc
	J8   *symbolic.MatFunc
}

// Compile binds p into every evaluator.
func (m *Model) Compile(p model.Params) (*Compiled, error) {
	vals := p.Map()
	c := &Compiled{Params: p}
	var err error

	if c.DX2, err = symbolic.Compile("dx2", m.Reduction.DX2, reduce.Kept, vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if c.DX4, err = symbolic.Compile("dx4", m.Reduction.DX4, reduce.Kept, vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	reduced := []symbolic.Expr{m.Reduction.DX2, m.Reduction.DX4}
	if c.Reduced, err = symbolic.CompileVector("reduced", reduced, reduce.Kept, vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if c.J2, err = symbolic.CompileMatrix("J2", m.Jac2, reduce.Kept, vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if c.Lift, err = symbolic.CompileVector("lift", m.Reduction.Lift(), reduce.Kept, vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if c.RHS, err = symbolic.CompileVector("rhs", m.RHS, model.StateNames(), vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if c.J8, err = symbolic.CompileMatrix("J8", m.Jac8, model.StateNames(), vals); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return c, nil
}

// Residual returns (dx2, dx4) at p.
func (c *Compiled) Residual(p Point) ([]float64, error) {
	return c.Reduced.Eval([]float64{p.X2, p.X4})
}
