// Package reduce eliminates the fast species of the apoptosis network.
//
// Setting dx1, dx3, dx5, dx6, dx7, dx8 to zero and solving for those
// species leaves a planar system in (x2, x4). Solving the reduced dx2 = 0
// for x2 leaves a scalar equation in x4.
package reduce

import (
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/symbolic"
)

// Eliminated lists the species solved away, in elimination order.
var Eliminated = []string{"x1", "x3", "x5", "x6", "x7", "x8"}

// Kept lists the coordinates of the reduced system.
var Kept = []string{"x2", "x4"}

// Reduction is the planar system with its elimination relations. It holds
// parameter symbols only and is shared across parameter sets.
type Reduction struct {
	// Elim maps each eliminated species to its value in (x2, x4).
	Elim map[string]symbolic.Expr
	DX2  symbolic.Expr
	DX4  symbolic.Expr
}

// Reduce performs the elimination on the model's right-hand sides.
func Reduce(rhs []symbolic.Expr) (*Reduction, error) {
	if len(rhs) != model.NumStates {
		return nil, fmt.Errorf("reduce: got %d equations: %w", len(rhs), dynamo.ErrDimensionMismatch)
	}
	eqs := make([]symbolic.Expr, 0, len(Eliminated))
	for _, name := range Eliminated {
		eqs = append(eqs, rhs[model.StateIndex(name)])
	}

	elim, err := symbolic.Eliminate(eqs, Eliminated)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	for _, name := range Eliminated {
		for _, s := range symbolic.Symbols(elim[name]) {
			if s != "x2" && s != "x4" && !model.IsParam(s) {
				return nil, fmt.Errorf("reduce: %s still depends on %s: %w", name, s, dynamo.ErrNoRealBranch)
			}
		}
	}

	dx2, err := symbolic.Together(rhs[model.StateIndex("x2")].Subs(elim))
	if err != nil {
		return nil, fmt.Errorf("reduce dx2: %w", err)
	}
	dx4, err := symbolic.Together(rhs[model.StateIndex("x4")].Subs(elim))
	if err != nil {
		return nil, fmt.Errorf("reduce dx4: %w", err)
	}
	return &Reduction{Elim: elim, DX2: dx2, DX4: dx4}, nil
}

// Lift returns the expressions for all eight species in (x2, x4).
func (r *Reduction) Lift() []symbolic.Expr {
	out := make([]symbolic.Expr, model.NumStates)
	for i, name := range model.StateNames() {
		if e, ok := r.Elim[name]; ok {
			out[i] = e
		} else {
			out[i] = symbolic.Sym(name)
		}
	}
	return out
}

// OneD is the scalar reduction dx4(x4) along one branch x2(x4) of the
// reduced dx2 = 0.
type OneD struct {
	Branches []symbolic.Expr
	Branch   int
	X2       symbolic.Expr
	DX4      symbolic.Expr
}

// ProbeX4 are the points at which x2 branches are checked when choosing
// the physical one.
var ProbeX4 = []float64{1, 10, 100, 1000, 10000}

// ToOneD solves the reduced dx2 = 0 for x2 and substitutes into dx4. The
// quadratic has two branches; the first one that is finite and
// non-negative at every probe x4 under p is selected.
func (r *Reduction) ToOneD(p model.Params) (*OneD, error) {
	branches, err := symbolic.Solve(r.DX2, "x2")
	if err != nil {
		return nil, fmt.Errorf("reduce to 1D: %w", err)
	}
	params := p.Map()
	for i, b := range branches {
		if !physicalBranch(b, params) {
			continue
		}
		return &OneD{
			Branches: branches,
			Branch:   i,
			X2:       b,
			DX4:      r.DX4.Subs(map[string]symbolic.Expr{"x2": b}),
		}, nil
	}
	return nil, fmt.Errorf("reduce to 1D: none of %d x2 branches is non-negative: %w", len(branches), dynamo.ErrNoRealBranch)
}

func physicalBranch(b symbolic.Expr, params map[string]float64) bool {
	f, err := symbolic.Compile("x2(x4)", b, []string{"x4"}, params)
	if err != nil {
		return false
	}
	for _, x4 := range ProbeX4 {
		v, err := f.Eval(x4)
		if err != nil || v < 0 || math.IsNaN(v) {
			return false
		}
	}
	return true
}
