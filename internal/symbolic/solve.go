package symbolic

import (
	"fmt"

	"github.com/san-kum/bistab/internal/dynamo"
)

// Solve returns the roots of eq = 0 in v. The numerator of eq must be
// linear or quadratic in v. Quadratic roots come in the order
// (-b + sqrt(d))/(2a), (-b - sqrt(d))/(2a).
func Solve(eq Expr, v string) ([]Expr, error) {
	r, err := ToRational(eq)
	if err != nil {
		return nil, fmt.Errorf("solve for %s: %w", v, err)
	}
	c := r.Num.Coeffs(v)
	switch len(c) - 1 {
	case 0:
		return nil, fmt.Errorf("solve for %s: equation does not contain it: %w", v, dynamo.ErrNoRealBranch)
	case 1:
		root, err := RationalOf(c[0].Neg()).Div(RationalOf(c[1]))
		if err != nil {
			return nil, fmt.Errorf("solve for %s: %w", v, err)
		}
		return []Expr{root.Expr()}, nil
	case 2:
		a, b := c[2].Expr(), c[1].Expr()
		disc := c[1].Mul(c[1]).Sub(c[2].Mul(c[0]).Scale(4)).Expr()
		twoA := Mul(Num(2), a)
		return []Expr{
			Div(Add(Neg(b), Sqrt(disc)), twoA),
			Div(Sub(Neg(b), Sqrt(disc)), twoA),
		}, nil
	}
	return nil, fmt.Errorf("solve for %s: degree %d not supported: %w", v, len(c)-1, dynamo.ErrNoRealBranch)
}

// Eliminate solves eqs = 0 for vars by sequential substitution. Each
// variable, in order, is taken from the first unused equation whose
// numerator is linear in it; the solution is substituted into the
// remaining equations and into earlier solutions.
func Eliminate(eqs []Expr, vars []string) (map[string]Expr, error) {
	pending := make([]Expr, len(eqs))
	copy(pending, eqs)
	used := make([]bool, len(eqs))
	sol := make(map[string]Expr, len(vars))
	order := make([]string, 0, len(vars))

	for _, v := range vars {
		idx := -1
		var value Expr
		for i, eq := range pending {
			if used[i] {
				continue
			}
			r, err := ToRational(eq)
			if err != nil {
				return nil, fmt.Errorf("eliminate %s: %w", v, err)
			}
			if r.Num.Degree(v) != 1 {
				continue
			}
			roots, err := Solve(r.Num.Expr(), v)
			if err != nil {
				return nil, fmt.Errorf("eliminate %s: %w", v, err)
			}
			idx, value = i, roots[0]
			break
		}
		if idx < 0 {
			return nil, fmt.Errorf("eliminate %s: no equation is linear in it: %w", v, dynamo.ErrNoRealBranch)
		}
		used[idx] = true
		bind := map[string]Expr{v: value}
		for i := range pending {
			if !used[i] {
				pending[i] = pending[i].Subs(bind)
			}
		}
		for _, prev := range order {
			back, err := Together(sol[prev].Subs(bind))
			if err != nil {
				return nil, fmt.Errorf("eliminate %s: %w", v, err)
			}
			sol[prev] = back
		}
		sol[v] = value
		order = append(order, v)
	}
	return sol, nil
}
