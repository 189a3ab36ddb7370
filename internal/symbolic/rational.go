package symbolic

import (
	"fmt"
	"math"
)

// Rational is a polynomial numerator over a product of polynomial factors.
// Denominator factors are non-constant and have a positive leading
// coefficient.
type Rational struct {
	Num Poly
	Den []Poly
}

func RationalOf(p Poly) Rational { return Rational{Num: p} }

func (r Rational) IsZero() bool { return r.Num.IsZero() }

// normalize folds constant factors and signs into the numerator and
// cancels factors that divide the numerator exactly.
func (r Rational) normalize() Rational {
	if r.Num.IsZero() {
		return Rational{Num: PolyConst(0)}
	}
	num := r.Num
	den := make([]Poly, 0, len(r.Den))
	for _, f := range r.Den {
		if c, ok := f.ConstValue(); ok {
			num = num.Scale(1 / c)
			continue
		}
		f, sign := f.normalizeSign()
		if sign < 0 {
			num = num.Neg()
		}
		if q, ok := num.DivExact(f); ok {
			num = q
			continue
		}
		den = append(den, f)
	}
	return Rational{Num: num, Den: den}
}

func (r Rational) denProduct() Poly {
	out := PolyConst(1)
	for _, f := range r.Den {
		out = out.Mul(f)
	}
	return out
}

// Add shares denominator factors that are equal up to a constant multiple.
func (r Rational) Add(o Rational) Rational {
	used := make([]bool, len(r.Den))
	oNum := o.Num
	var extra []Poly
	for _, f := range o.Den {
		shared := false
		for i, g := range r.Den {
			if used[i] {
				continue
			}
			if k, ok := f.ratioTo(g); ok {
				used[i] = true
				oNum = oNum.Scale(1 / k)
				shared = true
				break
			}
		}
		if !shared {
			extra = append(extra, f)
		}
	}
	// Unshared factors of r multiply o's numerator and vice versa.
	num := r.Num
	for _, f := range extra {
		num = num.Mul(f)
	}
	for i, g := range r.Den {
		if !used[i] {
			oNum = oNum.Mul(g)
		}
	}
	den := append(append([]Poly{}, r.Den...), extra...)
	return Rational{Num: num.Add(oNum), Den: den}.normalize()
}

func (r Rational) Neg() Rational {
	return Rational{Num: r.Num.Neg(), Den: r.Den}
}

func (r Rational) Sub(o Rational) Rational { return r.Add(o.Neg()) }

func (r Rational) Mul(o Rational) Rational {
	den := append(append([]Poly{}, r.Den...), o.Den...)
	return Rational{Num: r.Num.Mul(o.Num), Den: den}.normalize()
}

// Inv returns 1/r. The numerator of r becomes a single denominator factor.
func (r Rational) Inv() (Rational, error) {
	if r.Num.IsZero() {
		return Rational{}, fmt.Errorf("symbolic: inverse of zero")
	}
	return Rational{Num: r.denProduct(), Den: []Poly{r.Num}}.normalize(), nil
}

func (r Rational) Div(o Rational) (Rational, error) {
	inv, err := o.Inv()
	if err != nil {
		return Rational{}, err
	}
	return r.Mul(inv), nil
}

// Pow raises r to an integer power.
func (r Rational) Pow(n int) (Rational, error) {
	if n < 0 {
		inv, err := r.Inv()
		if err != nil {
			return Rational{}, err
		}
		return inv.Pow(-n)
	}
	out := RationalOf(PolyConst(1))
	for i := 0; i < n; i++ {
		out = out.Mul(r)
	}
	return out, nil
}

// Expr converts r back to an expression tree.
func (r Rational) Expr() Expr {
	num := r.Num.Expr()
	if len(r.Den) == 0 {
		return num
	}
	factors := make([]Expr, 0, len(r.Den)+1)
	factors = append(factors, num)
	for _, f := range r.Den {
		factors = append(factors, Inv(f.Expr()))
	}
	return Mul(factors...)
}

func (r Rational) String() string { return r.Expr().String() }

// ToRational brings e into rational canonical form. Expressions with
// non-integer powers have no such form.
func ToRational(e Expr) (Rational, error) {
	switch v := e.(type) {
	case *Const:
		return RationalOf(PolyConst(v.V)), nil
	case *Symbol:
		return RationalOf(PolyVar(v.Name)), nil
	case *Sum:
		acc := RationalOf(PolyConst(0))
		for _, t := range v.Terms {
			r, err := ToRational(t)
			if err != nil {
				return Rational{}, err
			}
			acc = acc.Add(r)
		}
		return acc, nil
	case *Product:
		acc := RationalOf(PolyConst(1))
		for _, f := range v.Factors {
			r, err := ToRational(f)
			if err != nil {
				return Rational{}, err
			}
			acc = acc.Mul(r)
		}
		return acc, nil
	case *Power:
		if v.Exp != math.Trunc(v.Exp) {
			return Rational{}, fmt.Errorf("symbolic: non-integer power %s has no rational form", v)
		}
		base, err := ToRational(v.Base)
		if err != nil {
			return Rational{}, err
		}
		return base.Pow(int(v.Exp))
	}
	return Rational{}, fmt.Errorf("symbolic: unsupported expression %T", e)
}

// Together rewrites e as a single fraction.
func Together(e Expr) (Expr, error) {
	r, err := ToRational(e)
	if err != nil {
		return nil, err
	}
	return r.Expr(), nil
}
