package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poly(t *testing.T, e Expr) Poly {
	t.Helper()
	r, err := ToRational(e)
	require.NoError(t, err)
	require.Empty(t, r.Den, "expected a polynomial, got %s", r)
	return r.Num
}

func TestPolyArithmetic(t *testing.T) {
	x, y := PolyVar("x"), PolyVar("y")

	sq := x.Add(y).Mul(x.Add(y))
	want := x.Mul(x).Add(x.Mul(y).Scale(2)).Add(y.Mul(y))
	assert.True(t, sq.Equal(want), "got %s", sq)

	assert.True(t, x.Sub(x).IsZero())
	assert.Equal(t, 2, sq.Degree("x"))
	assert.Equal(t, 0, sq.Degree("z"))

	c, ok := PolyConst(4).ConstValue()
	require.True(t, ok)
	assert.Equal(t, 4.0, c)
	_, ok = x.ConstValue()
	assert.False(t, ok)
}

func TestPolyCoeffs(t *testing.T) {
	// a*x^2 + b*x*y + 3
	p := poly(t, Add(Mul(Sym("a"), Pow(Sym("x"), 2)), Mul(Sym("b"), Sym("x"), Sym("y")), Num(3)))
	c := p.Coeffs("x")
	require.Len(t, c, 3)
	assert.True(t, c[0].Equal(PolyConst(3)))
	assert.True(t, c[1].Equal(PolyVar("b").Mul(PolyVar("y"))))
	assert.True(t, c[2].Equal(PolyVar("a")))
}

func TestPolyDivExact(t *testing.T) {
	x, y := PolyVar("x"), PolyVar("y")
	one := PolyConst(1)

	tests := []struct {
		name   string
		num    Poly
		den    Poly
		want   Poly
		wantOK bool
	}{
		{"difference of squares", x.Mul(x).Sub(one), x.Add(one), x.Sub(one), true},
		{"bivariate", x.Mul(y).Add(x).Add(y).Add(one), y.Add(one), x.Add(one), true},
		{"remainder", x.Mul(x).Add(one), x.Add(one), Poly{}, false},
		{"missing variable", x.Add(one), y, Poly{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.num.DivExact(tt.den)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, got.Equal(tt.want), "got %s", got)
			}
		})
	}
}

func TestRationalSharesFactors(t *testing.T) {
	x := Sym("x")
	e := Add(Inv(Add(x, Num(1))), Inv(Add(x, Num(1))))

	r, err := ToRational(e)
	require.NoError(t, err)
	require.Len(t, r.Den, 1)
	assert.True(t, r.Num.Equal(PolyConst(2)))
}

func TestRationalNegatedFactor(t *testing.T) {
	x := Sym("x")
	// 1/(x-1) + 1/(1-x) == 0
	e := Add(Inv(Sub(x, Num(1))), Inv(Sub(Num(1), x)))

	r, err := ToRational(e)
	require.NoError(t, err)
	assert.True(t, r.IsZero(), "got %s", r)
}

func TestRationalCancels(t *testing.T) {
	x := Sym("x")
	e := Div(Sub(Pow(x, 2), Num(1)), Sub(x, Num(1)))

	p := poly(t, e)
	assert.True(t, p.Equal(PolyVar("x").Add(PolyConst(1))), "got %s", p)
}

func TestRationalNestedFraction(t *testing.T) {
	a, b := Sym("a"), Sym("b")
	// (a / (a+b)) / (1/(a+b)) == a
	e := Div(Div(a, Add(a, b)), Inv(Add(a, b)))

	p := poly(t, e)
	assert.True(t, p.Equal(PolyVar("a")), "got %s", p)
}

func TestToRationalRejectsSqrt(t *testing.T) {
	_, err := ToRational(Sqrt(Sym("x")))
	assert.Error(t, err)
}

func TestTogetherPreservesValue(t *testing.T) {
	x, y := Sym("x"), Sym("y")
	e := Add(Div(x, Add(y, Num(2))), Div(y, Add(x, Num(3))), Num(1))

	tog, err := Together(e)
	require.NoError(t, err)

	vars := []string{"x", "y"}
	for _, pt := range [][2]float64{{1, 1}, {0.5, 7}, {12, 0.25}} {
		assert.InDelta(t, eval(t, e, vars, pt[0], pt[1]), eval(t, tog, vars, pt[0], pt[1]), 1e-12)
	}
}
