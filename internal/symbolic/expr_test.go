package symbolic

import (
	"errors"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, e Expr, vars []string, x ...float64) float64 {
	t.Helper()
	f, err := Compile("test", e, vars, nil)
	require.NoError(t, err)
	y, err := f.Eval(x...)
	require.NoError(t, err)
	return y
}

func TestConstructorsFold(t *testing.T) {
	x := Sym("x")

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"sum constants", Add(Num(1), Num(2), x), "x + 3"},
		{"zero dropped", Add(x, Num(0)), "x"},
		{"product coefficient", Mul(Num(2), x, Num(3)), "6*x"},
		{"product by zero", Mul(x, Num(0), Sym("y")), "0"},
		{"power one", Pow(x, 1), "x"},
		{"power zero", Pow(x, 0), "1"},
		{"constant power", Pow(Num(3), 2), "9"},
		{"nested integer power", Pow(Pow(x, 2), 3), "x^6"},
		{"negation", Neg(x), "-x"},
		{"flattened sum", Add(Add(x, Num(1)), Add(Sym("y"), Num(1))), "x + y + 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestZeroToNegativePowerIsKept(t *testing.T) {
	e := Pow(Num(0), -1)
	_, ok := e.(*Power)
	assert.True(t, ok)

	f, err := Compile("inv0", e, nil, nil)
	require.NoError(t, err)
	_, err = f.Eval()
	assert.True(t, errors.Is(err, dynamo.ErrEvaluation))
}

func TestDiff(t *testing.T) {
	x, y := Sym("x"), Sym("y")
	vars := []string{"x", "y"}

	tests := []struct {
		name string
		expr Expr
		wrt  string
		at   []float64
		want float64
	}{
		{"constant", Num(5), "x", []float64{1, 1}, 0},
		{"linear", Mul(Num(3), x), "x", []float64{2, 0}, 3},
		{"product rule", Mul(Pow(x, 2), y), "x", []float64{3, 2}, 12},
		{"other variable", Mul(Pow(x, 2), y), "y", []float64{3, 2}, 9},
		{"quotient", Div(x, Add(y, Num(1))), "y", []float64{2, 1}, -0.5},
		{"sqrt", Sqrt(x), "x", []float64{4, 0}, 0.25},
		{"sum", Add(Pow(x, 3), Mul(x, y)), "x", []float64{1, 5}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval(t, tt.expr.Diff(tt.wrt), vars, tt.at...)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestSubs(t *testing.T) {
	x, y := Sym("x"), Sym("y")
	e := Add(Mul(x, y), Pow(x, 2))

	got := e.Subs(map[string]Expr{"x": Add(y, Num(1))})
	assert.False(t, Has(got, "x"))
	assert.Equal(t, []string{"y"}, Symbols(got))
	// (y+1)*y + (y+1)^2 at y=2
	assert.InDelta(t, 15.0, eval(t, got, []string{"y"}, 2), 1e-12)
}

func TestSymbols(t *testing.T) {
	e := Add(Mul(Sym("k2"), Sym("x1"), Sym("x4")), Neg(Sym("x1")), Sym("l9"))
	assert.Equal(t, []string{"k2", "l9", "x1", "x4"}, Symbols(e))
	assert.True(t, Has(e, "l9"))
	assert.False(t, Has(e, "x2"))
}

func TestEqual(t *testing.T) {
	x := Sym("x")
	assert.True(t, Add(x, Num(1)).Equal(Add(Sym("x"), Num(1))))
	assert.False(t, Add(x, Num(1)).Equal(Add(x, Num(2))))
	assert.True(t, Sqrt(x).Equal(Pow(Sym("x"), 0.5)))
	assert.False(t, Sqrt(x).Equal(Pow(x, 2)))
}

func TestConstValue(t *testing.T) {
	v, ok := ConstValue(Mul(Num(2), Num(4)))
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	_, ok = ConstValue(Sym("x"))
	assert.False(t, ok)

	_, ok = ConstValue(Sqrt(Num(-1)))
	assert.False(t, ok, "sqrt of a negative constant must stay unevaluated")
}
