package reduce

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduced(t *testing.T) *Reduction {
	t.Helper()
	r, err := Reduce(model.Symbolic())
	require.NoError(t, err)
	return r
}

func TestReduceEliminatesFastSpecies(t *testing.T) {
	r := reduced(t)
	require.Len(t, r.Elim, len(Eliminated))

	check := func(name string, e symbolic.Expr) {
		for _, s := range symbolic.Symbols(e) {
			if s == "x2" || s == "x4" {
				continue
			}
			assert.True(t, model.IsParam(s), "%s depends on %s", name, s)
		}
	}
	for name, e := range r.Elim {
		check(name, e)
	}
	check("dx2", r.DX2)
	check("dx4", r.DX4)

	assert.True(t, symbolic.Has(r.DX2, "x2"))
	assert.True(t, symbolic.Has(r.DX4, "x4"))
}

func TestBackSubstitutionRoundTrip(t *testing.T) {
	r := reduced(t)
	p := model.DefaultParams()

	lift, err := symbolic.CompileVector("lift", r.Lift(), Kept, p.Map())
	require.NoError(t, err)
	full, err := lift.Eval([]float64{211.2, 511.5})
	require.NoError(t, err)

	want := []float64{56239.6, 211.2, 11871.2, 511.5, 2514.7, 2829.4, 67404.0, 32120.3}
	for i := range want {
		assert.InEpsilon(t, want[i], full[i], 1e-4, "x%d", i+1)
	}
	assert.True(t, dynamo.State(full).IsPhysical())

	deriv := model.NewApoptosis(p).Derive(full, 0)
	for _, name := range Eliminated {
		i := model.StateIndex(name)
		assert.InDelta(t, 0, deriv[i], 1e-9, "d%s", name)
	}

	dx2, err := symbolic.Compile("dx2", r.DX2, Kept, p.Map())
	require.NoError(t, err)
	dx4, err := symbolic.Compile("dx4", r.DX4, Kept, p.Map())
	require.NoError(t, err)
	v2, err := dx2.Eval(211.2, 511.5)
	require.NoError(t, err)
	v4, err := dx4.Eval(211.2, 511.5)
	require.NoError(t, err)
	assert.InDelta(t, deriv[1], v2, 1e-9*(1+math.Abs(v2)))
	assert.InDelta(t, deriv[3], v4, 1e-9*(1+math.Abs(v4)))
}

func TestOriginIsSteady(t *testing.T) {
	r := reduced(t)
	p := model.DefaultParams().Map()

	for _, e := range []symbolic.Expr{r.DX2, r.DX4} {
		f, err := symbolic.Compile("f", e, Kept, p)
		require.NoError(t, err)
		v, err := f.Eval(0, 0)
		require.NoError(t, err)
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestToOneDSelectsPhysicalBranch(t *testing.T) {
	r := reduced(t)
	p := model.DefaultParams()

	od, err := r.ToOneD(p)
	require.NoError(t, err)
	require.Len(t, od.Branches, 2)
	// The (-b - sqrt(d))/(2a) root is the non-negative one at defaults.
	assert.Equal(t, 1, od.Branch)
	assert.True(t, od.X2.Equal(od.Branches[1]))
	assert.False(t, symbolic.Has(od.DX4, "x2"))

	x2, err := symbolic.Compile("x2", od.X2, []string{"x4"}, p.Map())
	require.NoError(t, err)
	dx2, err := symbolic.Compile("dx2", r.DX2, Kept, p.Map())
	require.NoError(t, err)

	for _, x4 := range []float64{1, 50, 2144.5, 9000} {
		v, err := x2.Eval(x4)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		res, err := dx2.Eval(v, x4)
		require.NoError(t, err)
		assert.InDelta(t, 0, res, 1e-8)
	}

	at, err := x2.Eval(2144.5)
	require.NoError(t, err)
	assert.InEpsilon(t, 971.4, at, 1e-3)

	other, err := symbolic.Compile("other", od.Branches[1-od.Branch], []string{"x4"}, p.Map())
	require.NoError(t, err)
	neg, err := other.Eval(1000)
	require.NoError(t, err)
	assert.Less(t, neg, 0.0)
}

func TestOneDSignChange(t *testing.T) {
	r := reduced(t)
	p := model.DefaultParams()
	od, err := r.ToOneD(p)
	require.NoError(t, err)

	f, err := symbolic.Compile("dx4", od.DX4, []string{"x4"}, p.Map())
	require.NoError(t, err)
	ys, err := f.EvalSlice([]float64{2100, 2200, 4400, 4500})
	require.NoError(t, err)
	assert.Less(t, ys[0]*ys[1], 0.0)
	assert.Less(t, ys[2]*ys[3], 0.0)
}

func TestReduceRejectsWrongSize(t *testing.T) {
	_, err := Reduce(model.Symbolic()[:3])
	assert.True(t, errors.Is(err, dynamo.ErrDimensionMismatch))
}
