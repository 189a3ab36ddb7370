package model

import (
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolicMatchesNumeric(t *testing.T) {
	p := DefaultParams()
	rhs, err := symbolic.CompileVector("rhs", Symbolic(), StateNames(), p.Map())
	require.NoError(t, err)
	sys := NewApoptosis(p)

	states := []dynamo.State{
		{56239.6, 211.2, 11871.2, 511.5, 2514.7, 2829.4, 67404.0, 32120.3},
		{1, 2, 3, 4, 5, 6, 7, 8},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{1e5, 5000, 10, 6000, 1, 1, 1e4, 300},
	}

	for _, x := range states {
		want := sys.Derive(x, 0)
		got, err := rhs.Eval(x)
		require.NoError(t, err)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-9*(1+abs(want[i])), "dx%d at %v", i+1, x)
		}
	}
}

func TestSymbolicUsesEverySymbol(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Symbolic() {
		for _, s := range symbolic.Symbols(e) {
			seen[s] = true
		}
	}
	for _, n := range append(Names(), StateNames()...) {
		assert.True(t, seen[n], "%s unused", n)
	}
	assert.Len(t, seen, NumParams+NumStates)
}

func TestDefaultStateIsSteady(t *testing.T) {
	sys := NewApoptosis(DefaultParams())
	x := sys.DefaultState()
	require.Len(t, x, sys.StateDim())
	assert.True(t, x.IsPhysical())

	for i, d := range sys.Derive(x, 0) {
		assert.InDelta(t, 0, d, 1e-9, "dx%d", i+1)
	}
}

func TestApoptosisConfigurable(t *testing.T) {
	var sys dynamo.Configurable = NewApoptosis(DefaultParams())

	require.NoError(t, sys.SetParam("k1", 1e-4))
	assert.Equal(t, 1e-4, sys.GetParams()["k1"])
	assert.Error(t, sys.SetParam("k0", 1))
}

func TestStateIndex(t *testing.T) {
	assert.Equal(t, 1, StateIndex("x2"))
	assert.Equal(t, 7, StateIndex("x8"))
	assert.Equal(t, -1, StateIndex("k1"))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
