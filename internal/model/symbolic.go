package model

import "github.com/san-kum/bistab/internal/symbolic"

// NumStates is the number of species.
const NumStates = 8

var stateNames = [NumStates]string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8"}

// StateNames returns x1..x8.
func StateNames() []string {
	out := make([]string, NumStates)
	copy(out, stateNames[:])
	return out
}

// StateIndex returns the position of a species name in the state vector.
func StateIndex(name string) int {
	for i, n := range stateNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Symbolic returns the eight right-hand sides dx1..dx8 over the state and
// parameter symbols.
func Symbolic() []symbolic.Expr {
	x := symbolic.Syms(stateNames[:]...)
	s := func(n string) symbolic.Expr { return symbolic.Sym(n) }
	mul := symbolic.Mul
	neg := symbolic.Neg
	add := symbolic.Add

	x1, x2, x3, x4, x5, x6, x7, x8 := x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7]
	k1, k2, k3, k4, k5 := s("k1"), s("k2"), s("k3"), s("k4"), s("k5")
	k6, k7, k8, k9, k10 := s("k6"), s("k7"), s("k8"), s("k9"), s("k10")
	k11, k12, k13 := s("k11"), s("k12"), s("k13")
	l3, l8, l9, l10, l11, l12 := s("l3"), s("l8"), s("l9"), s("l10"), s("l11"), s("l12")

	return []symbolic.Expr{
		add(neg(mul(k2, x1, x4)), neg(mul(k9, x1)), l9),
		add(mul(k2, x1, x4), neg(mul(k5, x2)), neg(mul(k11, x2, x7)), mul(l11, x8)),
		add(neg(mul(k1, x2, x3)), neg(mul(k10, x3)), l10),
		add(mul(k1, x2, x3), neg(mul(k3, x4, x5)), neg(mul(k6, x4)), mul(l3, x6)),
		add(neg(mul(k3, x4, x5)), neg(mul(k4, x4, x5)), neg(mul(k8, x5)), mul(l3, x6), l8),
		add(mul(k3, x4, x5), neg(mul(k7, x6)), neg(mul(l3, x6))),
		add(neg(mul(k11, x2, x7)), neg(mul(k12, x7)), mul(l11, x8), l12),
		add(mul(k11, x2, x7), neg(mul(k13, x8)), neg(mul(l11, x8))),
	}
}
