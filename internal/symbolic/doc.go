// Package symbolic is a small computer-algebra kernel for rate equations.
//
// It covers exactly what steady-state reduction needs:
//
//   - immutable expression trees ([Const], [Symbol], [Sum], [Product], [Power])
//     with constant folding in the constructors
//   - differentiation ([Expr.Diff], [Jacobian]) and substitution ([Expr.Subs])
//   - a multivariate polynomial / rational-function canonical form
//     ([Poly], [Rational]) with exact cancellation of polynomial factors
//   - equation solving for linear and quadratic unknowns ([Solve]) and
//     sequential elimination of a set of unknowns ([Eliminate])
//   - compilation to closures over float64 ([Compile], [CompileVector],
//     [CompileMatrix]) with parameters folded in as constants
//
// Coefficients are float64. Rate-law systems built from symbols only keep
// small integer coefficients during elimination, so cancellation is exact in
// practice; a relative tolerance guards against rounding residue.
package symbolic
