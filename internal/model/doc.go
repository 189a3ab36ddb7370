// Package model defines the apoptosis signalling network: eight species
// x1..x8 coupled by mass-action kinetics with nineteen rate constants.
//
// Two renderings of the same equations are provided:
//
//   - [Symbolic] returns the right-hand sides as [symbolic.Expr] trees for
//     reduction and Jacobian construction.
//   - [Apoptosis] is a numeric [dynamo.System] for trajectory integration.
//
// Parameters are carried in the immutable [Params] value.
package model
