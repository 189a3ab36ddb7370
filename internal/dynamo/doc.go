// Package dynamo provides core primitives shared by the bistability tooling.
//
// The package defines the fundamental types for steady-state analysis of
// ordinary differential equation (ODE) systems:
//
//   - [State]: vector of concentrations
//   - [System]: numeric right-hand side dX/dt = f(X, t)
//   - [Integrator]: fixed-step numerical integrator
//   - [ParallelFor]: chunked data-parallel loop used by the root finders
//
// Domain errors ([ErrNoRealBranch], [ErrEvaluation], [ErrNegativeState], ...)
// live here so every layer can match them with errors.Is.
//
// # Example
//
//	sys, _ := model.NewSystem(model.DefaultParams())
//	integ := integrators.NewRK4()
//	x := integ.Step(sys, x0, 0, 1.0)
package dynamo
