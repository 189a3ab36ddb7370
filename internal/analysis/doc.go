// Package analysis finds and classifies steady states of the apoptosis
// network.
//
// A [Model] holds the symbolic reduction and Jacobians; [Model.Compile]
// binds a parameter set into a [Compiled] bundle of evaluators that every
// other operation consumes:
//
//   - [FindSteadyStates]: multi-start damped Newton over the (x2, x4) plane
//   - [OneD.Roots]: sign-change scan and Brent refinement of dx4(x4)
//   - [Classify]: Stable / Unstable (Source) / Saddle (Mixed) from eigenvalues
//   - [Compiled.Analyze]: lift to the full state and compare 2D with 8D
//   - [Sweep]: repeat the pipeline across values of one parameter
//   - [Nullclines], [Bifurcation]: grids and ASCII renderings for display
//   - [CheckReturn]: integrate the full model from a perturbed steady state
//
// # Multi-start coverage
//
// The Newton search is best effort. A denser guess grid is expected, not
// guaranteed, to find more roots; every attempt's [Outcome] is recorded in
// the [FindReport] so coverage can be inspected.
//
//	m, _ := analysis.NewModel()
//	c, _ := m.Compile(model.DefaultParams())
//	report := analysis.FindSteadyStates(c, analysis.DefaultSearch())
//	results := analysis.AnalyzeAll(c, report.Roots, analysis.DefaultStabilityTol, logger)
package analysis
