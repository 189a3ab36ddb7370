// Package viz renders steady-state analysis in the terminal.
//
//   - [StabilityStyle]: colour and mark for every stability class, checked
//     for completeness when the package loads
//   - [Canvas]: Braille-based pixel canvas with linear or log axes
//   - [LiveModel]: Bubble Tea view integrating the full model and tracing
//     the trajectory in the (x2, x4) plane
//
// # Key Bindings (live view)
//
//	Space - Pause/Resume integration
//	R     - Reset to the starting state and parameters
//	Tab   - Select next rate constant
//	↑/↓   - Scale the selected constant by ±10%
//	T     - Cycle colour themes
//	?     - Show help overlay
package viz
