package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/integrators"
)

// ReturnCheck is the outcome of integrating the full model from a
// perturbed steady state.
type ReturnCheck struct {
	Steady          dynamo.State
	Start           dynamo.State
	Final           dynamo.State
	InitialDistance float64
	FinalDistance   float64
	Steps           int
	Returned        bool
}

// ReturnFraction is how close, relative to the initial offset, a
// trajectory must end to count as having returned.
const ReturnFraction = 0.01

// Perturb scales each component of x by 1±frac, alternating in sign.
func Perturb(x dynamo.State, frac float64) dynamo.State {
	out := x.Clone()
	for i := range out {
		if i%2 == 0 {
			out[i] *= 1 + frac
		} else {
			out[i] *= 1 - frac
		}
	}
	return out
}

// CheckReturn integrates sys from a perturbation of steady and reports
// whether the trajectory comes back.
func CheckReturn(ctx context.Context, sys dynamo.System, integ dynamo.Integrator, steady dynamo.State, frac float64, cfg dynamo.Config) (*ReturnCheck, error) {
	start := Perturb(steady, frac)
	tr, err := integrators.Run(ctx, sys, integ, start, cfg)
	if err != nil {
		return nil, err
	}
	if len(tr.Errors) > 0 {
		return nil, fmt.Errorf("trajectory from %v: %w", steady, tr.Errors[0])
	}
	final := tr.Final()
	rc := &ReturnCheck{
		Steady:          steady,
		Start:           start,
		Final:           final,
		InitialDistance: start.Distance(steady),
		FinalDistance:   final.Distance(steady),
		Steps:           tr.StepsTaken,
	}
	rc.Returned = rc.FinalDistance <= ReturnFraction*rc.InitialDistance
	return rc, nil
}
