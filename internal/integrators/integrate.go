package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
)

// Trajectory is a sampled solution of an initial value problem.
type Trajectory struct {
	Times      []float64
	States     []dynamo.State
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state.
func (tr *Trajectory) Final() dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Run integrates dyn from x0 for cfg.Duration. With cfg.Adaptive the step
// is chosen by the integrator if it is adaptive, or by step doubling
// otherwise. An invalid state stops the run and is recorded in Errors.
func Run(ctx context.Context, dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, cfg dynamo.Config) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("initial state has %d components, system %d: %w", len(x0), dyn.StateDim(), dynamo.ErrDimensionMismatch)
	}

	tr := &Trajectory{
		Times:  []float64{0},
		States: []dynamo.State{x0.Clone()},
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	for step := 0; cfg.Duration-t > 1e-12*cfg.Duration; step++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		if t+dt > cfg.Duration {
			dt = cfg.Duration - t
		}

		var (
			newX  dynamo.State
			taken = dt
			next  = dt
			err   error
		)
		if cfg.Adaptive {
			newX, taken, next, err = adaptiveStep(dyn, integ, x, t, dt, cfg)
		} else {
			newX = integ.Step(dyn, x, t, dt)
		}
		if err != nil {
			tr.Errors = append(tr.Errors, err)
			break
		}
		if cfg.ValidateState && !newX.IsValid() {
			tr.Errors = append(tr.Errors, dynamo.SimError{Time: t, Step: step, Message: "invalid state (NaN/Inf)"})
			break
		}

		x = newX
		t += taken
		dt = math.Min(next, cfg.MaxDt)
		if cfg.MaxDt <= 0 {
			dt = next
		}
		tr.StepsTaken++
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, x.Clone())
	}

	return tr, nil
}

func adaptiveStep(dyn dynamo.System, integ dynamo.Integrator, x dynamo.State, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64, error) {
	if adaptive, ok := integ.(dynamo.AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(dyn, x, t, dt, cfg.Tolerance)
	}

	for {
		full := integ.Step(dyn, x, t, dt)
		half := integ.Step(dyn, x, t, dt/2)
		two := integ.Step(dyn, half, t+dt/2, dt/2)

		errNorm := full.Sub(two).Norm() / (1 + two.Norm())
		if errNorm > cfg.Tolerance && dt/2 >= cfg.MinDt && dt/2 > 0 {
			dt /= 2
			continue
		}

		next := dt
		if errNorm < cfg.Tolerance/10 {
			next = dt * 2
		}
		return two, dt, next, nil
	}
}
