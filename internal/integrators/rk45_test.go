package integrators

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
)

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &oscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &oscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x, taken, next, err := integrator.StepAdaptive(dyn, x0, 0, 0.5, 1e-10)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if taken <= 0 || taken > 0.5 {
		t.Errorf("taken step out of range: %g", taken)
	}
	if taken >= 0.5 {
		t.Errorf("expected a rejected first trial at tol 1e-10, took %g", taken)
	}
	if next <= 0 {
		t.Errorf("invalid suggested step: %g", next)
	}
	if math.Abs(x[0]-math.Cos(taken)) > 1e-8 {
		t.Errorf("accepted step inaccurate: got %.10f want %.10f", x[0], math.Cos(taken))
	}
}

func TestRunAdaptiveReachesSteadyState(t *testing.T) {
	dyn := &turnover{l: 81.9, k: 3.9e-3}
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 5000

	for _, name := range []string{"rk4", "rk45"} {
		t.Run(name, func(t *testing.T) {
			integ, _ := New(name)
			tr, err := Run(context.Background(), dyn, integ, dynamo.State{0}, cfg)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(tr.Errors) > 0 {
				t.Fatalf("run errors: %v", tr.Errors)
			}
			if got := tr.Times[len(tr.Times)-1]; math.Abs(got-cfg.Duration) > 1e-6 {
				t.Errorf("ended at t=%g, want %g", got, cfg.Duration)
			}
			want := dyn.exact(0, cfg.Duration)
			if rel := math.Abs(tr.Final()[0]-want) / want; rel > 1e-4 {
				t.Errorf("final %.4f, want %.4f", tr.Final()[0], want)
			}
			if tr.StepsTaken != len(tr.States)-1 {
				t.Errorf("steps %d vs %d recorded states", tr.StepsTaken, len(tr.States))
			}
		})
	}
}

func TestRunFixedStep(t *testing.T) {
	dyn := &turnover{l: 1, k: 1}
	cfg := dynamo.Config{Dt: 0.1, Duration: 1, Adaptive: false}

	tr, err := Run(context.Background(), dyn, NewRK4(), dynamo.State{0}, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tr.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", tr.StepsTaken)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := Run(ctx, &turnover{l: 1, k: 1}, NewRK4(), dynamo.State{0}, dynamo.DefaultConfig())
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if tr == nil || len(tr.States) != 1 {
		t.Error("expected only the initial state")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := Run(context.Background(), &turnover{1, 1}, NewRK4(), dynamo.State{0, 0}, dynamo.DefaultConfig()); err == nil {
		t.Error("expected dimension mismatch")
	}
	if _, err := Run(context.Background(), &turnover{1, 1}, NewRK4(), dynamo.State{0}, dynamo.Config{Dt: 0, Duration: 1}); err == nil {
		t.Error("expected invalid config")
	}
}
