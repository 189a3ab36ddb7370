package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
)

// turnover is a species produced at rate l and degraded at rate k.
type turnover struct{ l, k float64 }

func (s *turnover) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{s.l - s.k*x[0]}
}

func (s *turnover) StateDim() int { return 1 }

func (s *turnover) exact(x0, t float64) float64 {
	ss := s.l / s.k
	return ss + (x0-ss)*math.Exp(-s.k*t)
}

// oscillator is a harmonic oscillator; its energy is conserved.
type oscillator struct{}

func (h *oscillator) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *oscillator) StateDim() int { return 2 }

func (h *oscillator) energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestFixedStepTurnover(t *testing.T) {
	dyn := &turnover{l: 507, k: 3.9e-3}
	const dt, steps = 5.0, 400

	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 5e-2},
		{"rk4", NewRK4(), 1e-6},
		{"rk45", NewRK45(), 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{0}
			for i := 0; i < steps; i++ {
				x = tt.integ.Step(dyn, x, float64(i)*dt, dt)
			}
			want := dyn.exact(0, dt*steps)
			if rel := math.Abs(x[0]-want) / want; rel > tt.tol {
				t.Errorf("relative error %.3g exceeds %.3g (got %.4f, want %.4f)", rel, tt.tol, x[0], want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ == nil {
			t.Fatalf("New(%q) returned nil", name)
		}
	}
	if _, err := New("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if len(Names()) != 3 {
		t.Errorf("expected 3 integrators, got %v", Names())
	}
}
