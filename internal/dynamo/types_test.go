package dynamo

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		valid    bool
		physical bool
	}{
		{"empty", State{}, true, true},
		{"normal", State{1.0, 2.0, 3.0}, true, true},
		{"zeros", State{0.0, 0.0}, true, true},
		{"negative", State{1.0, -1e-3}, true, false},
		{"with NaN", State{1.0, math.NaN()}, false, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.state.IsPhysical(); got != tt.physical {
				t.Errorf("IsPhysical() = %v, want %v", got, tt.physical)
			}
		})
	}
}

func TestState_FirstNegative(t *testing.T) {
	tests := []struct {
		state State
		want  int
	}{
		{State{1, 2, 3}, -1},
		{State{1, -2, -3}, 1},
		{State{-0.5}, 0},
		{State{}, -1},
	}
	for _, tt := range tests {
		if got := tt.state.FirstNegative(); got != tt.want {
			t.Errorf("FirstNegative(%v) = %d, want %d", tt.state, got, tt.want)
		}
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	sum := a.Add(b)
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add failed: got %v", sum)
	}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	scaled := a.Scale(2)
	if scaled[0] != 2 || scaled[1] != 4 || scaled[2] != 6 {
		t.Errorf("Scale failed: got %v", scaled)
	}

	if d := a.Distance(b); math.Abs(d-math.Sqrt(27)) > 1e-12 {
		t.Errorf("Distance = %v", d)
	}

	c := a.Clone()
	c[0] = 100
	if a[0] != 1 {
		t.Error("Clone shares storage")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"adaptive without tolerance", func(c *Config) { c.Tolerance = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEvalError(t *testing.T) {
	var err error = &EvalError{What: "dx2", Point: []float64{1, 2}, Wrapped: ErrEvaluation}
	wrapped := fmt.Errorf("newton: %w", err)

	if !errors.Is(wrapped, ErrEvaluation) {
		t.Error("EvalError should unwrap to ErrEvaluation")
	}
	var ee *EvalError
	if !errors.As(wrapped, &ee) || ee.Point[1] != 2 {
		t.Errorf("errors.As failed: %v", wrapped)
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 3, Message: "state became NaN"}
	if got := err.Error(); got != "step 3 (t=1.5000): state became NaN" {
		t.Errorf("Error() = %q", got)
	}
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		hits := make([]int32, n)
		var calls, short int32
		ParallelFor(n, 16, func(start, end int) {
			atomic.AddInt32(&calls, 1)
			if end-start < 16 {
				atomic.AddInt32(&short, 1)
			}
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
		if calls == 0 {
			t.Errorf("n=%d: fn never called", n)
		}
		if short > 1 {
			t.Errorf("n=%d: %d chunks below the minimum size", n, short)
		}
	}
}
