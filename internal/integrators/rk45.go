package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince embedded pair with step rejection. Error is
// measured as an RMS norm weighted by tol*(1+|x|), so species at very
// different scales are controlled alike.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	minDt    float64
	maxTries int
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		minDt:    1e-9,
		maxTries: 50,
	}
}

// Step takes one step of exactly dt.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _ := r.trial(dyn, x, t, dt, 1e-6)
	return xNew
}

// StepAdaptive advances by at most dt, shrinking the step until the error
// estimate is within tol. It returns the new state, the step taken and the
// suggested next step.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, float64, error) {
	for try := 0; try < r.maxTries; try++ {
		xNew, errRatio := r.trial(dyn, x, t, dt, tol)
		if !xNew.IsValid() {
			dt *= r.minScale
		} else if errRatio <= 1 {
			return xNew, dt, dt * r.growth(errRatio), nil
		} else {
			dt *= math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		}
		if dt < r.minDt {
			break
		}
	}
	return x, 0, dt, fmt.Errorf("rk45 at t=%g: step fell below %g: %w", t, r.minDt, dynamo.ErrInvalidState)
}

func (r *RK45) growth(errRatio float64) float64 {
	if errRatio == 0 {
		return r.maxScale
	}
	return math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
}

// trial takes one Dormand-Prince step and returns the fifth-order solution
// with its scaled error estimate.
func (r *RK45) trial(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64) {
	n := len(x)
	stage := make(dynamo.State, n)

	k1 := dyn.Derive(x, t)
	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(stage, t+a2*dt)
	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(stage, t+a3*dt)
	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(stage, t+a4*dt)
	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(stage, t+a5*dt)
	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(stage, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	k7 := dyn.Derive(xNew, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		w := tol * (1 + math.Max(math.Abs(x[i]), math.Abs(xNew[i])))
		sum += (errEst / w) * (errEst / w)
	}
	if n == 0 {
		return xNew, 0
	}
	return xNew, math.Sqrt(sum / float64(n))
}
