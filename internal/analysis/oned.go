package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/symbolic"
	"gonum.org/v1/gonum/floats"
)

// OneDScan configures the scalar root search over x4.
type OneDScan struct {
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Points    int     `yaml:"points"`
	Dedup     float64 `yaml:"dedup"`
	SlopeStep float64 `yaml:"slope_step"`
	Tol       float64 `yaml:"tol"`
}

func DefaultOneDScan() OneDScan {
	return OneDScan{
		Min:       1,
		Max:       10000,
		Points:    1200,
		Dedup:     10,
		SlopeStep: 1e-2,
		Tol:       1e-10,
	}
}

// OneD holds the compiled scalar reduction for one parameter set.
type OneD struct {
	Params model.Params
	Branch int
	X2     *symbolic.Func
	DX4    *symbolic.Func
}

// CompileOneD selects the physical x2 branch under p and compiles it.
func (m *Model) CompileOneD(p model.Params) (*OneD, error) {
	od, err := m.Reduction.ToOneD(p)
	if err != nil {
		return nil, err
	}
	vals := p.Map()
	x4 := []string{"x4"}
	x2f, err := symbolic.Compile("x2(x4)", od.X2, x4, vals)
	if err != nil {
		return nil, fmt.Errorf("compile 1D: %w", err)
	}
	dx4f, err := symbolic.Compile("dx4(x4)", od.DX4, x4, vals)
	if err != nil {
		return nil, fmt.Errorf("compile 1D: %w", err)
	}
	return &OneD{Params: p, Branch: od.Branch, X2: x2f, DX4: dx4f}, nil
}

// OneDRoot is a zero of dx4(x4) with its local slope.
type OneDRoot struct {
	X4        float64
	X2        float64
	Slope     float64
	Stability Stability
}

// Point lifts the root back into the plane.
func (r OneDRoot) Point() Point { return Point{X2: r.X2, X4: r.X4} }

// Sample evaluates dx4 on the scan grid. Points where it cannot be
// evaluated are NaN.
func (o *OneD) Sample(scan OneDScan) (xs, ys []float64) {
	xs = floats.Span(make([]float64, scan.Points), scan.Min, scan.Max)
	ys, _ = o.DX4.EvalSlice(xs)
	return xs, ys
}

// Roots finds sign changes of dx4 on the scan grid and refines each with
// Brent's method. Roots closer than scan.Dedup to the previous one are
// dropped. A negative slope is Stable, anything else Unstable.
func (o *OneD) Roots(scan OneDScan) ([]OneDRoot, error) {
	if scan.Points < 2 || scan.Min >= scan.Max {
		return nil, fmt.Errorf("1D scan needs at least 2 points on a non-empty range")
	}
	xs, ys := o.Sample(scan)
	f := func(x float64) (float64, error) { return o.DX4.Eval(x) }

	var roots []OneDRoot
	for i := 0; i+1 < len(xs); i++ {
		ya, yb := ys[i], ys[i+1]
		if math.IsNaN(ya) || math.IsNaN(yb) {
			continue
		}
		var x float64
		switch {
		case ya == 0:
			x = xs[i]
		case ya*yb < 0:
			r, err := brent(f, xs[i], xs[i+1], ya, yb, scan.Tol, 200)
			if err != nil {
				continue
			}
			x = r
		default:
			continue
		}
		if n := len(roots); n > 0 && math.Abs(x-roots[n-1].X4) < scan.Dedup {
			continue
		}
		root, err := o.describe(x, scan.SlopeStep)
		if err != nil {
			continue
		}
		roots = append(roots, root)
	}
	return roots, nil
}

func (o *OneD) describe(x4, h float64) (OneDRoot, error) {
	x2, err := o.X2.Eval(x4)
	if err != nil {
		return OneDRoot{}, err
	}
	hi, err := o.DX4.Eval(x4 + h)
	if err != nil {
		return OneDRoot{}, err
	}
	lo, err := o.DX4.Eval(x4 - h)
	if err != nil {
		return OneDRoot{}, err
	}
	slope := (hi - lo) / (2 * h)
	stab := Unstable
	if slope < 0 {
		stab = Stable
	}
	return OneDRoot{X4: x4, X2: x2, Slope: slope, Stability: stab}, nil
}

// brent finds a zero of f in [a, b] given f(a) and f(b) of opposite sign.
func brent(f func(float64) (float64, error), a, b, fa, fb, tol float64, maxIter int) (float64, error) {
	if fa*fb > 0 {
		return 0, fmt.Errorf("brent: [%g, %g] does not bracket a root", a, b)
	}
	const eps = 2.220446049250313e-16
	c, fc := b, fb
	var d, e float64
	for i := 0; i < maxIter; i++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		var err error
		if fb, err = f(b); err != nil {
			return 0, err
		}
	}
	return b, fmt.Errorf("brent: %d iterations: %w", maxIter, dynamo.ErrNonConvergence)
}
