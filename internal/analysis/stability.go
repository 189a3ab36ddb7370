package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultStabilityTol is the band around zero inside which an eigenvalue's
// real part counts as neither positive nor negative.
const DefaultStabilityTol = 1e-4

// Stability classifies a steady state by the signs of its eigenvalues.
type Stability int

const (
	Stable Stability = iota
	Unstable
	Saddle
)

var stabilityNames = [...]string{
	Stable:   "Stable",
	Unstable: "Unstable (Source)",
	Saddle:   "Saddle (Mixed)",
}

// Stabilities returns every classification in declaration order.
func Stabilities() []Stability {
	return []Stability{Stable, Unstable, Saddle}
}

func (s Stability) String() string {
	if s < 0 || int(s) >= len(stabilityNames) {
		return fmt.Sprintf("Stability(%d)", int(s))
	}
	return stabilityNames[s]
}

// ParseStability is the inverse of String.
func ParseStability(name string) (Stability, error) {
	for _, s := range Stabilities() {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stability %q", name)
}

func (s Stability) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stability) UnmarshalText(b []byte) error {
	v, err := ParseStability(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Classify counts eigenvalues with real part above tol and below -tol.
// Only negative ⇒ Stable, only positive ⇒ Unstable. Everything else is a
// Saddle, including the case where every eigenvalue lies inside the band.
func Classify(eigs []complex128, tol float64) Stability {
	pos, neg := 0, 0
	for _, ev := range eigs {
		switch re := real(ev); {
		case re > tol:
			pos++
		case re < -tol:
			neg++
		}
	}
	switch {
	case pos == 0 && neg > 0:
		return Stable
	case neg == 0 && pos > 0:
		return Unstable
	default:
		return Saddle
	}
}

// Eigenvalues of a square matrix.
func Eigenvalues(a mat.Matrix) ([]complex128, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("eigenvalues of %dx%d matrix", r, c)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigen decomposition did not converge")
	}
	vals := eig.Values(nil)
	for _, v := range vals {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) {
			return nil, fmt.Errorf("eigen decomposition produced NaN")
		}
	}
	return vals, nil
}

// MaxReal is the largest real part among eigs.
func MaxReal(eigs []complex128) float64 {
	m := math.Inf(-1)
	for _, ev := range eigs {
		m = math.Max(m, real(ev))
	}
	return m
}
