package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bistab/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Point is a location in the reduced (x2, x4) plane.
type Point struct {
	X2 float64 `json:"x2"`
	X4 float64 `json:"x4"`
}

func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X2-q.X2, p.X4-q.X4)
}

func (p Point) String() string {
	return fmt.Sprintf("(x2=%.4g, x4=%.4g)", p.X2, p.X4)
}

// Outcome is the fate of one multi-start attempt.
type Outcome int

const (
	Accepted Outcome = iota
	NotConverged
	EvalFailed
	OutOfDomain
	Duplicate
	ResidualTooLarge
)

var outcomeNames = [...]string{
	Accepted:         "accepted",
	NotConverged:     "non-convergence",
	EvalFailed:       "evaluation",
	OutOfDomain:      "out-of-domain",
	Duplicate:        "duplicate",
	ResidualTooLarge: "residual",
}

func Outcomes() []Outcome {
	return []Outcome{Accepted, NotConverged, EvalFailed, OutOfDomain, Duplicate, ResidualTooLarge}
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Search configures the multi-start steady-state search. Guesses form a
// GuessCount × GuessCount grid over [GuessMin, GuessMax]² and roots must
// lie inside the domain rectangle.
type Search struct {
	X2Min         float64       `yaml:"x2_min"`
	X2Max         float64       `yaml:"x2_max"`
	X4Min         float64       `yaml:"x4_min"`
	X4Max         float64       `yaml:"x4_max"`
	GuessMin      float64       `yaml:"guess_min"`
	GuessMax      float64       `yaml:"guess_max"`
	GuessCount    int           `yaml:"guess_count"`
	MinSeparation float64       `yaml:"min_separation"`
	ResidualTol   float64       `yaml:"residual_tol"`
	Newton        NewtonOptions `yaml:"newton"`
}

func DefaultSearch() Search {
	return Search{
		X2Min:         0,
		X2Max:         1e5,
		X4Min:         0,
		X4Max:         1e5,
		GuessMin:      0.1,
		GuessMax:      6000,
		GuessCount:    60,
		MinSeparation: 1.0,
		ResidualTol:   1e-6,
		Newton:        DefaultNewton(),
	}
}

func (s Search) Validate() error {
	switch {
	case s.X2Min >= s.X2Max || s.X4Min >= s.X4Max:
		return fmt.Errorf("search domain is empty")
	case s.GuessCount < 1:
		return fmt.Errorf("guess count must be at least 1, got %d", s.GuessCount)
	case s.GuessMin > s.GuessMax:
		return fmt.Errorf("guess range [%g, %g] is inverted", s.GuessMin, s.GuessMax)
	case s.MinSeparation < 0 || s.ResidualTol <= 0:
		return fmt.Errorf("separation and residual tolerance must be positive")
	case s.Newton.MaxIter < 1:
		return fmt.Errorf("newton needs at least one iteration")
	}
	return nil
}

// Guesses returns the starting grid, x2 varying slowest.
func (s Search) Guesses() []Point {
	axis := []float64{s.GuessMin}
	if s.GuessCount > 1 {
		axis = floats.Span(make([]float64, s.GuessCount), s.GuessMin, s.GuessMax)
	}
	out := make([]Point, 0, len(axis)*len(axis))
	for _, x2 := range axis {
		for _, x4 := range axis {
			out = append(out, Point{X2: x2, X4: x4})
		}
	}
	return out
}

// domainSlack absorbs round-off for roots sitting on a domain edge, such
// as the origin.
const domainSlack = 1e-6

func (s Search) clamp(p Point) (Point, bool) {
	in := func(v, lo, hi float64) (float64, bool) {
		switch {
		case v >= lo && v <= hi:
			return v, true
		case v >= lo-domainSlack && v < lo:
			return lo, true
		case v <= hi+domainSlack && v > hi:
			return hi, true
		}
		return v, false
	}
	x2, ok2 := in(p.X2, s.X2Min, s.X2Max)
	x4, ok4 := in(p.X4, s.X4Min, s.X4Max)
	return Point{X2: x2, X4: x4}, ok2 && ok4
}

// Attempt records one Newton run and how its result was judged.
type Attempt struct {
	Guess      Point
	Root       Point
	Iterations int
	Residual   float64
	Outcome    Outcome
	Err        error
}

// FindReport is the result of a multi-start search.
type FindReport struct {
	Roots    []Point
	Attempts []Attempt
}

// Counts tallies attempts by outcome. Every outcome is present.
func (r *FindReport) Counts() map[Outcome]int {
	out := make(map[Outcome]int, len(outcomeNames))
	for _, o := range Outcomes() {
		out[o] = 0
	}
	for _, a := range r.Attempts {
		out[a.Outcome]++
	}
	return out
}

// attemptsPerWorker is the smallest batch of guesses handed to one
// goroutine. A single Newton run is a few microseconds of work, so smaller
// batches spend more time scheduling than solving.
const attemptsPerWorker = 16

// FindSteadyStates runs Newton from every guess in parallel, then filters
// the results in guess order: out-of-domain, then too close to an
// accepted root, then residual above tolerance.
func FindSteadyStates(c *Compiled, s Search) *FindReport {
	guesses := s.Guesses()
	attempts := make([]Attempt, len(guesses))

	dynamo.ParallelFor(len(guesses), attemptsPerWorker, func(start, end int) {
		for i := start; i < end; i++ {
			attempts[i] = attempt(c, s, guesses[i])
		}
	})

	report := &FindReport{Attempts: attempts}
	for i := range attempts {
		a := &attempts[i]
		if a.Err != nil {
			continue
		}
		root, ok := s.clamp(a.Root)
		if !ok {
			a.Outcome = OutOfDomain
			continue
		}
		a.Root = root
		if isDuplicate(report.Roots, root, s.MinSeparation) {
			a.Outcome = Duplicate
			continue
		}
		if !withinResidual(c, root, s.ResidualTol) {
			a.Outcome = ResidualTooLarge
			continue
		}
		a.Outcome = Accepted
		report.Roots = append(report.Roots, root)
	}
	return report
}

func attempt(c *Compiled, s Search, guess Point) Attempt {
	res, err := Newton(c.Reduced, c.J2, []float64{guess.X2, guess.X4}, s.Newton)
	a := Attempt{
		Guess:      guess,
		Root:       Point{X2: res.X[0], X4: res.X[1]},
		Iterations: res.Iterations,
		Residual:   res.Residual,
		Err:        err,
	}
	switch {
	case err == nil:
	case errors.Is(err, dynamo.ErrEvaluation):
		a.Outcome = EvalFailed
	default:
		a.Outcome = NotConverged
	}
	return a
}

func isDuplicate(roots []Point, p Point, minSep float64) bool {
	for _, r := range roots {
		if r.Distance(p) < minSep {
			return true
		}
	}
	return false
}

func withinResidual(c *Compiled, p Point, tol float64) bool {
	r, err := c.Residual(p)
	if err != nil {
		return false
	}
	return math.Abs(r[0]) <= tol && math.Abs(r[1]) <= tol
}
