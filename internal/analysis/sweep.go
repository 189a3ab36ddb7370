package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/san-kum/bistab/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Row is one cross-validated steady state at one parameter value.
type Row struct {
	Param    string    `json:"param"`
	Value    float64   `json:"param_value"`
	X2       float64   `json:"x2_ss"`
	X4       float64   `json:"x4_ss"`
	Stab2D   Stability `json:"stab_2D"`
	Stab8D   Stability `json:"stab_8D"`
	Conflict bool      `json:"conflict"`
}

// RowSink receives the rows of each parameter value, in value order.
type RowSink interface {
	WriteRows(rows []Row) error
}

// ValueSummary describes the search at one parameter value.
type ValueSummary struct {
	Value  float64
	Roots  int
	Rows   int
	Counts map[Outcome]int
}

// SweepOptions configures a one-parameter sweep.
type SweepOptions struct {
	Param        string
	Values       []float64
	Base         model.Params
	Search       Search
	StabilityTol float64
	Workers      int
	Sink         RowSink
	// Progress is called once per finished value, in value order.
	Progress func(done, total int, s ValueSummary)
	Logger   *zap.Logger
}

// SweepResult holds every row of a sweep, ordered by value then by
// discovery order within a value.
type SweepResult struct {
	Param  string
	Rows   []Row
	Values []ValueSummary
}

type valueResult struct {
	rows    []Row
	summary ValueSummary
}

// Sweep repeats the steady-state search and cross-validation for each
// value of one parameter. Values are processed concurrently by up to
// Workers goroutines; the context is checked before each value starts.
func Sweep(ctx context.Context, m *Model, opts SweepOptions) (*SweepResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.Search.Validate(); err != nil {
		return nil, fmt.Errorf("sweep %s: %w", opts.Param, err)
	}
	params := make([]model.Params, len(opts.Values))
	for i, v := range opts.Values {
		p, err := opts.Base.With(opts.Param, v)
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
		params[i] = p
	}
	tol := opts.StabilityTol
	if tol <= 0 {
		tol = DefaultStabilityTol
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]valueResult, len(opts.Values))
	em := &emitter{
		results:  results,
		ready:    make([]bool, len(results)),
		sink:     opts.Sink,
		progress: opts.Progress,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	log.Info("sweep started",
		zap.String("param", opts.Param),
		zap.Int("values", len(opts.Values)),
		zap.Int("guesses", len(opts.Search.Guesses())),
		zap.Int("workers", workers))

	for i := range params {
		if gCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := sweepValue(m, params[i], opts, tol, log)
			if err != nil {
				return err
			}
			return em.done(i, res)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep %s: %w", opts.Param, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep %s: %w", opts.Param, err)
	}

	out := &SweepResult{Param: opts.Param, Values: make([]ValueSummary, len(results))}
	for i, r := range results {
		out.Rows = append(out.Rows, r.rows...)
		out.Values[i] = r.summary
	}
	log.Info("sweep finished", zap.String("param", opts.Param), zap.Int("rows", len(out.Rows)))
	return out, nil
}

func sweepValue(m *Model, p model.Params, opts SweepOptions, tol float64, log *zap.Logger) (valueResult, error) {
	value, _ := p.Get(opts.Param)
	c, err := m.Compile(p)
	if err != nil {
		return valueResult{}, fmt.Errorf("%s=%g: %w", opts.Param, value, err)
	}
	report := FindSteadyStates(c, opts.Search)
	results := AnalyzeAll(c, report.Roots, tol, log.With(zap.String(opts.Param, fmt.Sprintf("%g", value))))

	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, Row{
			Param:    opts.Param,
			Value:    value,
			X2:       r.State.X2,
			X4:       r.State.X4,
			Stab2D:   r.Stab2,
			Stab8D:   r.Stab8,
			Conflict: r.Conflict,
		})
	}
	counts := report.Counts()
	log.Debug("sweep value done",
		zap.String("param", opts.Param),
		zap.Float64("value", value),
		zap.Int("roots", len(report.Roots)),
		zap.Int("rows", len(rows)),
		zap.Int("non_converged", counts[NotConverged]),
		zap.Int("eval_failed", counts[EvalFailed]))

	return valueResult{
		rows: rows,
		summary: ValueSummary{
			Value:  value,
			Roots:  len(report.Roots),
			Rows:   len(rows),
			Counts: counts,
		},
	}, nil
}

// emitter hands finished values to the sink and progress callback in
// value order, whatever order they finish in.
type emitter struct {
	mu       sync.Mutex
	results  []valueResult
	ready    []bool
	next     int
	sink     RowSink
	progress func(done, total int, s ValueSummary)
}

func (e *emitter) done(i int, r valueResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.results[i] = r
	e.ready[i] = true
	for e.next < len(e.ready) && e.ready[e.next] {
		cur := e.results[e.next]
		if e.sink != nil && len(cur.rows) > 0 {
			if err := e.sink.WriteRows(cur.rows); err != nil {
				return fmt.Errorf("write rows for %g: %w", cur.summary.Value, err)
			}
		}
		e.next++
		if e.progress != nil {
			e.progress(e.next, len(e.ready), cur.summary)
		}
	}
	return nil
}

// LogValues returns n logarithmically spaced values from lo to hi.
func LogValues(lo, hi float64, n int) ([]float64, error) {
	if lo <= 0 || hi <= 0 {
		return nil, fmt.Errorf("log spacing needs positive bounds, got [%g, %g]", lo, hi)
	}
	if n < 2 {
		return []float64{lo}, nil
	}
	return floats.LogSpan(make([]float64, n), lo, hi), nil
}

// LinValues returns n evenly spaced values from lo to hi.
func LinValues(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// GroupByValue splits rows into runs sharing a parameter value.
func GroupByValue(rows []Row) [][]Row {
	var out [][]Row
	for i, r := range rows {
		if i == 0 || r.Value != rows[i-1].Value {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], r)
	}
	return out
}

// BistableValues returns the parameter values with at least two steady
// states that the full model classifies as Stable.
func BistableValues(rows []Row) []float64 {
	var out []float64
	for _, group := range GroupByValue(rows) {
		stable := 0
		for _, r := range group {
			if r.Stab8D == Stable {
				stable++
			}
		}
		if stable >= 2 {
			out = append(out, group[0].Value)
		}
	}
	return out
}
