package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// NullclineGrid samples dx2 and dx4 on a rectangular grid. Fields are
// indexed [j][i] for the point (X2[i], X4[j]); NaN marks points where
// evaluation failed.
type NullclineGrid struct {
	X2  []float64
	X4  []float64
	DX2 [][]float64
	DX4 [][]float64
}

// NullclineWindow is the sampled rectangle.
type NullclineWindow struct {
	X2Min  float64 `yaml:"x2_min"`
	X2Max  float64 `yaml:"x2_max"`
	X4Min  float64 `yaml:"x4_min"`
	X4Max  float64 `yaml:"x4_max"`
	Points int     `yaml:"points"`
	Log    bool    `yaml:"log"`
}

func DefaultNullclineWindow() NullclineWindow {
	return NullclineWindow{X2Min: 0.01, X2Max: 20000, X4Min: 0.01, X4Max: 20000, Points: 73, Log: true}
}

func (w NullclineWindow) axis(lo, hi float64) ([]float64, error) {
	if w.Points < 2 || lo >= hi {
		return nil, fmt.Errorf("nullcline axis [%g, %g] with %d points", lo, hi, w.Points)
	}
	dst := make([]float64, w.Points)
	if w.Log {
		if lo <= 0 {
			return nil, fmt.Errorf("log nullcline axis needs positive bounds, got %g", lo)
		}
		return floats.LogSpan(dst, lo, hi), nil
	}
	return floats.Span(dst, lo, hi), nil
}

// Nullclines samples both reduced derivatives over w. A returned
// evaluation error is informational: the grid is still usable.
func Nullclines(c *Compiled, w NullclineWindow) (*NullclineGrid, error) {
	x2, err := w.axis(w.X2Min, w.X2Max)
	if err != nil {
		return nil, err
	}
	x4, err := w.axis(w.X4Min, w.X4Max)
	if err != nil {
		return nil, err
	}
	g := &NullclineGrid{X2: x2, X4: x4}
	var err2, err4 error
	g.DX2, err2 = c.DX2.EvalGrid(x2, x4)
	g.DX4, err4 = c.DX4.EvalGrid(x2, x4)
	if err2 != nil {
		return g, err2
	}
	return g, err4
}

// Crossings marks grid cells whose corners straddle zero in field. The
// result is indexed [j][i] for the cell between X4[j..j+1], X2[i..i+1].
func (g *NullclineGrid) Crossings(field [][]float64) [][]bool {
	rows, cols := len(g.X4)-1, len(g.X2)-1
	out := make([][]bool, rows)
	for j := 0; j < rows; j++ {
		out[j] = make([]bool, cols)
		for i := 0; i < cols; i++ {
			out[j][i] = straddles(field[j][i], field[j][i+1], field[j+1][i], field[j+1][i+1])
		}
	}
	return out
}

func straddles(vals ...float64) bool {
	neg, pos := false, false
	for _, v := range vals {
		switch {
		case math.IsNaN(v):
			return false
		case v < 0:
			neg = true
		case v > 0:
			pos = true
		default:
			return true
		}
	}
	return neg && pos
}

// cell returns the index of the grid interval holding v, or -1.
func cell(axis []float64, v float64) int {
	if v < axis[0] || v > axis[len(axis)-1] {
		return -1
	}
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i >= len(axis)-1 {
		i = len(axis) - 2
	}
	return i
}

// NullclinesToASCII draws one character per grid cell, x4 increasing
// upwards: '-' where dx2 = 0, '|' where dx4 = 0, '+' where both cross and
// '*' at steady states.
func NullclinesToASCII(g *NullclineGrid, roots []Point) string {
	if g == nil || len(g.X2) < 2 || len(g.X4) < 2 {
		return ""
	}
	c2 := g.Crossings(g.DX2)
	c4 := g.Crossings(g.DX4)
	rows, cols := len(c2), len(c2[0])

	canvas := make([][]rune, rows)
	for j := 0; j < rows; j++ {
		line := make([]rune, cols)
		for i := 0; i < cols; i++ {
			switch {
			case c2[j][i] && c4[j][i]:
				line[i] = '+'
			case c2[j][i]:
				line[i] = '-'
			case c4[j][i]:
				line[i] = '|'
			default:
				line[i] = ' '
			}
		}
		canvas[rows-1-j] = line
	}

	for _, r := range roots {
		i, j := cell(g.X2, r.X2), cell(g.X4, r.X4)
		if i >= 0 && j >= 0 {
			canvas[rows-1-j][i] = '*'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
