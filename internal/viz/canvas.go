package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// sub-pixels with y growing downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Axes maps data coordinates onto a canvas. Log axes need positive bounds;
// values at or below zero are clamped to the lower bound.
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64
	LogX, LogY bool
}

func axisFrac(v, lo, hi float64, log bool) float64 {
	if log {
		if v <= lo {
			return 0
		}
		return (math.Log(v) - math.Log(lo)) / (math.Log(hi) - math.Log(lo))
	}
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// Project returns the sub-pixel holding (x, y), and false when the point
// is outside the axes or not finite.
func (c *Canvas) Project(a Axes, x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	fx := axisFrac(x, a.XMin, a.XMax, a.LogX)
	fy := axisFrac(y, a.YMin, a.YMax, a.LogY)
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	w, h := c.Width*2-1, c.Height*4-1
	return int(math.Round(fx * float64(w))), h - int(math.Round(fy*float64(h))), true
}

func (c *Canvas) Plot(a Axes, x, y float64) {
	if px, py, ok := c.Project(a, x, y); ok {
		c.Set(px, py)
	}
}

// PlotPath joins consecutive points that fall inside the axes.
func (c *Canvas) PlotPath(a Axes, xs, ys []float64) {
	havePrev := false
	var px, py int
	for i := range xs {
		x, y, ok := c.Project(a, xs[i], ys[i])
		if !ok {
			havePrev = false
			continue
		}
		if havePrev {
			c.DrawLine(px, py, x, y)
		} else {
			c.Set(x, y)
		}
		px, py, havePrev = x, y, true
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
