package export

import (
	"errors"
	"io"
	"math"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/viz"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var errNothingToPlot = errors.New("export: nothing to plot")

func chartColor(hex string) drawing.Color {
	r, g, b := viz.HexRGB(hex)
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

func dotSeries(name string, xs, ys []float64, color drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    color,
		},
	}
}

func render(w io.Writer, xName, yName string, series []chart.Series) error {
	graph := chart.Chart{
		Width:  900,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  xName,
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// BifurcationPNG renders x4 of every steady state against the parameter,
// one series per full-model class. With logX the axis shows log10 of the
// parameter.
func BifurcationPNG(w io.Writer, param string, data []analysis.BifurcationPoint, logX bool) error {
	var series []chart.Series
	for _, s := range analysis.Stabilities() {
		var xs, ys []float64
		for _, p := range data {
			x := p.Param
			if logX {
				x = math.Log10(x)
			}
			for k, v := range p.Values {
				if k < len(p.Classes) && p.Classes[k] == s {
					xs = append(xs, x)
					ys = append(ys, v)
				}
			}
		}
		if len(xs) > 0 {
			series = append(series, dotSeries(s.String(), xs, ys, chartColor(viz.StabilityHex(s))))
		}
	}
	if len(series) == 0 {
		return errNothingToPlot
	}
	xName := param
	if logX {
		xName = "log10 " + param
	}
	return render(w, xName, "x4", series)
}

// OneDPNG renders dx4(x4) along the selected branch with its roots.
// Samples that could not be evaluated are left out.
func OneDPNG(w io.Writer, xs, ys []float64, roots []analysis.OneDRoot) error {
	var cx, cy []float64
	for i := range xs {
		if !math.IsNaN(ys[i]) && !math.IsInf(ys[i], 0) {
			cx = append(cx, xs[i])
			cy = append(cy, ys[i])
		}
	}
	if len(cx) < 2 {
		return errNothingToPlot
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "dx4/dt",
			XValues: cx,
			YValues: cy,
			Style:   chart.Style{StrokeColor: chartColor(string(viz.CurrentTheme.Primary)), StrokeWidth: 2.0},
		},
		chart.ContinuousSeries{
			Name:    "0",
			XValues: []float64{cx[0], cx[len(cx)-1]},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeColor: chartColor("#888888"), StrokeWidth: 1.0},
		},
	}
	for _, s := range analysis.Stabilities() {
		var rx, ry []float64
		for _, r := range roots {
			if r.Stability == s {
				rx = append(rx, r.X4)
				ry = append(ry, 0)
			}
		}
		if len(rx) > 0 {
			series = append(series, dotSeries(s.String(), rx, ry, chartColor(viz.StabilityHex(s))))
		}
	}
	return render(w, "x4", "dx4/dt", series)
}
