package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/export"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/reduce"
	"github.com/san-kum/bistab/internal/symbolic"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	nullSVG     string
	oneDMin     float64
	oneDMax     float64
	oneDPoints  int
	oneDSVG     string
	oneDPNG     string
	reduceBound bool
)

func newNullclinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nullclines",
		Short: "draw the dx2 = 0 and dx4 = 0 curves of the reduced system",
		Args:  cobra.NoArgs,
		RunE:  runNullclines,
	}
	cmd.Flags().StringVar(&nullSVG, "svg", "", "write the nullclines as SVG")
	return cmd
}

func runNullclines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.ModelParams()
	if err != nil {
		return err
	}
	m, err := analysis.NewModel()
	if err != nil {
		return fmt.Errorf("reduction failed: %w", err)
	}
	c, err := m.Compile(p)
	if err != nil {
		return err
	}

	g, err := analysis.Nullclines(c, cfg.Nullclines)
	if g == nil {
		return err
	}
	if err != nil {
		logger.Warn("nullcline grid has unevaluable points", zap.Error(err))
	}

	report := analysis.FindSteadyStates(c, cfg.Search)
	results := analysis.AnalyzeAll(c, report.Roots, cfg.StabilityTol, logger)

	w := cfg.Nullclines
	fmt.Println(viz.HeaderStyle.Render("Nullclines"))
	fmt.Printf("x2 in [%g, %g], x4 in [%g, %g]", w.X2Min, w.X2Max, w.X4Min, w.X4Max)
	if w.Log {
		fmt.Print(", log axes")
	}
	fmt.Println()
	fmt.Println(analysis.NullclinesToASCII(g, report.Roots))
	fmt.Println(viz.Subtle.Render("- dx2=0   | dx4=0   + both   * steady state"))
	fmt.Println()
	if len(results) > 0 {
		fmt.Print(viz.ResultTable(results))
	}

	if nullSVG != "" {
		return writeFile(nullSVG, nullclineSVG(g, report.Roots, w.Log))
	}
	return nil
}

// nullclineSVG plots the centre of every crossing cell on a braille
// canvas; steady states are drawn as small crosses.
func nullclineSVG(g *analysis.NullclineGrid, roots []analysis.Point, log bool) string {
	canvas := viz.NewCanvas(120, 40)
	axes := viz.Axes{
		XMin: g.X2[0], XMax: g.X2[len(g.X2)-1],
		YMin: g.X4[0], YMax: g.X4[len(g.X4)-1],
		LogX: log, LogY: log,
	}
	mid := func(axis []float64, i int) float64 {
		if log {
			return math.Sqrt(axis[i] * axis[i+1])
		}
		return (axis[i] + axis[i+1]) / 2
	}
	for _, field := range [][][]float64{g.DX2, g.DX4} {
		for j, row := range g.Crossings(field) {
			for i, hit := range row {
				if hit {
					canvas.Plot(axes, mid(g.X2, i), mid(g.X4, j))
				}
			}
		}
	}
	for _, r := range roots {
		if x, y, ok := canvas.Project(axes, r.X2, r.X4); ok {
			canvas.DrawLine(x-2, y, x+2, y)
			canvas.DrawLine(x, y-2, x, y+2)
		}
	}
	return export.CanvasToSVG(canvas, 4, string(viz.CurrentTheme.Primary))
}

func newReduce1DCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce1d",
		Short: "find steady states of the one-dimensional reduction",
		Long: `Solves dx2 = 0 for x2, substitutes the physical branch into dx4 and
scans dx4(x4) for sign changes. Each root is classified by its slope and
cross-checked against the planar and full Jacobians.`,
		Args: cobra.NoArgs,
		RunE: runReduce1D,
	}
	f := cmd.Flags()
	f.Float64Var(&oneDMin, "min", 0, "lowest x4")
	f.Float64Var(&oneDMax, "max", 0, "highest x4")
	f.IntVarP(&oneDPoints, "points", "n", 0, "scan points")
	f.StringVar(&oneDSVG, "svg", "", "write dx4(x4) as SVG")
	f.StringVar(&oneDPNG, "png", "", "write dx4(x4) with roots as PNG")
	return cmd
}

func runReduce1D(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("min") {
		cfg.OneD.Min = oneDMin
	}
	if flags.Changed("max") {
		cfg.OneD.Max = oneDMax
	}
	if flags.Changed("points") {
		cfg.OneD.Points = oneDPoints
	}
	p, err := cfg.ModelParams()
	if err != nil {
		return err
	}
	m, err := analysis.NewModel()
	if err != nil {
		return fmt.Errorf("reduction failed: %w", err)
	}
	od, err := m.CompileOneD(p)
	if err != nil {
		return err
	}
	c, err := m.Compile(p)
	if err != nil {
		return err
	}

	roots, err := od.Roots(cfg.OneD)
	if err != nil {
		return err
	}
	logger.Debug("1D scan finished", zap.Int("branch", od.Branch), zap.Int("roots", len(roots)))

	fmt.Println(viz.HeaderStyle.Render("1D reduction"))
	fmt.Printf("x2 branch %d, x4 in [%g, %g] (%d points)\n\n", od.Branch, cfg.OneD.Min, cfg.OneD.Max, cfg.OneD.Points)
	if len(roots) == 0 {
		fmt.Println("no sign change of dx4 in range")
	} else {
		fmt.Printf("%-3s %12s %12s %12s  %-18s %-18s %-18s\n", "#", "x4", "x2", "slope", "1D", "2D", "8D")
		for i, r := range roots {
			res, err := c.Analyze(r.Point(), cfg.StabilityTol)
			if err != nil {
				analysis.LogSkip(logger, r.Point(), err)
				fmt.Printf("%-3d %12.4f %12.4f %+12.4e  %s\n",
					i+1, r.X4, r.X2, r.Slope, viz.StabilityCell(r.Stability, viz.StabWidth))
				continue
			}
			fmt.Printf("%-3d %12.4f %12.4f %+12.4e  %s %s %s\n",
				i+1, r.X4, r.X2, r.Slope,
				viz.StabilityCell(r.Stability, viz.StabWidth),
				viz.StabilityCell(res.Stab2, viz.StabWidth),
				viz.StabilityCell(res.Stab8, viz.StabWidth))
		}
	}
	fmt.Println()

	xs, ys := od.Sample(cfg.OneD)
	if plot := signedLog(ys); len(plot) > 1 {
		fmt.Println(asciigraph.Plot(plot,
			asciigraph.Height(12),
			asciigraph.Width(72),
			asciigraph.Caption("sign(dx4)·log10(1+|dx4|) over x4")))
	}

	if oneDSVG != "" {
		if err := writeFile(oneDSVG, export.CurveToSVG(xs, ys, false, 800, 400, string(viz.CurrentTheme.Primary))); err != nil {
			return err
		}
	}
	if oneDPNG != "" {
		return writePNG(oneDPNG, func(f *os.File) error { return export.OneDPNG(f, xs, ys, roots) })
	}
	return nil
}

// signedLog compresses ys for the terminal plot, dropping NaN samples.
func signedLog(ys []float64) []float64 {
	out := make([]float64, 0, len(ys))
	for _, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		v := math.Log10(1 + math.Abs(y))
		if y < 0 {
			v = -v
		}
		out = append(out, v)
	}
	return out
}

func newReduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "print the symbolic reduction",
		Long: `Prints the elimination relations for x1, x3, x5, x6, x7 and x8, the
reduced right-hand sides dx2 and dx4, and the x2 branches of the 1D
reduction. With --bind, parameter values are substituted first.`,
		Args: cobra.NoArgs,
		RunE: runReduce,
	}
	cmd.Flags().BoolVar(&reduceBound, "bind", false, "substitute the current parameter values")
	return cmd
}

func runReduce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.ModelParams()
	if err != nil {
		return err
	}
	red, err := reduce.Reduce(model.Symbolic())
	if err != nil {
		return fmt.Errorf("reduction failed: %w", err)
	}
	if reduceBound {
		vals := p.Map()
		for name, e := range red.Elim {
			red.Elim[name] = symbolic.Bind(e, vals)
		}
		red.DX2 = symbolic.Bind(red.DX2, vals)
		red.DX4 = symbolic.Bind(red.DX4, vals)
	}

	fmt.Println(viz.HeaderStyle.Render("Eliminated species"))
	names := make([]string, 0, len(red.Elim))
	for name := range red.Elim {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return model.StateIndex(names[i]) < model.StateIndex(names[j]) })
	for _, name := range names {
		fmt.Printf("%s = %s\n", name, red.Elim[name])
	}
	fmt.Println()
	fmt.Println(viz.HeaderStyle.Render("Reduced system"))
	fmt.Printf("dx2/dt = %s\n", red.DX2)
	fmt.Printf("dx4/dt = %s\n", red.DX4)
	fmt.Println()

	od, err := red.ToOneD(p)
	if err != nil {
		logger.Warn("no physical 1D branch", zap.Error(err))
		return nil
	}
	fmt.Println(viz.HeaderStyle.Render("x2 branches of dx2 = 0"))
	for i, b := range od.Branches {
		mark := " "
		if i == od.Branch {
			mark = "*"
		}
		if reduceBound {
			b = symbolic.Bind(b, p.Map())
		}
		fmt.Printf("%s [%d] x2 = %s\n", mark, i, b)
	}
	return nil
}
