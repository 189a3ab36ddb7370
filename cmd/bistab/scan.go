package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/export"
	"github.com/san-kum/bistab/internal/storage"
	"github.com/san-kum/bistab/internal/tui"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	scanParam    string
	scanMin      float64
	scanMax      float64
	scanPoints   int
	scanLinear   bool
	scanWorkers  int
	scanNoMaster bool
	scanProgress bool
	scanRows     bool
	scanSVG      string
	scanPNG      string
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "sweep one rate constant and record every steady state",
		Long: `Sweeps one parameter over a log-spaced (or linear) range, repeating the
steady-state search and the 2D/8D comparison at every value. Rows go to
scan_results_<param>.csv and are appended to the master table.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
	f := cmd.Flags()
	f.StringVarP(&scanParam, "param", "p", "", "parameter to sweep")
	f.Float64Var(&scanMin, "min", 0, "lowest value")
	f.Float64Var(&scanMax, "max", 0, "highest value")
	f.IntVarP(&scanPoints, "points", "n", 0, "number of values")
	f.BoolVar(&scanLinear, "linear", false, "space values linearly instead of logarithmically")
	f.IntVarP(&scanWorkers, "workers", "w", 0, "values processed concurrently (0 = GOMAXPROCS)")
	f.BoolVar(&scanNoMaster, "no-master", false, "do not append to the master table")
	f.BoolVar(&scanProgress, "progress", false, "show an interactive progress view")
	f.BoolVar(&scanRows, "rows", false, "print every row")
	f.StringVar(&scanSVG, "svg", "", "write the bifurcation diagram as SVG")
	f.StringVar(&scanPNG, "png", "", "write the bifurcation diagram as PNG")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("param") {
		cfg.Sweep.Param = scanParam
	}
	if flags.Changed("min") {
		cfg.Sweep.Min = scanMin
	}
	if flags.Changed("max") {
		cfg.Sweep.Max = scanMax
	}
	if flags.Changed("points") {
		cfg.Sweep.Points = scanPoints
	}
	if flags.Changed("linear") {
		cfg.Sweep.Log = !scanLinear
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers = scanWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	base, err := cfg.ModelParams()
	if err != nil {
		return err
	}
	values, err := cfg.SweepValues()
	if err != nil {
		return err
	}
	m, err := analysis.NewModel()
	if err != nil {
		return fmt.Errorf("reduction failed: %w", err)
	}

	store := storage.New(cfg.Output.DataDir)
	if err := store.Init(); err != nil {
		return err
	}
	master := cfg.Output.MasterCSV
	if scanNoMaster {
		master = ""
	}
	sink, err := store.CreateSweep(cfg.Sweep.Param, master)
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	param := cfg.Sweep.Param
	opts := analysis.SweepOptions{
		Param:        param,
		Values:       values,
		Base:         base,
		Search:       cfg.Search,
		StabilityTol: cfg.StabilityTol,
		Workers:      cfg.Sweep.Workers,
		Sink:         sink,
		Logger:       logger,
	}

	logger.Info("starting sweep",
		zap.String("param", param),
		zap.Float64("min", cfg.Sweep.Min),
		zap.Float64("max", cfg.Sweep.Max),
		zap.Int("points", len(values)),
		zap.Int("guess_count", cfg.Search.GuessCount))

	var res *analysis.SweepResult
	if scanProgress {
		// The view owns the terminal; only errors may interrupt it.
		opts.Logger = logger.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
		res, err = tui.RunSweep(ctx, param, len(values), func(ctx context.Context, progress tui.ProgressFunc) (*analysis.SweepResult, error) {
			opts.Progress = progress
			return analysis.Sweep(ctx, m, opts)
		})
	} else {
		opts.Progress = tui.NewPrinter(os.Stderr, param, 10).OnValue
		res, err = analysis.Sweep(ctx, m, opts)
	}
	if err != nil {
		return fmt.Errorf("sweep %s: %w", param, err)
	}
	if err := sink.Close(); err != nil {
		return err
	}

	bistable := analysis.BistableValues(res.Rows)
	printSweep(res, bistable, cfg.Sweep.Log)

	data := analysis.Bifurcation(values, res.Rows)
	if scanSVG != "" {
		if err := writeFile(scanSVG, export.BifurcationToSVG(data, cfg.Sweep.Log, 900, 500)); err != nil {
			return err
		}
	}
	if scanPNG != "" {
		if err := writePNG(scanPNG, func(f *os.File) error {
			return export.BifurcationPNG(f, param, data, cfg.Sweep.Log)
		}); err != nil {
			return err
		}
	}

	meta := &storage.RunMetadata{
		Kind:         "scan",
		Param:        param,
		Values:       values,
		Params:       base.Map(),
		GuessCount:   cfg.Search.GuessCount,
		StabilityTol: cfg.StabilityTol,
		Rows:         len(res.Rows),
		Bistable:     bistable,
		Files:        sink.Paths(),
		Metrics: map[string]float64{
			"conflicts": float64(countConflicts(res.Rows)),
		},
	}
	id, err := store.SaveRun(meta)
	if err != nil {
		return err
	}
	logger.Info("sweep recorded", zap.String("id", id), zap.Int("rows", len(res.Rows)), zap.Strings("files", sink.Paths()))
	fmt.Fprintf(os.Stderr, "saved: %s\n", id)
	return nil
}

func printSweep(res *analysis.SweepResult, bistable []float64, logX bool) {
	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("Sweep over %s", res.Param)))
	fmt.Println(viz.Metric("values      ", len(res.Values)))
	fmt.Println(viz.Metric("rows        ", len(res.Rows)))
	fmt.Println(viz.Metric("conflicts   ", countConflicts(res.Rows)))
	fmt.Println()

	if scanRows {
		fmt.Print(viz.RowTable(res.Rows))
		fmt.Println()
	}

	if len(bistable) == 0 {
		fmt.Println("no value with two stable steady states")
	} else {
		strs := make([]string, len(bistable))
		for i, v := range bistable {
			strs[i] = strconv.FormatFloat(v, 'g', 4, 64)
		}
		fmt.Printf("bistable at %d value(s): %s\n", len(bistable), strings.Join(strs, " "))
		fmt.Printf("bistable range: [%.4g, %.4g]\n", bistable[0], bistable[len(bistable)-1])
	}
	fmt.Println()

	values := make([]float64, len(res.Values))
	for i, v := range res.Values {
		values[i] = v.Value
	}
	fmt.Println(analysis.BifurcationToASCII(analysis.Bifurcation(values, res.Rows), 72, 20))
	fmt.Println(viz.Legend())
	fmt.Println()

	counts := make([]float64, len(res.Values))
	for i, v := range res.Values {
		counts[i] = float64(v.Rows)
	}
	if len(counts) > 1 {
		axis := "value index"
		if logX {
			axis += " (log spaced)"
		}
		fmt.Println(asciigraph.Plot(counts,
			asciigraph.Height(6),
			asciigraph.Width(72),
			asciigraph.Precision(0),
			asciigraph.Caption("steady states per "+res.Param+" value, "+axis)))
	}
}

func countConflicts(rows []analysis.Row) int {
	n := 0
	for _, r := range rows {
		if r.Conflict {
			n++
		}
	}
	return n
}

func writePNG(path string, draw func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
