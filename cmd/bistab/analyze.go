package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/config"
	"github.com/san-kum/bistab/internal/export"
	"github.com/san-kum/bistab/internal/storage"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeJSON bool
	analyzeSave bool
	analyzeSVG  string
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [x2 x4]",
		Short: "find steady states and classify them in 2D and 8D",
		Long: `Without arguments, runs the multi-start Newton search over the (x2, x4)
plane and cross-validates every root. With a point, only that point is
lifted and classified.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("want no arguments or x2 x4, got %d", len(args))
			}
			return nil
		},
		RunE: runAnalyze,
	}
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&analyzeSave, "save", false, "record the run in the data directory")
	cmd.Flags().StringVar(&analyzeSVG, "svg", "", "write the eigenvalue spectrum of the first state to this SVG file")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	var report *analysis.FindReport
	var points []analysis.Point
	if len(args) == 2 {
		x2, x4, err := parsePoint(args)
		if err != nil {
			return err
		}
		points = []analysis.Point{{X2: x2, X4: x4}}
	} else {
		report = analysis.FindSteadyStates(c, cfg.Search)
		points = report.Roots
		logger.Info("steady-state search finished",
			zap.Int("attempts", len(report.Attempts)),
			zap.Int("roots", len(report.Roots)))
	}
	results := analysis.AnalyzeAll(c, points, cfg.StabilityTol, logger)

	data := storage.NewAnalysisExport(p, cfg.StabilityTol, report, results)
	if analyzeJSON {
		if err := storage.ExportJSONStdout(data); err != nil {
			return err
		}
	} else {
		printAnalysis(p.Format(5, ""), report, results)
	}

	if analyzeSVG != "" {
		if len(results) == 0 {
			return fmt.Errorf("no steady state to draw")
		}
		r := results[0]
		if err := writeFile(analyzeSVG, export.SpectrumToSVG(r.Eig2, r.Eig8, cfg.StabilityTol, 800, 500)); err != nil {
			return err
		}
	}

	if analyzeSave {
		return saveAnalysis(cfg, p.Map(), data, len(results))
	}
	return nil
}

func printAnalysis(params string, report *analysis.FindReport, results []*analysis.Result) {
	fmt.Println(viz.HeaderStyle.Render("Parameters"))
	fmt.Println(params)
	fmt.Println()

	if report != nil {
		counts := report.Counts()
		parts := make([]string, 0, len(counts))
		for _, o := range analysis.Outcomes() {
			parts = append(parts, fmt.Sprintf("%s=%d", o, counts[o]))
		}
		fmt.Println(viz.Metric("attempts  ", len(report.Attempts)))
		fmt.Println(viz.Subtle.Render(strings.Join(parts, "  ")))
		fmt.Println(viz.Separator(60))
	}

	if len(results) == 0 {
		fmt.Println("no steady states")
		return
	}
	fmt.Println(viz.HeaderStyle.Render("Steady states"))
	fmt.Print(viz.ResultTable(results))

	conflicts := 0
	for _, r := range results {
		if r.Conflict {
			conflicts++
		}
	}
	if conflicts > 0 {
		fmt.Fprintf(os.Stderr, "%d steady state(s) classified differently in 2D and 8D\n", conflicts)
	}
	fmt.Println(viz.Legend())
}

func saveAnalysis(cfg *config.Config, params map[string]float64, data *storage.AnalysisExport, rows int) error {
	store := storage.New(cfg.Output.DataDir)
	if err := store.Init(); err != nil {
		return err
	}
	meta := &storage.RunMetadata{
		Kind:         "analyze",
		Params:       params,
		GuessCount:   cfg.Search.GuessCount,
		StabilityTol: cfg.StabilityTol,
		Rows:         rows,
	}
	id, err := store.SaveRun(meta)
	if err != nil {
		return err
	}
	if err := store.SaveAnalysis(id, data); err != nil {
		return err
	}
	logger.Info("saved run", zap.String("id", id))
	fmt.Fprintf(os.Stderr, "saved: %s\n", id)
	return nil
}
