package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/config"
	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/integrators"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/storage"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	simIntegrator string
	simDuration   float64
	simDt         float64
	simPerturb    float64
	simLive       bool
	simSave       bool
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [x2 x4]",
		Short: "integrate the full model from perturbed steady states",
		Long: `Lifts each steady state (or the given point) to all eight species,
perturbs it and integrates the full model. A state counts as having
returned when the trajectory ends within 1% of its initial offset.
--live opens an interactive phase portrait instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("want no arguments or x2 x4, got %d", len(args))
			}
			return nil
		},
		RunE: runSimulate,
	}
	f := cmd.Flags()
	f.StringVarP(&simIntegrator, "integrator", "i", "", "integrator ("+fmt.Sprint(integrators.Names())+")")
	f.Float64VarP(&simDuration, "duration", "d", 0, "simulated time")
	f.Float64Var(&simDt, "dt", 0, "initial time step")
	f.Float64Var(&simPerturb, "perturb", 0, "relative perturbation of each species")
	f.BoolVar(&simLive, "live", false, "interactive phase portrait")
	f.BoolVar(&simSave, "save", false, "record the trajectory from the first state")
	return cmd
}

func applySimulateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Simulate.Integrator = simIntegrator
	}
	if flags.Changed("duration") {
		cfg.Simulate.Duration = simDuration
	}
	if flags.Changed("dt") {
		cfg.Simulate.Dt = simDt
	}
	if flags.Changed("perturb") {
		cfg.Simulate.Perturbation = simPerturb
	}
	return cfg.SimConfig().Validate()
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applySimulateFlags(cmd, cfg); err != nil {
		return err
	}
	p, err := cfg.ModelParams()
	if err != nil {
		return err
	}
	integ, err := integrators.New(cfg.Simulate.Integrator)
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

	var roots []analysis.Point
	if len(args) == 2 {
		x2, x4, err := parsePoint(args)
		if err != nil {
			return err
		}
		roots = []analysis.Point{{X2: x2, X4: x4}}
	} else {
		roots = analysis.FindSteadyStates(c, cfg.Search).Roots
	}
	results := analysis.AnalyzeAll(c, roots, cfg.StabilityTol, logger)
	sys := model.NewApoptosis(p)

	if simLive {
		start := sys.DefaultState()
		if len(results) > 0 {
			start = analysis.Perturb(results[0].Full, cfg.Simulate.Perturbation)
		}
		if len(args) == 0 {
			roots = make([]analysis.Point, len(results))
			for i, r := range results {
				roots[i] = r.State
			}
		}
		return viz.RunLive(viz.NewLiveModel(sys, integ, start, cfg.Simulate.Dt, roots))
	}

	if len(results) == 0 {
		fmt.Println("no steady states to simulate")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	simCfg := cfg.SimConfig()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tX2\tX4\t8D\tSTART DIST\tFINAL DIST\tSTEPS\tRETURNED")
	for i, r := range results {
		check, err := analysis.CheckReturn(ctx, sys, integ, r.Full, cfg.Simulate.Perturbation, simCfg)
		if err != nil {
			logger.Error("simulation failed", zap.Stringer("state", r.State), zap.Error(err))
			continue
		}
		if check.Returned != (r.Stab8 == analysis.Stable) {
			logger.Warn("trajectory disagrees with the 8D classification",
				zap.Stringer("state", r.State),
				zap.Stringer("stab_8D", r.Stab8),
				zap.Bool("returned", check.Returned))
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%s\t%.4g\t%.4g\t%d\t%v\n",
			i+1, r.State.X2, r.State.X4, r.Stab8,
			check.InitialDistance, check.FinalDistance, check.Steps, check.Returned)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if simSave {
		return saveTrajectory(ctx, cfg, sys, integ, results[0], simCfg)
	}
	return nil
}

func saveTrajectory(ctx context.Context, cfg *config.Config, sys *model.Apoptosis, integ dynamo.Integrator, r *analysis.Result, simCfg dynamo.Config) error {
	start := analysis.Perturb(r.Full, cfg.Simulate.Perturbation)
	tr, err := integrators.Run(ctx, sys, integ, start, simCfg)
	if err != nil {
		return err
	}

	store := storage.New(cfg.Output.DataDir)
	if err := store.Init(); err != nil {
		return err
	}
	final := tr.Final()
	meta := &storage.RunMetadata{
		Kind:       "simulate",
		Params:     sys.GetParams(),
		Integrator: cfg.Simulate.Integrator,
		Rows:       len(tr.States),
		Metrics: map[string]float64{
			"x2_ss":       r.State.X2,
			"x4_ss":       r.State.X4,
			"final_dist":  final.Distance(r.Full),
			"steps":       float64(tr.StepsTaken),
			"duration":    simCfg.Duration,
			"step_errors": float64(len(tr.Errors)),
		},
	}
	id, err := store.SaveRun(meta)
	if err != nil {
		return err
	}
	if err := store.SaveTrajectory(id, model.StateNames(), tr); err != nil {
		return err
	}
	logger.Info("saved trajectory", zap.String("id", id), zap.Int("samples", len(tr.States)))
	fmt.Fprintf(os.Stderr, "saved: %s\n", id)
	return nil
}
