package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/config"
	"github.com/san-kum/bistab/internal/model"
	"github.com/san-kum/bistab/internal/storage"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	highlight string
	exportOut string
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "show the rate constants in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.ModelParams()
			if err != nil {
				return err
			}
			fmt.Println(p.Format(4, highlight))
			return nil
		},
	}
	cmd.Flags().StringVar(&highlight, "highlight", "", "parameter to emphasise")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARAM\tRANGE\tPOINTS\tSPACING\tGUESSES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				spacing := "linear"
				if p.Sweep.Log {
					spacing = "log"
				}
				fmt.Fprintf(w, "%s\t%s\t[%g, %g]\t%d\t%s\t%d\n",
					name, p.Sweep.Param, p.Sweep.Min, p.Sweep.Max, p.Sweep.Points, spacing, p.Search.GuessCount)
			}
			return w.Flush()
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return config.Write(os.Stdout, cfg)
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.Output.DataDir), nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tPARAM\tVALUES\tROWS\tBISTABLE")
	for _, run := range runs {
		param := run.Param
		if param == "" {
			param = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			param,
			len(run.Values),
			run.Rows,
			len(run.Bistable),
		)
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot RUN",
		Short: "plot a recorded run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)

	switch meta.Kind {
	case "scan":
		return plotSweep(st, meta)
	case "simulate":
		return plotTrajectory(st, meta)
	default:
		data, err := st.LoadAnalysis(runID)
		if err != nil {
			return err
		}
		fmt.Printf("steady states: %d\n\n", len(data.SteadyStates))
		for _, s := range data.SteadyStates {
			fmt.Printf("(%.4f, %.4f)  2D %s  8D %s\n", s.X2, s.X4, viz.StabilityLabel(s.Stab2D), viz.StabilityLabel(s.Stab8D))
		}
		return nil
	}
}

func plotSweep(st *storage.Store, meta *storage.RunMetadata) error {
	path := st.Path(storage.SweepFileName(meta.Param))
	if len(meta.Files) > 0 {
		path = meta.Files[0]
	}
	rows, err := storage.LoadRows(path)
	if err != nil {
		return err
	}
	fmt.Printf("param: %s\nrows: %d\n\n", meta.Param, len(rows))
	values := meta.Values
	if len(values) == 0 {
		for _, group := range analysis.GroupByValue(rows) {
			values = append(values, group[0].Value)
		}
	}
	fmt.Println(analysis.BifurcationToASCII(analysis.Bifurcation(values, rows), 72, 20))
	fmt.Println(viz.Legend())
	return nil
}

func plotTrajectory(st *storage.Store, meta *storage.RunMetadata) error {
	states, _, err := st.LoadStates(meta.ID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Printf("samples: %d\n\n", len(states))

	names := model.StateNames()
	for varIdx := range states[0] {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}
		caption := fmt.Sprintf("x%d vs time", varIdx+1)
		if varIdx < len(names) {
			caption = names[varIdx] + " vs time"
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export RUN",
		Short: "print a recorded run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	cmd.Flags().StringVarP(&exportOut, "output", "o", "", "write the steady-state report to this file instead")
	return cmd
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if exportOut != "" {
		if meta.Kind != "analyze" {
			return fmt.Errorf("run %s is a %s run; only analyze runs carry a steady-state report", runID, meta.Kind)
		}
		data, err := st.LoadAnalysis(runID)
		if err != nil {
			return err
		}
		if strings.ToLower(filepath.Ext(exportOut)) != ".json" {
			return fmt.Errorf("export %s: only .json is supported", exportOut)
		}
		if err := storage.ExportJSON(exportOut, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", exportOut)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
