package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/bistab/internal/config"
	"github.com/san-kum/bistab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir      string
	configFile   string
	preset       string
	verbose      bool
	theme        string
	setParams    []string
	guesses      int
	stabilityTol float64

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bistab",
		Short: "steady states and stability of the apoptosis network",
		Long: `bistab reduces the eight-species apoptosis model to the (x2, x4) plane,
finds its steady states by multi-start Newton, and classifies each one
with both the planar and the full Jacobian.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if theme != "" {
				viz.SetTheme(theme)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&theme, "theme", "", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	pf.StringArrayVar(&setParams, "set", nil, "override a rate constant, e.g. --set k1=1e-4 (repeatable)")
	pf.IntVar(&guesses, "guesses", 60, "guesses per axis of the Newton start grid")
	pf.Float64Var(&stabilityTol, "stability-tol", 1e-4, "eigenvalue real-part tolerance")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newScanCmd(),
		newNullclinesCmd(),
		newReduce1DCmd(),
		newReduceCmd(),
		newParamsCmd(),
		newPresetsCmd(),
		newConfigCmd(),
		newSimulateCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then flags. Flags only
// override when set on the command line. Command-specific flags are
// applied by each command afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Output.DataDir = dataDir
	}
	if flags.Changed("guesses") {
		cfg.Search.GuessCount = guesses
	}
	if flags.Changed("stability-tol") {
		cfg.StabilityTol = stabilityTol
	}
	for _, kv := range setParams {
		name, value, err := parseAssignment(kv)
		if err != nil {
			return nil, err
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = value
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseAssignment(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return "", 0, fmt.Errorf("--set %q: want name=value", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("--set %q: %w", kv, err)
	}
	return strings.TrimSpace(name), v, nil
}

func parsePoint(args []string) (float64, float64, error) {
	x2, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("x2: %w", err)
	}
	x4, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("x4: %w", err)
	}
	return x2, x4, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
