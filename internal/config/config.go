package config

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir      = "data"
	DefaultMasterCSV    = "all_scan_results.csv"
	DefaultSweepParam   = "k1"
	DefaultSweepMin     = 1e-7
	DefaultSweepMax     = 1e5
	DefaultSweepPoints  = 100
	DefaultIntegrator   = "rk45"
	DefaultPerturbation = analysis.ReturnFraction
)

type Config struct {
	// Params overrides individual rate constants by name.
	Params       map[string]float64       `yaml:"params,omitempty"`
	Search       analysis.Search          `yaml:"search"`
	StabilityTol float64                  `yaml:"stability_tol"`
	OneD         analysis.OneDScan        `yaml:"oned"`
	Nullclines   analysis.NullclineWindow `yaml:"nullclines"`
	Sweep        SweepConfig              `yaml:"sweep"`
	Simulate     SimulateConfig           `yaml:"simulate"`
	Output       OutputConfig             `yaml:"output"`
}

type SweepConfig struct {
	Param   string  `yaml:"param"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Points  int     `yaml:"points"`
	Log     bool    `yaml:"log"`
	Workers int     `yaml:"workers"`
}

type SimulateConfig struct {
	Integrator   string  `yaml:"integrator"`
	Dt           float64 `yaml:"dt"`
	Duration     float64 `yaml:"duration"`
	Tolerance    float64 `yaml:"tolerance"`
	Adaptive     bool    `yaml:"adaptive"`
	Perturbation float64 `yaml:"perturbation"`
}

type OutputConfig struct {
	DataDir   string `yaml:"data_dir"`
	MasterCSV string `yaml:"master_csv"`
}

func DefaultConfig() *Config {
	sim := dynamo.DefaultConfig()
	return &Config{
		Search:       analysis.DefaultSearch(),
		StabilityTol: analysis.DefaultStabilityTol,
		OneD:         analysis.DefaultOneDScan(),
		Nullclines:   analysis.DefaultNullclineWindow(),
		Sweep: SweepConfig{
			Param:  DefaultSweepParam,
			Min:    DefaultSweepMin,
			Max:    DefaultSweepMax,
			Points: DefaultSweepPoints,
			Log:    true,
		},
		Simulate: SimulateConfig{
			Integrator:   DefaultIntegrator,
			Dt:           sim.Dt,
			Duration:     sim.Duration,
			Tolerance:    sim.Tolerance,
			Adaptive:     sim.Adaptive,
			Perturbation: DefaultPerturbation,
		},
		Output: OutputConfig{
			DataDir:   DefaultDataDir,
			MasterCSV: DefaultMasterCSV,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Clone returns a deep copy, so presets can be handed out safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func (c *Config) Validate() error {
	if _, err := c.ModelParams(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if c.StabilityTol <= 0 {
		return fmt.Errorf("stability_tol must be positive, got %g", c.StabilityTol)
	}
	if !model.IsParam(c.Sweep.Param) {
		return fmt.Errorf("sweep param %q: %w", c.Sweep.Param, dynamo.ErrUnknownParameter)
	}
	if c.Sweep.Points < 1 || c.Sweep.Min > c.Sweep.Max {
		return fmt.Errorf("sweep range [%g, %g] with %d points", c.Sweep.Min, c.Sweep.Max, c.Sweep.Points)
	}
	if c.Sweep.Log && c.Sweep.Min <= 0 {
		return fmt.Errorf("log sweep needs a positive minimum, got %g", c.Sweep.Min)
	}
	return c.SimConfig().Validate()
}

// ModelParams applies the overrides to the default rate constants.
// Overrides are applied in name order so errors are deterministic.
func (c *Config) ModelParams() (model.Params, error) {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	p := model.DefaultParams()
	for _, name := range names {
		var err error
		if p, err = p.With(name, c.Params[name]); err != nil {
			return p, fmt.Errorf("params: %w", err)
		}
	}
	return p, nil
}

// SweepValues expands the sweep section into parameter values.
func (c *Config) SweepValues() ([]float64, error) {
	if c.Sweep.Log {
		return analysis.LogValues(c.Sweep.Min, c.Sweep.Max, c.Sweep.Points)
	}
	return analysis.LinValues(c.Sweep.Min, c.Sweep.Max, c.Sweep.Points), nil
}

func (c *Config) SimConfig() dynamo.Config {
	sim := dynamo.DefaultConfig()
	sim.Dt = c.Simulate.Dt
	sim.Duration = c.Simulate.Duration
	sim.Tolerance = c.Simulate.Tolerance
	sim.Adaptive = c.Simulate.Adaptive
	return sim
}
