package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Sweep.Param != "k1" {
		t.Errorf("expected sweep over k1, got %s", cfg.Sweep.Param)
	}
	if cfg.StabilityTol != 1e-4 {
		t.Errorf("expected stability tol 1e-4, got %g", cfg.StabilityTol)
	}
	if cfg.Search.GuessCount*cfg.Search.GuessCount != 3600 {
		t.Errorf("expected a 60x60 guess grid, got %d", cfg.Search.GuessCount)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("k1-log")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	values, err := cfg.SweepValues()
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 100 || math.Abs(values[0]-1e-7) > 1e-18 {
		t.Errorf("unexpected k1-log values: %d starting at %g", len(values), values[0])
	}
}

func TestGetPreset_Isolated(t *testing.T) {
	a := GetPreset("quick")
	a.Search.GuessCount = 1
	a.Params = map[string]float64{"k1": 1}

	b := GetPreset("quick")
	if b.Search.GuessCount == 1 || b.Params != nil {
		t.Error("modifying a preset copy changed the preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestModelParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params = map[string]float64{"k1": 1e-4, "l9": 50}

	p, err := cfg.ModelParams()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Get("k1"); v != 1e-4 {
		t.Errorf("k1 = %g", v)
	}
	if v, _ := p.Get("l9"); v != 50 {
		t.Errorf("l9 = %g", v)
	}

	cfg.Params = map[string]float64{"bogus": 1}
	if _, err := cfg.ModelParams(); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}

	cfg.Params = map[string]float64{"k2": -1}
	if _, err := cfg.ModelParams(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown sweep param", func(c *Config) { c.Sweep.Param = "zz" }},
		{"log sweep from zero", func(c *Config) { c.Sweep.Min = 0 }},
		{"inverted sweep", func(c *Config) { c.Sweep.Min, c.Sweep.Max = 10, 1 }},
		{"no guesses", func(c *Config) { c.Search.GuessCount = 0 }},
		{"zero stability tol", func(c *Config) { c.StabilityTol = 0 }},
		{"zero dt", func(c *Config) { c.Simulate.Dt = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSweepValues_Linear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sweep.Log = false
	cfg.Sweep.Min, cfg.Sweep.Max, cfg.Sweep.Points = 0, 10, 11

	values, err := cfg.SweepValues()
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 11 || math.Abs(values[5]-5) > 1e-12 {
		t.Errorf("unexpected values %v", values)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bistab.yaml")

	cfg := DefaultConfig()
	cfg.Params = map[string]float64{"k1": 1e-4}
	cfg.Search.GuessCount = 25
	cfg.Sweep.Param = "k9"
	cfg.Output.DataDir = "out"

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Params["k1"] != 1e-4 || loaded.Search.GuessCount != 25 ||
		loaded.Sweep.Param != "k9" || loaded.Output.DataDir != "out" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.Search.Newton.MaxIter != cfg.Search.Newton.MaxIter {
		t.Errorf("newton options lost: %+v", loaded.Search.Newton)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("sweep:\n  param: l9\n  min: 1\n  max: 1000\n  points: 5\n  log: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweep.Param != "l9" || cfg.Sweep.Points != 5 {
		t.Errorf("sweep not loaded: %+v", cfg.Sweep)
	}
	if cfg.Search.GuessCount != DefaultConfig().Search.GuessCount {
		t.Error("unset sections should keep defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("params:\n  nope: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
}
