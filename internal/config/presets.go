package config

import "sort"

var Presets = map[string]*Config{
	// The reference k1 sweep: monostable at both ends, bistable between.
	"k1-log": sweepPreset("k1", 1e-7, 1e5, 100, true, 0),
	// Zoom on the bistable window with a denser guess grid.
	"k1-bistable": sweepPreset("k1", 1e-6, 1e-2, 60, true, 80),
	"k2-log":      sweepPreset("k2", 1e-4, 1e2, 60, true, 0),
	"k5-log":      sweepPreset("k5", 1e-5, 1e1, 60, true, 0),
	"k9-log":      sweepPreset("k9", 1e-4, 1e0, 60, true, 0),
	"l9-log":      sweepPreset("l9", 1e0, 1e4, 60, true, 0),
	"l10-log":     sweepPreset("l10", 1e0, 1e4, 60, true, 0),
	// A fast smoke run.
	"quick": func() *Config {
		c := sweepPreset("k1", 1e-6, 1e0, 12, true, 20)
		c.OneD.Points = 300
		c.Nullclines.Points = 41
		c.Simulate.Duration = 5000
		return c
	}(),
}

func sweepPreset(param string, lo, hi float64, points int, log bool, guesses int) *Config {
	c := DefaultConfig()
	c.Sweep.Param = param
	c.Sweep.Min = lo
	c.Sweep.Max = hi
	c.Sweep.Points = points
	c.Sweep.Log = log
	if guesses > 0 {
		c.Search.GuessCount = guesses
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
