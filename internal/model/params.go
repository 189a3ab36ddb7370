package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/bistab/internal/dynamo"
)

// NumParams is the number of rate constants in the network.
const NumParams = 19

var paramNames = [NumParams]string{
	"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10",
	"k11", "k12", "k13", "l3", "l8", "l9", "l10", "l11", "l12",
}

var defaultValues = [NumParams]float64{
	1.42e-5, 1e-5, 5e-4, 3e-4, 5.8e-3, 5.8e-3, 1.73e-2, 1.16e-2, 3.9e-3, 3.9e-3,
	5e-4, 1e-3, 1.16e-2, 0.21, 464, 507, 81.9, 0.21, 440,
}

var paramIndex = func() map[string]int {
	m := make(map[string]int, NumParams)
	for i, n := range paramNames {
		m[n] = i
	}
	return m
}()

// Names returns the parameter names in canonical order.
func Names() []string {
	out := make([]string, NumParams)
	copy(out, paramNames[:])
	return out
}

// IsParam reports whether name is one of the model's rate constants.
func IsParam(name string) bool {
	_, ok := paramIndex[name]
	return ok
}

// Params is an immutable assignment of all rate constants.
type Params struct {
	values [NumParams]float64
}

func DefaultParams() Params {
	return Params{values: defaultValues}
}

// Get returns the value of name.
func (p Params) Get(name string) (float64, error) {
	i, ok := paramIndex[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
	}
	return p.values[i], nil
}

// With returns a copy of p with name set to value.
func (p Params) With(name string, value float64) (Params, error) {
	i, ok := paramIndex[name]
	if !ok {
		return Params{}, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
	}
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return Params{}, fmt.Errorf("%s=%g must be positive and finite: %w", name, value, dynamo.ErrParameterBounds)
	}
	p.values[i] = value
	return p, nil
}

// WithAll applies every override in turn.
func (p Params) WithAll(overrides map[string]float64) (Params, error) {
	var err error
	for _, name := range paramNames {
		v, ok := overrides[name]
		if !ok {
			continue
		}
		if p, err = p.With(name, v); err != nil {
			return Params{}, err
		}
	}
	for name := range overrides {
		if !IsParam(name) {
			return Params{}, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
		}
	}
	return p, nil
}

// Map returns a fresh name → value map.
func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, NumParams)
	for i, n := range paramNames {
		m[n] = p.values[i]
	}
	return m
}

// Values returns the values in canonical order.
func (p Params) Values() []float64 {
	out := make([]float64, NumParams)
	copy(out, p.values[:])
	return out
}

// Format renders the parameters as "name=value" pairs, perLine per line,
// with the entry named highlight (if any) marked with an asterisk.
func (p Params) Format(perLine int, highlight string) string {
	if perLine < 1 {
		perLine = NumParams
	}
	var sb strings.Builder
	for i, n := range paramNames {
		if i > 0 {
			if i%perLine == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteString("  ")
			}
		}
		mark := ""
		if n == highlight {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s%s=%.3g", mark, n, p.values[i])
	}
	return sb.String()
}

func (p Params) String() string { return p.Format(0, "") }
