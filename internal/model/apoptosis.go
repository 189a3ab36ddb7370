package model

import (
	"fmt"

	"github.com/san-kum/bistab/internal/dynamo"
)

// Apoptosis evaluates the network numerically.
type Apoptosis struct {
	p Params
}

func NewApoptosis(p Params) *Apoptosis { return &Apoptosis{p: p} }

func (a *Apoptosis) StateDim() int  { return NumStates }
func (a *Apoptosis) Params() Params { return a.p }

// Derive returns dx1..dx8 at x.
func (a *Apoptosis) Derive(x dynamo.State, _ float64) dynamo.State {
	v := &a.p.values
	k1, k2, k3, k4, k5, k6, k7 := v[0], v[1], v[2], v[3], v[4], v[5], v[6]
	k8, k9, k10, k11, k12, k13 := v[7], v[8], v[9], v[10], v[11], v[12]
	l3, l8, l9, l10, l11, l12 := v[13], v[14], v[15], v[16], v[17], v[18]
	x1, x2, x3, x4, x5, x6, x7, x8 := x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7]

	bind := k3 * x4 * x5
	return dynamo.State{
		-k2*x1*x4 - k9*x1 + l9,
		k2*x1*x4 - k5*x2 - k11*x2*x7 + l11*x8,
		-k1*x2*x3 - k10*x3 + l10,
		k1*x2*x3 - bind - k6*x4 + l3*x6,
		-bind - k4*x4*x5 - k8*x5 + l3*x6 + l8,
		bind - k7*x6 - l3*x6,
		-k11*x2*x7 - k12*x7 + l11*x8 + l12,
		k11*x2*x7 - k13*x8 - l11*x8,
	}
}

// DefaultState is the zero-signal basal state: x2 = x4 = 0 with the
// remaining species at their production/decay balance.
func (a *Apoptosis) DefaultState() dynamo.State {
	v := &a.p.values
	return dynamo.State{
		v[15] / v[8], // l9/k9
		0,
		v[16] / v[9], // l10/k10
		0,
		v[14] / v[7], // l8/k8
		0,
		v[18] / v[11], // l12/k12
		0,
	}
}

func (a *Apoptosis) GetParams() map[string]float64 { return a.p.Map() }

func (a *Apoptosis) SetParam(name string, value float64) error {
	p, err := a.p.With(name, value)
	if err != nil {
		return fmt.Errorf("apoptosis: %w", err)
	}
	a.p = p
	return nil
}
