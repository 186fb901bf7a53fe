package main

import (
	"github.com/pthm-cable/sphfluid/fluid"
)

// ParamSpec defines a single tunable preset parameter.
type ParamSpec struct {
	Name string  // Column name in the log
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector maps between optimizer vectors and fluid presets. The
// optimizer works in [0,1] per dimension.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the tunable set: pressure stiffness, viscosity and
// rest density.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "gas_constant", Min: 2000, Max: 80000},
			{Name: "viscosity", Min: 0, Max: 8},
			{Name: "rest_density", Min: 0.0006, Max: 0.0024},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// FromConfig extracts the tunable values from a preset.
func (pv *ParamVector) FromConfig(c fluid.Config) []float64 {
	return []float64{c.GasConstant, c.Viscosity, c.RestDensity}
}

// ApplyToConfig returns base with the clamped values of raw applied.
func (pv *ParamVector) ApplyToConfig(base fluid.Config, raw []float64) fluid.Config {
	v := pv.Clamp(raw)
	base.GasConstant = v[0]
	base.Viscosity = v[1]
	base.RestDensity = v[2]
	return base
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}
