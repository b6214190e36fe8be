package main

import (
	"fmt"
	"math"

	"github.com/pthm-cable/hiasobi/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the tunable parameters of one brush.
type ParamVector struct {
	Brush string
	Specs []ParamSpec
}

// NewParamVector creates the parameter set for the named brush, starting
// from its configured values.
func NewParamVector(cfg *config.Config, brushName string) (*ParamVector, error) {
	bc, sc, err := findBrush(cfg, brushName)
	if err != nil {
		return nil, err
	}
	return &ParamVector{
		Brush: brushName,
		Specs: []ParamSpec{
			{Name: "amount", Min: 1, Max: 400, Default: float64(bc.Amount)},
			{Name: "spread", Min: 2, Max: 128, Default: float64(bc.Spread)},
			{Name: "life_decay", Min: 0.1, Max: 5, Default: sc.LifeDecay},
		},
	}, nil
}

func findBrush(cfg *config.Config, name string) (*config.BrushConfig, *config.SpeciesConfig, error) {
	for i := range cfg.Brushes {
		if cfg.Brushes[i].Name == name {
			idx := cfg.Derived.SpeciesIndex[cfg.Brushes[i].Species]
			return &cfg.Brushes[i], &cfg.Species[idx], nil
		}
	}
	return nil, nil, fmt.Errorf("no brush named %q", name)
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the starting values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = math.Min(spec.Max, math.Max(spec.Min, v[i]))
	}
	return out
}

// ApplyToConfig writes clamped values into the brush and its species.
// Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	bc, sc, err := findBrush(cfg, pv.Brush)
	if err != nil {
		return err
	}
	v := pv.Clamp(values)
	bc.Amount = int32(math.Round(v[0]))
	bc.Spread = int32(math.Round(v[1]))
	sc.LifeDecay = v[2]
	return nil
}
