package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func Describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return Stats{Mean: mean, StdDev: std, Min: floats.Min(xs), Max: floats.Max(xs)}
}

// Summary condenses a run into the numbers stored with it and used as
// tuning objectives.
type Summary struct {
	Samples      int     `json:"samples"`
	Energy       Stats   `json:"energy"`
	StepUS       Stats   `json:"step_us"`
	FinalEnergy  float64 `json:"final_energy"`
	EnergyDrift  float64 `json:"energy_drift"`
	MaxDrift     float64 `json:"max_drift"`
	Displacement float64 `json:"displacement"` // centroid travel in the ground plane
	DistanceX    float64 `json:"distance_x"`
	Collisions   uint64  `json:"collisions"`
	MaxStrain    float64 `json:"max_strain"`
}

func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	energy, _ := Series(samples, "energy")
	step, _ := Series(samples, "step_us")
	strain, _ := Series(samples, "max_strain")
	first, last := samples[0], samples[len(samples)-1]

	drift, maxDrift := EnergyDrift(energy)
	return Summary{
		Samples:      len(samples),
		Energy:       Describe(energy),
		StepUS:       Describe(step),
		FinalEnergy:  last.Energy,
		EnergyDrift:  drift,
		MaxDrift:     maxDrift,
		Displacement: math.Hypot(last.CentroidX-first.CentroidX, last.CentroidY-first.CentroidY),
		DistanceX:    last.CentroidX - first.CentroidX,
		Collisions:   last.Collisions,
		MaxStrain:    floats.Max(strain),
	}
}

// EnergyDrift returns the final and the largest relative deviation from
// the first value.
func EnergyDrift(energy []float64) (final, max float64) {
	if len(energy) == 0 {
		return 0, 0
	}
	e0 := energy[0]
	scale := math.Abs(e0)
	if scale < 1e-12 {
		scale = 1
	}
	for _, e := range energy {
		max = math.Max(max, math.Abs(e-e0)/scale)
	}
	return (energy[len(energy)-1] - e0) / scale, max
}

// Metric looks up a summary value by name, for objectives and reports.
func (s Summary) Metric(name string) (float64, bool) {
	switch name {
	case "final_energy":
		return s.FinalEnergy, true
	case "mean_energy":
		return s.Energy.Mean, true
	case "energy_drift":
		return s.EnergyDrift, true
	case "max_drift":
		return s.MaxDrift, true
	case "displacement":
		return s.Displacement, true
	case "distance_x":
		return s.DistanceX, true
	case "collisions":
		return float64(s.Collisions), true
	case "max_strain":
		return s.MaxStrain, true
	case "mean_step_us":
		return s.StepUS.Mean, true
	}
	return 0, false
}

func MetricNames() []string {
	return []string{
		"final_energy", "mean_energy", "energy_drift", "max_drift",
		"displacement", "distance_x", "collisions", "max_strain", "mean_step_us",
	}
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Float64("final_energy", s.FinalEnergy),
		slog.Float64("energy_drift", s.EnergyDrift),
		slog.Float64("displacement", s.Displacement),
		slog.Uint64("collisions", s.Collisions),
		slog.Float64("mean_step_us", s.StepUS.Mean),
	)
}
