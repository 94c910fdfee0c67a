// Package telemetry measures a running world: per-tick samples, step
// timing windows, checkpoint hashes and run summaries.
package telemetry

import (
	"math"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/vmath"
)

// Sample is one row of samples.csv.
type Sample struct {
	Tick        uint64  `csv:"tick" json:"tick"`
	Time        float64 `csv:"time" json:"time"`
	Energy      float64 `csv:"energy" json:"energy"`
	Kinetic     float64 `csv:"kinetic" json:"kinetic"`
	Collisions  uint64  `csv:"collisions" json:"collisions"`
	Points      int     `csv:"points" json:"points"`
	Grounded    int     `csv:"grounded" json:"grounded"`
	CentroidX   float64 `csv:"centroid_x" json:"centroid_x"`
	CentroidY   float64 `csv:"centroid_y" json:"centroid_y"`
	CentroidZ   float64 `csv:"centroid_z" json:"centroid_z"`
	MaxStrain   float64 `csv:"max_strain" json:"max_strain"`
	StepUS      int64   `csv:"step_us" json:"step_us"`
	IndexUS     int64   `csv:"index_us" json:"index_us"`
	CollisionUS int64   `csv:"collision_us" json:"collision_us"`
}

// Measure reads the world after a step. dt converts ticks to time.
func Measure(w *sim.World, dt float64) Sample {
	pts := w.AllPoints()
	s := Sample{
		Tick:       w.Timestep(),
		Time:       float64(w.Timestep()) * dt,
		Energy:     w.MeasureEnergy(),
		Collisions: w.Collisions(),
		Points:     len(pts),
	}

	pos := make([]vmath.Vec3, len(pts))
	for i, p := range pts {
		pos[i] = p.Pos
		s.Kinetic += p.KineticEnergy()
		if p.Grounded {
			s.Grounded++
		}
	}
	c := vmath.Centroid(pos)
	s.CentroidX, s.CentroidY, s.CentroidZ = c[0], c[1], c[2]
	s.MaxStrain = maxStrain(w.AllSprings())

	t := w.Timings()
	s.StepUS = t.Step.Microseconds()
	s.IndexUS = t.IndexRebuild.Microseconds()
	s.CollisionUS = t.Collision.Microseconds()
	return s
}

func maxStrain(springs []*body.Spring) float64 {
	m := 0.0
	for _, s := range springs {
		m = math.Max(m, s.Strain()/s.RestLength)
	}
	return m
}

// Series pulls one column out of a sample slice.
func Series(samples []Sample, column string) ([]float64, bool) {
	get, ok := columns[column]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = get(&samples[i])
	}
	return out, true
}

var columns = map[string]func(*Sample) float64{
	"energy":       func(s *Sample) float64 { return s.Energy },
	"kinetic":      func(s *Sample) float64 { return s.Kinetic },
	"collisions":   func(s *Sample) float64 { return float64(s.Collisions) },
	"grounded":     func(s *Sample) float64 { return float64(s.Grounded) },
	"centroid_x":   func(s *Sample) float64 { return s.CentroidX },
	"centroid_y":   func(s *Sample) float64 { return s.CentroidY },
	"centroid_z":   func(s *Sample) float64 { return s.CentroidZ },
	"max_strain":   func(s *Sample) float64 { return s.MaxStrain },
	"step_us":      func(s *Sample) float64 { return float64(s.StepUS) },
	"index_us":     func(s *Sample) float64 { return float64(s.IndexUS) },
	"collision_us": func(s *Sample) float64 { return float64(s.CollisionUS) },
}

// Columns lists the names accepted by Series.
func Columns() []string {
	return []string{
		"energy", "kinetic", "collisions", "grounded",
		"centroid_x", "centroid_y", "centroid_z", "max_strain",
		"step_us", "index_us", "collision_us",
	}
}

// Collector keeps a sample every Every ticks.
type Collector struct {
	Every   int
	Samples []Sample
}

func NewCollector(every int) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{Every: every}
}

func (c *Collector) Observe(w *sim.World, dt float64) {
	if w.Timestep()%uint64(c.Every) != 0 {
		return
	}
	c.Samples = append(c.Samples, Measure(w, dt))
}
