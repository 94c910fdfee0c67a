package telemetry

import (
	"log/slog"
	"time"

	"github.com/san-kum/softbody/internal/sim"
)

// PerfCollector keeps the step timings of the last windowSize ticks.
type PerfCollector struct {
	windowSize  int
	samples     []sim.Timings
	writeIndex  int
	sampleCount int
}

func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]sim.Timings, windowSize),
	}
}

func (p *PerfCollector) Record(t sim.Timings) {
	p.samples[p.writeIndex] = t
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

type PerfStats struct {
	Samples      int
	AvgStep      time.Duration
	MinStep      time.Duration
	MaxStep      time.Duration
	AvgIndex     time.Duration
	AvgCollision time.Duration
	// share of the average step, percent
	IndexPct       float64
	CollisionPct   float64
	TicksPerSecond float64
}

func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	var total, index, coll, minStep, maxStep time.Duration
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Step
		index += s.IndexRebuild
		coll += s.Collision
		if i == 0 || s.Step < minStep {
			minStep = s.Step
		}
		if s.Step > maxStep {
			maxStep = s.Step
		}
	}

	n := time.Duration(p.sampleCount)
	st := PerfStats{
		Samples:      p.sampleCount,
		AvgStep:      total / n,
		MinStep:      minStep,
		MaxStep:      maxStep,
		AvgIndex:     index / n,
		AvgCollision: coll / n,
	}
	if st.AvgStep > 0 {
		st.IndexPct = float64(st.AvgIndex) / float64(st.AvgStep) * 100
		st.CollisionPct = float64(st.AvgCollision) / float64(st.AvgStep) * 100
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgStep)
	}
	return st
}

func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", s.Samples),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("min_step_us", s.MinStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("index_pct", s.IndexPct),
		slog.Float64("collision_pct", s.CollisionPct),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	)
}
