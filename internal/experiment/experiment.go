// Package experiment runs a scene for a fixed number of ticks and collects
// what the run produced.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/telemetry"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Config struct {
	Scene       string             `yaml:"scene" json:"scene"`
	Steps       int                `yaml:"steps" json:"steps"`
	Dt          float64            `yaml:"dt" json:"dt"` // zero uses the scene default
	Seed        uint64             `yaml:"seed" json:"seed"`
	Params      map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	SampleEvery int                `yaml:"sample_every" json:"sample_every"`
	// Checkpoints are ticks at which the state hash is recorded. Nil uses
	// the scene's own list.
	Checkpoints []uint64 `yaml:"checkpoints,omitempty" json:"checkpoints,omitempty"`
	// World tunes the world config after scene settings are applied.
	World func(*sim.Config) `yaml:"-" json:"-"`
}

// Observer sees the world after every tick.
type Observer func(w *sim.World, s telemetry.Sample)

type Result struct {
	Scene       string                 `json:"scene"`
	Steps       int                    `json:"steps"`
	Dt          float64                `json:"dt"`
	Seed        uint64                 `json:"seed"`
	World       sim.Config             `json:"world"`
	Samples     []telemetry.Sample     `json:"samples"`
	Checkpoints []telemetry.Checkpoint `json:"checkpoints"`
	Summary     telemetry.Summary      `json:"summary"`
	Perf        telemetry.PerfStats    `json:"-"`
	Elapsed     time.Duration          `json:"elapsed"`
}

type Experiment struct {
	cfg       Config
	registry  *scenes.Registry
	scene     *scenes.Scene
	observers []Observer
	logger    *slog.Logger
}

func New(cfg Config, registry *scenes.Registry) *Experiment {
	if registry == nil {
		registry = scenes.NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: slog.Default()}
}

func (e *Experiment) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

func (e *Experiment) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Setup builds the scene's world. It may be called once before Run.
func (e *Experiment) Setup() error {
	if e.cfg.Steps < 0 {
		return fmt.Errorf("experiment: negative steps %d", e.cfg.Steps)
	}
	sc, err := e.registry.Build(e.cfg.Scene, scenes.Options{
		Params: e.cfg.Params,
		Seed:   e.cfg.Seed,
		Tune:   e.cfg.World,
		Logger: e.logger,
	})
	if err != nil {
		return err
	}
	if e.cfg.Dt == 0 {
		e.cfg.Dt = sc.Dt
	}
	if e.cfg.Checkpoints == nil {
		e.cfg.Checkpoints = sc.Checkpoints
	}
	if e.cfg.SampleEvery < 1 {
		e.cfg.SampleEvery = 1
	}
	e.scene = sc
	return nil
}

// World exposes the scene world, nil before Setup.
func (e *Experiment) World() *sim.World {
	if e.scene == nil {
		return nil
	}
	return e.scene.World
}

func (e *Experiment) Config() Config { return e.cfg }

// Run steps the world cfg.Steps times, checking ctx between ticks.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.scene == nil {
		return nil, ErrNotSetup
	}
	w := e.scene.World
	collector := telemetry.NewCollector(e.cfg.SampleEvery)
	perf := telemetry.NewPerfCollector(e.cfg.Steps)
	res := &Result{
		Scene: e.cfg.Scene,
		Steps: e.cfg.Steps,
		Dt:    e.cfg.Dt,
		Seed:  w.Config().Seed,
		World: w.Config(),
	}

	e.logger.Info("experiment started",
		"scene", e.cfg.Scene,
		"steps", e.cfg.Steps,
		"dt", e.cfg.Dt,
		"seed", res.Seed,
		"points", w.NumPoints())

	collector.Observe(w, e.cfg.Dt)
	start := time.Now()
	for n := 0; n < e.cfg.Steps; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.Step(e.cfg.Dt); err != nil {
			return nil, err
		}
		perf.Record(w.Timings())
		collector.Observe(w, e.cfg.Dt)
		if slices.Contains(e.cfg.Checkpoints, w.Timestep()) {
			cp := telemetry.Checkpoint{Tick: w.Timestep(), Hash: telemetry.Hash(w)}
			res.Checkpoints = append(res.Checkpoints, cp)
			e.logger.Debug("checkpoint", "tick", cp.Tick, "hash", cp.Hash, "collisions", w.Collisions())
		}
		if len(e.observers) > 0 {
			s := telemetry.Measure(w, e.cfg.Dt)
			for _, o := range e.observers {
				o(w, s)
			}
		}
	}
	res.Elapsed = time.Since(start)

	if err := w.CheckState(); err != nil {
		return nil, err
	}
	res.Samples = collector.Samples
	res.Summary = telemetry.Summarize(res.Samples)
	res.Perf = perf.Stats()

	e.logger.Info("experiment finished",
		"scene", e.cfg.Scene,
		"elapsed", res.Elapsed,
		"summary", res.Summary,
		"perf", res.Perf)
	return res, nil
}
