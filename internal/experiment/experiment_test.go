package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/telemetry"
)

func pileConfig() Config {
	return Config{
		Scene:       "pile",
		Steps:       30,
		Seed:        7,
		Params:      map[string]float64{"n": 2},
		Checkpoints: []uint64{10, 20},
	}
}

func run(t *testing.T, cfg Config) *Result {
	t.Helper()
	exp := New(cfg, nil)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestRun(t *testing.T) {
	res := run(t, pileConfig())
	if len(res.Samples) != 31 {
		t.Errorf("samples = %d, want 31", len(res.Samples))
	}
	if res.Dt != 0.01 {
		t.Errorf("dt = %g, want scene default", res.Dt)
	}
	if res.Seed != 7 {
		t.Errorf("seed = %d", res.Seed)
	}
	if len(res.Checkpoints) != 2 || res.Checkpoints[0].Tick != 10 || res.Checkpoints[1].Tick != 20 {
		t.Errorf("checkpoints = %+v", res.Checkpoints)
	}
	if res.Summary.Samples != 31 {
		t.Errorf("summary samples = %d", res.Summary.Samples)
	}
}

func TestReplayHashes(t *testing.T) {
	a, b := run(t, pileConfig()), run(t, pileConfig())
	for i := range a.Checkpoints {
		if a.Checkpoints[i] != b.Checkpoints[i] {
			t.Errorf("checkpoint %d: %+v vs %+v", i, a.Checkpoints[i], b.Checkpoints[i])
		}
	}

	other := pileConfig()
	other.World = func(c *sim.Config) { c.Integrator = "euler" }
	c := run(t, other)
	if c.Checkpoints[1].Hash == a.Checkpoints[1].Hash {
		t.Error("different integrator produced the same state")
	}
}

func TestSampleEvery(t *testing.T) {
	cfg := pileConfig()
	cfg.SampleEvery = 10
	res := run(t, cfg)
	if len(res.Samples) != 4 {
		t.Errorf("samples = %d, want 4", len(res.Samples))
	}
}

func TestObservers(t *testing.T) {
	exp := New(pileConfig(), scenes.NewRegistry())
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	var ticks []uint64
	exp.AddObserver(func(_ *sim.World, s telemetry.Sample) { ticks = append(ticks, s.Tick) })
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ticks) != 30 || ticks[0] != 1 || ticks[29] != 30 {
		t.Errorf("observer ticks = %v", ticks)
	}
}

func TestErrors(t *testing.T) {
	if _, err := New(pileConfig(), nil).Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("run before setup: err = %v", err)
	}

	cfg := pileConfig()
	cfg.Scene = "missing"
	if err := New(cfg, nil).Setup(); !errors.Is(err, scenes.ErrUnknownScene) {
		t.Errorf("unknown scene: err = %v", err)
	}

	exp := New(pileConfig(), nil)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run: err = %v", err)
	}
	if exp.World().Timestep() != 0 {
		t.Errorf("cancelled run stepped %d ticks", exp.World().Timestep())
	}
}
