package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Scene != DefaultScene {
		t.Errorf("expected scene %s, got %s", DefaultScene, cfg.Scene)
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.DataDir == "" {
		t.Error("data dir should be set")
	}
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
scene: worm
seed: 9
params:
  k: 45
world:
  integrator: euler
  collisions: false
  bond_iterations: 5
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "worm" || cfg.Seed != 9 || cfg.Params["k"] != 45 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Steps != DefaultSteps || cfg.SampleEvery != DefaultSampleEvery {
		t.Errorf("defaults lost: steps=%d sample_every=%d", cfg.Steps, cfg.SampleEvery)
	}

	world := cfg.WorldConfig(sim.DefaultConfig())
	if world.Integrator != "euler" || world.Collisions || world.BondIterations != 5 {
		t.Errorf("overrides not applied: %+v", world)
	}
	if world.AirDrag != sim.DefaultConfig().AirDrag {
		t.Error("unset field changed")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("pile", "soft")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.World.CollisionResponse == nil || *got.World.CollisionResponse != sim.ResponsePenalty {
		t.Errorf("collision response lost: %+v", got.World)
	}
	if got.World.Gravity != nil {
		t.Error("unset override came back set")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("falling_struts", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["n"] != 3 {
		t.Errorf("expected n 3, got %v", cfg.Params["n"])
	}
	cfg.Params["n"] = 99
	if Presets["falling_struts"]["small"].Params["n"] != 3 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("worm", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "crawl") != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	if got := ListPresets("worm"); len(got) != 3 || got[0] != "crawl" {
		t.Errorf("worm presets = %v", got)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestPresetsBuild(t *testing.T) {
	reg := scenes.NewRegistry()
	for scene, presets := range Presets {
		for name := range presets {
			cfg := GetPreset(scene, name)
			if cfg.Scene != scene {
				t.Errorf("%s/%s targets scene %s", scene, name, cfg.Scene)
			}
			world, err := reg.WorldConfig(scene, scenes.Options{Tune: cfg.World.Apply})
			if err != nil {
				t.Errorf("%s/%s: %v", scene, name, err)
				continue
			}
			if err := world.Validate(); err != nil {
				t.Errorf("%s/%s world config: %v", scene, name, err)
			}
		}
	}
}

func TestExperimentConfig(t *testing.T) {
	cfg := GetPreset("cube", "penalty")
	ec := cfg.ExperimentConfig()
	if ec.Scene != "cube" || ec.Steps != 500 || ec.World == nil {
		t.Fatalf("experiment config = %+v", ec)
	}
	w := sim.DefaultConfig()
	ec.World(&w)
	if w.BondSolver != sim.SolverPenalty || w.Integrator != "euler" {
		t.Errorf("world tune = %+v", w)
	}
}
