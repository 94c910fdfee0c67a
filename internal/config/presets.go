package config

import (
	"sort"

	"github.com/san-kum/softbody/internal/sim"
)

var Presets = map[string]map[string]*Config{
	"falling_struts": {
		"small": {
			Scene: "falling_struts", Steps: 250, SampleEvery: 5,
			Params: map[string]float64{"n": 3},
		},
		"full": {
			Scene: "falling_struts", Steps: 250, SampleEvery: 5,
			Checkpoints: []uint64{20, 250},
		},
		"brute": {
			Scene: "falling_struts", Steps: 100, SampleEvery: 5,
			Params: map[string]float64{"n": 3},
			World:  WorldOverrides{CollisionIndex: Ptr(false)},
		},
	},
	"worm": {
		"crawl": {
			Scene: "worm", Steps: 3000, SampleEvery: 10,
		},
		"stiff": {
			Scene: "worm", Steps: 3000, SampleEvery: 10,
			Params: map[string]float64{"k": 60},
		},
		"fast": {
			Scene: "worm", Steps: 2000, SampleEvery: 10,
			Params: map[string]float64{"period": 250, "start": 100},
		},
	},
	"cube": {
		"drop": {
			Scene: "cube", Steps: 500,
		},
		"penalty": {
			Scene: "cube", Steps: 500,
			World: WorldOverrides{BondSolver: Ptr(sim.SolverPenalty), Integrator: Ptr("euler")},
		},
	},
	"pile": {
		"tower": {
			Scene: "pile", Steps: 800, SampleEvery: 5,
			Params: map[string]float64{"n": 8},
		},
		"soft": {
			Scene: "pile", Steps: 800, SampleEvery: 5,
			Params: map[string]float64{"n": 5},
			World:  WorldOverrides{CollisionResponse: Ptr(sim.ResponsePenalty), CollisionStiffness: Ptr(40.0)},
		},
	},
	"leg": {
		"hold": {
			Scene: "leg", Steps: 1000, SampleEvery: 5,
		},
		"curl": {
			Scene: "leg", Steps: 1000, SampleEvery: 5,
			Params: map[string]float64{"target": 0.13, "kp": 4},
		},
	},
}

// GetPreset returns a copy of the named preset, nil if unknown.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.DataDir == "" {
		out.DataDir = DefaultDataDir
	}
	return out
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
