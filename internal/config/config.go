// Package config loads run settings from YAML files and presets.
package config

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/softbody/internal/experiment"
	"github.com/san-kum/softbody/internal/sim"
)

const (
	DefaultScene       = "falling_struts"
	DefaultSteps       = 250
	DefaultSampleEvery = 1
	DefaultDataDir     = ".softbody"
)

type Config struct {
	Scene       string             `yaml:"scene"`
	Steps       int                `yaml:"steps"`
	Dt          float64            `yaml:"dt"` // zero uses the scene default
	Seed        uint64             `yaml:"seed"`
	SampleEvery int                `yaml:"sample_every"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Checkpoints []uint64           `yaml:"checkpoints,omitempty"`
	World       WorldOverrides     `yaml:"world,omitempty"`
	DataDir     string             `yaml:"data_dir,omitempty"`
}

// WorldOverrides holds the world settings a file sets explicitly. Unset
// fields keep the scene's values.
type WorldOverrides struct {
	Collisions          *bool    `yaml:"collisions,omitempty"`
	CollisionIndex      *bool    `yaml:"collision_index,omitempty"`
	CollisionResponse   *string  `yaml:"collision_response,omitempty"`
	CollisionStiffness  *float64 `yaml:"collision_stiffness,omitempty"`
	CellSide            *float64 `yaml:"cell_side,omitempty"`
	SurfaceStiffness    *float64 `yaml:"surface_stiffness,omitempty"`
	SurfaceDrag         *float64 `yaml:"surface_drag,omitempty"`
	SurfaceDragTan      *float64 `yaml:"surface_drag_tan,omitempty"`
	SurfaceDragNorm     *float64 `yaml:"surface_drag_norm,omitempty"`
	Friction            *string  `yaml:"friction,omitempty"`
	AirDrag             *float64 `yaml:"air_drag,omitempty"`
	Gravity             *float64 `yaml:"gravity,omitempty"`
	Integrator          *string  `yaml:"integrator,omitempty"`
	BondSolver          *string  `yaml:"bond_solver,omitempty"`
	BondIterations      *int     `yaml:"bond_iterations,omitempty"`
	ActuatorIterations  *int     `yaml:"actuator_iterations,omitempty"`
	ActuatorRestitution *float64 `yaml:"actuator_restitution,omitempty"`
	SortForRender       *bool    `yaml:"sort_for_render,omitempty"`
}

func Ptr[T any](v T) *T { return &v }

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (o WorldOverrides) Apply(c *sim.Config) {
	set(&c.Collisions, o.Collisions)
	set(&c.CollisionIndex, o.CollisionIndex)
	set(&c.CollisionResponse, o.CollisionResponse)
	set(&c.CollisionStiffness, o.CollisionStiffness)
	set(&c.CellSide, o.CellSide)
	set(&c.SurfaceStiffness, o.SurfaceStiffness)
	set(&c.SurfaceDrag, o.SurfaceDrag)
	set(&c.SurfaceDragTan, o.SurfaceDragTan)
	set(&c.SurfaceDragNorm, o.SurfaceDragNorm)
	set(&c.Friction, o.Friction)
	set(&c.AirDrag, o.AirDrag)
	set(&c.Gravity, o.Gravity)
	set(&c.Integrator, o.Integrator)
	set(&c.BondSolver, o.BondSolver)
	set(&c.BondIterations, o.BondIterations)
	set(&c.ActuatorIterations, o.ActuatorIterations)
	set(&c.ActuatorRestitution, o.ActuatorRestitution)
	set(&c.SortForRender, o.SortForRender)
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		DataDir:     DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WorldConfig applies the overrides to base.
func (c *Config) WorldConfig(base sim.Config) sim.Config {
	c.World.Apply(&base)
	return base
}

func (c *Config) ExperimentConfig() experiment.Config {
	return experiment.Config{
		Scene:       c.Scene,
		Steps:       c.Steps,
		Dt:          c.Dt,
		Seed:        c.Seed,
		Params:      maps.Clone(c.Params),
		SampleEvery: c.SampleEvery,
		Checkpoints: c.Checkpoints,
		World:       c.World.Apply,
	}
}

func (c *Config) Clone() *Config {
	out := *c
	out.Params = maps.Clone(c.Params)
	out.Checkpoints = append([]uint64(nil), c.Checkpoints...)
	return &out
}
