// Package scenes assembles ready-to-run worlds: bodies, world settings
// and controllers for each named demo.
package scenes

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/softbody/internal/sim"
)

var ErrUnknownScene = errors.New("scenes: unknown scene")

// Params are numeric scene knobs. Missing keys fall back to the scene's
// own defaults.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(math.Round(v))
	}
	return def
}

// Scene is a populated world plus the settings it is meant to run with.
type Scene struct {
	Name        string
	World       *sim.World
	Controller  sim.Controller
	Dt          float64
	Checkpoints []uint64
}

type Options struct {
	Params Params
	// Seed overrides the world seed when non-zero.
	Seed uint64
	// Tune runs after the scene's own settings, so callers get the last
	// word on the world config.
	Tune   func(*sim.Config)
	Logger *slog.Logger
}

type entry struct {
	description string
	dt          float64
	checkpoints []uint64
	settings    func(*sim.Config)
	populate    func(w *sim.World, p Params) (sim.Controller, error)
}

type Registry struct {
	scenes map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]entry)}
	r.scenes["falling_struts"] = fallingStruts
	r.scenes["worm"] = worm
	r.scenes["cube"] = cube
	r.scenes["pile"] = pile
	r.scenes["leg"] = leg
	return r
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Describe(name string) (string, error) {
	e, ok := r.scenes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	return e.description, nil
}

// DefaultDt returns the timestep the scene is tuned for.
func (r *Registry) DefaultDt(name string) (float64, error) {
	e, ok := r.scenes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	return e.dt, nil
}

// WorldConfig returns the world settings the scene would run with.
func (r *Registry) WorldConfig(name string, opts Options) (sim.Config, error) {
	e, ok := r.scenes[name]
	if !ok {
		return sim.Config{}, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	cfg := sim.DefaultConfig()
	if e.settings != nil {
		e.settings(&cfg)
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.Tune != nil {
		opts.Tune(&cfg)
	}
	return cfg, nil
}

func (r *Registry) Build(name string, opts Options) (*Scene, error) {
	e, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}
	cfg, err := r.WorldConfig(name, opts)
	if err != nil {
		return nil, err
	}
	w, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		w.SetLogger(opts.Logger)
	}
	ctrl, err := e.populate(w, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if ctrl != nil {
		w.SetController(ctrl)
	}
	return &Scene{
		Name:        name,
		World:       w,
		Controller:  ctrl,
		Dt:          e.dt,
		Checkpoints: append([]uint64(nil), e.checkpoints...),
	}, nil
}
