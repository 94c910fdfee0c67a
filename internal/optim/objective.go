package optim

import (
	"context"
	"fmt"
	"maps"

	"github.com/san-kum/softbody/internal/experiment"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
)

// Objective runs a scene and scores it by one summary metric.
type Objective struct {
	Scene    string
	Steps    int
	Dt       float64
	Seed     uint64
	Base     map[string]float64
	Metric   string
	Maximize bool
	World    func(*sim.Config)
	Registry *scenes.Registry
}

func (o *Objective) Evaluate(ctx context.Context, params map[string]float64) (float64, error) {
	p := maps.Clone(o.Base)
	if p == nil {
		p = make(map[string]float64, len(params))
	}
	maps.Copy(p, params)

	exp := experiment.New(experiment.Config{
		Scene:       o.Scene,
		Steps:       o.Steps,
		Dt:          o.Dt,
		Seed:        o.Seed,
		Params:      p,
		SampleEvery: max(1, o.Steps/100),
		World:       o.World,
	}, o.Registry)
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res.Summary.Metric(o.Metric)
	if !ok {
		return 0, fmt.Errorf("optim: unknown metric %q", o.Metric)
	}
	if o.Maximize {
		v = -v
	}
	return v, nil
}
