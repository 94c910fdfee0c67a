package scenes

import (
	"fmt"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/controllers"
	"github.com/san-kum/softbody/internal/shapes"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/vmath"
)

func groundSettings(c *sim.Config) {
	c.Collisions = true
	c.CollisionIndex = true
	c.SurfaceStiffness = 5
	c.SurfaceDrag = 0.28
	c.Friction = sim.FrictionAnisotropic
	c.SurfaceDragTan = 0.28
	c.SurfaceDragNorm = 0.01
	c.Gravity = 1
}

func strut(origin, dir vmath.Vec3, p Params) shapes.LegConfig {
	return shapes.LegConfig{
		Origin:    origin,
		Dir:       dir,
		Segments:  p.Int("segments", 16),
		SegLen:    p.Float("seglen", 1.1),
		Lines:     p.Int("lines", 6),
		Stiffness: p.Float("k", 30),
		Mass:      p.Float("mass", 1),
		Radius:    p.Float("radius", 0.5),
		Width:     p.Float("width", 1.3),
	}
}

func addLeg(w *sim.World, cfg shapes.LegConfig) (*shapes.Tube, error) {
	t, err := shapes.Leg(cfg)
	if err != nil {
		return nil, err
	}
	b, err := t.Body()
	if err != nil {
		return nil, err
	}
	if _, err := w.AddSoftBody(b); err != nil {
		return nil, err
	}
	return t, nil
}

var fallingStruts = entry{
	description: "grid of tilted struts dropped onto one lying flat; collision stress test",
	dt:          0.03,
	checkpoints: []uint64{20, 250},
	settings: func(c *sim.Config) {
		groundSettings(c)
		c.CollisionStiffness = 20
		c.AirDrag = 0.2
		c.SortForRender = true
	},
	populate: func(w *sim.World, p Params) (sim.Controller, error) {
		n := p.Int("n", 8)
		half := float64(n) / 2
		for i := range n {
			for j := range n {
				origin := vmath.V(4*(float64(j)-half), 4*(float64(i)-half), 6)
				if _, err := addLeg(w, strut(origin, vmath.V(0, 1, 1), p)); err != nil {
					return nil, fmt.Errorf("strut %d,%d: %w", i, j, err)
				}
			}
		}
		if _, err := addLeg(w, strut(vmath.V(0, -8, 1.5), vmath.YAxis, p)); err != nil {
			return nil, fmt.Errorf("base strut: %w", err)
		}
		return nil, nil
	},
}

var worm = entry{
	description: "tapered worm crawling with a sine/cosine muscle wave",
	dt:          0.01,
	settings: func(c *sim.Config) {
		groundSettings(c)
		c.CollisionStiffness = 5
		c.AirDrag = 0.01
	},
	populate: func(w *sim.World, p Params) (sim.Controller, error) {
		cfg := shapes.DefaultWormConfig()
		cfg.Sections = p.Int("sections", cfg.Sections)
		cfg.Lines = p.Int("lines", cfg.Lines)
		cfg.Stiffness = p.Float("k", cfg.Stiffness)
		cfg.Mass = p.Float("mass", cfg.Mass)
		cfg.Radius = p.Float("radius", cfg.Radius)
		wm, err := shapes.NewWorm(cfg)
		if err != nil {
			return nil, err
		}
		b, err := wm.Body()
		if err != nil {
			return nil, err
		}
		if _, err := w.AddSoftBody(b); err != nil {
			return nil, err
		}
		gait := controllers.NewWormGait(wm)
		gait.Start = uint64(p.Int("start", int(gait.Start)))
		gait.Period = uint64(p.Int("period", int(gait.Period)))
		gait.Freq = p.Float("freq", gait.Freq)
		return gait, nil
	},
}

func addCube(w *sim.World, center vmath.Vec3, twist float64, p Params) error {
	c, err := shapes.Cube(center, p.Float("side", 1), p.Float("mass", 1), p.Float("k", 10))
	if err != nil {
		return err
	}
	if twist != 0 {
		c.Rotate(vmath.Rotation(vmath.ZAxis, twist), center)
	}
	c.SetRadius(p.Float("radius", 0.4))
	_, err = w.AddSoftBody(c)
	return err
}

var cube = entry{
	description: "single spring cube dropped on the ground",
	dt:          0.01,
	settings: func(c *sim.Config) {
		c.Gravity = 1
	},
	populate: func(w *sim.World, p Params) (sim.Controller, error) {
		return nil, addCube(w, vmath.V(0, 0, p.Float("height", 3)), 0, p)
	},
}

var pile = entry{
	description: "column of cubes falling onto each other",
	dt:          0.01,
	settings: func(c *sim.Config) {
		c.Gravity = 1
		c.SortForRender = true
	},
	populate: func(w *sim.World, p Params) (sim.Controller, error) {
		n := p.Int("n", 5)
		gap := p.Float("gap", 1.6)
		for i := range n {
			center := vmath.V(0.1*float64(i%2), 0, 1+gap*float64(i))
			if err := addCube(w, center, 0.3*float64(i), p); err != nil {
				return nil, fmt.Errorf("cube %d: %w", i, err)
			}
		}
		return nil, nil
	},
}

var leg = entry{
	description: "cantilevered leg bending one muscle line under PID length control",
	dt:          0.01,
	settings: func(c *sim.Config) {
		groundSettings(c)
		c.AirDrag = 0.01
	},
	populate: func(w *sim.World, p Params) (sim.Controller, error) {
		seg := p.Float("seglen", 0.2)
		t, err := shapes.Leg(shapes.LegConfig{
			Origin:    vmath.V(0, 0, p.Float("height", 1)),
			Dir:       vmath.YAxis,
			Segments:  p.Int("segments", 10),
			SegLen:    seg,
			Lines:     p.Int("lines", 5),
			Stiffness: p.Float("k", 30),
			Mass:      p.Float("mass", 1),
			Width:     p.Float("width", 0.5),
			FixOrigin: true,
		})
		if err != nil {
			return nil, err
		}
		springs := make([]*body.Spring, 0, len(t.Lines[0]))
		for i := range t.Lines[0] {
			t.Lines[0][i].SetActuator(false)
			springs = append(springs, t.Lines[0][i].Spring)
		}
		b, err := t.Body()
		if err != nil {
			return nil, err
		}
		if _, err := w.AddSoftBody(b); err != nil {
			return nil, err
		}
		pid := controllers.NewPID(p.Float("kp", 2), p.Float("ki", 0.5), p.Float("kd", 0), p.Float("target", 0.8*seg))
		return controllers.NewLengthHold(pid, springs, seg, 0.6*seg, 1.2*seg), nil
	},
}
