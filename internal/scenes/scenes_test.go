package scenes

import (
	"errors"
	"testing"

	"github.com/san-kum/softbody/internal/controllers"
	"github.com/san-kum/softbody/internal/sim"
)

func small(name string) Params {
	switch name {
	case "falling_struts":
		return Params{"n": 1, "segments": 4}
	case "worm":
		return Params{"sections": 8, "start": 2, "period": 10}
	case "pile":
		return Params{"n": 2}
	}
	return nil
}

func TestBuildAndStep(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		t.Run(name, func(t *testing.T) {
			sc, err := r.Build(name, Options{Params: small(name)})
			if err != nil {
				t.Fatal(err)
			}
			if sc.World.NumPoints() == 0 {
				t.Fatal("empty world")
			}
			before := sc.World.NumPoints()
			if err := sc.World.Run(20, sc.Dt); err != nil {
				t.Fatal(err)
			}
			if err := sc.World.CheckState(); err != nil {
				t.Fatal(err)
			}
			if sc.World.NumPoints() != before {
				t.Errorf("points %d -> %d", before, sc.World.NumPoints())
			}
			if sc.World.Timestep() != 20 {
				t.Errorf("timestep = %d", sc.World.Timestep())
			}
		})
	}
}

func TestFallingStrutsLayout(t *testing.T) {
	sc, err := NewRegistry().Build("falling_struts", Options{Params: Params{"n": 2, "segments": 3, "lines": 4}})
	if err != nil {
		t.Fatal(err)
	}
	// five legs of three rings with four rim points and a center
	if got, want := sc.World.NumPoints(), 5*3*5; got != want {
		t.Errorf("points = %d, want %d", got, want)
	}
	cfg := sc.World.Config()
	if cfg.CollisionStiffness != 20 || cfg.Friction != sim.FrictionAnisotropic || !cfg.SortForRender {
		t.Errorf("scene settings not applied: %+v", cfg)
	}
	if len(sc.Checkpoints) != 2 || sc.Checkpoints[0] != 20 || sc.Checkpoints[1] != 250 {
		t.Errorf("checkpoints = %v", sc.Checkpoints)
	}
	if sc.Dt != 0.03 {
		t.Errorf("dt = %g", sc.Dt)
	}
}

func TestOptions(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Build("cube", Options{
		Seed: 99,
		Tune: func(c *sim.Config) { c.Integrator = "euler" },
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := sc.World.Config()
	if cfg.Seed != 99 || cfg.Integrator != "euler" {
		t.Errorf("cfg seed=%d integrator=%s", cfg.Seed, cfg.Integrator)
	}

	if _, err := r.Build("nope", Options{}); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("unknown scene: err = %v", err)
	}
	if _, err := r.Build("cube", Options{Params: Params{"mass": 0}}); err == nil {
		t.Error("zero mass accepted")
	}
}

func TestControllers(t *testing.T) {
	r := NewRegistry()
	sc, err := r.Build("worm", Options{Params: small("worm")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sc.Controller.(*controllers.WormGait); !ok {
		t.Errorf("worm controller is %T", sc.Controller)
	}
	if len(sc.World.Actuators()) == 0 {
		t.Error("worm has no actuators")
	}

	sc, err = r.Build("leg", Options{})
	if err != nil {
		t.Fatal(err)
	}
	hold, ok := sc.Controller.(*controllers.LengthHold)
	if !ok {
		t.Fatalf("leg controller is %T", sc.Controller)
	}
	if err := sc.World.Run(50, sc.Dt); err != nil {
		t.Fatal(err)
	}
	for _, s := range hold.Springs {
		if s.RestLength < hold.Min || s.RestLength > hold.Max {
			t.Fatalf("rest length %g outside [%g, %g]", s.RestLength, hold.Min, hold.Max)
		}
	}
}

func TestReplay(t *testing.T) {
	r := NewRegistry()
	run := func() []float64 {
		sc, err := r.Build("pile", Options{Params: small("pile")})
		if err != nil {
			t.Fatal(err)
		}
		if err := sc.World.Run(40, sc.Dt); err != nil {
			t.Fatal(err)
		}
		var out []float64
		for _, id := range sc.World.IDs() {
			p, _ := sc.World.Point(id)
			out = append(out, p.Pos[:]...)
		}
		return out
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatal("different point counts")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("coordinate %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestParams(t *testing.T) {
	p := Params{"n": 2.6}
	if p.Int("n", 8) != 3 || p.Int("m", 8) != 8 {
		t.Error("Int lookup")
	}
	if p.Float("x", 1.5) != 1.5 {
		t.Error("Float default")
	}
	var nilParams Params
	if nilParams.Float("x", 2) != 2 {
		t.Error("nil params")
	}
}
