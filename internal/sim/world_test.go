package sim

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

var _ = Describe("Config", func() {
	It("accepts the defaults", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejects invalid settings",
		func(mutate func(*Config)) {
			cfg := DefaultConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(ErrConfig))
			_, err := New(cfg)
			Expect(err).To(MatchError(ErrConfig))
		},
		Entry("zero cell side", func(c *Config) { c.CellSide = 0 }),
		Entry("negative bond iterations", func(c *Config) { c.BondIterations = -1 }),
		Entry("unknown solver", func(c *Config) { c.BondSolver = "magic" }),
		Entry("unknown friction", func(c *Config) { c.Friction = "sticky" }),
		Entry("unknown response", func(c *Config) { c.CollisionResponse = "bounce" }),
		Entry("unknown integrator", func(c *Config) { c.Integrator = "rk4" }),
	)
})

var _ = Describe("AddSoftBody", func() {
	var w *World

	BeforeEach(func() {
		w = newWorld(quietConfig())
	})

	It("assigns sequential ids across bodies", func() {
		h1, err := w.AddSoftBody(chain(5, 1, 0, 1, 2))
		Expect(err).NotTo(HaveOccurred())
		h2, err := w.AddSoftBody(chain(5, 1, 10, 11))
		Expect(err).NotTo(HaveOccurred())

		Expect(h1.FirstID).To(Equal(body.ID(1)))
		Expect(h1.LastID).To(Equal(body.ID(3)))
		Expect(h2.FirstID).To(Equal(body.ID(4)))
		Expect(h2.Index).To(Equal(1))
		Expect(w.IDs()).To(Equal([]body.ID{1, 2, 3, 4, 5}))
	})

	It("registers bonds in both directions", func() {
		_, err := w.AddSoftBody(chain(5, 1, 0, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Bonded(1, 2)).To(BeTrue())
		Expect(w.Bonded(2, 1)).To(BeTrue())
		Expect(w.Bonded(1, 1)).To(BeFalse())
	})

	It("separates actuators and the points only they touch", func() {
		a, b, c := point(0, 0, 5), point(1, 0, 5), point(2, 0, 5)
		s1 := spring(a, b, 1)
		s2 := spring(b, c, 1)
		s2.Actuator = true
		bd, err := body.New([]*body.Point{a, b, c}, []*body.Spring{s1, s2})
		Expect(err).NotTo(HaveOccurred())

		h, err := w.AddSoftBody(bd)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Springs).To(Equal(1))
		Expect(h.Actuators).To(Equal(1))
		Expect(w.Springs()).To(ConsistOf(s1))
		Expect(w.Actuators()).To(ConsistOf(s2))
		Expect(w.ActPoints()).To(ConsistOf(c))
		Expect(w.Points()).To(ConsistOf(a, b))
		Expect(w.IndexStats().Objects).To(Equal(3))
	})

	It("rejects springs leaving the body", func() {
		a, b := point(0, 0, 0), point(1, 0, 0)
		bd := &body.Body{Points: []*body.Point{a}, Springs: []*body.Spring{spring(a, b, 1)}}
		_, err := w.AddSoftBody(bd)
		Expect(err).To(MatchError(body.ErrForeignEndpoint))
		Expect(w.NumPoints()).To(BeZero())
	})

	It("rejects points that already joined a world", func() {
		bd := chain(5, 1, 0, 1)
		_, err := w.AddSoftBody(bd)
		Expect(err).NotTo(HaveOccurred())
		_, err = w.AddSoftBody(bd)
		Expect(err).To(MatchError(ErrPointReused))
	})
})

var _ = Describe("Step", func() {
	It("rejects non-positive timesteps", func() {
		w := newWorld(quietConfig())
		Expect(w.Step(0)).To(MatchError(ErrTimestep))
		Expect(w.Step(-1)).To(MatchError(ErrTimestep))
		Expect(w.Timestep()).To(BeZero())
	})

	It("conserves points without deletions", func() {
		cfg := DefaultConfig()
		cfg.Gravity = 1
		w := newWorld(cfg)
		_, err := w.AddSoftBody(sheet(4, vmath.V(0, 0, 2)))
		Expect(err).NotTo(HaveOccurred())
		_, err = w.AddSoftBody(sheet(4, vmath.V(0.5, 0.5, 4)))
		Expect(err).NotTo(HaveOccurred())

		Expect(w.Run(100, 0.05)).To(Succeed())
		Expect(w.NumPoints()).To(Equal(32))
		Expect(w.AllPoints()).To(HaveLen(32))
		Expect(w.IndexStats().Objects).To(Equal(32))
		Expect(w.Timestep()).To(Equal(uint64(100)))
		Expect(w.CheckState()).To(Succeed())
	})

	It("never increases energy while relaxing a stretched chain", func() {
		w := newWorld(quietConfig())
		_, err := w.AddSoftBody(chain(5, 1, 0, 1.6, 3.5))
		Expect(err).NotTo(HaveOccurred())

		prev := w.MeasureEnergy()
		Expect(prev).To(BeNumerically(">", 0))
		for i := 0; i < 50; i++ {
			Expect(w.Step(0.01)).To(Succeed())
			e := w.MeasureEnergy()
			Expect(e).To(BeNumerically("<=", prev+1e-12))
			prev = e
		}
		Expect(prev).To(BeNumerically("<", 1e-6))
	})

	It("follows the closed form of free fall with Verlet", func() {
		cfg := quietConfig()
		cfg.Integrator = "verlet"
		cfg.Gravity = 2
		w := newWorld(cfg)
		p := point(0, 0, 1000)
		_, err := w.AddSoftBody(&body.Body{Points: []*body.Point{p}})
		Expect(err).NotTo(HaveOccurred())

		const dt = 0.01
		p.PrevPos = vmath.V(0, 0, 1000-0.5*cfg.Gravity*dt*dt)
		Expect(w.Run(100, dt)).To(Succeed())

		t := 100 * dt
		Expect(p.Pos[2]).To(BeNumerically("~", 1000-0.5*cfg.Gravity*t*t, 1e-6))
		Expect(p.Vel[2]).To(BeNumerically("~", -cfg.Gravity*t, 0.05))
	})

	It("clamps points to the ground and marks them grounded", func() {
		cfg := quietConfig()
		cfg.Integrator = "verlet"
		cfg.Gravity = 1
		w := newWorld(cfg)
		p := point(0, 0, 0.01)
		_, err := w.AddSoftBody(&body.Body{Points: []*body.Point{p}})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 20; i++ {
			Expect(w.Step(0.1)).To(Succeed())
		}
		Expect(p.Grounded).To(BeTrue())
		Expect(p.Pos[2]).To(BeNumerically(">", -0.05))
	})

	It("invokes the controller once per tick with the completed tick", func() {
		w := newWorld(quietConfig())
		var ticks []uint64
		w.SetController(ControllerFunc(func(cw *World, dt float64, tick uint64) {
			Expect(cw).To(BeIdenticalTo(w))
			Expect(dt).To(Equal(0.02))
			ticks = append(ticks, tick)
		}))
		Expect(w.Run(3, 0.02)).To(Succeed())
		Expect(ticks).To(Equal([]uint64{0, 1, 2}))
	})

	It("replays identically from the same seed", func() {
		build := func() *World {
			cfg := DefaultConfig()
			cfg.Gravity = 1
			cfg.Friction = FrictionAnisotropic
			w := newWorld(cfg)
			_, err := w.AddSoftBody(sheet(3, vmath.V(0, 0, 0.5)))
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddSoftBody(sheet(3, vmath.V(0.4, 0.3, 1.6)))
			Expect(err).NotTo(HaveOccurred())
			return w
		}
		a, b := build(), build()
		Expect(a.Run(80, 0.05)).To(Succeed())
		Expect(b.Run(80, 0.05)).To(Succeed())

		Expect(positions(a)).To(Equal(positions(b)))
		Expect(a.Collisions()).To(Equal(b.Collisions()))
		Expect(a.Collisions()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Collisions", func() {
	overlapping := func(cfg Config) (*World, *body.Point, *body.Point) {
		w := newWorld(cfg)
		a, b := point(0, 0, 5), point(0.6, 0, 5)
		a.Radius, b.Radius = 0.5, 0.5
		_, err := w.AddSoftBody(&body.Body{Points: []*body.Point{a, b}})
		Expect(err).NotTo(HaveOccurred())
		return w, a, b
	}

	It("pushes an overlapping pair apart", func() {
		w, a, b := overlapping(quietConfig())
		Expect(w.Step(0.01)).To(Succeed())
		Expect(vmath.Dist(a.Pos, b.Pos)).To(BeNumerically("~", 1.0, 1e-9))
		Expect(w.Collisions()).To(BeNumerically(">=", 1))
	})

	It("pushes apart without the index too", func() {
		cfg := quietConfig()
		cfg.CollisionIndex = false
		w, a, b := overlapping(cfg)
		Expect(w.Step(0.01)).To(Succeed())
		Expect(vmath.Dist(a.Pos, b.Pos)).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("leaves fixed points in place", func() {
		w, a, b := overlapping(quietConfig())
		a.Fixed = true
		Expect(w.Step(0.01)).To(Succeed())
		Expect(a.Pos).To(Equal(vmath.V(0, 0, 5)))
		Expect(b.Pos[0]).To(BeNumerically(">", 0.6))
	})

	It("accumulates penalty forces instead of moving points", func() {
		cfg := quietConfig()
		cfg.CollisionResponse = ResponsePenalty
		w, a, b := overlapping(cfg)
		Expect(w.Step(0.01)).To(Succeed())
		Expect(a.Vel[0]).To(BeNumerically("<", 0))
		Expect(b.Vel[0]).To(BeNumerically(">", 0))
		Expect(a.Vel[0]).To(BeNumerically("~", -b.Vel[0], 1e-12))
	})

	It("keeps penalty forces off fixed points", func() {
		cfg := quietConfig()
		cfg.CollisionResponse = ResponsePenalty
		w, a, b := overlapping(cfg)
		a.Fixed = true
		Expect(w.Run(50, 0.01)).To(Succeed())
		Expect(a.Force).To(Equal(vmath.Vec3{}))
		Expect(a.Vel).To(Equal(vmath.Vec3{}))
		Expect(b.Vel[0]).To(BeNumerically(">", 0))
	})

	It("ignores bonded pairs", func() {
		w := newWorld(quietConfig())
		a, b := point(0, 0, 5), point(0.6, 0, 5)
		a.Radius, b.Radius = 0.5, 0.5
		bd, err := body.New([]*body.Point{a, b}, []*body.Spring{spring(a, b, 0.6)})
		Expect(err).NotTo(HaveOccurred())
		_, err = w.AddSoftBody(bd)
		Expect(err).NotTo(HaveOccurred())

		Expect(w.Step(0.01)).To(Succeed())
		Expect(w.Collisions()).To(BeZero())
		Expect(vmath.Dist(a.Pos, b.Pos)).To(BeNumerically("~", 0.6, 1e-9))
	})
})

var _ = Describe("Bond solvers", func() {
	It("applies Hooke forces with the penalty solver", func() {
		a, b := point(0, 0, 0), point(2, 0, 0)
		s := spring(a, b, 1)
		solvePenalty(s)
		Expect(a.Force).To(Equal(vmath.V(30, 0, 0)))
		Expect(b.Force).To(Equal(vmath.V(-30, 0, 0)))
	})

	It("restores rest length with the position solver", func() {
		a, b := point(0, 0, 0), point(2, 0, 0)
		s := spring(a, b, 1)
		solvePosition(s)
		Expect(s.Length()).To(BeNumerically("~", 1, 1e-12))
		Expect(a.Pos[0]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("does not load pinned points with the penalty solver", func() {
		cfg := quietConfig()
		cfg.BondSolver = SolverPenalty
		w := newWorld(cfg)
		_, err := w.AddSoftBody(chain(5, 1, 0, 2))
		Expect(err).NotTo(HaveOccurred())
		a, _ := w.Point(1)
		b, _ := w.Point(2)

		w.Select(1, 2)
		w.SetFixed(true)
		Expect(w.Run(1000, 0.01)).To(Succeed())
		Expect(a.Force).To(Equal(vmath.Vec3{}))
		Expect(b.Force).To(Equal(vmath.Vec3{}))
		Expect(a.Pos).To(Equal(vmath.V(0, 0, 5)))

		// One release step sees only the three passes of that tick.
		w.SetFixed(false)
		Expect(w.Step(0.01)).To(Succeed())
		Expect(a.Vel[0]).To(BeNumerically("~", 0.9, 1e-9))
		Expect(b.Vel[0]).To(BeNumerically("~", -0.9, 1e-9))
	})

	It("skips degenerate springs", func() {
		a, b := point(0, 0, 0), point(0, 0, 0)
		s := &body.Spring{A: a, B: b, RestLength: 1, Stiffness: 1}
		solvePosition(s)
		solvePenalty(s)
		Expect(a.Pos).To(Equal(vmath.Vec3{}))
		Expect(a.Force).To(Equal(vmath.Vec3{}))
	})
})

var _ = Describe("Friction", func() {
	It("drags less along the partner axis than across it", func() {
		cfg := quietConfig()
		cfg.Friction = FrictionAnisotropic
		w := newWorld(cfg)
		partner := point(1, 0, 0)

		along := point(0, 0, -0.1)
		along.Partner = partner
		along.Vel = vmath.V(1, 0, 0)
		w.applyForces(along)

		across := point(0, 0, -0.1)
		across.Partner = partner
		across.Vel = vmath.V(0, 1, 0)
		w.applyForces(across)

		Expect(along.Grounded).To(BeTrue())
		Expect(along.Pos[2]).To(BeZero())
		Expect(along.Force[0]).To(BeNumerically("~", -cfg.SurfaceDragNorm, 1e-12))
		Expect(across.Force[1]).To(BeNumerically("~", -cfg.SurfaceDragTan, 1e-12))
	})

	It("falls back to simple friction without a partner", func() {
		cfg := quietConfig()
		cfg.SurfaceDrag = 0.5
		cfg.Friction = FrictionAnisotropic
		w := newWorld(cfg)
		p := point(0, 0, -1)
		p.Vel = vmath.V(2, 0, 0)
		w.applyForces(p)
		Expect(p.Force[0]).To(BeNumerically("~", -1, 1e-12))
	})
})

var _ = Describe("Energy", func() {
	It("sums kinetic, ground and tension terms", func() {
		cfg := quietConfig()
		w := newWorld(cfg)
		bd := chain(-0.5, 1, 0, 2)
		bd.Points[0].Vel = vmath.V(0, 0, 3)
		_, err := w.AddSoftBody(bd)
		Expect(err).NotTo(HaveOccurred())

		kinetic := 0.5 * 1 * 9
		ground := 2 * 0.5 * cfg.SurfaceStiffness * 0.25
		tension := 0.5 * 30 * 1
		Expect(w.MeasureEnergy()).To(BeNumerically("~", kinetic+ground+tension, 1e-12))
	})
})

var _ = Describe("Deletion", func() {
	var w *World

	BeforeEach(func() {
		w = newWorld(quietConfig())
		_, err := w.AddSoftBody(chain(5, 1, 0, 1, 2, 3))
		Expect(err).NotTo(HaveOccurred())
	})

	It("removes points, attached springs and bonds", func() {
		n, err := w.DeletePointByIds(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		_, ok := w.Point(2)
		Expect(ok).To(BeFalse())
		Expect(w.Springs()).To(HaveLen(1))
		Expect(w.Bonded(1, 2)).To(BeFalse())
		Expect(w.Bonded(3, 2)).To(BeFalse())
		Expect(w.Bonded(3, 4)).To(BeTrue())
		Expect(w.IndexStats().Objects).To(Equal(3))
	})

	It("is idempotent", func() {
		_, err := w.DeletePointByIds(2, 3)
		Expect(err).NotTo(HaveOccurred())
		before := positions(w)
		springs := len(w.Springs())

		n, err := w.DeletePointByIds(2, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
		Expect(positions(w)).To(Equal(before))
		Expect(w.Springs()).To(HaveLen(springs))
	})

	It("reports springs re-pointed outside the world", func() {
		s := w.Springs()[2]
		s.B = point(3, 0, 5)

		_, err := w.DeletePointByIds(1)
		Expect(err).To(MatchError(ErrDanglingSpring))
		Expect(w.CheckState()).To(MatchError(ErrDanglingSpring))

		// A point deleted from the world is stale even if it kept its id.
		s.B, _ = w.Point(4)
		Expect(w.CheckState()).To(Succeed())
		removed, _ := w.Point(4)
		_, err = w.DeletePointByIds(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Springs()).To(HaveLen(1))
		w.Springs()[0].A = removed
		Expect(w.CheckState()).To(MatchError(ErrDanglingSpring))
	})

	It("clears selection and friction partners of removed points", func() {
		p1, _ := w.Point(1)
		p2, _ := w.Point(2)
		p1.Partner = p2
		w.Select(2, 3)

		_, err := w.DeleteSelection()
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Selection()).To(BeEmpty())
		Expect(p1.Partner).To(BeNil())
		Expect(w.Step(0.01)).To(Succeed())
	})
})

var _ = Describe("Selection", func() {
	var w *World

	BeforeEach(func() {
		w = newWorld(quietConfig())
		_, err := w.AddSoftBody(chain(5, 1, 0, 1, 2))
		Expect(err).NotTo(HaveOccurred())
		_, err = w.AddSoftBody(chain(5, 1, 10, 11))
		Expect(err).NotTo(HaveOccurred())
	})

	It("ignores unknown ids", func() {
		w.Select(1, 99)
		Expect(w.Selection()).To(Equal([]body.ID{1}))
	})

	It("flood fills one connected component", func() {
		w.Select(3)
		w.FloodFillSelection()
		Expect(w.Selection()).To(Equal([]body.ID{1, 2, 3}))
	})

	It("selects by radius", func() {
		Expect(w.SelectRadius(vmath.V(10.5, 0, 5), 0.6)).To(Equal(2))
		Expect(w.Selection()).To(Equal([]body.ID{4, 5}))
	})

	It("minimizes strain inside the selection and resyncs history", func() {
		p3, _ := w.Point(3)
		p3.Pos = vmath.V(4, 0, 5)
		w.Select(1)
		w.FloodFillSelection()

		res := w.MinimizeSelection()
		Expect(res.Converged).To(BeTrue())
		Expect(res.Springs).To(HaveLen(2))
		Expect(res.Strain).To(BeNumerically("<", 0.002))
		for _, p := range res.Points {
			Expect(p.PrevPos).To(Equal(p.Pos))
			Expect(p.Vel).To(Equal(vmath.Vec3{}))
		}
	})

	It("drags instantly without implying velocity", func() {
		w.Select(4, 5)
		w.MoveSelection(vmath.V(0, 3, 0), true)
		p4, _ := w.Point(4)
		Expect(p4.Pos).To(Equal(vmath.V(10, 3, 5)))
		Expect(p4.PrevPos).To(Equal(p4.Pos))
	})

	It("limits the step implied by a physical drag", func() {
		w.Select(4)
		w.MoveSelection(vmath.V(0, 3, -10), false)
		p4, _ := w.Point(4)
		Expect(p4.Pos[2]).To(BeZero())
		Expect(vmath.Dist(p4.Pos, p4.PrevPos)).To(BeNumerically("~", dragStepLimit, 1e-12))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent worlds", func() {
		build := func(seed uint64) (*World, error) {
			cfg := DefaultConfig()
			cfg.Seed = seed
			w, err := New(cfg)
			if err != nil {
				return nil, err
			}
			_, err = w.AddSoftBody(sheet(3, vmath.V(0, 0, 1)))
			return w, err
		}
		e := NewEnsemble(build, 3, 100)
		e.SetLimit(2)
		results, err := e.Run(context.Background(), 20, 0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.Seed).To(Equal(uint64(100 + i)))
			Expect(r.Points).To(Equal(9))
			Expect(math.IsNaN(r.Energy)).To(BeFalse())
		}
	})

	It("stops on a cancelled context", func() {
		build := func(seed uint64) (*World, error) { return New(DefaultConfig()) }
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewEnsemble(build, 2, 0).Run(ctx, 10, 0.05)
		Expect(err).To(MatchError(context.Canceled))
	})
})
