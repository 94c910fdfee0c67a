package sim

import (
	. "github.com/onsi/gomega"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// quietConfig has no gravity and no drag, so nothing moves unless a
// solver moves it.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.AirDrag = 0
	cfg.SurfaceDrag = 0
	cfg.Integrator = "euler"
	return cfg
}

func newWorld(cfg Config) *World {
	w, err := New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func point(x, y, z float64) *body.Point {
	p, err := body.NewPoint(vmath.V(x, y, z), 1)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func spring(a, b *body.Point, rest float64) *body.Spring {
	s, err := body.NewSpring(a, b, rest, 30)
	Expect(err).NotTo(HaveOccurred())
	return s
}

// chain lays points along x at height z and joins neighbours with springs
// of the given rest length.
func chain(z, rest float64, xs ...float64) *body.Body {
	pts := make([]*body.Point, len(xs))
	for i, x := range xs {
		pts[i] = point(x, 0, z)
	}
	var springs []*body.Spring
	for i := 1; i < len(pts); i++ {
		springs = append(springs, spring(pts[i-1], pts[i], rest))
	}
	b, err := body.New(pts, springs)
	Expect(err).NotTo(HaveOccurred())
	return b
}

// sheet is an n x n lattice in the z plane with radius-carrying points and
// springs along both grid axes.
func sheet(n int, origin vmath.Vec3) *body.Body {
	pts := make([]*body.Point, 0, n*n)
	at := func(i, j int) *body.Point { return pts[i*n+j] }
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := point(origin[0]+float64(j), origin[1]+float64(i), origin[2])
			p.Radius = 0.45
			pts = append(pts, p)
		}
	}
	var springs []*body.Spring
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j+1 < n {
				springs = append(springs, spring(at(i, j), at(i, j+1), 1))
			}
			if i+1 < n {
				springs = append(springs, spring(at(i, j), at(i+1, j), 1))
			}
		}
	}
	b, err := body.New(pts, springs)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func positions(w *World) map[body.ID]vmath.Vec3 {
	out := make(map[body.ID]vmath.Vec3)
	for _, p := range w.AllPoints() {
		out[p.ID] = p.Pos
	}
	return out
}
