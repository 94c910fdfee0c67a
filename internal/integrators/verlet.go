package integrators

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// Verlet is position Verlet. Velocity is derived from the position change,
// so corrections applied to Pos since the last step carry into the motion.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Integrate(p *body.Point, dt float64) {
	next := p.Pos.Mul(2).Sub(p.PrevPos).Add(p.Force.Mul(dt * dt / p.Mass))
	p.Vel = next.Sub(p.Pos).Mul(1 / dt)
	p.PrevPos = p.Pos
	p.Pos = next
	p.Force = vmath.Vec3{}
}
