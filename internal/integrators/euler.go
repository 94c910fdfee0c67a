package integrators

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// Euler is semi-implicit: velocity first, then position from the new
// velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Integrate(p *body.Point, dt float64) {
	p.Vel = p.Vel.Add(p.Force.Mul(dt / p.Mass))
	p.PrevPos = p.Pos
	p.Pos = p.Pos.Add(p.Vel.Mul(dt))
	p.Force = vmath.Vec3{}
}
