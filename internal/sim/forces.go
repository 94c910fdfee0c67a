package sim

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// applyForces adds ground contact or air drag, then gravity, to p.Force.
func (w *World) applyForces(p *body.Point) {
	if p.Pos[2] < 0 {
		p.Grounded = true
		p.Pos[2] = 0
		if w.cfg.Friction == FrictionAnisotropic && p.Partner != nil {
			w.anisotropicFriction(p)
		} else {
			p.Force = p.Force.Sub(p.Vel.Mul(w.cfg.SurfaceDrag))
		}
	} else {
		p.Grounded = false
		p.Force = p.Force.Sub(p.Vel.Mul(w.cfg.AirDrag))
	}
	p.Force[2] -= w.cfg.Gravity * p.Mass
}

// anisotropicFriction drags motion along the partner axis with
// SurfaceDragNorm and motion across it with SurfaceDragTan.
func (w *World) anisotropicFriction(p *body.Point) {
	axis := vmath.Normalize(p.Partner.Pos.Sub(p.Pos))
	along := axis.Mul(axis.Dot(p.Vel))
	across := p.Vel.Sub(along)
	p.Force = p.Force.
		Sub(across.Mul(w.cfg.SurfaceDragTan)).
		Sub(along.Mul(w.cfg.SurfaceDragNorm))
}

func (w *World) integrate(pts []*body.Point, dt float64) {
	for _, p := range pts {
		if p.Fixed {
			// Pinned points never integrate, so nothing may carry over
			// to the tick they are released.
			p.Force = vmath.Vec3{}
			continue
		}
		w.applyForces(p)
		w.integrator.Integrate(p, dt)
	}
}
