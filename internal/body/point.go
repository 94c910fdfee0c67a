// Package body defines the entities a soft body is made of: point masses
// and the springs connecting them.
package body

import (
	"github.com/san-kum/softbody/internal/vmath"
)

// ID identifies a point for the lifetime of a world. Zero means the point
// has not been added to a world yet.
type ID uint64

// Color is an opaque display attribute. The empty string means unset.
type Color string

type Point struct {
	ID       ID
	Pos      vmath.Vec3
	PrevPos  vmath.Vec3
	Vel      vmath.Vec3
	Force    vmath.Vec3
	Mass     float64
	Radius   float64 // collision radius; zero disables collisions for the point
	Fixed    bool
	Grounded bool
	Partner  *Point // anisotropic friction reference
	Color    Color
}

func NewPoint(pos vmath.Vec3, mass float64) (*Point, error) {
	if !(mass > 0) {
		return nil, ErrNonPositiveMass
	}
	return &Point{Pos: pos, PrevPos: pos, Mass: mass}, nil
}

// GridID and GridPos let points live in a spatial index.
func (p *Point) GridID() uint64      { return uint64(p.ID) }
func (p *Point) GridPos() vmath.Vec3 { return p.Pos }

func (p *Point) HasRadius() bool { return p.Radius > 0 }

// SetVelocity sets v and rewinds PrevPos so a position integrator sees the
// same velocity.
func (p *Point) SetVelocity(v vmath.Vec3, dt float64) {
	p.Vel = v
	p.PrevPos = p.Pos.Sub(v.Mul(dt))
}

// Resync drops any implied motion by copying Pos into PrevPos and zeroing
// velocity.
func (p *Point) Resync() {
	p.PrevPos = p.Pos
	p.Vel = vmath.Vec3{}
}

func (p *Point) KineticEnergy() float64 {
	return 0.5 * p.Mass * vmath.LenSq(p.Vel)
}
