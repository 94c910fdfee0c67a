package sim

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// contact returns the unit normal from a to b and the (positive) overlap
// of the two spheres, or ok=false when they do not touch.
func contact(a, b *body.Point) (normal vmath.Vec3, overlap float64, ok bool) {
	if a == b || !a.HasRadius() || !b.HasRadius() {
		return vmath.Vec3{}, 0, false
	}
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	overlap = a.Radius + b.Radius - dist
	if overlap <= 0 || dist < vmath.Epsilon {
		return vmath.Vec3{}, 0, false
	}
	return d.Mul(1 / dist), overlap, true
}

// pushApart resolves an overlap by moving each free point half the
// overlap along the normal. It reports whether anything moved.
func (w *World) pushApart(b, a *body.Point) bool {
	n, overlap, ok := contact(a, b)
	if !ok {
		return false
	}
	w.collisions++
	half := n.Mul(0.5 * overlap)
	if !b.Fixed {
		b.Pos = b.Pos.Add(half)
	}
	if !a.Fixed {
		a.Pos = a.Pos.Sub(half)
	}
	return !a.Fixed || !b.Fixed
}

// repel accumulates a penalty force proportional to the overlap. A pair
// of structural points is visited from both sides and handled only from
// its lower id.
func (w *World) repel(b, a *body.Point) bool {
	if a.ID > b.ID && !w.isActPoint(b) {
		return false
	}
	n, overlap, ok := contact(a, b)
	if !ok {
		return false
	}
	w.collisions++
	f := n.Mul(w.cfg.CollisionStiffness * overlap)
	if !a.Fixed {
		a.Force = a.Force.Sub(f)
	}
	if !b.Fixed {
		b.Force = b.Force.Add(f)
	}
	return false
}

func (w *World) collisionResponse() func(b, a *body.Point) bool {
	if w.cfg.CollisionResponse == ResponsePenalty {
		return w.repel
	}
	return w.pushApart
}

// collideBruteForce tests every pair of structural points against every
// point, skipping bonded pairs.
func (w *World) collideBruteForce(respond func(b, a *body.Point) bool) {
	all := w.AllPoints()
	for _, a := range w.points {
		for _, b := range all {
			if a == b || w.conn.Bonded(a.ID, b.ID) {
				continue
			}
			respond(b, a)
		}
	}
}
