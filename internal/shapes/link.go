package shapes

import (
	"math"

	"github.com/san-kum/softbody/internal/body"
)

// Muscle is an axial spring between matching rim points of two linked
// rings, together with the diagonals tying it to the ring centers.
type Muscle struct {
	Spring *body.Spring
	DiagA  *body.Spring // first ring center to second ring rim point
	DiagB  *body.Spring // first ring rim point to second ring center
	Rest   float64
}

// SetActuator flags the muscle's springs so the world solves them in the
// actuator phase.
func (m *Muscle) SetActuator(diagonals bool) {
	m.Spring.Actuator = true
	if diagonals {
		m.DiagA.Actuator = true
		m.DiagB.Actuator = true
	}
}

// LinkRings joins a to b, which sits dist further along the ring axis.
// Every point of a gets its counterpart in b as anisotropic friction
// partner. One muscle is returned per rim point.
func LinkRings(a, b *Ring, dist, k float64) ([]*body.Spring, []Muscle, error) {
	if len(a.Rim) != len(b.Rim) {
		return nil, nil, ErrRingMismatch
	}
	if !(dist > 0) {
		return nil, nil, ErrSpacing
	}

	n := len(a.Rim)
	springs := make([]*body.Spring, 0, 3*n+1)
	muscles := make([]Muscle, n)
	for i := range n {
		s, err := body.NewSpring(a.Rim[i], b.Rim[i], dist, k)
		if err != nil {
			return nil, nil, err
		}
		a.Rim[i].Partner = b.Rim[i]
		springs = append(springs, s)
		muscles[i] = Muscle{Spring: s, Rest: dist}
	}
	axis, err := body.NewSpring(a.Center, b.Center, dist, k)
	if err != nil {
		return nil, nil, err
	}
	a.Center.Partner = b.Center
	springs = append(springs, axis)

	diagA := math.Hypot(dist, b.Radius())
	diagB := math.Hypot(dist, a.Radius())
	for i := range n {
		sa, err := body.NewSpring(a.Center, b.Rim[i], diagA, k)
		if err != nil {
			return nil, nil, err
		}
		sb, err := body.NewSpring(a.Rim[i], b.Center, diagB, k)
		if err != nil {
			return nil, nil, err
		}
		muscles[i].DiagA, muscles[i].DiagB = sa, sb
		springs = append(springs, sa, sb)
	}
	return springs, muscles, nil
}
