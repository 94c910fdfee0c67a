// Package shapes builds soft bodies out of rings of point masses: single
// rings, tubes with a radial profile, legs, worms and test cubes.
package shapes

import (
	"fmt"
	"math"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// Ring is a closed loop of rim points in the z=0 plane, braced by spokes
// to a center point.
type Ring struct {
	Rim     []*body.Point
	Center  *body.Point
	Springs []*body.Spring
}

// RingZ places n rim points at distance radius from the origin, evenly
// spaced around the z axis starting on +x.
func RingZ(radius float64, n int, mass, k float64) (*Ring, error) {
	if n < 3 {
		return nil, ErrRingSize
	}
	if !(radius > 0) {
		return nil, ErrRadius
	}

	phi := 2 * math.Pi / float64(n)
	r := &Ring{Rim: make([]*body.Point, n)}
	for i := range n {
		pos := vmath.RotateAxisAngle(vmath.V(radius, 0, 0), vmath.ZAxis, phi*float64(i))
		p, err := body.NewPoint(pos, mass)
		if err != nil {
			return nil, err
		}
		r.Rim[i] = p
	}
	center, err := body.NewPoint(vmath.Vec3{}, mass)
	if err != nil {
		return nil, err
	}
	r.Center = center

	chord := 2 * radius * math.Sin(phi/2)
	for i := range n {
		s, err := body.NewSpring(r.Rim[i], r.Rim[(i+1)%n], chord, k)
		if err != nil {
			return nil, fmt.Errorf("rim spring %d: %w", i, err)
		}
		r.Springs = append(r.Springs, s)
	}
	for i := range n {
		s, err := body.NewSpring(r.Center, r.Rim[i], radius, k)
		if err != nil {
			return nil, fmt.Errorf("spoke %d: %w", i, err)
		}
		r.Springs = append(r.Springs, s)
	}
	return r, nil
}

// Points returns the rim followed by the center.
func (r *Ring) Points() []*body.Point {
	out := make([]*body.Point, 0, len(r.Rim)+1)
	out = append(out, r.Rim...)
	return append(out, r.Center)
}

func (r *Ring) Radius() float64 {
	return vmath.Dist(r.Center.Pos, r.Rim[0].Pos)
}

func (r *Ring) Body() *body.Body {
	return &body.Body{Points: r.Points(), Springs: r.Springs}
}
