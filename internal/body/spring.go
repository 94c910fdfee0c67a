package body

import (
	"math"

	"github.com/san-kum/softbody/internal/vmath"
)

type Spring struct {
	A, B       *Point
	RestLength float64
	Stiffness  float64
	Actuator   bool
	Color      Color
}

func NewSpring(a, b *Point, rest, stiffness float64) (*Spring, error) {
	s := &Spring{A: a, B: b, RestLength: rest, Stiffness: stiffness}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Link connects a and b at their current distance.
func Link(a, b *Point, stiffness float64) (*Spring, error) {
	if a == nil || b == nil {
		return nil, ErrNilEndpoint
	}
	return NewSpring(a, b, vmath.Dist(a.Pos, b.Pos), stiffness)
}

func (s *Spring) Validate() error {
	switch {
	case s.A == nil || s.B == nil:
		return ErrNilEndpoint
	case s.A == s.B:
		return ErrSelfLoop
	case !(s.RestLength > 0) || math.IsInf(s.RestLength, 0):
		return ErrRestLength
	}
	return nil
}

func (s *Spring) Length() float64 {
	return vmath.Dist(s.A.Pos, s.B.Pos)
}

// Strain is the absolute deviation from rest length.
func (s *Spring) Strain() float64 {
	return math.Abs(s.Length() - s.RestLength)
}

func (s *Spring) PotentialEnergy() float64 {
	d := s.RestLength - s.Length()
	return 0.5 * s.Stiffness * d * d
}

// Other returns the endpoint opposite p, nil if p is not an endpoint.
func (s *Spring) Other(p *Point) *Point {
	switch p {
	case s.A:
		return s.B
	case s.B:
		return s.A
	}
	return nil
}
