package body

import "github.com/san-kum/softbody/internal/vmath"

// Body is a set of points and the springs between them, ready to be added
// to a world.
type Body struct {
	Points  []*Point
	Springs []*Spring
}

// New validates that every spring is well formed and joins points of this
// body, and that every point has positive mass.
func New(points []*Point, springs []*Spring) (*Body, error) {
	b := &Body{Points: points, Springs: springs}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Body) Validate() error {
	members := make(map[*Point]struct{}, len(b.Points))
	for i, p := range b.Points {
		if p == nil {
			return &Error{Kind: "point", Index: i, Wrapped: ErrNilEndpoint}
		}
		if !(p.Mass > 0) {
			return &Error{Kind: "point", Index: i, Wrapped: ErrNonPositiveMass}
		}
		if _, dup := members[p]; dup {
			return &Error{Kind: "point", Index: i, Wrapped: ErrDuplicatePoint}
		}
		members[p] = struct{}{}
	}
	for i, s := range b.Springs {
		if err := s.Validate(); err != nil {
			return &Error{Kind: "spring", Index: i, Wrapped: err}
		}
		_, okA := members[s.A]
		_, okB := members[s.B]
		if !okA || !okB {
			return &Error{Kind: "spring", Index: i, Wrapped: ErrForeignEndpoint}
		}
	}
	return nil
}

// Merge returns a body holding the points and springs of all parts.
func Merge(parts ...*Body) *Body {
	out := &Body{}
	for _, p := range parts {
		out.Points = append(out.Points, p.Points...)
		out.Springs = append(out.Springs, p.Springs...)
	}
	return out
}

func (b *Body) Translate(d vmath.Vec3) {
	for _, p := range b.Points {
		p.Pos = p.Pos.Add(d)
		p.PrevPos = p.PrevPos.Add(d)
	}
}

// Rotate turns the body by q around pivot.
func (b *Body) Rotate(q vmath.Quat, pivot vmath.Vec3) {
	for _, p := range b.Points {
		p.Pos = pivot.Add(vmath.Apply(q, p.Pos.Sub(pivot)))
		p.PrevPos = pivot.Add(vmath.Apply(q, p.PrevPos.Sub(pivot)))
	}
}

func (b *Body) Centroid() vmath.Vec3 {
	pos := make([]vmath.Vec3, len(b.Points))
	for i, p := range b.Points {
		pos[i] = p.Pos
	}
	return vmath.Centroid(pos)
}

func (b *Body) SetColor(c Color) {
	for _, p := range b.Points {
		p.Color = c
	}
	for _, s := range b.Springs {
		s.Color = c
	}
}

func (b *Body) SetRadius(r float64) {
	for _, p := range b.Points {
		p.Radius = r
	}
}
