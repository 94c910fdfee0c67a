package shapes

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

type LegConfig struct {
	Origin    vmath.Vec3
	Dir       vmath.Vec3
	Alpha     float64 // twist around the leg axis, radians
	Segments  int
	SegLen    float64
	Lines     int
	Stiffness float64
	Mass      float64
	Radius    float64 // collision radius of every point
	Width     float64 // ring radius when Shape is nil
	Shape     Profile
	FixOrigin bool
	Color     body.Color
	Actuated  []int
}

// Leg builds a tube and turns it so its axis runs from Origin along Dir.
func Leg(cfg LegConfig) (*Tube, error) {
	shape := cfg.Shape
	if shape == nil {
		if !(cfg.Width > 0) {
			return nil, ErrRadius
		}
		shape = ConstProfile(cfg.Width)
	}
	t, err := NewTube(TubeConfig{
		Segments:  cfg.Segments,
		Lines:     cfg.Lines,
		Spacing:   cfg.SegLen,
		Stiffness: cfg.Stiffness,
		Mass:      cfg.Mass,
		Profile:   shape,
		FixOrigin: cfg.FixOrigin,
		Actuated:  cfg.Actuated,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Alpha != 0 {
		t.Rotate(vmath.Rotation(vmath.ZAxis, cfg.Alpha), vmath.Vec3{})
	}
	t.Rotate(vmath.RotationBetween(vmath.ZAxis, cfg.Dir), vmath.Vec3{})
	t.Translate(cfg.Origin)

	b := t.shape()
	b.SetRadius(cfg.Radius)
	if cfg.Color != "" {
		for _, p := range b.Points {
			p.Color = cfg.Color
		}
	}
	return t, nil
}
