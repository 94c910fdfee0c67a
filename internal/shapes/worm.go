package shapes

import (
	"math"

	"github.com/san-kum/softbody/internal/vmath"
)

type WormConfig struct {
	Sections  int     `yaml:"sections" json:"sections"`
	Lines     int     `yaml:"lines" json:"lines"`
	Spacing   float64 `yaml:"spacing" json:"spacing"`
	Stiffness float64 `yaml:"stiffness" json:"stiffness"`
	Mass      float64 `yaml:"mass" json:"mass"`
	Radius    float64 `yaml:"radius" json:"radius"` // collision radius, zero disables
	MidRadius float64 `yaml:"mid_radius" json:"mid_radius"`
	EndRadius float64 `yaml:"end_radius" json:"end_radius"`
}

func DefaultWormConfig() WormConfig {
	return WormConfig{
		Sections:  31,
		Lines:     8,
		Spacing:   1,
		Stiffness: 30,
		Mass:      0.1,
		MidRadius: 1.0,
		EndRadius: 0.59,
	}
}

// Worm is a tapered tube lying along x, centered on the origin, with two
// muscle lines on each flank.
type Worm struct {
	*Tube
	Config WormConfig
	Left   [][]Muscle
	Right  [][]Muscle
}

func NewWorm(cfg WormConfig) (*Worm, error) {
	if cfg.Lines < 6 {
		return nil, ErrLines
	}
	t, err := NewTube(TubeConfig{
		Segments:  cfg.Sections,
		Lines:     cfg.Lines,
		Spacing:   cfg.Spacing,
		Stiffness: cfg.Stiffness,
		Mass:      cfg.Mass,
		Profile:   Tapered(cfg.MidRadius, cfg.EndRadius),
	})
	if err != nil {
		return nil, err
	}

	t.Rotate(vmath.Rotation(vmath.YAxis, math.Pi/2), vmath.Vec3{})
	t.Translate(vmath.V(-float64(cfg.Sections)*cfg.Spacing/2, 0, 0))
	if cfg.Radius > 0 {
		t.shape().SetRadius(cfg.Radius)
	}

	n := cfg.Lines
	w := &Worm{
		Tube:   t,
		Config: cfg,
		Left:   [][]Muscle{t.Lines[1], t.Lines[2]},
		Right:  [][]Muscle{t.Lines[n-3], t.Lines[n-2]},
	}
	for _, side := range [][][]Muscle{w.Left, w.Right} {
		for _, line := range side {
			for i := range line {
				line[i].SetActuator(false)
			}
		}
	}
	return w, nil
}
