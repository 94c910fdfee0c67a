package shapes

import (
	"fmt"
	"slices"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// Profile maps a position along a tube, in [0,1), to the ring radius there.
type Profile func(x float64) float64

func ConstProfile(r float64) Profile {
	return func(float64) float64 { return r }
}

// Tapered is widest at the middle and narrows linearly to end at both
// extremities.
func Tapered(mid, end float64) Profile {
	slope := (mid - end) / 0.5
	return func(x float64) float64 {
		if x < 0.5 {
			return end + slope*x
		}
		return mid + slope/2 - slope*x
	}
}

type TubeConfig struct {
	Segments  int // rings
	Lines     int // rim points per ring
	Spacing   float64
	Stiffness float64
	Mass      float64
	Profile   Profile
	FixOrigin bool
	// Actuated lists link indices whose muscles and diagonals are flagged
	// as actuators.
	Actuated []int
}

// Tube is a stack of rings along +z, starting at the origin.
type Tube struct {
	Rings   []*Ring
	Points  []*body.Point
	Springs []*body.Spring
	// Lines[j] holds the muscles along rim index j, one per link.
	Lines [][]Muscle
}

func NewTube(cfg TubeConfig) (*Tube, error) {
	if cfg.Segments < 2 {
		return nil, ErrSegments
	}
	if !(cfg.Spacing > 0) {
		return nil, ErrSpacing
	}
	profile := cfg.Profile
	if profile == nil {
		profile = ConstProfile(1)
	}

	t := &Tube{Lines: make([][]Muscle, cfg.Lines)}
	for i := range cfg.Segments {
		r, err := RingZ(profile(float64(i)/float64(cfg.Segments)), cfg.Lines, cfg.Mass, cfg.Stiffness)
		if err != nil {
			return nil, fmt.Errorf("ring %d: %w", i, err)
		}
		if i == 0 && cfg.FixOrigin {
			for _, p := range r.Points() {
				p.Fixed = true
			}
		}
		r.Body().Translate(vmath.V(0, 0, float64(i)*cfg.Spacing))
		t.Rings = append(t.Rings, r)
		t.Points = append(t.Points, r.Points()...)
		t.Springs = append(t.Springs, r.Springs...)
	}

	for i := 0; i < len(t.Rings)-1; i++ {
		springs, muscles, err := LinkRings(t.Rings[i], t.Rings[i+1], cfg.Spacing, cfg.Stiffness)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		if slices.Contains(cfg.Actuated, i) {
			for j := range muscles {
				muscles[j].SetActuator(true)
			}
		}
		t.Springs = append(t.Springs, springs...)
		for j, m := range muscles {
			t.Lines[j] = append(t.Lines[j], m)
		}
	}
	return t, nil
}

// Body returns a validated body sharing the tube's points and springs.
func (t *Tube) Body() (*body.Body, error) {
	return body.New(t.Points, t.Springs)
}

func (t *Tube) shape() *body.Body {
	return &body.Body{Points: t.Points, Springs: t.Springs}
}

func (t *Tube) Translate(d vmath.Vec3) { t.shape().Translate(d) }

func (t *Tube) Rotate(q vmath.Quat, pivot vmath.Vec3) { t.shape().Rotate(q, pivot) }
