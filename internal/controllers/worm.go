package controllers

import (
	"fmt"
	"math"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/shapes"
	"github.com/san-kum/softbody/internal/sim"
)

// WormGait sends a travelling contraction wave down both flanks of a
// worm, sine on the left and cosine on the right.
type WormGait struct {
	Left, Right [][]shapes.Muscle
	Start       uint64
	Period      uint64
	Freq        float64
	Sections    int
	Spacing     float64
	Limit       float64 // fully contracted rest length
}

func NewWormGait(w *shapes.Worm) *WormGait {
	return &WormGait{
		Left:     w.Left,
		Right:    w.Right,
		Start:    250,
		Period:   500,
		Freq:     2.5,
		Sections: w.Config.Sections,
		Spacing:  w.Config.Spacing,
		Limit:    0.7 * w.Config.Spacing,
	}
}

func (g *WormGait) Control(_ *sim.World, _ float64, tick uint64) {
	if tick <= g.Start || g.Period == 0 {
		return
	}
	phase := 2 * math.Pi * float64(tick%g.Period) / float64(g.Period)
	wave := g.Freq * 2 * math.Pi / float64(g.Sections)
	for _, line := range g.Left {
		for i := range line {
			g.Contract(&line[i], 0.5*math.Sin(float64(i)*wave+phase)+0.5)
		}
	}
	for _, line := range g.Right {
		for i := range line {
			g.Contract(&line[i], 0.5*math.Cos(float64(i)*wave+phase)+0.5)
		}
	}
}

// RestLength maps a contraction level in [0,1] to a rest length between
// Spacing and Limit.
func (g *WormGait) RestLength(s float64) float64 {
	return g.Spacing - s*(g.Spacing-g.Limit)
}

func (g *WormGait) Contract(m *shapes.Muscle, s float64) {
	s = math.Min(1, math.Max(0, s))
	m.Spring.RestLength = g.RestLength(s)
	c := ScalarColor(s)
	m.Spring.A.Color = c
	m.Spring.Color = c
}

// ScalarColor maps s in [0,1] onto a blue to red ramp.
func ScalarColor(s float64) body.Color {
	i := int(math.Floor(math.Min(1, math.Max(0, s)) * 255))
	return body.Color(fmt.Sprintf("#%02x00%02x", i, 255-i))
}
