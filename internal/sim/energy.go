package sim

import "github.com/san-kum/softbody/internal/body"

// MeasureEnergy returns kinetic energy, the ground penetration term for
// points below z=0 and the tension of every spring. It is a diagnostic
// and does not touch the world.
func (w *World) MeasureEnergy() float64 {
	e := 0.0
	for _, pts := range [][]*body.Point{w.points, w.actPoints} {
		for _, p := range pts {
			e += p.KineticEnergy()
			if z := p.Pos[2]; z < 0 {
				e += 0.5 * w.cfg.SurfaceStiffness * z * z
			}
		}
	}
	for _, s := range w.springs {
		e += s.PotentialEnergy()
	}
	for _, s := range w.actuators {
		e += s.PotentialEnergy()
	}
	return e
}
