package sim

import (
	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

// bondSolver relaxes one spring. Springs shorter than vmath.Epsilon have
// no usable direction and are left alone.
type bondSolver func(s *body.Spring)

func springAxis(s *body.Spring) (normal vmath.Vec3, length float64, ok bool) {
	d := s.B.Pos.Sub(s.A.Pos)
	length = d.Len()
	if length < vmath.Epsilon {
		return vmath.Vec3{}, length, false
	}
	return d.Mul(1 / length), length, true
}

// solvePenalty accumulates Hooke forces on the free endpoints.
func solvePenalty(s *body.Spring) {
	n, length, ok := springAxis(s)
	if !ok {
		return
	}
	f := n.Mul(s.Stiffness * (length - s.RestLength))
	if !s.A.Fixed {
		s.A.Force = s.A.Force.Add(f)
	}
	if !s.B.Fixed {
		s.B.Force = s.B.Force.Sub(f)
	}
}

// solvePosition moves both endpoints half way towards rest length.
func solvePosition(s *body.Spring) {
	solveRelaxed(s, 1)
}

// solveRelaxed is solvePosition scaled by restitution in (0,1].
func solveRelaxed(s *body.Spring, restitution float64) {
	n, length, ok := springAxis(s)
	if !ok {
		return
	}
	corr := n.Mul(0.5 * restitution * (length - s.RestLength))
	if !s.B.Fixed {
		s.B.Pos = s.B.Pos.Sub(corr)
	}
	if !s.A.Fixed {
		s.A.Pos = s.A.Pos.Add(corr)
	}
}

func (w *World) bondSolver() bondSolver {
	if w.cfg.BondSolver == SolverPenalty {
		return solvePenalty
	}
	return solvePosition
}
