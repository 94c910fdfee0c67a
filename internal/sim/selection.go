package sim

import (
	"slices"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

const (
	minimizeIterLimit  = 500
	minimizeStrainStep = 0.001
	// dragStepLimit caps the displacement implied by a physical drag.
	dragStepLimit = 0.5
)

// MinimizeResult reports what MinimizeSelection relaxed.
type MinimizeResult struct {
	Points     []*body.Point
	Springs    []*body.Spring
	Iterations int
	Strain     float64
	Converged  bool
}

// Select adds known ids to the selection. Unknown ids are ignored.
func (w *World) Select(ids ...body.ID) {
	for _, id := range ids {
		if _, ok := w.byID[id]; ok {
			w.selection[id] = struct{}{}
		}
	}
}

func (w *World) Deselect(ids ...body.ID) {
	for _, id := range ids {
		delete(w.selection, id)
	}
}

func (w *World) ClearSelection() {
	clear(w.selection)
}

func (w *World) IsSelected(id body.ID) bool {
	_, ok := w.selection[id]
	return ok
}

// Selection returns the selected ids in ascending order.
func (w *World) Selection() []body.ID {
	ids := make([]body.ID, 0, len(w.selection))
	for id := range w.selection {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SelectRadius selects every point within r of center and returns how
// many were added.
func (w *World) SelectRadius(center vmath.Vec3, r float64) int {
	added := 0
	r2 := r * r
	for _, id := range w.IDs() {
		p := w.byID[id]
		if vmath.DistSq(p.Pos, center) > r2 {
			continue
		}
		if !w.IsSelected(id) {
			w.selection[id] = struct{}{}
			added++
		}
	}
	return added
}

// FloodFillSelection grows the selection along springs until it covers
// every connected component it touches.
func (w *World) FloodFillSelection() {
	queue := w.Selection()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, n := range w.conn.Neighbours(id) {
			if w.IsSelected(n) {
				continue
			}
			if _, ok := w.byID[n]; !ok {
				continue
			}
			w.selection[n] = struct{}{}
			queue = append(queue, n)
		}
	}
}

// MinimizeSelection relaxes the structural springs whose endpoints are
// both selected until total strain drops below 0.001 per spring or the
// iteration cap is hit. Selected points forget their velocity afterwards.
func (w *World) MinimizeSelection() MinimizeResult {
	var res MinimizeResult
	for _, id := range w.Selection() {
		res.Points = append(res.Points, w.byID[id])
	}
	for _, s := range w.springs {
		if w.IsSelected(s.A.ID) && w.IsSelected(s.B.ID) {
			res.Springs = append(res.Springs, s)
		}
	}

	epsilon := minimizeStrainStep * float64(len(res.Springs))
	w.logger.Debug("minimize start",
		"springs", len(res.Springs),
		"epsilon", epsilon,
		"iter_limit", minimizeIterLimit)

	for res.Iterations < minimizeIterLimit {
		res.Iterations++
		shuffle(w.rng, res.Springs)
		for _, s := range res.Springs {
			solvePosition(s)
		}
		res.Strain = 0
		for _, s := range res.Springs {
			res.Strain += s.Strain()
		}
		if res.Strain < epsilon {
			res.Converged = true
			break
		}
	}

	for _, p := range res.Points {
		p.Resync()
	}

	w.logger.Debug("minimize stop",
		"iterations", res.Iterations,
		"strain", res.Strain,
		"converged", res.Converged)
	return res
}

// MoveSelection drags every selected point by delta. An instant move also
// moves the position history, so no velocity is implied. A physical move
// keeps points above ground and limits the implied per-step displacement.
func (w *World) MoveSelection(delta vmath.Vec3, instant bool) {
	for _, id := range w.Selection() {
		p := w.byID[id]
		p.Pos = p.Pos.Add(delta)
		if instant {
			p.Resync()
			continue
		}
		if p.Pos[2] < 0 {
			p.Pos[2] = 0
		}
		step := p.Pos.Sub(p.PrevPos)
		if l := step.Len(); l > dragStepLimit {
			p.PrevPos = p.Pos.Sub(step.Mul(dragStepLimit / l))
		}
	}
}

// SetFixed pins or releases every selected point.
func (w *World) SetFixed(fixed bool) {
	for id := range w.selection {
		w.byID[id].Fixed = fixed
	}
}
