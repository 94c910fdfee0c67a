package sim

import (
	"fmt"
	"slices"

	"github.com/san-kum/softbody/internal/body"
)

// DeletePointByIds removes the given points, every spring attached to
// them, and all references the world holds to them. Ids that are not in
// the world are ignored, so repeating a call is a no-op. It returns the
// number of points removed.
func (w *World) DeletePointByIds(ids ...body.ID) (int, error) {
	doomed := make(map[body.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := w.byID[id]; ok {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	gone := func(p *body.Point) bool {
		_, ok := doomed[p.ID]
		return ok
	}

	order := make([]body.ID, 0, len(doomed))
	for id := range doomed {
		order = append(order, id)
	}
	slices.Sort(order)
	for _, id := range order {
		w.index.Remove(w.byID[id])
		w.conn.Drop(id)
		delete(w.byID, id)
		delete(w.actSet, id)
		delete(w.selection, id)
	}

	w.points = filterPoints(w.points, gone)
	w.actPoints = filterPoints(w.actPoints, gone)

	dropSpring := func(s *body.Spring) bool {
		if gone(s.A) || gone(s.B) {
			w.conn.Unlink(s.A.ID, s.B.ID)
			return false
		}
		return true
	}
	removedSprings := len(w.springs) + len(w.actuators)
	w.springs = filterSprings(w.springs, dropSpring)
	w.actuators = filterSprings(w.actuators, dropSpring)
	removedSprings -= len(w.springs) + len(w.actuators)

	for _, p := range w.byID {
		if p.Partner != nil && gone(p.Partner) {
			p.Partner = nil
		}
	}

	if err := w.checkSprings(); err != nil {
		return len(doomed), err
	}

	w.logger.Debug("points deleted", "points", len(doomed), "springs", removedSprings)
	return len(doomed), nil
}

// DeleteSelection deletes every selected point and clears the selection.
func (w *World) DeleteSelection() (int, error) {
	n, err := w.DeletePointByIds(w.Selection()...)
	w.ClearSelection()
	return n, err
}

// checkSprings reports the first spring whose endpoint is not the point
// the world holds under that id. Springs are shared pointers, so an
// endpoint swapped by a caller or controller shows up here.
func (w *World) checkSprings() error {
	for _, springs := range [][]*body.Spring{w.springs, w.actuators} {
		for _, s := range springs {
			for _, p := range [2]*body.Point{s.A, s.B} {
				if w.byID[p.ID] != p {
					return fmt.Errorf("%w: point %d", ErrDanglingSpring, p.ID)
				}
			}
		}
	}
	return nil
}

func filterPoints(pts []*body.Point, drop func(*body.Point) bool) []*body.Point {
	out := pts[:0]
	for _, p := range pts {
		if !drop(p) {
			out = append(out, p)
		}
	}
	clear(pts[len(out):])
	return out
}

func filterSprings(springs []*body.Spring, keep func(*body.Spring) bool) []*body.Spring {
	out := springs[:0]
	for _, s := range springs {
		if keep(s) {
			out = append(out, s)
		}
	}
	clear(springs[len(out):])
	return out
}
