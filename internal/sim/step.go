package sim

import (
	"fmt"
	"math"
	"time"
)

// Step advances the world by dt. Phases run in a fixed order:
//
//  1. shuffle structural points
//  2. collisions: refresh the index, resolve overlapping pairs
//  3. bond solve over structural springs
//  4. forces and integration of structural points
//  5. actuator solve
//  6. forces and integration of actuator-only points
//  7. advance the tick counter, then run the controller
func (w *World) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrTimestep, dt)
	}
	start := time.Now()

	shuffle(w.rng, w.points)

	if w.cfg.Collisions {
		w.collide()
	} else {
		w.timings.IndexRebuild, w.timings.Collision = 0, 0
	}

	solve := w.bondSolver()
	shuffle(w.rng, w.springs)
	for i := 0; i < w.cfg.BondIterations; i++ {
		for _, s := range w.springs {
			solve(s)
		}
	}

	w.integrate(w.points, dt)

	for i := 0; i < w.cfg.ActuatorIterations; i++ {
		shuffle(w.rng, w.actuators)
		for _, s := range w.actuators {
			solveRelaxed(s, w.cfg.ActuatorRestitution)
		}
	}

	shuffle(w.rng, w.actPoints)
	w.integrate(w.actPoints, dt)

	tick := w.timestep
	w.timestep++
	w.timings.Step = time.Since(start)

	if w.controller != nil {
		w.controller.Control(w, dt, tick)
	}
	return nil
}

func (w *World) collide() {
	respond := w.collisionResponse()

	if !w.cfg.CollisionIndex {
		w.timings.IndexRebuild = 0
		start := time.Now()
		w.collideBruteForce(respond)
		w.timings.Collision = time.Since(start)
		return
	}

	indexStart := time.Now()
	w.index.UpdateAll(w.conn)
	collStart := time.Now()
	for _, p := range w.points {
		w.index.ForEachNeighbour(p, respond, w.conn)
	}
	w.timings.IndexRebuild = collStart.Sub(indexStart)
	w.timings.Collision = time.Since(collStart)
}

// Run performs n steps, stopping at the first error.
func (w *World) Run(n int, dt float64) error {
	for i := 0; i < n; i++ {
		if err := w.Step(dt); err != nil {
			return err
		}
	}
	return nil
}
