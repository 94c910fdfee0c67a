package sim

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// BuildFunc creates a populated world for the given seed.
type BuildFunc func(seed uint64) (*World, error)

// Ensemble runs independent worlds concurrently, one goroutine each.
// Worlds share nothing.
type Ensemble struct {
	build     BuildFunc
	numRuns   int
	seedStart uint64
	limit     int
}

type EnsembleResult struct {
	Seed       uint64
	Steps      int
	Points     int
	Energy     float64
	Collisions uint64
	Elapsed    time.Duration
}

func NewEnsemble(build BuildFunc, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: -1}
}

// SetLimit bounds the number of worlds stepping at once; n <= 0 means no
// bound.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = -1
	}
	e.limit = n
}

// Run steps every world steps times. The context is checked between
// ticks; the first error cancels the rest.
func (e *Ensemble) Run(ctx context.Context, steps int, dt float64) ([]EnsembleResult, error) {
	results := make([]EnsembleResult, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			seed := e.seedStart + uint64(i)
			w, err := e.build(seed)
			if err != nil {
				return err
			}

			start := time.Now()
			for n := 0; n < steps; n++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if err := w.Step(dt); err != nil {
					return err
				}
			}

			results[i] = EnsembleResult{
				Seed:       seed,
				Steps:      steps,
				Points:     w.NumPoints(),
				Energy:     w.MeasureEnergy(),
				Collisions: w.Collisions(),
				Elapsed:    time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
