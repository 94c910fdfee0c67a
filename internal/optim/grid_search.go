// Package optim searches scene parameters for the best value of a run
// metric.
package optim

import (
	"context"
	"maps"
	"math"
)

// Evaluator scores a parameter set. Lower is better.
type Evaluator interface {
	Evaluate(ctx context.Context, params map[string]float64) (float64, error)
}

type EvaluatorFunc func(ctx context.Context, params map[string]float64) (float64, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, params map[string]float64) (float64, error) {
	return f(ctx, params)
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search tries every combination of the grid. Failing evaluations are
// skipped; a cancelled context stops the search.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluator,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := eval.Evaluate(ctx, current)
		if err != nil {
			return ctx.Err()
		}
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, eval, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
