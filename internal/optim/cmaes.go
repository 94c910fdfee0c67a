package optim

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Bound is a searched parameter. The search runs in [0,1] per
// parameter and maps back linearly.
type Bound struct {
	Name string
	Min  float64
	Max  float64
	Init float64
}

func (b Bound) denormalize(x float64) float64 {
	return b.Min + math.Min(1, math.Max(0, x))*(b.Max-b.Min)
}

func (b Bound) normalize(v float64) float64 {
	if b.Max == b.Min {
		return 0
	}
	return (v - b.Min) / (b.Max - b.Min)
}

type CMAES struct {
	Bounds      []Bound
	Evaluations int
	Population  int     // zero picks 4 + 3n/2
	StepSize    float64 // in normalized units, zero means 0.3
	// Fixed params are passed to every evaluation unchanged.
	Fixed map[string]float64
	// Progress, when set, sees every evaluation.
	Progress func(eval int, params map[string]float64, cost float64)
}

type Result struct {
	Params      map[string]float64
	Cost        float64
	Evaluations int
}

func (c *CMAES) params(x []float64) map[string]float64 {
	p := make(map[string]float64, len(c.Bounds)+len(c.Fixed))
	for k, v := range c.Fixed {
		p[k] = v
	}
	for i, b := range c.Bounds {
		p[b.Name] = b.denormalize(x[i])
	}
	return p
}

// Minimize runs CMA-ES and returns the best evaluation seen.
func (c *CMAES) Minimize(ctx context.Context, eval Evaluator) (*Result, error) {
	if len(c.Bounds) == 0 {
		return nil, errors.New("optim: no parameters to search")
	}
	evals := c.Evaluations
	if evals <= 0 {
		evals = 100
	}
	pop := c.Population
	if pop == 0 {
		pop = 4 + 3*len(c.Bounds)/2
	}
	step := c.StepSize
	if step == 0 {
		step = 0.3
	}

	best := &Result{Cost: math.Inf(1)}
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return math.Inf(1)
			}
			p := c.params(x)
			cost, err := eval.Evaluate(ctx, p)
			best.Evaluations++
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return math.Inf(1)
			}
			if cost < best.Cost {
				best.Cost = cost
				best.Params = p
			}
			if c.Progress != nil {
				c.Progress(best.Evaluations, p, cost)
			}
			return cost
		},
	}

	initX := make([]float64, len(c.Bounds))
	for i, b := range c.Bounds {
		initX[i] = b.normalize(b.Init)
	}
	settings := &optimize.Settings{FuncEvaluations: evals}
	method := &optimize.CmaEsChol{InitStepSize: step, Population: pop}

	_, err := optimize.Minimize(problem, initX, settings, method)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return best, ctxErr
	}
	if best.Params == nil {
		if evalErr != nil {
			return nil, evalErr
		}
		return nil, err
	}
	return best, nil
}
