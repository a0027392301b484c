package optim

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/waddington/internal/experiment"
)

// Objective scores one parameter combination; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Result struct {
	Best      map[string]float64
	BestValue float64
	Points    []Point
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search evaluates every combination. Failed points are kept with their
// error and never chosen as best.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	res := &Result{BestValue: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, objective Objective, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		res.Points = append(res.Points, Point{Params: current, Value: val, Err: err})
		if err == nil && val < res.BestValue {
			res.BestValue = val
			res.Best = make(map[string]float64, len(current))
			for k, v := range current {
				res.Best[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, res); err != nil {
			return err
		}
	}
	return nil
}

// Ranked returns successful points, best first.
func (r *Result) Ranked() []Point {
	out := make([]Point, 0, len(r.Points))
	for _, p := range r.Points {
		if p.Err == nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// MeanDeviation builds an objective that runs base with width and depth
// taken from the grid and scores the seed-averaged mean deviation.
func MeanDeviation(exp *experiment.Experiment, base experiment.Plan, seeds, workers int) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		plan := base
		if w, ok := params["width"]; ok {
			plan.Params.Width = w
		}
		if d, ok := params["depth"]; ok {
			plan.Params.Depth = d
		}
		if n, ok := params["noise"]; ok {
			plan.Params.Noise = n
		}
		stats, err := exp.Ensemble(ctx, plan, seeds, workers)
		if err != nil {
			return math.Inf(1), err
		}
		return stats.Mean, nil
	}
}
