package experiment

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/sim"
)

// Compare runs base once per profile/condition pair, in parallel, and
// returns outcomes in table order (profiles outermost). Every run uses the
// same seed. Diverged runs are kept; any other failure aborts.
func (e *Experiment) Compare(ctx context.Context, base Plan, workers int) ([]*Outcome, error) {
	mappings := conditions.All()
	outcomes := make([]*Outcome, len(mappings))

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, m := range mappings {
		idx, plan := i, base.ForMapping(m)
		g.Go(func() error {
			out, err := e.Run(ctx, plan)
			if err != nil && !isDivergence(err) {
				return err
			}
			outcomes[idx] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// EnsembleStats aggregates the mean deviation of several seeds.
type EnsembleStats struct {
	Runs    int
	Mean    float64
	StdDev  float64
	PerSeed []float64
}

// Ensemble repeats plan over seeds Run.Seed .. Run.Seed+runs-1. Each seed is
// an independent single-particle run.
func (e *Experiment) Ensemble(ctx context.Context, plan Plan, runs, workers int) (EnsembleStats, error) {
	if err := plan.Params.Validate(); err != nil {
		return EnsembleStats{}, err
	}
	l, err := e.reg.GetLandscape(plan.Params, plan.Quartic, plan.Mode)
	if err != nil {
		return EnsembleStats{}, err
	}
	factory, err := e.reg.GetIntegrator(plan.Integrator, plan.Params.Noise)
	if err != nil {
		return EnsembleStats{}, err
	}

	start := plan.Start
	if len(start) == 0 {
		start = l.DefaultState()
	}

	ens := sim.NewEnsemble(l, factory, runs, plan.Run.Seed).
		WithWorkers(workers).
		WithMetrics(func() []dynamo.Metric { return e.reg.DefaultMetrics(l, plan.Transient)[:1] })

	results, err := ens.Run(ctx, start, plan.Run)
	if err != nil {
		return EnsembleStats{}, err
	}

	stats := EnsembleStats{Runs: len(results), PerSeed: make([]float64, len(results))}
	for i, r := range results {
		stats.PerSeed[i] = r.Metrics["mean_deviation"]
		stats.Mean += stats.PerSeed[i]
	}
	stats.Mean /= float64(len(results))
	if len(results) > 1 {
		ss := 0.0
		for _, v := range stats.PerSeed {
			ss += (v - stats.Mean) * (v - stats.Mean)
		}
		stats.StdDev = math.Sqrt(ss / float64(len(results)-1))
	}
	return stats, nil
}

func isDivergence(err error) bool {
	return err != nil && errors.Is(err, dynamo.ErrNumericDivergence)
}
