package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/waddington/internal/dynamo"
)

// IntegratorFactory builds a fresh integrator for one seed.
type IntegratorFactory func(seed int64) dynamo.Integrator

// Ensemble runs independent single-particle simulations that differ only in
// seed. Run i uses seedStart+i and its own integrator.
type Ensemble struct {
	sys        dynamo.System
	newInteg   IntegratorFactory
	newMetrics func() []dynamo.Metric
	numRuns    int
	seedStart  int64
	workers    int
}

func NewEnsemble(sys dynamo.System, factory IntegratorFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		sys:       sys,
		newInteg:  factory,
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// WithMetrics attaches a fresh metric set to every run; metrics hold state and
// cannot be shared between goroutines.
func (e *Ensemble) WithMetrics(fn func() []dynamo.Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run returns one result per seed, in seed order. The first failing run
// cancels the rest.
func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	if e.numRuns < 1 {
		return nil, &dynamo.ParamError{Name: "runs", Value: float64(e.numRuns), Reason: "must be >= 1"}
	}
	results := make([]*dynamo.Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New(e.sys, e.newInteg(cfgCopy.Seed))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, x0, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
