package sim

import (
	"context"
	"log/slog"

	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/logging"
)

// Simulator walks one particle across a landscape. It is not safe for
// concurrent use; build one per run (see Ensemble).
type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        *slog.Logger
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		log:        logging.New("sim"),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates cfg.Steps steps from x0 and returns the full trajectory,
// x0 included. If a position turns non-finite the run stops there: the
// partial result is returned with Diverged set, together with a
// *dynamo.SimulationError wrapping dynamo.ErrNumericDivergence.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, &dynamo.ParamError{Name: "start", Value: float64(len(x0)), Reason: "dimension does not match landscape"}
	}
	if !x0.IsValid() {
		return nil, &dynamo.ParamError{Name: "start", Value: x0[0], Reason: "must be finite"}
	}

	result := &dynamo.Result{
		Trajectory: make(dynamo.Trajectory, 0, cfg.Steps+1),
		Times:      make([]float64, 0, cfg.Steps+1),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.Trajectory = append(result.Trajectory, x.Clone())
	result.Times = append(result.Times, t)
	s.observe(x, t)

	s.log.Debug("run start", "steps", cfg.Steps, "dt", cfg.Dt, "seed", cfg.Seed, "x0", []float64(x0))

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		newX := s.integrator.Step(s.sys, x, cfg.Dt)

		if !newX.IsValid() {
			result.Diverged = true
			runErr = &dynamo.SimulationError{Step: i + 1, Time: t + cfg.Dt, State: newX, Wrapped: dynamo.ErrNumericDivergence}
			s.log.Debug("run diverged", "step", i+1, "state", []float64(newX))
			break
		}

		x = newX
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		result.Trajectory = append(result.Trajectory, x.Clone())
		result.Times = append(result.Times, t)
		s.observe(x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("run done", "steps_taken", result.StepsTaken, "diverged", result.Diverged)
	return result, runErr
}

func (s *Simulator) observe(x dynamo.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}
