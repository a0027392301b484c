package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/integrators"
	"github.com/san-kum/waddington/internal/physics"
)

type testSystem struct{}

func (t *testSystem) Force(x dynamo.State) dynamo.State { return dynamo.State{-x[0]} }
func (t *testSystem) StateDim() int                      { return 1 }

type testIntegrator struct{}

func (t *testIntegrator) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	f := sys.Force(x)
	return dynamo.State{x[0] + dt*f[0]}
}

func landscape(t testing.TB, p dynamo.Params, mode dynamo.Mode) *physics.Landscape {
	t.Helper()
	l, err := physics.NewLandscape(p, physics.DefaultQuartic, mode)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func runLandscape(t *testing.T, p dynamo.Params, mode dynamo.Mode, x0 dynamo.State, cfg dynamo.Config) *dynamo.Result {
	t.Helper()
	s := New(landscape(t, p, mode), integrators.NewEulerMaruyama(p.Noise, cfg.Seed))
	res, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestSimulatorRun(t *testing.T) {
	s := New(&testSystem{}, &testIntegrator{})

	cfg := dynamo.Config{Dt: 0.1, Steps: 10}
	result, err := s.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Trajectory) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.Trajectory))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 || result.Diverged {
		t.Errorf("steps taken %d, diverged %v", result.StepsTaken, result.Diverged)
	}

	final := result.Trajectory.Final()[0]
	if math.Abs(final-math.Pow(0.9, 10)) > 1e-12 {
		t.Errorf("final state %.6f, want %.6f", final, math.Pow(0.9, 10))
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("final time %v", result.Times[10])
	}
}

func TestSimulatorInvalidInput(t *testing.T) {
	s := New(&testSystem{}, &testIntegrator{})

	tests := []struct {
		name string
		x0   dynamo.State
		cfg  dynamo.Config
	}{
		{"zero dt", dynamo.State{1}, dynamo.Config{Dt: 0, Steps: 10}},
		{"negative dt", dynamo.State{1}, dynamo.Config{Dt: -0.1, Steps: 10}},
		{"NaN dt", dynamo.State{1}, dynamo.Config{Dt: math.NaN(), Steps: 10}},
		{"zero steps", dynamo.State{1}, dynamo.Config{Dt: 0.1, Steps: 0}},
		{"too many steps", dynamo.State{1}, dynamo.Config{Dt: 0.1, Steps: dynamo.MaxSteps + 1}},
		{"wrong dimension", dynamo.State{1, 1}, dynamo.Config{Dt: 0.1, Steps: 10}},
		{"non-finite start", dynamo.State{math.Inf(1)}, dynamo.Config{Dt: 0.1, Steps: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(x dynamo.State, t float64) {
	c.count++
	c.sum += x[0]
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count, c.sum = 0, 0 }

type recorder struct{ times []float64 }

func (r *recorder) OnStep(x dynamo.State, t float64) { r.times = append(r.times, t) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(&testSystem{}, &testIntegrator{})
	m := &countMetric{}
	rec := &recorder{}
	s.AddMetric(m)
	s.AddObserver(rec)

	cfg := dynamo.Config{Dt: 0.1, Steps: 10}
	for run := 0; run < 2; run++ {
		result, err := s.Run(context.Background(), dynamo.State{1.0}, cfg)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if got := result.Metrics["count"]; got != 11 {
			t.Errorf("run %d: metric saw %v samples, want 11", run, got)
		}
	}
	if len(rec.times) != 22 {
		t.Errorf("observer called %d times, want 22", len(rec.times))
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&testSystem{}, &testIntegrator{})
	res, err := s.Run(ctx, dynamo.State{1}, dynamo.Config{Dt: 0.1, Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Trajectory) != 1 {
		t.Errorf("cancelled run kept %d samples", len(res.Trajectory))
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	p := dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0.5}
	cfg := dynamo.DefaultConfig()

	for _, mode := range []dynamo.Mode{dynamo.Mode1D, dynamo.ModeRadial, dynamo.ModePerAxis} {
		x0 := dynamo.Uniform(mode.Dim(), dynamo.DefaultStart)
		a := runLandscape(t, p, mode, x0, cfg)
		b := runLandscape(t, p, mode, x0, cfg)
		for i := range a.Trajectory {
			for j := range a.Trajectory[i] {
				if a.Trajectory[i][j] != b.Trajectory[i][j] {
					t.Fatalf("%v: sample %d differs: %v vs %v", mode, i, a.Trajectory[i], b.Trajectory[i])
				}
			}
		}

		cfg2 := cfg
		cfg2.Seed = cfg.Seed + 1
		c := runLandscape(t, p, mode, x0, cfg2)
		if c.Trajectory.Final()[0] == a.Trajectory.Final()[0] {
			t.Errorf("%v: different seeds ended at the same point", mode)
		}
	}
}

func TestBalancedScenarioShape(t *testing.T) {
	p := dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0.5}
	res := runLandscape(t, p, dynamo.Mode1D, dynamo.State{1.5}, dynamo.DefaultConfig())

	if len(res.Trajectory) != 1001 {
		t.Fatalf("expected 1001 samples, got %d", len(res.Trajectory))
	}
	if res.Trajectory[0][0] != 1.5 {
		t.Errorf("first sample %v, want 1.5", res.Trajectory[0][0])
	}
	if res.Diverged {
		t.Error("balanced run diverged")
	}
}

func TestDivergenceStopsRun(t *testing.T) {
	p := dynamo.Params{Width: 1.0, Depth: 1.0, Noise: 0}

	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"defaults", dynamo.DefaultConfig()},
		{"literal config", dynamo.Config{Dt: 0.05, Steps: 50}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(landscape(t, p, dynamo.Mode1D), integrators.NewEulerMaruyama(0, 1))

			res, err := s.Run(context.Background(), dynamo.State{100}, tc.cfg)
			if !errors.Is(err, dynamo.ErrNumericDivergence) {
				t.Fatalf("expected ErrNumericDivergence, got %v", err)
			}
			var simErr *dynamo.SimulationError
			if !errors.As(err, &simErr) {
				t.Fatalf("expected *SimulationError, got %T", err)
			}
			if res == nil || !res.Diverged {
				t.Fatal("partial result not flagged as diverged")
			}
			if simErr.Step != res.StepsTaken+1 {
				t.Errorf("error step %d, steps taken %d", simErr.Step, res.StepsTaken)
			}
			if len(res.Trajectory) != res.StepsTaken+1 {
				t.Errorf("trajectory length %d, steps taken %d", len(res.Trajectory), res.StepsTaken)
			}
			for i, x := range res.Trajectory {
				if !x.IsValid() {
					t.Errorf("sample %d is not finite: %v", i, x)
				}
			}
			if res.StepsTaken >= tc.cfg.Steps {
				t.Errorf("divergence not detected in %d steps", res.StepsTaken)
			}
		})
	}
}

func TestNoiselessEnergyDescends(t *testing.T) {
	cases := []struct {
		mode dynamo.Mode
		x0   dynamo.State
	}{
		{dynamo.Mode1D, dynamo.State{1.5}},
		{dynamo.Mode1D, dynamo.State{-3.0}},
		{dynamo.ModeRadial, dynamo.State{2.5, 2.5}},
		{dynamo.ModePerAxis, dynamo.State{2.5, -1.0}},
	}

	for _, tc := range cases {
		p := dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0}
		l := landscape(t, p, tc.mode)
		res := runLandscape(t, p, tc.mode, tc.x0, dynamo.Config{Dt: 0.05, Steps: 500, Seed: 1})

		prev := l.Energy(res.Trajectory[0])
		for i, x := range res.Trajectory[1:] {
			e := l.Energy(x)
			if e > prev+1e-12 {
				t.Fatalf("%v from %v: energy rose at step %d (%v -> %v)", tc.mode, tc.x0, i+1, prev, e)
			}
			prev = e
		}
	}
}

func meanDeviation(traj dynamo.Trajectory, skip int) float64 {
	d := traj.Deviations()[skip:]
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	return sum / float64(len(d))
}

func TestDeeperBasinTightensDeviation(t *testing.T) {
	const seeds = 20
	depths := []float64{0.5, 1.5, 3.0}
	means := make([]float64, len(depths))

	for i, depth := range depths {
		p := dynamo.Params{Width: 1.5, Depth: depth, Noise: 0.5}
		ens := NewEnsemble(landscape(t, p, dynamo.Mode1D), integrators.Factory(p.Noise), seeds, 1)
		results, err := ens.Run(context.Background(), dynamo.State{1.5}, dynamo.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range results {
			means[i] += meanDeviation(r.Trajectory, 100) / seeds
		}
	}

	for i := 1; i < len(means); i++ {
		if means[i] >= means[i-1] {
			t.Errorf("depth %v mean deviation %.3f not below depth %v (%.3f)", depths[i], means[i], depths[i-1], means[i-1])
		}
	}
}

func TestRigidStaysCloserThanDispersed(t *testing.T) {
	rigid := dynamo.Params{Width: 0.6, Depth: 4.0, Noise: 0.3}
	dispersed := dynamo.Params{Width: 3.0, Depth: 0.5, Noise: 0.6}

	maxDev := func(r *dynamo.Result) float64 {
		m := 0.0
		for _, d := range r.Trajectory.Deviations() {
			m = math.Max(m, d)
		}
		return m
	}

	for seed := int64(1); seed <= 5; seed++ {
		cfg := dynamo.DefaultConfig()
		cfg.Seed = seed
		r := runLandscape(t, rigid, dynamo.Mode1D, dynamo.State{1.5}, cfg)
		d := runLandscape(t, dispersed, dynamo.Mode1D, dynamo.State{1.5}, cfg)
		if maxDev(r) >= maxDev(d) {
			t.Errorf("seed %d: rigid max %.3f not below dispersed max %.3f", seed, maxDev(r), maxDev(d))
		}
	}
}

func TestEnsembleMatchesSingleRuns(t *testing.T) {
	p := dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0.5}
	l := landscape(t, p, dynamo.ModeRadial)
	x0 := dynamo.State{2.5, 2.5}
	cfg := dynamo.Config{Dt: 0.05, Steps: 200}

	results, err := NewEnsemble(l, integrators.Factory(p.Noise), 4, 10).
		WithWorkers(2).
		WithMetrics(func() []dynamo.Metric { return []dynamo.Metric{&countMetric{}} }).
		Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, got := range results {
		single := cfg
		single.Seed = 10 + int64(i)
		want := runLandscape(t, p, dynamo.ModeRadial, x0, single)
		if got.Trajectory.Final()[0] != want.Trajectory.Final()[0] || got.Trajectory.Final()[1] != want.Trajectory.Final()[1] {
			t.Errorf("run %d does not match a standalone run with seed %d", i, single.Seed)
		}
		if got.Metrics["count"] != 201 {
			t.Errorf("run %d metric = %v", i, got.Metrics["count"])
		}
	}
}

func TestEnsembleRejectsEmpty(t *testing.T) {
	_, err := NewEnsemble(&testSystem{}, func(int64) dynamo.Integrator { return &testIntegrator{} }, 0, 1).
		Run(context.Background(), dynamo.State{1}, dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
