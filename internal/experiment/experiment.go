package experiment

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/config"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/logging"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/physics"
	"github.com/san-kum/waddington/internal/sim"
	"github.com/san-kum/waddington/internal/storage"
)

const (
	ProfileLo     = -5.0
	ProfileHi     = 5.0
	ProfilePoints = 200
	SurfacePoints = 50
)

// Plan is a fully resolved run. It is a value: copy it to vary a field.
type Plan struct {
	Source     string
	Mode       dynamo.Mode
	Params     dynamo.Params
	Quartic    float64
	Integrator string
	Start      dynamo.State
	Run        dynamo.Config
	Transient  int
	Thresholds metrics.Thresholds
	Mapping    *conditions.Mapping
}

// FromConfig resolves a config. A profile/condition pair takes precedence
// over a preset, and a preset over the explicit landscape.
func FromConfig(cfg *config.Config) (Plan, error) {
	if err := cfg.Validate(dynamo.DefaultBounds()); err != nil {
		return Plan{}, err
	}
	mode, err := dynamo.ParseMode(cfg.Mode)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Source:     "custom",
		Mode:       mode,
		Params:     cfg.Landscape.Params(),
		Quartic:    cfg.Landscape.Quartic,
		Integrator: cfg.Integrator,
		Run:        cfg.RunConfig(),
		Transient:  cfg.Transient,
		Thresholds: cfg.Thresholds,
	}

	switch {
	case cfg.Profile != "" || cfg.Condition != "":
		condition := cfg.Condition
		if condition == "" {
			condition = conditions.Control.String()
		}
		m, err := conditions.MapNames(cfg.Profile, condition)
		if err != nil {
			return Plan{}, err
		}
		plan.Mapping = &m
		plan.Params = m.Params
		plan.Source = m.Profile.String() + "/" + m.Condition.String()
	case cfg.Preset != "":
		resolved := *cfg
		if err := resolved.ApplyPreset(cfg.Preset); err != nil {
			return Plan{}, err
		}
		plan.Params = resolved.Landscape.Params()
		plan.Source = "preset:" + resolved.Preset
	}

	if plan.Start, err = cfg.InitState(mode); err != nil {
		return Plan{}, err
	}
	if plan.Mapping != nil && len(cfg.Start) == 0 {
		plan.Start = dynamo.Uniform(mode.Dim(), plan.Mapping.Start)
	}
	return plan, nil
}

// ForMapping returns a copy of base driven by a profile/condition mapping.
func (s Plan) ForMapping(m conditions.Mapping) Plan {
	out := s
	out.Mapping = &m
	out.Params = m.Params
	out.Source = m.Profile.String() + "/" + m.Condition.String()
	return out
}

// Outcome is a finished run together with everything derived from it.
type Outcome struct {
	Plan         Plan
	Result       *dynamo.Result
	Summary      metrics.Summary
	Landscape    *physics.Landscape
	Profile      []physics.Sample
	Regime       physics.Regime
	Canalization float64
}

// Diverged reports a run stopped by a non-finite position.
func (o *Outcome) Diverged() bool { return o.Result != nil && o.Result.Diverged }

type Experiment struct {
	reg *Registry
	log *slog.Logger
}

func New(reg *Registry) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{reg: reg, log: logging.New("experiment")}
}

// Run simulates plan once. A diverged run returns its partial outcome along
// with the divergence error; the summary is left empty.
func (e *Experiment) Run(ctx context.Context, plan Plan) (*Outcome, error) {
	if err := plan.Params.Validate(); err != nil {
		return nil, err
	}
	l, err := e.reg.GetLandscape(plan.Params, plan.Quartic, plan.Mode)
	if err != nil {
		return nil, err
	}
	factory, err := e.reg.GetIntegrator(plan.Integrator, plan.Params.Noise)
	if err != nil {
		return nil, err
	}

	start := plan.Start
	if len(start) == 0 {
		start = l.DefaultState()
	}

	s := sim.New(l, factory(plan.Run.Seed))
	for _, m := range e.reg.DefaultMetrics(l, plan.Transient) {
		s.AddMetric(m)
	}

	plan.Start = start.Clone()
	out := &Outcome{
		Plan:         plan,
		Landscape:    l,
		Profile:      l.Profile(ProfileLo, ProfileHi, ProfilePoints),
		Regime:       physics.ClassifyRegime(plan.Params.Width),
		Canalization: l.Canalization(),
	}

	res, err := s.Run(ctx, start, plan.Run)
	out.Result = res
	if err != nil {
		if errors.Is(err, dynamo.ErrNumericDivergence) {
			e.log.Warn("run diverged", "source", plan.Source, "params", plan.Params.String(), "err", err)
			return out, err
		}
		return nil, err
	}

	opts := metrics.Options{Transient: plan.Transient, Thresholds: plan.Thresholds, Energy: l}
	if out.Summary, err = metrics.Summarize(res.Trajectory, opts); err != nil {
		return out, err
	}

	e.log.Debug("run finished", "source", plan.Source, "mad", out.Summary.MeanDeviation, "band", out.Summary.Band)
	return out, nil
}

// Record converts an outcome into a ledger row.
func (o *Outcome) Record() storage.Record {
	rec := storage.Record{
		Source:        o.Plan.Source,
		Mode:          o.Plan.Mode.String(),
		Width:         o.Plan.Params.Width,
		Depth:         o.Plan.Params.Depth,
		Noise:         o.Plan.Params.Noise,
		Quartic:       o.Plan.Quartic,
		Dt:            o.Plan.Run.Dt,
		Steps:         o.Plan.Run.Steps,
		Seed:          o.Plan.Run.Seed,
		Start:         append([]float64(nil), o.Plan.Start...),
		MeanDeviation: o.Summary.MeanDeviation,
		MaxExcursion:  o.Summary.MaxExcursion,
		Band:          string(o.Summary.Band),
		Diverged:      o.Diverged(),
		Metrics:       make(map[string]float64),
	}
	if rec.Diverged {
		rec.Band = "diverged"
	}
	if o.Plan.Mapping != nil {
		rec.Interpretation = o.Plan.Mapping.Tag
	}
	if o.Result != nil {
		for k, v := range o.Result.Metrics {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				rec.Metrics[k] = v
			}
		}
	}
	rec.Metrics["canalization"] = o.Canalization
	return rec
}
