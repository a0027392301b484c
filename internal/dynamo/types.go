package dynamo

import (
	"fmt"
	"math"
)

// State is a position in the landscape, measured as deviation from the
// homeostatic centre. One element in 1-D mode, two in the planar modes.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 1 {
		return math.Abs(s[0])
	}
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Uniform returns a dim-dimensional state with every axis set to v.
func Uniform(dim int, v float64) State {
	s := make(State, dim)
	for i := range s {
		s[i] = v
	}
	return s
}

// Trajectory is the ordered sequence of positions produced by one run,
// initial position first.
type Trajectory []State

// Axis extracts one coordinate of every sample.
func (t Trajectory) Axis(i int) []float64 {
	out := make([]float64, len(t))
	for j, s := range t {
		if i < len(s) {
			out[j] = s[i]
		}
	}
	return out
}

// Deviations returns the distance from the origin of every sample.
func (t Trajectory) Deviations() []float64 {
	out := make([]float64, len(t))
	for j, s := range t {
		out[j] = s.Norm()
	}
	return out
}

func (t Trajectory) Final() State {
	if len(t) == 0 {
		return nil
	}
	return t[len(t)-1]
}

// Params are the landscape parameters of a run. Values are immutable once a
// run starts; pass them by value.
type Params struct {
	Width float64 `json:"width" yaml:"width"`
	Depth float64 `json:"depth" yaml:"depth"`
	Noise float64 `json:"noise" yaml:"noise"`
}

// Validate enforces the hard domain of the model: width > 0, depth >= 0,
// noise >= 0, all finite.
func (p Params) Validate() error {
	switch {
	case !finite(p.Width) || p.Width <= 0:
		return &ParamError{Name: "width", Value: p.Width, Reason: "must be > 0"}
	case !finite(p.Depth) || p.Depth < 0:
		return &ParamError{Name: "depth", Value: p.Depth, Reason: "must be >= 0"}
	case !finite(p.Noise) || p.Noise < 0:
		return &ParamError{Name: "noise", Value: p.Noise, Reason: "must be >= 0"}
	}
	return nil
}

// Bounds are the slider ranges offered to callers. They are softer than
// Validate and only checked at the configuration boundary.
type Bounds struct {
	MaxWidth float64
	MaxDepth float64
	MaxNoise float64
	MinSteps int
	MaxSteps int
}

func DefaultBounds() Bounds {
	return Bounds{
		MaxWidth: 6.0,
		MaxDepth: 6.0,
		MaxNoise: 3.0,
		MinSteps: 100,
		MaxSteps: 2000,
	}
}

func (p Params) WithinBounds(b Bounds) error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch {
	case p.Width > b.MaxWidth:
		return &ParamError{Name: "width", Value: p.Width, Reason: fmt.Sprintf("must be <= %g", b.MaxWidth)}
	case p.Depth > b.MaxDepth:
		return &ParamError{Name: "depth", Value: p.Depth, Reason: fmt.Sprintf("must be <= %g", b.MaxDepth)}
	case p.Noise > b.MaxNoise:
		return &ParamError{Name: "noise", Value: p.Noise, Reason: fmt.Sprintf("must be <= %g", b.MaxNoise)}
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("width=%.2f depth=%.2f noise=%.2f", p.Width, p.Depth, p.Noise)
}

// Mode selects the dimensionality of the landscape.
type Mode int

const (
	Mode1D Mode = iota
	ModeRadial
	ModePerAxis
)

func (m Mode) String() string {
	switch m {
	case Mode1D:
		return "1d"
	case ModeRadial:
		return "radial"
	case ModePerAxis:
		return "per-axis"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) Dim() int {
	if m == Mode1D {
		return 1
	}
	return 2
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "1d":
		return Mode1D, nil
	case "radial", "2d":
		return ModeRadial, nil
	case "per-axis", "axis":
		return ModePerAxis, nil
	}
	return Mode1D, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// System is a landscape the integrator can walk: it supplies the restoring
// force at a position.
type System interface {
	Force(x State) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

const (
	DefaultDt    = 0.05
	DefaultSteps = 1000
	DefaultSeed  = 42
	DefaultStart = 1.5

	// MaxSteps caps a single run regardless of configuration.
	MaxSteps = 5000
)

// Config holds the integration settings of a run.
// A step that produces a non-finite position always ends the run.
type Config struct {
	Dt    float64
	Steps int
	Seed  int64
}

func DefaultConfig() Config {
	return Config{
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		Seed:  DefaultSeed,
	}
}

func (c Config) Validate() error {
	if !finite(c.Dt) || c.Dt <= 0 {
		return &ParamError{Name: "dt", Value: c.Dt, Reason: "must be > 0"}
	}
	if c.Steps < 1 || c.Steps > MaxSteps {
		return &ParamError{Name: "steps", Value: float64(c.Steps), Reason: fmt.Sprintf("must be in [1, %d]", MaxSteps)}
	}
	return nil
}

type Result struct {
	Trajectory Trajectory
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Diverged   bool
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
