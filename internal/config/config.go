package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/physics"
)

const (
	DefaultMode       = "1d"
	DefaultIntegrator = "euler-maruyama"
	DefaultVocabulary = "physiological"
	DefaultTransient  = 0
	DefaultDataDir    = ".waddington"
)

// Config describes one run. Landscape parameters come from, in order of
// precedence: a profile/condition pair, a preset, the explicit landscape.
// The command line re-applies width, depth and noise flags on top.
type Config struct {
	Mode       string             `yaml:"mode"`
	Integrator string             `yaml:"integrator"`
	Preset     string             `yaml:"preset,omitempty"`
	Profile    string             `yaml:"profile,omitempty"`
	Condition  string             `yaml:"condition,omitempty"`
	Vocabulary string             `yaml:"vocabulary"`
	Landscape  LandscapeConfig    `yaml:"landscape"`
	Dt         float64            `yaml:"dt"`
	Steps      int                `yaml:"steps"`
	Seed       int64              `yaml:"seed"`
	Start      []float64          `yaml:"start,omitempty"`
	Transient  int                `yaml:"transient"`
	Thresholds metrics.Thresholds `yaml:"thresholds"`
	DataDir    string             `yaml:"data_dir"`
}

type LandscapeConfig struct {
	Width   float64 `yaml:"width"`
	Depth   float64 `yaml:"depth"`
	Noise   float64 `yaml:"noise"`
	Quartic float64 `yaml:"quartic"`
}

func (l LandscapeConfig) Params() dynamo.Params {
	return dynamo.Params{Width: l.Width, Depth: l.Depth, Noise: l.Noise}
}

func DefaultConfig() *Config {
	base := Presets["baseline"].Params
	return &Config{
		Mode:       DefaultMode,
		Integrator: DefaultIntegrator,
		Vocabulary: DefaultVocabulary,
		Landscape: LandscapeConfig{
			Width:   base.Width,
			Depth:   base.Depth,
			Noise:   base.Noise,
			Quartic: physics.DefaultQuartic,
		},
		Dt:         dynamo.DefaultDt,
		Steps:      dynamo.DefaultSteps,
		Seed:       dynamo.DefaultSeed,
		Transient:  DefaultTransient,
		Thresholds: metrics.DefaultThresholds(),
		DataDir:    DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyPreset copies a preset's landscape into the config.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidParameter, name)
	}
	c.Preset = name
	c.Landscape.Width = p.Params.Width
	c.Landscape.Depth = p.Params.Depth
	c.Landscape.Noise = p.Params.Noise
	return nil
}

// InitState returns the configured start, or DefaultStart on every axis.
// A single value is broadcast across axes.
func (c *Config) InitState(mode dynamo.Mode) (dynamo.State, error) {
	dim := mode.Dim()
	switch len(c.Start) {
	case 0:
		return dynamo.Uniform(dim, dynamo.DefaultStart), nil
	case 1:
		return dynamo.Uniform(dim, c.Start[0]), nil
	case dim:
		return dynamo.State(c.Start).Clone(), nil
	}
	return nil, &dynamo.ParamError{Name: "start", Value: float64(len(c.Start)), Reason: fmt.Sprintf("needs 1 or %d values", dim)}
}

func (c *Config) RunConfig() dynamo.Config {
	rc := dynamo.DefaultConfig()
	rc.Dt = c.Dt
	rc.Steps = c.Steps
	rc.Seed = c.Seed
	return rc
}

// Validate checks the user-facing ranges. The engine enforces its own,
// looser limits again at run time.
func (c *Config) Validate(b dynamo.Bounds) error {
	if _, err := dynamo.ParseMode(c.Mode); err != nil {
		return err
	}
	if err := c.Landscape.Params().WithinBounds(b); err != nil {
		return err
	}
	if q := c.Landscape.Quartic; q < 0 {
		return &dynamo.ParamError{Name: "quartic", Value: q, Reason: "must be >= 0"}
	}
	if c.Dt <= 0 {
		return &dynamo.ParamError{Name: "dt", Value: c.Dt, Reason: "must be > 0"}
	}
	if c.Steps < b.MinSteps || c.Steps > b.MaxSteps {
		return &dynamo.ParamError{Name: "steps", Value: float64(c.Steps), Reason: fmt.Sprintf("must be in [%d, %d]", b.MinSteps, b.MaxSteps)}
	}
	if c.Transient < 0 {
		return &dynamo.ParamError{Name: "transient", Value: float64(c.Transient), Reason: "must be >= 0"}
	}
	return c.Thresholds.Validate()
}
