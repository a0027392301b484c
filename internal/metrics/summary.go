package metrics

import (
	"fmt"

	"github.com/san-kum/waddington/internal/dynamo"
)

// Band is the qualitative reading of a mean deviation.
type Band string

const (
	BandHomeostatic  Band = "homeostatic"
	BandElevatedLoad Band = "elevated-load"
	BandDysregulated Band = "dysregulated"
)

func (b Band) Description() string {
	switch b {
	case BandHomeostatic:
		return "stays near the regulatory centre"
	case BandElevatedLoad:
		return "regulated, but at elevated cost"
	case BandDysregulated:
		return "repeatedly escapes the basin"
	}
	return ""
}

// Thresholds split mean deviation into bands. A value equal to Lower is
// still homeostatic; a value equal to Upper is elevated-load.
type Thresholds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Lower: 1.0, Upper: 2.0}
}

func (t Thresholds) Validate() error {
	if t.Lower < 0 || t.Upper < t.Lower {
		return fmt.Errorf("%w: thresholds lower=%g upper=%g", dynamo.ErrInvalidParameter, t.Lower, t.Upper)
	}
	return nil
}

func (t Thresholds) Classify(mad float64) Band {
	switch {
	case mad <= t.Lower:
		return BandHomeostatic
	case mad <= t.Upper:
		return BandElevatedLoad
	}
	return BandDysregulated
}

type Options struct {
	// Transient leading samples are left out of the mean deviation, but only
	// when the trajectory is longer than that.
	Transient  int
	Thresholds Thresholds
	// Energy, when set, adds mean and final potential to the summary.
	Energy dynamo.System
}

func DefaultOptions() Options {
	return Options{Thresholds: DefaultThresholds()}
}

type Summary struct {
	MeanDeviation   float64 `json:"mean_deviation"`
	Band            Band    `json:"band"`
	MaxExcursion    float64 `json:"max_excursion"`
	ComfortFraction float64 `json:"comfort_fraction"`
	SpikeFraction   float64 `json:"spike_fraction"`
	MeanEnergy      float64 `json:"mean_energy"`
	FinalEnergy     float64 `json:"final_energy"`
	Samples         int     `json:"samples"`
}

// Summarize reduces a finished trajectory. Empty or non-finite trajectories
// are rejected rather than summarized.
func Summarize(traj dynamo.Trajectory, opts Options) (Summary, error) {
	if len(traj) == 0 {
		return Summary{}, dynamo.ErrEmptyTrajectory
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return Summary{}, err
	}

	mad := NewMeanDeviation(opts.Transient)
	peak := NewMaxExcursion()
	comfort := NewComfortZone()
	spike := NewSpikeZone()
	observers := []dynamo.Metric{mad, peak, comfort, spike}

	var energy *MeanEnergy
	if opts.Energy != nil {
		energy = NewMeanEnergy(opts.Energy)
		observers = append(observers, energy)
	}

	for i, x := range traj {
		if !x.IsValid() {
			return Summary{}, &dynamo.SimulationError{Step: i, State: x, Wrapped: dynamo.ErrNumericDivergence}
		}
		for _, m := range observers {
			m.Observe(x, float64(i))
		}
	}

	s := Summary{
		MeanDeviation:   mad.Value(),
		MaxExcursion:    peak.Value(),
		ComfortFraction: comfort.Value(),
		SpikeFraction:   spike.Value(),
		Samples:         len(traj),
	}
	s.Band = opts.Thresholds.Classify(s.MeanDeviation)
	if energy != nil {
		s.MeanEnergy = energy.Value()
		s.FinalEnergy = energy.Final()
	}
	return s, nil
}
