package metrics

import (
	"math"

	"github.com/san-kum/waddington/internal/dynamo"
)

// MeanEnergy averages the landscape potential along the path. Systems that
// do not expose an energy leave it at zero.
type MeanEnergy struct {
	name    string
	sys     dynamo.System
	total   float64
	last    float64
	samples int
}

func NewMeanEnergy(sys dynamo.System) *MeanEnergy {
	return &MeanEnergy{name: "mean_energy", sys: sys}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(x dynamo.State, t float64) {
	h, ok := e.sys.(dynamo.Hamiltonian)
	if !ok {
		return
	}
	e.last = h.Energy(x)
	e.total += e.last
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Final is the energy of the most recent sample.
func (e *MeanEnergy) Final() float64 { return e.last }

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// EnergyRise is the largest step-to-step increase in potential. With zero
// noise it stays at zero; anything else means the step size overshoots.
type EnergyRise struct {
	sys     dynamo.System
	prev    float64
	maxRise float64
	samples int
}

func NewEnergyRise(sys dynamo.System) *EnergyRise {
	return &EnergyRise{sys: sys}
}

func (e *EnergyRise) Name() string { return "energy_rise" }

func (e *EnergyRise) Observe(x dynamo.State, t float64) {
	h, ok := e.sys.(dynamo.Hamiltonian)
	if !ok {
		return
	}
	energy := h.Energy(x)
	if e.samples > 0 {
		e.maxRise = math.Max(e.maxRise, energy-e.prev)
	}
	e.prev = energy
	e.samples++
}

func (e *EnergyRise) Value() float64 { return e.maxRise }

func (e *EnergyRise) Reset() {
	e.prev = 0
	e.maxRise = 0
	e.samples = 0
}
