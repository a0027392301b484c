package metrics

import "github.com/san-kum/waddington/internal/dynamo"

const (
	// ComfortRadius bounds the comfort zone around the homeostatic centre.
	ComfortRadius = 0.5
	// SpikeRadius marks the start of the spike zone.
	SpikeRadius = 2.5
)

// ZoneOccupancy reports the fraction of samples inside (Inside true) or
// outside a radius.
type ZoneOccupancy struct {
	name    string
	radius  float64
	inside  bool
	hits    int
	samples int
}

func NewComfortZone() *ZoneOccupancy {
	return &ZoneOccupancy{name: "comfort_fraction", radius: ComfortRadius, inside: true}
}

func NewSpikeZone() *ZoneOccupancy {
	return &ZoneOccupancy{name: "spike_fraction", radius: SpikeRadius}
}

func (z *ZoneOccupancy) Name() string { return z.name }

func (z *ZoneOccupancy) Observe(x dynamo.State, t float64) {
	z.samples++
	d := x.Norm()
	if (z.inside && d < z.radius) || (!z.inside && d > z.radius) {
		z.hits++
	}
}

func (z *ZoneOccupancy) Value() float64 {
	if z.samples == 0 {
		return 0
	}
	return float64(z.hits) / float64(z.samples)
}

func (z *ZoneOccupancy) Reset() {
	z.hits = 0
	z.samples = 0
}
