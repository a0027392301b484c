package metrics

import "github.com/san-kum/waddington/internal/dynamo"

// MeanDeviation is the streaming form of Summary.MeanDeviation: the average
// distance from the origin over every sample after the first skip. A path no
// longer than skip is averaged whole.
type MeanDeviation struct {
	name string
	skip int
	seen int
	all  float64
	tail float64
}

func NewMeanDeviation(skip int) *MeanDeviation {
	if skip < 0 {
		skip = 0
	}
	return &MeanDeviation{name: "mean_deviation", skip: skip}
}

func (m *MeanDeviation) Name() string { return m.name }

func (m *MeanDeviation) Observe(x dynamo.State, t float64) {
	d := x.Norm()
	m.seen++
	m.all += d
	if m.seen > m.skip {
		m.tail += d
	}
}

func (m *MeanDeviation) Value() float64 {
	switch {
	case m.seen == 0:
		return 0
	case m.seen > m.skip:
		return m.tail / float64(m.seen-m.skip)
	}
	return m.all / float64(m.seen)
}

func (m *MeanDeviation) Reset() {
	m.seen = 0
	m.all = 0
	m.tail = 0
}

// MaxExcursion tracks the largest distance from the origin.
type MaxExcursion struct {
	max float64
}

func NewMaxExcursion() *MaxExcursion { return &MaxExcursion{} }

func (m *MaxExcursion) Name() string { return "max_excursion" }

func (m *MaxExcursion) Observe(x dynamo.State, t float64) {
	if d := x.Norm(); d > m.max {
		m.max = d
	}
}

func (m *MaxExcursion) Value() float64 { return m.max }
func (m *MaxExcursion) Reset()         { m.max = 0 }
