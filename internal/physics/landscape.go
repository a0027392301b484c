package physics

import (
	"math"

	"github.com/san-kum/waddington/internal/dynamo"
)

// DefaultQuartic is the confinement coefficient c4. 0.05 is the other value
// in circulation; neither is physically derived.
const DefaultQuartic = 0.02

// Potential is the 1-D landscape energy
//
//	U(x) = -depth * exp(-x²/(2 width²)) + quartic * x⁴
func Potential(x, width, depth, quartic float64) float64 {
	return -depth*math.Exp(-(x*x)/(2*width*width)) + quartic*x*x*x*x
}

// Force is -dU/dx of Potential. The cubic coefficient is 4*quartic so the
// confinement force always matches the displayed energy surface.
func Force(x, width, depth, quartic float64) float64 {
	w2 := width * width
	return -x*(depth/w2)*math.Exp(-(x*x)/(2*w2)) - 4*quartic*x*x*x
}

// Landscape is a single Gaussian basin centred on the origin with quartic
// walls. Narrow basins make depth/width² large; a fixed dt can overshoot there.
type Landscape struct {
	Width, Depth, Quartic float64
	Mode                  dynamo.Mode
}

func NewLandscape(p dynamo.Params, quartic float64, mode dynamo.Mode) (*Landscape, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(quartic) || math.IsInf(quartic, 0) || quartic < 0 {
		return nil, &dynamo.ParamError{Name: "quartic", Value: quartic, Reason: "must be >= 0"}
	}
	return &Landscape{Width: p.Width, Depth: p.Depth, Quartic: quartic, Mode: mode}, nil
}

func (l *Landscape) StateDim() int { return l.Mode.Dim() }

// Force is -∇U. Every mode shares the radial Gaussian well; the modes differ
// only in the quartic wall, on the norm (radial) or on each axis (per-axis).
func (l *Landscape) Force(s dynamo.State) dynamo.State {
	r2 := 0.0
	for _, v := range s {
		r2 += v * v
	}
	w2 := l.Width * l.Width
	pull := (l.Depth / w2) * math.Exp(-r2/(2*w2))

	f := make(dynamo.State, len(s))
	for i, v := range s {
		wall := v * v * v
		if l.Mode == dynamo.ModeRadial {
			wall = r2 * v
		}
		f[i] = -v*pull - 4*l.Quartic*wall
	}
	return f
}

func (l *Landscape) Energy(s dynamo.State) float64 {
	r2 := 0.0
	quart := 0.0
	for _, v := range s {
		r2 += v * v
		quart += v * v * v * v
	}
	if l.Mode == dynamo.ModeRadial {
		quart = r2 * r2
	}
	return -l.Depth*math.Exp(-r2/(2*l.Width*l.Width)) + l.Quartic*quart
}

// DefaultState is the canonical off-centre start.
func (l *Landscape) DefaultState() dynamo.State {
	return dynamo.Uniform(l.StateDim(), dynamo.DefaultStart)
}

func (l *Landscape) GetParams() map[string]float64 {
	return map[string]float64{"width": l.Width, "depth": l.Depth, "quartic": l.Quartic}
}

// Canalization is 1/width: high values mean a narrow, channelled basin.
func (l *Landscape) Canalization() float64 { return 1 / l.Width }

type Sample struct {
	X, U float64
}

// Profile samples the 1-D cross-section U(x) at n evenly spaced points over
// [lo, hi]. In the planar modes this is the cut along the first axis.
func (l *Landscape) Profile(lo, hi float64, n int) []Sample {
	if n < 2 {
		n = 2
	}
	out := make([]Sample, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		x := lo + float64(i)*step
		out[i] = Sample{X: x, U: Potential(x, l.Width, l.Depth, l.Quartic)}
	}
	return out
}

// Surface samples U over the n×n grid [lo, hi]². Rows run along the second
// axis. For 1-D landscapes the radial surface is returned.
func (l *Landscape) Surface(lo, hi float64, n int) [][]float64 {
	if n < 2 {
		n = 2
	}
	mode := l.Mode
	if mode == dynamo.Mode1D {
		mode = dynamo.ModeRadial
	}
	planar := Landscape{Width: l.Width, Depth: l.Depth, Quartic: l.Quartic, Mode: mode}
	step := (hi - lo) / float64(n-1)
	grid := make([][]float64, n)
	for j := range grid {
		grid[j] = make([]float64, n)
		y := lo + float64(j)*step
		for i := range grid[j] {
			x := lo + float64(i)*step
			grid[j][i] = planar.Energy(dynamo.State{x, y})
		}
	}
	return grid
}

// Regime is a coarse reading of basin width.
type Regime string

const (
	RegimeRigid      Regime = "rigid"
	RegimeBalanced   Regime = "balanced"
	RegimeDispersive Regime = "dispersive"
)

func ClassifyRegime(width float64) Regime {
	switch {
	case width < 1.0:
		return RegimeRigid
	case width > 3.0:
		return RegimeDispersive
	}
	return RegimeBalanced
}
