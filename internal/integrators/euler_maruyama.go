package integrators

import (
	"math"
	"math/rand"

	"github.com/san-kum/waddington/internal/dynamo"
)

// EulerMaruyama is the explicit first-order scheme for dx = F(x)dt + ξ dW.
// Each instance owns its generator; never share one across runs.
type EulerMaruyama struct {
	noise float64
	rng   *rand.Rand
}

func NewEulerMaruyama(noise float64, seed int64) *EulerMaruyama {
	return &EulerMaruyama{
		noise: noise,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Factory returns a constructor bound to a noise level, for callers that
// build one integrator per seed.
func Factory(noise float64) func(seed int64) dynamo.Integrator {
	return func(seed int64) dynamo.Integrator {
		return NewEulerMaruyama(noise, seed)
	}
}

func (e *EulerMaruyama) Noise() float64 { return e.noise }

// Step draws one standard normal per axis, in axis order.
func (e *EulerMaruyama) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	f := sys.Force(x)
	amp := e.noise * math.Sqrt(dt)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + f[i]*dt + amp*e.rng.NormFloat64()
	}
	return result
}
