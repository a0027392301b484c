// Package physics provides the potential landscape the engine walks on.
//
// A [Landscape] implements [dynamo.System] and [dynamo.Hamiltonian]:
//
//	U(x) = -k exp(-x²/2σ²) + c4 x⁴
//	F(x) = -x (k/σ²) exp(-x²/2σ²) - 4 c4 x³
//
// Three modes share one Gaussian well on the norm, so the basin centre always
// sits at -k:
//
//   - [dynamo.Mode1D]: scalar position
//   - [dynamo.ModeRadial]: planar position, quartic wall c4 r⁴ on the norm
//   - [dynamo.ModePerAxis]: planar position, quartic wall c4 (x⁴ + y⁴) per axis
//
// The force is analytic. Sign consistency is covered by a finite-difference
// test against [Landscape.Energy].
//
//	land, err := physics.NewLandscape(dynamo.Params{Width: 1.5, Depth: 1.5}, physics.DefaultQuartic, dynamo.Mode1D)
//	if err != nil {
//	    return err
//	}
//	curve := land.Profile(-5, 5, 200)
package physics
