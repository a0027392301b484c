// Package dynamo provides the shared vocabulary of the landscape engine.
//
// The engine walks a particle across a potential landscape with an
// Euler–Maruyama scheme. This package defines the pieces every other
// package agrees on:
//
//   - [State]: a 1-D or 2-D position, deviation from the homeostatic centre
//   - [Trajectory]: the positions of one run, initial position first
//   - [Params]: landscape width, depth and noise intensity
//   - [System]: anything that supplies a restoring force
//   - [Integrator]: a single stochastic step
//   - [Config]: dt, step count and seed
//
// # Errors
//
// All failures are values. Use errors.Is with [ErrInvalidParameter],
// [ErrUnmappedCondition] and [ErrNumericDivergence]; errors.As recovers
// [ParamError] and [SimulationError] for detail.
package dynamo
