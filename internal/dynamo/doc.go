// Package dynamo provides core simulation primitives for gravitational
// dynamics.
//
// The package defines the fundamental interfaces and types shared by the
// physics, integrator and simulation layers:
//
//   - [State]: flat state vector, four entries (x, y, vx, vy) per body
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [EmbeddedStepper]: single trial step with an error estimate
//   - [Solver]: advances a state across a whole interval
//
// # Example
//
//	field := physics.Field{G: physics.G, Masses: masses}
//	solver := integrators.NewAdaptive(integrators.NewDOP853(), dynamo.DefaultTolerance())
//	x1, err := solver.Advance(field, x0, 0, 86400)
//
// # Thread Safety
//
// Solvers keep warm-start state between calls and are NOT thread-safe.
// Systems passed to them must not be mutated while a call is in flight.
package dynamo
