// Package physics holds the gravitational model: the body registry, the
// codec between bodies and flat state vectors, and the field evaluator that
// forms the right-hand side of the N-body ODE.
//
//   - [Registry]: append-only set of point masses in insertion order
//   - [Encode] / [Decode]: bodies <-> 4-block state vectors
//   - [Field]: evaluates dX/dt for a state, given G and the masses
//
// [Field] also implements [dynamo.Hamiltonian] so run metrics can watch
// energy drift:
//
//	field := physics.Field{G: physics.G, Masses: reg.Masses()}
//	e0 := field.Energy(physics.Encode(reg.Bodies()))
//
// Units are SI throughout: metres, seconds, kilograms.
package physics
