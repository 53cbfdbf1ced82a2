package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

// Integrator owns the state vector, masses and clock of a running system and
// advances them one control timestep at a time. After a solver failure the
// integrator refuses to step until Replace or Resume is called.
type Integrator struct {
	solver dynamo.Solver
	ctrl   *Control

	x      dynamo.State
	masses []float64
	t      float64

	steps int
	err   error
}

func NewIntegrator(solver dynamo.Solver, ctrl *Control, x dynamo.State, masses []float64, t float64) (*Integrator, error) {
	if solver == nil || ctrl == nil {
		return nil, fmt.Errorf("integrator needs a solver and control: %w", dynamo.ErrParameterBounds)
	}
	in := &Integrator{solver: solver, ctrl: ctrl}
	if err := in.Replace(x, masses, t); err != nil {
		return nil, err
	}
	return in, nil
}

// Step advances the clock by exactly one control timestep. The state and
// clock are untouched on failure.
func (in *Integrator) Step() error {
	if in.err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrHalted, in.err)
	}

	field := physics.Field{G: in.ctrl.G, Masses: in.masses}
	if err := field.Validate(); err != nil {
		return err
	}
	dt := in.ctrl.Timestep
	if !positive(dt) {
		return fmt.Errorf("timestep=%g: %w", dt, dynamo.ErrParameterBounds)
	}

	t1 := in.t + dt
	next, err := in.solver.Advance(field, in.x, in.t, t1)
	if err == nil && len(next) != len(in.x) {
		err = fmt.Errorf("solver returned %d values for %d: %w", len(next), len(in.x), dynamo.ErrDimensionMismatch)
	}
	if err != nil {
		in.err = &dynamo.SimulationError{
			Step:    in.steps,
			Time:    in.t,
			State:   in.x.Clone(),
			Wrapped: err,
		}
		return in.err
	}

	in.x = next
	in.t = t1
	in.steps++
	return nil
}

// Replace swaps in a new state vector, mass list and clock. Nothing changes
// unless all three are consistent.
func (in *Integrator) Replace(x dynamo.State, masses []float64, t float64) error {
	if len(x) != dynamo.BlockSize*len(masses) {
		return fmt.Errorf("state length %d for %d bodies: %w", len(x), len(masses), dynamo.ErrDimensionMismatch)
	}
	if !x.IsValid() {
		return dynamo.ErrInvalidState
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("time %g: %w", t, dynamo.ErrParameterBounds)
	}
	for i, m := range masses {
		if !positive(m) {
			return fmt.Errorf("body %d mass %g: %w", i, m, dynamo.ErrInvalidMass)
		}
	}

	in.x, in.masses, in.t = x.Clone(), append([]float64(nil), masses...), t
	in.err = nil
	if r, ok := in.solver.(dynamo.Resetter); ok {
		r.Reset()
	}
	return nil
}

// Resume clears a latched failure so the next Step tries again from the
// unchanged state.
func (in *Integrator) Resume() { in.err = nil }

func (in *Integrator) Time() float64 { return in.t }

func (in *Integrator) State() dynamo.State { return in.x.Clone() }

func (in *Integrator) Masses() []float64 { return append([]float64(nil), in.masses...) }

func (in *Integrator) Dim() int { return len(in.x) }

func (in *Integrator) Successful() bool { return in.err == nil }

func (in *Integrator) Err() error { return in.err }

// Steps counts successful steps since construction.
func (in *Integrator) Steps() int { return in.steps }
