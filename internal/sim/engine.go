package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

// Engine ties the body registry to the integrator. It is not safe for
// concurrent use.
type Engine struct {
	ctrl      Control
	registry  *physics.Registry
	integ     *Integrator
	observers []dynamo.Observer
	logger    *log.Logger
}

func NewEngine(bodies []physics.Body, solver dynamo.Solver, ctrl Control) (*Engine, error) {
	if err := ctrl.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		ctrl:     ctrl,
		registry: physics.NewRegistry(),
		logger:   log.New(io.Discard, "", 0),
	}
	for _, b := range bodies {
		if _, err := e.registry.Add(b); err != nil {
			return nil, err
		}
	}

	integ, err := NewIntegrator(solver, &e.ctrl, physics.Encode(e.registry.Bodies()), e.registry.Masses(), 0)
	if err != nil {
		return nil, err
	}
	e.integ = integ
	return e, nil
}

// SetLogger routes engine diagnostics to l. A nil logger discards them.
func (e *Engine) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	e.logger = l
}

func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

func (e *Engine) SetGravitationalConstant(g float64) error {
	if !positive(g) {
		return fmt.Errorf("G=%g: %w", g, dynamo.ErrParameterBounds)
	}
	e.logger.Printf("G %.6e -> %.6e", e.ctrl.G, g)
	e.ctrl.G = g
	return nil
}

func (e *Engine) GravitationalConstant() float64 { return e.ctrl.G }

func (e *Engine) SetTimestep(dt float64) error {
	if !positive(dt) {
		return fmt.Errorf("timestep=%g: %w", dt, dynamo.ErrParameterBounds)
	}
	e.ctrl.Timestep = dt
	return nil
}

func (e *Engine) Timestep() float64 { return e.ctrl.Timestep }

func (e *Engine) SetSpeed(s float64) error {
	if s < MinSpeed || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("speed=%g: %w", s, dynamo.ErrParameterBounds)
	}
	e.ctrl.Speed = s
	return nil
}

func (e *Engine) Speed() float64 { return e.ctrl.Speed }

// Control returns a copy of the current parameters.
func (e *Engine) Control() Control { return e.ctrl }

// StepOnce advances the system by one timestep and writes the new positions
// back into the registry.
func (e *Engine) StepOnce() error {
	if err := e.integ.Step(); err != nil {
		e.logger.Printf("step at t=%.0f failed: %v", e.integ.Time(), err)
		return err
	}
	if err := e.registry.Sync(e.integ.State()); err != nil {
		return err
	}
	e.notify()
	return nil
}

// Run takes n steps, checking ctx between them.
func (e *Engine) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.StepOnce(); err != nil {
			return err
		}
	}
	return nil
}

// Resume clears a latched integration failure.
func (e *Engine) Resume() {
	if !e.integ.Successful() {
		e.logger.Printf("resuming after: %v", e.integ.Err())
	}
	e.integ.Resume()
}

func (e *Engine) AddRandomBody(s *Spawner) (int, error) {
	return e.Insert(s.Next())
}

func (e *Engine) Snapshot(i int) (BodySnapshot, error) {
	b, err := e.registry.Get(i)
	if err != nil {
		return BodySnapshot{}, err
	}
	return snapshotOf(b), nil
}

func (e *Engine) Snapshots() []BodySnapshot {
	bodies := e.registry.Bodies()
	out := make([]BodySnapshot, len(bodies))
	for i, b := range bodies {
		out[i] = snapshotOf(b)
	}
	return out
}

// Bodies returns copies of the registered bodies with their latest state.
func (e *Engine) Bodies() []physics.Body { return e.registry.Bodies() }

func (e *Engine) Count() int { return e.registry.Count() }

func (e *Engine) Time() float64 { return e.integ.Time() }

func (e *Engine) Steps() int { return e.integ.Steps() }

func (e *Engine) State() dynamo.State { return e.integ.State() }

// Field is the force field for the current masses and G.
func (e *Engine) Field() physics.Field {
	return physics.Field{G: e.ctrl.G, Masses: e.integ.Masses()}
}

func (e *Engine) Successful() bool { return e.integ.Successful() }

func (e *Engine) Err() error { return e.integ.Err() }

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	x, t := e.integ.State(), e.integ.Time()
	for _, o := range e.observers {
		o.OnStep(x, t)
	}
}
