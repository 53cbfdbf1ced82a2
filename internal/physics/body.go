package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a simulated point mass. Name, Radius, Color and Primary are
// display metadata and never reach the field evaluator.
type Body struct {
	Name    string
	Pos     r2.Vec
	Vel     r2.Vec
	Mass    float64
	Radius  float64
	Color   string
	Primary bool
}

// Validate checks the physical fields of b.
func (b Body) Validate() error {
	if b.Mass <= 0 || math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
		return fmt.Errorf("body %q mass %g: %w", b.Name, b.Mass, dynamo.ErrInvalidMass)
	}
	for _, v := range []float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("body %q: %w", b.Name, dynamo.ErrInvalidState)
		}
	}
	return nil
}

// Registry holds bodies in stable insertion order. Indices are never reused
// or invalidated.
type Registry struct {
	bodies []Body
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends b and returns its index. Bodies with a non-positive mass are
// rejected rather than clamped.
func (r *Registry) Add(b Body) (int, error) {
	if err := b.Validate(); err != nil {
		return -1, err
	}
	r.bodies = append(r.bodies, b)
	return len(r.bodies) - 1, nil
}

func (r *Registry) Get(i int) (Body, error) {
	if i < 0 || i >= len(r.bodies) {
		return Body{}, fmt.Errorf("index %d of %d: %w", i, len(r.bodies), dynamo.ErrIndexOutOfRange)
	}
	return r.bodies[i], nil
}

func (r *Registry) Count() int { return len(r.bodies) }

// Primary returns body 0, the reference mass for circular-orbit insertion.
func (r *Registry) Primary() (Body, error) {
	if len(r.bodies) == 0 {
		return Body{}, dynamo.ErrNoPrimary
	}
	return r.bodies[0], nil
}

// Bodies returns a copy of all bodies in insertion order.
func (r *Registry) Bodies() []Body {
	out := make([]Body, len(r.bodies))
	copy(out, r.bodies)
	return out
}

// Masses returns a fresh mass list aligned with the registry order.
func (r *Registry) Masses() []float64 {
	m := make([]float64, len(r.bodies))
	for i, b := range r.bodies {
		m[i] = b.Mass
	}
	return m
}

// Sync writes the positions and velocities in x back into the registry.
func (r *Registry) Sync(x dynamo.State) error {
	return Decode(x, r.bodies)
}
