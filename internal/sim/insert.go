package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// CircularVelocity is the velocity that puts a body at pos on a circular
// orbit around primary, counter-clockwise in the primary's frame.
func CircularVelocity(primary physics.Body, pos r2.Vec, G float64) (r2.Vec, error) {
	d := r2.Sub(pos, primary.Pos)
	r := r2.Norm(d)
	if r == 0 {
		return r2.Vec{}, fmt.Errorf("insertion at primary %q: %w", primary.Name, dynamo.ErrDegenerateGeometry)
	}
	if !positive(G) {
		return r2.Vec{}, fmt.Errorf("G=%g: %w", G, dynamo.ErrParameterBounds)
	}

	v := math.Sqrt(G * primary.Mass / r)
	theta := math.Atan2(d.Y, d.X) + math.Pi/2
	return r2.Add(primary.Vel, r2.Vec{X: v * math.Cos(theta), Y: v * math.Sin(theta)}), nil
}

// Insert adds b on a circular orbit around the primary without restarting
// the run. b.Vel is ignored. A rejected body leaves the engine unchanged.
func (e *Engine) Insert(b physics.Body) (int, error) {
	n := e.registry.Count()
	if b.Name == "" {
		b.Name = fmt.Sprintf("Body %d", n)
	}
	b.Vel = r2.Vec{}
	if err := b.Validate(); err != nil {
		e.logger.Printf("insert %s rejected: %v", b.Name, err)
		return -1, err
	}

	primary, err := e.registry.Primary()
	if err != nil {
		return -1, err
	}
	x := e.integ.State()
	primary.Pos = r2.Vec{X: x[0], Y: x[1]}
	primary.Vel = r2.Vec{X: x[2], Y: x[3]}

	b.Vel, err = CircularVelocity(primary, b.Pos, e.ctrl.G)
	if err != nil {
		e.logger.Printf("insert %s rejected: %v", b.Name, err)
		return -1, err
	}

	masses := e.integ.Masses()
	t := e.integ.Time()
	extended := append(x.Clone(), b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
	if err := e.integ.Replace(extended, append(masses, b.Mass), t); err != nil {
		e.logger.Printf("insert %s rejected: %v", b.Name, err)
		return -1, err
	}

	idx, err := e.registry.Add(b)
	if err != nil {
		if rerr := e.integ.Replace(x, masses, t); rerr != nil {
			e.logger.Printf("insert %s rollback: %v", b.Name, rerr)
		}
		return -1, err
	}

	e.logger.Printf("inserted %s at (%.3f, %.3f) AU, v=%.1f m/s", b.Name, b.Pos.X/physics.AU, b.Pos.Y/physics.AU, r2.Norm(r2.Sub(b.Vel, primary.Vel)))
	e.notify()
	return idx, nil
}
