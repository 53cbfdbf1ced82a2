package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

// MinSpeed is the slowest presentation speed multiplier.
const MinSpeed = 0.1

// Control holds the parameters the presentation layer may change between
// steps. The integrator reads G and Timestep at the start of every step.
type Control struct {
	G        float64
	Timestep float64
	Speed    float64
}

func DefaultControl() Control {
	return Control{
		G:        physics.G,
		Timestep: physics.Day,
		Speed:    1,
	}
}

func (c Control) Validate() error {
	if !positive(c.G) {
		return fmt.Errorf("G=%g: %w", c.G, dynamo.ErrParameterBounds)
	}
	if !positive(c.Timestep) {
		return fmt.Errorf("timestep=%g: %w", c.Timestep, dynamo.ErrParameterBounds)
	}
	if c.Speed < MinSpeed || math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("speed=%g: %w", c.Speed, dynamo.ErrParameterBounds)
	}
	return nil
}

// BodySnapshot is the read-only view handed to presentation.
type BodySnapshot struct {
	Name    string
	X, Y    float64
	Color   string
	Radius  float64
	Primary bool
}

func snapshotOf(b physics.Body) BodySnapshot {
	return BodySnapshot{
		Name:    b.Name,
		X:       b.Pos.X,
		Y:       b.Pos.Y,
		Color:   b.Color,
		Radius:  b.Radius,
		Primary: b.Primary,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
