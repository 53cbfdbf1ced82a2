package integrators

import (
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// kepler is a unit-mass point orbiting a fixed unit-mass centre with G = 1,
// laid out as one (x, y, vx, vy) block.
type kepler struct{}

func (k *kepler) StateDim() int { return 4 }

func (k *kepler) Derive(x dynamo.State, t float64) dynamo.State {
	r2 := x[0]*x[0] + x[1]*x[1]
	r3 := r2 * math.Sqrt(r2)
	return dynamo.State{x[2], x[3], -x[0] / r3, -x[1] / r3}
}

func (k *kepler) Energy(x dynamo.State) float64 {
	r := math.Hypot(x[0], x[1])
	return 0.5*(x[2]*x[2]+x[3]*x[3]) - 1/r
}

type poisoned struct{}

func (p *poisoned) StateDim() int { return 2 }

func (p *poisoned) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.NaN(), math.NaN()}
}

// still has zero derivative in every dimension, including none.
type still struct{}

func (s *still) StateDim() int { return 0 }

func (s *still) Derive(x dynamo.State, t float64) dynamo.State {
	return make(dynamo.State, len(x))
}
