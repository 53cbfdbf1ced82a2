package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Field is the parameter object for one evaluation of the gravitational
// field. It is passed by value into every derivative call; nothing in this
// package reads mutable global state.
type Field struct {
	G      float64
	Masses []float64
}

// Validate checks G and the masses.
func (f Field) Validate() error {
	if f.G <= 0 || math.IsNaN(f.G) || math.IsInf(f.G, 0) {
		return fmt.Errorf("gravitational constant %g: %w", f.G, dynamo.ErrParameterBounds)
	}
	for i, m := range f.Masses {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("mass[%d] = %g: %w", i, m, dynamo.ErrInvalidMass)
		}
	}
	return nil
}

func (f Field) StateDim() int { return len(f.Masses) * dynamo.BlockSize }

func (f Field) Derive(x dynamo.State, t float64) dynamo.State {
	return Derivative(t, x, f)
}

// Derivative returns dX/dt for the 4-block state x. The acceleration of body
// i is the sum over j != i of G*m_j*(p_j - p_i)/|p_j - p_i|^3. Coincident
// pairs contribute nothing. x and f are only read; the result is freshly
// allocated, so multi-stage integrators may call this freely.
func Derivative(t float64, x dynamo.State, f Field) dynamo.State {
	n := len(x) / dynamo.BlockSize
	dx := make(dynamo.State, len(x))

	for i := 0; i < n; i++ {
		ki := i * dynamo.BlockSize
		xi, yi := x[ki], x[ki+1]

		ax, ay := 0.0, 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			kj := j * dynamo.BlockSize
			rx := x[kj] - xi
			ry := x[kj+1] - yi
			d2 := rx*rx + ry*ry
			if d2 == 0 {
				continue
			}

			s := f.G * f.Masses[j] / (d2 * math.Sqrt(d2))
			ax += s * rx
			ay += s * ry
		}

		dx[ki] = x[ki+2]
		dx[ki+1] = x[ki+3]
		dx[ki+2] = ax
		dx[ki+3] = ay
	}

	return dx
}

// Energy is the total kinetic plus pairwise potential energy. Coincident
// pairs are skipped, matching Derivative.
func (f Field) Energy(x dynamo.State) float64 {
	n := len(f.Masses)
	ke := 0.0
	pe := 0.0

	for i := 0; i < n; i++ {
		ki := i * dynamo.BlockSize
		vx, vy := x[ki+2], x[ki+3]
		ke += 0.5 * f.Masses[i] * (vx*vx + vy*vy)

		for j := i + 1; j < n; j++ {
			kj := j * dynamo.BlockSize
			r := math.Hypot(x[kj]-x[ki], x[kj+1]-x[ki+1])
			if r == 0 {
				continue
			}
			pe -= f.G * f.Masses[i] * f.Masses[j] / r
		}
	}

	return ke + pe
}

// Momentum is the total linear momentum.
func (f Field) Momentum(x dynamo.State) r2.Vec {
	var p r2.Vec
	for i, m := range f.Masses {
		k := i * dynamo.BlockSize
		p = r2.Add(p, r2.Scale(m, r2.Vec{X: x[k+2], Y: x[k+3]}))
	}
	return p
}

// MomentumScale is the sum of |m_i v_i|, a reference magnitude for judging
// momentum drift.
func (f Field) MomentumScale(x dynamo.State) float64 {
	s := 0.0
	for i, m := range f.Masses {
		k := i * dynamo.BlockSize
		s += m * math.Hypot(x[k+2], x[k+3])
	}
	return s
}

func (f Field) AngularMomentum(x dynamo.State) float64 {
	L := 0.0
	for i, m := range f.Masses {
		k := i * dynamo.BlockSize
		L += m * (x[k]*x[k+3] - x[k+1]*x[k+2])
	}
	return L
}
