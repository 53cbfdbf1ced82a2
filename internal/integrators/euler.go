package integrators

import "github.com/san-kum/orrery/internal/dynamo"

// Euler is the explicit first order method. It is kept as a baseline for
// drift comparisons.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (*Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return axpy(make(dynamo.State, len(x)), x, dt, dyn.Derive(x, t))
}

// axpy writes x + h*k into dst and returns it.
func axpy(dst, x dynamo.State, h float64, k dynamo.State) dynamo.State {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
	return dst
}
