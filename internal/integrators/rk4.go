package integrators

import "github.com/san-kum/orrery/internal/dynamo"

// RK4 is the classical fourth order Runge-Kutta method. The stage buffer
// is reused between calls and regrown when the state dimension changes,
// as it does after an insertion.
type RK4 struct {
	stage dynamo.State
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(r.stage) != len(x) {
		r.stage = make(dynamo.State, len(x))
	}
	half := dt / 2

	k1 := dyn.Derive(x, t)
	k2 := dyn.Derive(axpy(r.stage, x, half, k1), t+half)
	k3 := dyn.Derive(axpy(r.stage, x, half, k2), t+half)
	k4 := dyn.Derive(axpy(r.stage, x, dt, k3), t+dt)

	out := make(dynamo.State, len(x))
	for i := range out {
		out[i] = x[i] + dt/6*(k1[i]+2*(k2[i]+k3[i])+k4[i])
	}
	return out
}
