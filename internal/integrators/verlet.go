package integrators

import "github.com/san-kum/orrery/internal/dynamo"

// Verlet and Leapfrog treat the state as blocks of block entries whose first
// half are positions and second half the matching velocities. With the
// default block of 4 that is the (x, y, vx, vy) body layout. Both assume the
// acceleration does not depend on velocity.
type Verlet struct {
	block   int
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return NewVerletBlock(dynamo.BlockSize)
}

func NewVerletBlock(block int) *Verlet {
	return &Verlet{block: block}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := v.block / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	dt2 := dt * dt

	for b := 0; b+v.block <= n; b += v.block {
		for c := 0; c < half; c++ {
			p, q := b+c, b+half+c
			result[p] = x[p] + x[q]*dt + 0.5*dx[q]*dt2
			v.scratch[p] = result[p]
			v.scratch[q] = x[q]
		}
	}

	dxNew := dyn.Derive(v.scratch, t+dt)

	halfDt := 0.5 * dt
	for b := 0; b+v.block <= n; b += v.block {
		for c := 0; c < half; c++ {
			q := b + half + c
			result[q] = x[q] + (dx[q]+dxNew[q])*halfDt
		}
	}

	return result
}

type Leapfrog struct {
	block   int
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return NewLeapfrogBlock(dynamo.BlockSize)
}

func NewLeapfrogBlock(block int) *Leapfrog {
	return &Leapfrog{block: block}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := l.block / 2

	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	halfDt := dt * 0.5

	for b := 0; b+l.block <= n; b += l.block {
		for c := 0; c < half; c++ {
			p, q := b+c, b+half+c
			l.scratch[q] = x[q] + dx[q]*halfDt
			result[p] = x[p] + l.scratch[q]*dt
			l.scratch[p] = result[p]
		}
	}

	dxNew := dyn.Derive(l.scratch, t+dt)

	for b := 0; b+l.block <= n; b += l.block {
		for c := 0; c < half; c++ {
			q := b + half + c
			result[q] = l.scratch[q] + dxNew[q]*halfDt
		}
	}

	return result
}
