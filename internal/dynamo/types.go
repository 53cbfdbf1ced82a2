package dynamo

import (
	"math"
)

// BlockSize is the number of state entries per body: x, y, vx, vy.
const BlockSize = 4

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Bodies returns the number of 4-blocks in s.
func (s State) Bodies() int { return len(s) / BlockSize }

// System is the right-hand side of an ODE system. Derive must not retain or
// mutate x and must return a freshly allocated slice.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a state by one fixed step.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// EmbeddedStepper makes one trial step of size h from (t, x) and reports the
// scaled error norm of that step; a norm below 1 means the step meets tol.
// dx is f(x, t), supplied by the caller so it can be reused across retries.
type EmbeddedStepper interface {
	Attempt(dyn System, x, dx State, t, h float64, tol Tolerance) (State, float64)
	// Order is the order used for step size control.
	Order() int
}

// Solver advances x from t0 to t1, taking whatever internal steps it needs.
// On error the returned state is nil and x is unchanged.
type Solver interface {
	Advance(dyn System, x State, t0, t1 float64) (State, error)
}

// Resetter is implemented by solvers that carry warm-start state between
// calls.
type Resetter interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Tolerance holds the relative and absolute error targets of an adaptive
// solver together with its step budget.
type Tolerance struct {
	Rtol     float64
	Atol     float64
	MaxSteps int
	MaxStep  float64
}

// DefaultTolerance mirrors the classic dop853 driver defaults.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Rtol:     1e-6,
		Atol:     1e-12,
		MaxSteps: 500,
	}
}

// Scale returns the per-component error scale atol + rtol*max(|a|, |b|).
func (tol Tolerance) Scale(a, b float64) float64 {
	return tol.Atol + tol.Rtol*math.Max(math.Abs(a), math.Abs(b))
}
