package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 10.0
)

// Stats describes the work done by the last Advance call.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
}

// Adaptive drives an embedded stepper across an interval with error
// control. The last accepted step size is kept as the first guess for the
// next call.
type Adaptive struct {
	stepper dynamo.EmbeddedStepper
	tol     dynamo.Tolerance
	h       float64
	stats   Stats
}

func NewAdaptive(stepper dynamo.EmbeddedStepper, tol dynamo.Tolerance) *Adaptive {
	if tol.MaxSteps <= 0 {
		tol.MaxSteps = dynamo.DefaultTolerance().MaxSteps
	}
	return &Adaptive{stepper: stepper, tol: tol}
}

func (a *Adaptive) Tolerance() dynamo.Tolerance { return a.tol }

// Stats returns the counters of the most recent Advance.
func (a *Adaptive) Stats() Stats { return a.stats }

// Reset drops the warm-start step size.
func (a *Adaptive) Reset() { a.h = 0 }

// counting wraps a system and tallies Derive calls.
type counting struct {
	dynamo.System
	n *int
}

func (c counting) Derive(x dynamo.State, t float64) dynamo.State {
	*c.n++
	return c.System.Derive(x, t)
}

func (a *Adaptive) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, error) {
	a.stats = Stats{}
	if t1 < t0 {
		return nil, fmt.Errorf("interval [%g, %g]: %w", t0, t1, dynamo.ErrParameterBounds)
	}
	if !x.IsValid() {
		return nil, fmt.Errorf("initial state at t=%g: %w", t0, dynamo.ErrInvalidState)
	}
	if t1 == t0 {
		return x.Clone(), nil
	}

	sys := counting{System: dyn, n: &a.stats.Evaluations}
	exponent := -1.0 / float64(a.stepper.Order()+1)

	f := sys.Derive(x, t0)
	h := a.h
	if h <= 0 {
		h = a.initialStep(sys, x, f, t0, t1-t0)
	}

	y := x
	t := t0
	rejected := false
	for attempts := 0; t < t1; attempts++ {
		if attempts >= a.tol.MaxSteps {
			return nil, fmt.Errorf("%d trial steps, reached t=%g of %g: %w", attempts, t, t1, dynamo.ErrTooManySteps)
		}
		if a.tol.MaxStep > 0 && h > a.tol.MaxStep {
			h = a.tol.MaxStep
		}
		// t cannot resolve anything finer than minStep
		minStep := 10 * (math.Nextafter(t, math.Inf(1)) - t)
		h = math.Max(h, minStep)

		hStep, last := h, false
		if t+hStep >= t1 {
			hStep, last = t1-t, true
		}

		yNew, errNorm := a.stepper.Attempt(sys, y, f, t, hStep, a.tol)

		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) || !yNew.IsValid() || errNorm >= 1 {
			shrink := minFactor
			if errNorm >= 1 && !math.IsInf(errNorm, 0) && yNew.IsValid() {
				shrink = math.Max(minFactor, safety*math.Pow(errNorm, exponent))
			}
			rejected = true
			a.stats.Rejected++
			h = hStep * shrink
			if h < minStep {
				return nil, fmt.Errorf("h=%g at t=%g: %w", h, t, dynamo.ErrStepTooSmall)
			}
			continue
		}

		factor := maxFactor
		if errNorm > 0 {
			factor = math.Min(maxFactor, safety*math.Pow(errNorm, exponent))
		}
		if rejected {
			factor = math.Min(1, factor)
		}
		rejected = false
		a.stats.Accepted++

		y = yNew
		next := hStep * factor
		if last {
			t = t1
			// a clipped final step says little about the natural step size
			if hStep < h {
				next = math.Max(next, h)
			}
		} else {
			t += hStep
			f = sys.Derive(y, t)
		}
		h = next
	}

	a.h = h
	return y, nil
}

// initialStep picks a first step from the scale of the state and its
// derivatives (Hairer, Norsett and Wanner, II.4).
func (a *Adaptive) initialStep(dyn dynamo.System, x, f dynamo.State, t0, span float64) float64 {
	n := len(x)
	if n == 0 {
		return span
	}

	rms := func(v dynamo.State) float64 {
		sum := 0.0
		for i, vi := range v {
			e := vi / a.tol.Scale(x[i], 0)
			sum += e * e
		}
		return math.Sqrt(sum / float64(n))
	}

	d0, d1 := rms(x), rms(f)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	y1 := make(dynamo.State, n)
	for i := range x {
		y1[i] = x[i] + h0*f[i]
	}
	f1 := dyn.Derive(y1, t0+h0)
	d2 := rms(f1.Sub(f)) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(a.stepper.Order()+1))
	}

	if !(h1 > 0) {
		h1 = math.Max(1e-6, h0*1e-3)
	}

	return math.Min(math.Min(100*h0, h1), span)
}

// Fixed drives a fixed-step integrator with a constant number of equal
// sub-steps per interval.
type Fixed struct {
	stepper  dynamo.Integrator
	substeps int
}

func NewFixed(stepper dynamo.Integrator, substeps int) *Fixed {
	if substeps < 1 {
		substeps = 1
	}
	return &Fixed{stepper: stepper, substeps: substeps}
}

func (f *Fixed) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, error) {
	if t1 < t0 {
		return nil, fmt.Errorf("interval [%g, %g]: %w", t0, t1, dynamo.ErrParameterBounds)
	}
	h := (t1 - t0) / float64(f.substeps)
	y := x
	for i := 0; i < f.substeps; i++ {
		y = f.stepper.Step(dyn, y, t0+float64(i)*h, h)
		if !y.IsValid() {
			return nil, fmt.Errorf("sub-step %d of %d: %w", i+1, f.substeps, dynamo.ErrInvalidState)
		}
	}
	return y, nil
}
