package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/integrators"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/physics"
)

// SolverFactory builds a fresh solver. Adaptive solvers use tol, fixed-step
// ones split each timestep into substeps.
type SolverFactory func(tol dynamo.Tolerance, substeps int) dynamo.Solver

type Registry struct {
	solvers  map[string]SolverFactory
	adaptive map[string]bool
}

func NewRegistry() *Registry {
	r := &Registry{
		solvers:  make(map[string]SolverFactory),
		adaptive: make(map[string]bool),
	}

	r.addAdaptive("dop853", func() dynamo.EmbeddedStepper { return integrators.NewDOP853() })
	r.addAdaptive("rk45", func() dynamo.EmbeddedStepper { return integrators.NewRK45() })

	r.addFixed("rk4", func() dynamo.Integrator { return integrators.NewRK4() })
	r.addFixed("leapfrog", func() dynamo.Integrator { return integrators.NewLeapfrog() })
	r.addFixed("verlet", func() dynamo.Integrator { return integrators.NewVerlet() })
	r.addFixed("euler", func() dynamo.Integrator { return integrators.NewEuler() })

	return r
}

func (r *Registry) addAdaptive(name string, stepper func() dynamo.EmbeddedStepper) {
	r.adaptive[name] = true
	r.solvers[name] = func(tol dynamo.Tolerance, _ int) dynamo.Solver {
		return integrators.NewAdaptive(stepper(), tol)
	}
}

func (r *Registry) addFixed(name string, stepper func() dynamo.Integrator) {
	r.solvers[name] = func(_ dynamo.Tolerance, substeps int) dynamo.Solver {
		return integrators.NewFixed(stepper(), substeps)
	}
}

func (r *Registry) GetSolver(name string, tol dynamo.Tolerance, substeps int) (dynamo.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(tol, substeps), nil
}

// IsAdaptive reports whether the named integrator controls its own step size.
func (r *Registry) IsAdaptive(name string) bool { return r.adaptive[name] }

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics tracks conservation and whether the first orbiting body
// comes back to its start.
func (r *Registry) DefaultMetrics(src metrics.FieldSource) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergyDrift(src),
		metrics.NewMomentumDrift(src),
		metrics.NewStability(100 * physics.AU),
		metrics.NewOrbitClosure(1),
	}
}
