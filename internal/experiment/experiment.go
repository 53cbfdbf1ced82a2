package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/sim"
)

type Result struct {
	Steps   int
	Time    float64
	Bodies  []string
	Metrics map[string]float64
	Err     error
}

// Experiment is an engine built from a configuration with a set of metrics
// fed from every step and insertion.
type Experiment struct {
	cfg     *config.Config
	engine  *sim.Engine
	metrics []dynamo.Metric
}

func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	solver, err := reg.GetSolver(cfg.Integrator, cfg.Tolerance(), cfg.Substeps)
	if err != nil {
		return nil, err
	}
	engine, err := sim.NewEngine(cfg.BuildBodies(), solver, cfg.Control())
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	e := &Experiment{cfg: cfg, engine: engine}
	engine.AddObserver(e)
	return e, nil
}

func (e *Experiment) Setup(metrics []dynamo.Metric) {
	e.metrics = metrics
	x, t := e.engine.State(), e.engine.Time()
	for _, m := range e.metrics {
		m.Reset()
		m.Observe(x, t)
	}
}

func (e *Experiment) OnStep(x dynamo.State, t float64) {
	for _, m := range e.metrics {
		m.Observe(x, t)
	}
}

// Run takes up to steps steps. An integration failure ends the run early and
// is reported in the result; cancellation is returned as an error.
func (e *Experiment) Run(ctx context.Context, steps int) (*Result, error) {
	err := e.engine.Run(ctx, steps)
	if err != nil && !dynamo.IsIntegrationFailure(err) {
		return nil, err
	}

	res := &Result{
		Steps:   e.engine.Steps(),
		Time:    e.engine.Time(),
		Metrics: make(map[string]float64, len(e.metrics)),
		Err:     err,
	}
	for _, s := range e.engine.Snapshots() {
		res.Bodies = append(res.Bodies, s.Name)
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

func (e *Experiment) Engine() *sim.Engine { return e.engine }

func (e *Experiment) Config() *config.Config { return e.cfg }
