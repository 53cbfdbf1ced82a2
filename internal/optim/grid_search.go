package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/experiment"
)

// GridSearch tries every combination of parameter values and keeps the one
// with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	steps      int
}

func NewGridSearch(params []string, ranges [][]float64, steps int) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, steps: steps}
}

// Search runs one experiment per grid point. Runs that halt or fail to build
// are skipped. It returns nil params when no run completed.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx, g.steps)
		if err != nil {
			return err
		}
		if result.Err != nil {
			return nil
		}

		val, ok := result.Metrics[metricName]
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Apply sets the named parameters on a copy of base. Known names are rtol,
// atol, timestep, g and substeps.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	cfg.Bodies = append([]config.BodyConfig(nil), base.Bodies...)
	for name, v := range params {
		switch name {
		case "rtol":
			cfg.Rtol = v
		case "atol":
			cfg.Atol = v
		case "timestep":
			cfg.Timestep = v
		case "g":
			cfg.G = v
		case "substeps":
			cfg.Substeps = int(v)
		default:
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
	}
	return &cfg, nil
}

// Tune searches params around base for the smallest metric.
func Tune(ctx context.Context, base *config.Config, registry *experiment.Registry, g *GridSearch, metricName string) (map[string]float64, float64, error) {
	return g.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		cfg, err := Apply(base, params)
		if err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return nil, err
		}
		exp.Setup(registry.DefaultMetrics(exp.Engine()))
		return exp, nil
	}, metricName)
}
