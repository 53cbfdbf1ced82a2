package automation

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/experiment"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/physics"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Preset      string   `yaml:"preset"`
	Integrator  string   `yaml:"integrator"`
	Seed        int64    `yaml:"seed"`
	Actions     []Action `yaml:"actions"`
}

// Action is one scripted event. Exactly one field is set.
type Action struct {
	Step   int           `yaml:"step,omitempty"`
	Spawn  int           `yaml:"spawn,omitempty"`
	Insert *InsertAction `yaml:"insert,omitempty"`
	SetG   *float64      `yaml:"set_g,omitempty"`
	ScaleG *float64      `yaml:"scale_g,omitempty"`
}

// InsertAction places a body in AU; its velocity comes from insertion.
type InsertAction struct {
	Name   string  `yaml:"name"`
	Mass   float64 `yaml:"mass"`
	XAU    float64 `yaml:"x_au"`
	YAU    float64 `yaml:"y_au"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

func (a Action) Kind() string {
	kinds := []string{}
	if a.Step != 0 {
		kinds = append(kinds, "step")
	}
	if a.Spawn != 0 {
		kinds = append(kinds, "spawn")
	}
	if a.Insert != nil {
		kinds = append(kinds, "insert")
	}
	if a.SetG != nil {
		kinds = append(kinds, "set_g")
	}
	if a.ScaleG != nil {
		kinds = append(kinds, "scale_g")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Outcome reports what one action did. Err is set for rejected insertions
// and failed steps; the scenario keeps going after them.
type Outcome struct {
	Action int
	Kind   string
	Steps  int
	Bodies int
	Time   float64
	Err    error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, a := range s.Actions {
		if a.Kind() == "" {
			return fmt.Errorf("action %d: need exactly one of step, spawn, insert, set_g, scale_g", i+1)
		}
		if a.Step < 0 || a.Spawn < 0 {
			return fmt.Errorf("action %d: negative count", i+1)
		}
	}
	return nil
}

// Build resolves the scenario's preset into an experiment.
func (s *Scenario) Build(registry *experiment.Registry) (*experiment.Experiment, error) {
	preset := s.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	cfg, err := config.Resolve(preset)
	if err != nil {
		return nil, err
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	cfg.Seed = s.Seed

	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return nil, err
	}
	exp.Setup(registry.DefaultMetrics(exp.Engine()))
	return exp, nil
}

// RunScenario executes all actions in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, exp *experiment.Experiment) ([]Outcome, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	engine := exp.Engine()
	spawner := exp.Config().Spawner()
	outcomes := make([]Outcome, 0, len(scenario.Actions))

	for i, a := range scenario.Actions {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		out := Outcome{Action: i + 1, Kind: a.Kind()}
		before := engine.Steps()

		switch out.Kind {
		case "step":
			out.Err = engine.Run(ctx, a.Step)
		case "spawn":
			for n := 0; n < a.Spawn && out.Err == nil; n++ {
				_, out.Err = engine.AddRandomBody(spawner)
			}
		case "insert":
			_, out.Err = engine.Insert(physics.Body{
				Name:   a.Insert.Name,
				Mass:   a.Insert.Mass,
				Pos:    r2.Vec{X: a.Insert.XAU * physics.AU, Y: a.Insert.YAU * physics.AU},
				Radius: a.Insert.Radius,
				Color:  a.Insert.Color,
			})
		case "set_g":
			out.Err = engine.SetGravitationalConstant(*a.SetG)
		case "scale_g":
			out.Err = engine.SetGravitationalConstant(engine.GravitationalConstant() * *a.ScaleG)
		}

		if out.Err != nil && ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		out.Steps = engine.Steps() - before
		out.Bodies = engine.Count()
		out.Time = engine.Time()
		if out.Err != nil {
			log.Printf("%s action %d (%s): %v", scenario.Name, out.Action, out.Kind, out.Err)
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// ParameterSweep runs the same preset across a range of G scale factors
type ParameterSweep struct {
	Preset     string
	Integrator string
	ScaleMin   float64
	ScaleMax   float64
	NumSteps   int
	Steps      int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Scale       float64
	G           float64
	EnergyDrift float64
	Stability   float64
	Closure     float64
	Err         error
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ScaleMax - sweep.ScaleMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		scale := sweep.ScaleMin + float64(i)*paramStep

		cfg, err := config.Resolve(sweep.Preset)
		if err != nil {
			return nil, err
		}
		if sweep.Integrator != "" {
			cfg.Integrator = sweep.Integrator
		}
		cfg.G *= scale

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return nil, err
		}
		exp.Setup(registry.DefaultMetrics(exp.Engine()))

		result, err := exp.Run(ctx, sweep.Steps)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Scale:       scale,
			G:           cfg.G,
			EnergyDrift: result.Metrics["energy_drift"],
			Stability:   result.Metrics["stability"],
			Closure:     result.Metrics["orbit_closure_1"],
			Err:         result.Err,
		})

		log.Printf("sweep %d/%d: G x %.3f", i+1, sweep.NumSteps, scale)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Preset     string
	Integrator string
	Spawns     int
	NumTrials  int
	Steps      int
	Seed       int64
	// Threshold is the distance from the primary, in metres, that counts
	// as escaped. Zero means 100 AU.
	Threshold  float64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Bodies  int
	Stable  bool // every body stayed near the primary
	Err     error
}

// RunMonteCarlo adds random bodies to a preset with a different seed per
// trial and checks whether the system stays bound.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 100 * physics.AU
	}

	base := cfg.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		sc := &Scenario{
			Name:       fmt.Sprintf("trial %d", trial),
			Preset:     cfg.Preset,
			Integrator: cfg.Integrator,
			Seed:       base + int64(trial),
			Actions:    []Action{{Spawn: cfg.Spawns}, {Step: cfg.Steps}},
		}
		if cfg.Spawns == 0 {
			sc.Actions = sc.Actions[1:]
		}

		exp, err := sc.Build(registry)
		if err != nil {
			return nil, err
		}
		stability := metrics.NewStability(threshold)
		exp.Setup([]dynamo.Metric{stability})

		outcomes, err := RunScenario(ctx, sc, exp)
		if err != nil {
			return nil, err
		}

		res := MonteCarloResult{
			TrialID: trial,
			Seed:    sc.Seed,
			Bodies:  exp.Engine().Count(),
			Stable:  stability.Value() == 1,
		}
		for _, o := range outcomes {
			if o.Err != nil {
				res.Err = o.Err
				res.Stable = false
			}
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			log.Printf("monte carlo: %d/%d trials complete", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
