package config

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

const (
	DefaultPreset     = "solar"
	DefaultIntegrator = "dop853"
	DefaultRtol       = 1e-6
	DefaultAtol       = 1e-12
	DefaultMaxSteps   = 500
	DefaultSubsteps   = 24
	DefaultFPS        = 60
	DefaultZoom       = 0.5
	DefaultViewAU     = 16.0
)

type Config struct {
	Preset      string       `yaml:"preset"`
	Description string       `yaml:"description,omitempty"`
	Integrator  string       `yaml:"integrator"`
	G           float64      `yaml:"g"`
	Timestep    float64      `yaml:"timestep"`
	Rtol        float64      `yaml:"rtol"`
	Atol        float64      `yaml:"atol"`
	MaxSteps    int          `yaml:"max_steps"`
	Substeps    int          `yaml:"substeps"`
	Seed        int64        `yaml:"seed"`
	FPS         int          `yaml:"fps"`
	Speed       float64      `yaml:"speed"`
	Zoom        float64      `yaml:"zoom"`
	ViewAU      float64      `yaml:"view_au"`
	Spawn       SpawnConfig  `yaml:"spawn"`
	Bodies      []BodyConfig `yaml:"bodies"`
}

type SpawnConfig struct {
	RangeAU   float64 `yaml:"range_au"`
	MassMin   float64 `yaml:"mass_min"`
	MassMax   float64 `yaml:"mass_max"`
	RadiusMin int     `yaml:"radius_min"`
	RadiusMax int     `yaml:"radius_max"`
}

// BodyConfig places a body in AU with its velocity in m/s.
type BodyConfig struct {
	Name    string  `yaml:"name"`
	Mass    float64 `yaml:"mass"`
	XAU     float64 `yaml:"x_au"`
	YAU     float64 `yaml:"y_au"`
	VX      float64 `yaml:"vx"`
	VY      float64 `yaml:"vy"`
	Radius  float64 `yaml:"radius"`
	Color   string  `yaml:"color"`
	Primary bool    `yaml:"primary,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:     DefaultPreset,
		Integrator: DefaultIntegrator,
		G:          physics.G,
		Timestep:   physics.Day,
		Rtol:       DefaultRtol,
		Atol:       DefaultAtol,
		MaxSteps:   DefaultMaxSteps,
		Substeps:   DefaultSubsteps,
		FPS:        DefaultFPS,
		Speed:      1,
		Zoom:       DefaultZoom,
		ViewAU:     DefaultViewAU,
		Spawn: SpawnConfig{
			RangeAU:   20,
			MassMin:   1e23,
			MassMax:   1e28,
			RadiusMin: 2,
			RadiusMax: 7,
		},
		Bodies: SolarSystem(),
	}
}

// Load reads a YAML file over the defaults. A file without bodies takes
// them from its preset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Bodies) == 0 {
		p := GetPreset(cfg.Preset)
		if p == nil {
			return nil, fmt.Errorf("%s: unknown preset %q", path, cfg.Preset)
		}
		cfg.Bodies = append([]BodyConfig(nil), p.Bodies...)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve returns a copy of the named preset over the defaults.
func Resolve(preset string) (*Config, error) {
	p := GetPreset(preset)
	if p == nil {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	cfg := DefaultConfig()
	cfg.Preset = preset
	cfg.Description = p.Description
	cfg.Bodies = append([]BodyConfig(nil), p.Bodies...)
	if p.Integrator != "" {
		cfg.Integrator = p.Integrator
	}
	if p.Timestep > 0 {
		cfg.Timestep = p.Timestep
	}
	if p.ViewAU > 0 {
		cfg.ViewAU = p.ViewAU
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"g", c.G > 0},
		{"timestep", c.Timestep > 0},
		{"rtol", c.Rtol > 0},
		{"atol", c.Atol > 0},
		{"max_steps", c.MaxSteps > 0},
		{"substeps", c.Substeps > 0},
		{"fps", c.FPS > 0},
		{"speed", c.Speed >= sim.MinSpeed},
		{"zoom", c.Zoom > 0},
		{"view_au", c.ViewAU > 0},
		{"spawn.range_au", c.Spawn.RangeAU > 0},
		{"spawn.mass_min", c.Spawn.MassMin > 0 && c.Spawn.MassMin <= c.Spawn.MassMax},
		{"spawn.radius_min", c.Spawn.RadiusMin > 0 && c.Spawn.RadiusMin <= c.Spawn.RadiusMax},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("config %s: %w", chk.name, dynamo.ErrParameterBounds)
		}
	}

	if len(c.Bodies) == 0 {
		return fmt.Errorf("config bodies: empty: %w", dynamo.ErrParameterBounds)
	}
	for i, b := range c.Bodies {
		if b.Mass <= 0 {
			return fmt.Errorf("config body %d (%s) mass %g: %w", i, b.Name, b.Mass, dynamo.ErrInvalidMass)
		}
		if b.Primary && i != 0 {
			return fmt.Errorf("config body %d (%s): only the first body can be primary: %w", i, b.Name, dynamo.ErrParameterBounds)
		}
		if b.Color != "" {
			if _, err := colorful.Hex(b.Color); err != nil {
				return fmt.Errorf("config body %d (%s) color %q: %w", i, b.Name, b.Color, err)
			}
		}
	}
	return nil
}

// BuildBodies converts the body table to SI units.
func (c *Config) BuildBodies() []physics.Body {
	out := make([]physics.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		out[i] = physics.Body{
			Name:    b.Name,
			Pos:     r2.Vec{X: b.XAU * physics.AU, Y: b.YAU * physics.AU},
			Vel:     r2.Vec{X: b.VX, Y: b.VY},
			Mass:    b.Mass,
			Radius:  b.Radius,
			Color:   b.Color,
			Primary: b.Primary,
		}
	}
	return out
}

func (c *Config) Tolerance() dynamo.Tolerance {
	return dynamo.Tolerance{Rtol: c.Rtol, Atol: c.Atol, MaxSteps: c.MaxSteps}
}

func (c *Config) Control() sim.Control {
	return sim.Control{G: c.G, Timestep: c.Timestep, Speed: c.Speed}
}

func (c *Config) Spawner() *sim.Spawner {
	s := sim.NewSpawner(c.Seed)
	s.RangeAU = c.Spawn.RangeAU
	s.MassMin, s.MassMax = c.Spawn.MassMin, c.Spawn.MassMax
	s.RadiusMin, s.RadiusMax = c.Spawn.RadiusMin, c.Spawn.RadiusMax
	return s
}
