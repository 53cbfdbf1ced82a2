package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "solar" {
		t.Errorf("expected preset solar, got %s", cfg.Preset)
	}
	if cfg.Integrator != "dop853" {
		t.Errorf("expected integrator dop853, got %s", cfg.Integrator)
	}
	if cfg.Timestep != 86400 {
		t.Errorf("expected one day timestep, got %f", cfg.Timestep)
	}
	if len(cfg.Bodies) != 9 {
		t.Errorf("expected 9 bodies, got %d", len(cfg.Bodies))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("kepler")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Bodies) != 2 || cfg.Bodies[1].Name != "Earth" {
		t.Errorf("unexpected kepler bodies %+v", cfg.Bodies)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"binary", "inner", "kepler", "solar"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve("inner")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Bodies) != 5 {
		t.Errorf("expected 5 bodies, got %d", len(cfg.Bodies))
	}
	if cfg.Timestep != 21600 {
		t.Errorf("expected preset timestep, got %f", cfg.Timestep)
	}
	if cfg.Rtol != DefaultRtol {
		t.Errorf("expected default rtol, got %g", cfg.Rtol)
	}

	cfg.Bodies[0].Mass = 1
	if Presets["inner"].Bodies[0].Mass == 1 {
		t.Error("Resolve shares the preset body table")
	}

	if _, err := Resolve("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orrery.yaml")
	data := `
preset: kepler
integrator: rk45
timestep: 3600
seed: 9
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != "rk45" || cfg.Timestep != 3600 || cfg.Seed != 9 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if len(cfg.Bodies) != 2 {
		t.Errorf("expected kepler bodies, got %d", len(cfg.Bodies))
	}
	if cfg.Rtol != DefaultRtol {
		t.Errorf("expected default rtol, got %g", cfg.Rtol)
	}
}

func TestLoadBodies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bodies.yaml")
	data := `
bodies:
  - name: Star
    mass: 2.0e30
    primary: true
  - name: Rock
    mass: 1.0e24
    x_au: 2
    vy: 20000
    color: "#112233"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	bodies := cfg.BuildBodies()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(bodies))
	}
	if bodies[1].Pos.X != 2*physics.AU || bodies[1].Vel.Y != 20000 {
		t.Errorf("unexpected body %+v", bodies[1])
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("g: [1, 2"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	os.WriteFile(unknown, []byte("preset: andromeda\n"), 0644)
	if _, err := Load(unknown); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.G = 7e-11

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.G != 7e-11 || len(loaded.Bodies) != 9 {
		t.Errorf("round trip lost values: g=%g bodies=%d", loaded.G, len(loaded.Bodies))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero g", func(c *Config) { c.G = 0 }, dynamo.ErrParameterBounds},
		{"negative timestep", func(c *Config) { c.Timestep = -1 }, dynamo.ErrParameterBounds},
		{"zero rtol", func(c *Config) { c.Rtol = 0 }, dynamo.ErrParameterBounds},
		{"slow speed", func(c *Config) { c.Speed = 0.01 }, dynamo.ErrParameterBounds},
		{"no bodies", func(c *Config) { c.Bodies = nil }, dynamo.ErrParameterBounds},
		{"massless body", func(c *Config) { c.Bodies[3].Mass = 0 }, dynamo.ErrInvalidMass},
		{"second primary", func(c *Config) { c.Bodies[2].Primary = true }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Bodies[1].Color = "grey"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed color")
	}
}

func TestSpawnerUsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Spawn.RangeAU = 1
	cfg.Spawn.RadiusMin, cfg.Spawn.RadiusMax = 4, 4

	b := cfg.Spawner().Next()
	if b.Radius != 4 {
		t.Errorf("expected radius 4, got %f", b.Radius)
	}
	if b.Pos.X > physics.AU || b.Pos.X < -physics.AU {
		t.Errorf("position outside range: %f", b.Pos.X)
	}
}
