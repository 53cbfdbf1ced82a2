package config

import "sort"

// SolarSystem is the sun and the eight planets lined up on the negative x
// axis, all orbiting counter-clockwise.
func SolarSystem() []BodyConfig {
	return []BodyConfig{
		{Name: "Sun", Mass: 1.98892e30, Radius: 9, Color: "#ffff00", Primary: true},
		{Name: "Mercury", Mass: 3.30e23, XAU: -0.387, VY: -47.4e3, Radius: 1, Color: "#a9a9a9"},
		{Name: "Venus", Mass: 4.8685e24, XAU: -0.723, VY: -35.02e3, Radius: 3, Color: "#ffdf00"},
		{Name: "Earth", Mass: 5.9722e24, XAU: -1, VY: -29.783e3, Radius: 3, Color: "#4682b4"},
		{Name: "Mars", Mass: 6.39e23, XAU: -1.524, VY: -24.077e3, Radius: 2, Color: "#ff4500"},
		{Name: "Jupiter", Mass: 1.898e27, XAU: -5.204, VY: -13.06e3, Radius: 7, Color: "#ff8c00"},
		{Name: "Saturn", Mass: 5.683e26, XAU: -9.573, VY: -9.68e3, Radius: 6, Color: "#daa520"},
		{Name: "Uranus", Mass: 8.681e25, XAU: -19.165, VY: -6.80e3, Radius: 5, Color: "#add8e6"},
		{Name: "Neptune", Mass: 1.024e26, XAU: -30.178, VY: -5.43e3, Radius: 5, Color: "#0000ff"},
	}
}

var Presets = map[string]*Config{
	"solar": {
		Description: "the sun and eight planets",
		Bodies:      SolarSystem(),
	},
	"kepler": {
		Description: "a single planet on a one year orbit",
		Bodies:      pick("Sun", "Earth"),
		ViewAU:      1,
	},
	"inner": {
		Description: "the sun and the rocky planets",
		Bodies:      pick("Sun", "Mercury", "Venus", "Earth", "Mars"),
		Timestep:    21600,
		ViewAU:      1,
	},
	"binary": {
		Description: "two equal stars with a circumbinary planet",
		Bodies: []BodyConfig{
			{Name: "Alpha", Mass: 1.98892e30, XAU: -0.5, VY: -21064, Radius: 8, Color: "#ffd27f", Primary: true},
			{Name: "Beta", Mass: 1.98892e30, XAU: 0.5, VY: 21064, Radius: 8, Color: "#9bb0ff"},
			{Name: "Tatooine", Mass: 5.9722e24, XAU: -4, VY: -21064, Radius: 3, Color: "#c2b280"},
		},
		ViewAU: 3,
	},
}

func pick(names ...string) []BodyConfig {
	all := SolarSystem()
	out := make([]BodyConfig, 0, len(names))
	for _, n := range names {
		for _, b := range all {
			if b.Name == n {
				out = append(out, b)
			}
		}
	}
	return out
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
