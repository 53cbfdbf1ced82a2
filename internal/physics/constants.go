package physics

const (
	// G is the gravitational constant in m^3 kg^-1 s^-2.
	G = 6.67428e-11
	// AU is one astronomical unit in metres.
	AU = 149.6e6 * 1000
	// Day is one simulated day in seconds.
	Day = 60 * 60 * 24
	// SolarMass in kg.
	SolarMass = 1.98892e30
)
