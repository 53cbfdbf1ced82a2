package sim

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orrery/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Spawner generates random bodies for on-demand insertion.
type Spawner struct {
	RangeAU   float64
	MassMin   float64
	MassMax   float64
	RadiusMin int
	RadiusMax int

	rng *rand.Rand
}

func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		RangeAU:   20,
		MassMin:   1e23,
		MassMax:   1e28,
		RadiusMin: 2,
		RadiusMax: 7,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Next returns an unnamed body with a random position, mass, radius and
// colour. Its velocity is left for insertion to fill in.
func (s *Spawner) Next() physics.Body {
	uniform := func(lo, hi float64) float64 { return lo + s.rng.Float64()*(hi-lo) }

	radius := s.RadiusMin
	if s.RadiusMax > s.RadiusMin {
		radius += s.rng.Intn(s.RadiusMax - s.RadiusMin + 1)
	}

	return physics.Body{
		Pos: r2.Vec{
			X: uniform(-s.RangeAU, s.RangeAU) * physics.AU,
			Y: uniform(-s.RangeAU, s.RangeAU) * physics.AU,
		},
		Mass:   uniform(s.MassMin, s.MassMax),
		Radius: float64(radius),
		Color:  colorful.Hsv(s.rng.Float64()*360, uniform(0.5, 1), uniform(0.7, 1)).Hex(),
	}
}
