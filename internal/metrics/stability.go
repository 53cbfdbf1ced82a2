package metrics

import (
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

// Stability is the fraction of observations in which every body stayed
// within threshold metres of the primary.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	if len(x) < dynamo.BlockSize {
		return
	}
	s.samples++
	for k := dynamo.BlockSize; k+1 < len(x); k += dynamo.BlockSize {
		if math.Hypot(x[k]-x[0], x[k+1]-x[1]) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
