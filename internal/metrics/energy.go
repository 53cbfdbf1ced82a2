package metrics

import (
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

// FieldSource supplies the field matching the state being observed. The
// masses and G may change between observations.
type FieldSource interface {
	Field() physics.Field
}

// Static is a FieldSource for a field that never changes.
type Static physics.Field

func (s Static) Field() physics.Field { return physics.Field(s) }

type Energy struct {
	name        string
	src         FieldSource
	samples     int
	totalEnergy float64
}

func NewEnergy(src FieldSource) *Energy {
	return &Energy{
		name: "energy",
		src:  src,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	f := e.src.Field()
	if f.StateDim() != len(x) {
		return
	}
	e.totalEnergy += f.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change in total energy. Inserting
// a body changes the energy by construction, so the reference is taken again
// whenever the state dimension changes.
type EnergyDrift struct {
	name          string
	src           FieldSource
	dim           int
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(src FieldSource) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		src:  src,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	f := e.src.Field()
	if f.StateDim() != len(x) {
		return
	}

	energy := f.Energy(x)

	if e.samples == 0 || len(x) != e.dim {
		e.initialEnergy = energy
		e.dim = len(x)
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the relative drift at the latest observation.
func (e *EnergyDrift) Current() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return (e.currentEnergy - e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
	e.dim = 0
}

// MomentumDrift tracks the largest change in total linear momentum relative
// to the sum of the bodies' momentum magnitudes.
type MomentumDrift struct {
	name     string
	src      FieldSource
	dim      int
	initialX float64
	initialY float64
	scale    float64
	maxDrift float64
}

func NewMomentumDrift(src FieldSource) *MomentumDrift {
	return &MomentumDrift{
		name: "momentum_drift",
		src:  src,
	}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(x dynamo.State, t float64) {
	f := m.src.Field()
	if f.StateDim() != len(x) {
		return
	}

	p := f.Momentum(x)
	if len(x) != m.dim {
		m.dim = len(x)
		m.initialX, m.initialY = p.X, p.Y
		m.scale = f.MomentumScale(x)
		return
	}

	if m.scale > 0 {
		drift := math.Hypot(p.X-m.initialX, p.Y-m.initialY) / m.scale
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.dim = 0
	m.initialX, m.initialY = 0, 0
	m.scale = 0
	m.maxDrift = 0
}
