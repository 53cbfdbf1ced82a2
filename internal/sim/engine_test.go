package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/integrators"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

const earthMass = 5.9722e24

func sun() physics.Body {
	return physics.Body{Name: "Sun", Mass: 1.989e30, Radius: 9, Color: "#ffff00", Primary: true}
}

func earth() physics.Body {
	return physics.Body{
		Name: "Earth",
		Pos:  r2.Vec{X: -physics.AU},
		Vel:  r2.Vec{Y: -29783},
		Mass: earthMass,
	}
}

func newEngine(tol dynamo.Tolerance, bodies ...physics.Body) *sim.Engine {
	e, err := sim.NewEngine(bodies, integrators.NewAdaptive(integrators.NewDOP853(), tol), sim.DefaultControl())
	Expect(err).NotTo(HaveOccurred())
	return e
}

type counter struct{ lengths []int }

func (c *counter) OnStep(x dynamo.State, t float64) { c.lengths = append(c.lengths, len(x)) }

var _ = Describe("Engine", func() {
	var e *sim.Engine

	BeforeEach(func() {
		e = newEngine(dynamo.DefaultTolerance(), sun(), earth())
	})

	Describe("stepping", func() {
		It("brings a circular Earth back after one year", func() {
			Expect(e.Run(context.Background(), 365)).To(Succeed())

			s, err := e.Snapshot(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Hypot(s.X+physics.AU, s.Y)).To(BeNumerically("<", 0.01*physics.AU))
			Expect(e.Time()).To(BeNumerically("~", 365*physics.Day, 1))
			Expect(e.Steps()).To(Equal(365))
		})

		It("advances the clock by exactly one timestep", func() {
			Expect(e.SetTimestep(3600)).To(Succeed())
			Expect(e.StepOnce()).To(Succeed())
			Expect(e.Time()).To(Equal(3600.0))
		})

		It("conserves total momentum", func() {
			m := physics.Body{Name: "Mars", Pos: r2.Vec{X: -1.524 * physics.AU}, Vel: r2.Vec{Y: -24.077e3}, Mass: 6.39e23}
			e = newEngine(dynamo.DefaultTolerance(), sun(), earth(), m)
			f := e.Field()
			p0 := f.Momentum(e.State())
			scale := f.MomentumScale(e.State())

			Expect(e.Run(context.Background(), 200)).To(Succeed())

			p1 := e.Field().Momentum(e.State())
			Expect(r2.Norm(r2.Sub(p1, p0))).To(BeNumerically("<", 1e-9*scale))
		})

		It("writes positions back into the snapshots", func() {
			before, _ := e.Snapshot(1)
			Expect(e.StepOnce()).To(Succeed())
			after, _ := e.Snapshot(1)
			Expect(after.Y).NotTo(Equal(before.Y))
			Expect(after.Name).To(Equal("Earth"))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(e.Run(ctx, 10)).To(MatchError(context.Canceled))
			Expect(e.Steps()).To(BeZero())
		})
	})

	Describe("failure latching", func() {
		BeforeEach(func() {
			e = newEngine(dynamo.Tolerance{Rtol: 1e-6, Atol: 1e-12, MaxSteps: 1}, sun(), earth())
		})

		It("leaves state and clock unchanged and halts", func() {
			x0 := e.State()

			err := e.StepOnce()
			Expect(err).To(MatchError(dynamo.ErrTooManySteps))
			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))

			Expect(e.Successful()).To(BeFalse())
			Expect(e.Err()).To(MatchError(dynamo.ErrTooManySteps))
			Expect(e.Time()).To(BeZero())
			Expect(e.State()).To(Equal(x0))

			err = e.StepOnce()
			Expect(err).To(MatchError(dynamo.ErrHalted))
			Expect(err).To(MatchError(dynamo.ErrTooManySteps))
			Expect(e.Time()).To(BeZero())
		})

		It("clears the latch on Resume", func() {
			Expect(e.StepOnce()).NotTo(Succeed())
			e.Resume()
			Expect(e.Successful()).To(BeTrue())
			Expect(e.StepOnce()).To(MatchError(dynamo.ErrTooManySteps))
		})

		It("clears the latch on insertion", func() {
			Expect(e.StepOnce()).NotTo(Succeed())
			_, err := e.Insert(physics.Body{Pos: r2.Vec{X: 2 * physics.AU}, Mass: 1e24})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Successful()).To(BeTrue())
		})
	})

	Describe("parameters", func() {
		DescribeTable("rejects bad G",
			func(g float64) {
				Expect(e.SetGravitationalConstant(g)).To(MatchError(dynamo.ErrParameterBounds))
				Expect(e.GravitationalConstant()).To(Equal(physics.G))
			},
			Entry("zero", 0.0),
			Entry("negative", -1.0),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("accepts a scaled G", func() {
			Expect(e.SetGravitationalConstant(physics.G * 1.1)).To(Succeed())
			Expect(e.GravitationalConstant()).To(BeNumerically("~", physics.G*1.1, 1e-20))
			Expect(e.StepOnce()).To(Succeed())
		})

		It("rejects a non-positive timestep", func() {
			Expect(e.SetTimestep(0)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(e.Timestep()).To(Equal(float64(physics.Day)))
		})

		It("rejects speeds below the minimum", func() {
			Expect(e.SetSpeed(0.05)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(e.SetSpeed(2)).To(Succeed())
			Expect(e.Speed()).To(Equal(2.0))
		})

		It("rejects a NaN speed", func() {
			Expect(e.SetSpeed(math.NaN())).To(MatchError(dynamo.ErrParameterBounds))
			Expect(e.Speed()).To(Equal(1.0))

			c := sim.DefaultControl()
			c.Speed = math.NaN()
			Expect(c.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects an invalid starting body", func() {
			_, err := sim.NewEngine([]physics.Body{{Name: "void", Mass: 0}}, integrators.NewFixed(integrators.NewRK4(), 1), sim.DefaultControl())
			Expect(err).To(MatchError(dynamo.ErrInvalidMass))
		})
	})

	Describe("snapshots", func() {
		It("returns display metadata", func() {
			s, err := e.Snapshot(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name).To(Equal("Sun"))
			Expect(s.Primary).To(BeTrue())
			Expect(s.Color).To(Equal("#ffff00"))
			Expect(s.Radius).To(Equal(9.0))
			Expect(e.Snapshots()).To(HaveLen(2))
		})

		It("rejects out of range indices", func() {
			_, err := e.Snapshot(2)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfRange))
			_, err = e.Snapshot(-1)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfRange))
		})
	})

	Describe("observers", func() {
		It("are told about steps and insertions", func() {
			c := &counter{}
			e.AddObserver(c)

			Expect(e.StepOnce()).To(Succeed())
			_, err := e.AddRandomBody(sim.NewSpawner(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(e.StepOnce()).To(Succeed())

			Expect(c.lengths).To(Equal([]int{8, 12, 12}))
		})
	})
})
