package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

var _ = Describe("CircularVelocity", func() {
	It("is perpendicular to the radius with Keplerian speed", func() {
		v, err := sim.CircularVelocity(sun(), r2.Vec{X: physics.AU}, physics.G)
		Expect(err).NotTo(HaveOccurred())

		want := math.Sqrt(physics.G * 1.989e30 / physics.AU)
		Expect(r2.Norm(v)).To(BeNumerically("~", want, 1e-6))
		Expect(v.X).To(BeNumerically("~", 0, 1e-9))
		Expect(v.Y).To(BeNumerically(">", 0))
	})

	It("measures the angle from the primary", func() {
		p := sun()
		p.Pos = r2.Vec{X: physics.AU, Y: physics.AU}
		v, err := sim.CircularVelocity(p, r2.Vec{X: physics.AU, Y: 0}, physics.G)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.X).To(BeNumerically(">", 0))
		Expect(math.Abs(v.Y)).To(BeNumerically("<", 1e-9))
	})

	It("adds the primary's own velocity", func() {
		p := sun()
		p.Vel = r2.Vec{X: 100}
		v, err := sim.CircularVelocity(p, r2.Vec{X: physics.AU}, physics.G)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.X).To(BeNumerically("~", 100, 1e-9))
	})

	It("rejects a zero separation", func() {
		_, err := sim.CircularVelocity(sun(), r2.Vec{}, physics.G)
		Expect(err).To(MatchError(dynamo.ErrDegenerateGeometry))
	})
})

var _ = Describe("Insert", func() {
	var e *sim.Engine

	BeforeEach(func() {
		e = newEngine(dynamo.DefaultTolerance(), sun(), earth())
	})

	It("extends the state vector by one block", func() {
		idx, err := e.Insert(physics.Body{Pos: r2.Vec{Y: 3 * physics.AU}, Mass: 1e25, Color: "#ff0000"})
		Expect(err).NotTo(HaveOccurred())
		Expect(idx).To(Equal(2))
		Expect(e.Count()).To(Equal(3))
		Expect(e.State()).To(HaveLen(12))

		s, _ := e.Snapshot(2)
		Expect(s.Name).To(Equal("Body 2"))
		Expect(s.Color).To(Equal("#ff0000"))
	})

	It("keeps the clock and existing bodies", func() {
		Expect(e.Run(context.Background(), 10)).To(Succeed())
		t := e.Time()
		before := e.State()

		_, err := e.Insert(physics.Body{Name: "Comet", Pos: r2.Vec{X: 5 * physics.AU}, Mass: 1e20})
		Expect(err).NotTo(HaveOccurred())

		Expect(e.Time()).To(Equal(t))
		Expect(e.State()[:8]).To(Equal(before))
		s, _ := e.Snapshot(2)
		Expect(s.Name).To(Equal("Comet"))
	})

	It("keeps stepping after on-axis insertions late in the run", func() {
		Expect(e.Run(context.Background(), 10)).To(Succeed())

		_, err := e.Insert(physics.Body{Name: "Comet", Pos: r2.Vec{X: 5 * physics.AU}, Mass: 1e20})
		Expect(err).NotTo(HaveOccurred())
		_, err = e.Insert(physics.Body{Name: "Rock", Pos: r2.Vec{Y: -3 * physics.AU}, Mass: 1e22})
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Count()).To(Equal(4))

		f := e.Field()
		p0 := f.Momentum(e.State())
		scale := f.MomentumScale(e.State())
		before, _ := e.Snapshot(2)

		Expect(e.Run(context.Background(), 5)).To(Succeed())
		Expect(e.Successful()).To(BeTrue())
		Expect(e.Steps()).To(Equal(15))

		after, _ := e.Snapshot(2)
		Expect(after.Y).NotTo(Equal(before.Y))
		Expect(after.X).NotTo(Equal(before.X))

		p1 := e.Field().Momentum(e.State())
		Expect(r2.Norm(r2.Sub(p1, p0))).To(BeNumerically("<", 1e-9*scale))
	})

	It("uses the live position of the primary", func() {
		Expect(e.Run(context.Background(), 30)).To(Succeed())
		x := e.State()
		primary := r2.Vec{X: x[0], Y: x[1]}
		pos := r2.Add(primary, r2.Vec{X: 2 * physics.AU})

		_, err := e.Insert(physics.Body{Pos: pos, Mass: 1e20})
		Expect(err).NotTo(HaveOccurred())

		y := e.State()
		rel := r2.Vec{X: y[10] - x[2], Y: y[11] - x[3]}
		Expect(rel.X).To(BeNumerically("~", 0, 1e-6))
		Expect(rel.Y).To(BeNumerically("~", math.Sqrt(physics.G*1.989e30/(2*physics.AU)), 1e-6))
	})

	It("rejects a body placed on the primary", func() {
		t := e.Time()
		_, err := e.Insert(physics.Body{Mass: 1e24})
		Expect(err).To(MatchError(dynamo.ErrDegenerateGeometry))
		Expect(e.Count()).To(Equal(2))
		Expect(e.State()).To(HaveLen(8))
		Expect(e.Time()).To(Equal(t))
	})

	DescribeTable("rejects an invalid body",
		func(b physics.Body, want error) {
			_, err := e.Insert(b)
			Expect(err).To(MatchError(want))
			Expect(e.Count()).To(Equal(2))
			Expect(e.State()).To(HaveLen(8))
		},
		Entry("zero mass", physics.Body{Pos: r2.Vec{X: physics.AU}}, dynamo.ErrInvalidMass),
		Entry("negative mass", physics.Body{Pos: r2.Vec{X: physics.AU}, Mass: -1}, dynamo.ErrInvalidMass),
		Entry("NaN position", physics.Body{Pos: r2.Vec{X: math.NaN()}, Mass: 1}, dynamo.ErrInvalidState),
	)

	It("keeps len(state) == 4*count across steps and insertions", func() {
		spawner := sim.NewSpawner(42)
		for i := 0; i < 5; i++ {
			_, err := e.AddRandomBody(spawner)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.State()).To(HaveLen(dynamo.BlockSize * e.Count()))
			Expect(e.StepOnce()).To(Succeed())
			Expect(e.State()).To(HaveLen(dynamo.BlockSize * e.Count()))
		}
		Expect(e.Count()).To(Equal(7))
	})
})

var _ = Describe("Integrator", func() {
	var in *sim.Integrator
	ctrl := sim.DefaultControl()

	BeforeEach(func() {
		var err error
		in, err = sim.NewIntegrator(&stubSolver{}, &ctrl, physics.Encode([]physics.Body{sun(), earth()}), []float64{1.989e30, earthMass}, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("Replace validation",
		func(x dynamo.State, masses []float64, want error) {
			before := in.State()
			Expect(in.Replace(x, masses, 5)).To(MatchError(want))
			Expect(in.State()).To(Equal(before))
			Expect(in.Time()).To(BeZero())
		},
		Entry("short vector", dynamo.State{1, 2, 3}, []float64{1}, dynamo.ErrDimensionMismatch),
		Entry("extra mass", dynamo.State{1, 2, 3, 4}, []float64{1, 2}, dynamo.ErrDimensionMismatch),
		Entry("NaN", dynamo.State{math.NaN(), 0, 0, 0}, []float64{1}, dynamo.ErrInvalidState),
		Entry("zero mass", dynamo.State{0, 0, 0, 0}, []float64{0}, dynamo.ErrInvalidMass),
	)

	It("swaps vector, masses and time together", func() {
		Expect(in.Replace(dynamo.State{1, 2, 3, 4}, []float64{7}, 9)).To(Succeed())
		Expect(in.State()).To(Equal(dynamo.State{1, 2, 3, 4}))
		Expect(in.Masses()).To(Equal([]float64{7}))
		Expect(in.Time()).To(Equal(9.0))
		Expect(in.Dim()).To(Equal(4))
	})

	It("resets the solver warm start", func() {
		s := &stubSolver{}
		in, _ = sim.NewIntegrator(s, &ctrl, dynamo.State{0, 0, 0, 0}, []float64{1}, 0)
		Expect(s.resets).To(Equal(1))
		Expect(in.Replace(dynamo.State{1, 0, 0, 0}, []float64{1}, 0)).To(Succeed())
		Expect(s.resets).To(Equal(2))
	})

	It("does not call the solver while halted", func() {
		s := &stubSolver{err: dynamo.ErrStepTooSmall}
		in, _ = sim.NewIntegrator(s, &ctrl, dynamo.State{0, 0, 0, 0}, []float64{1}, 0)

		Expect(in.Step()).To(MatchError(dynamo.ErrStepTooSmall))
		Expect(in.Step()).To(MatchError(dynamo.ErrHalted))
		Expect(in.Step()).To(MatchError(dynamo.ErrHalted))
		Expect(s.calls).To(Equal(1))
		Expect(in.Steps()).To(BeZero())
	})
})

type stubSolver struct {
	err    error
	calls  int
	resets int
}

func (s *stubSolver) Advance(dyn dynamo.System, x dynamo.State, t0, t1 float64) (dynamo.State, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return x.Clone(), nil
}

func (s *stubSolver) Reset() { s.resets++ }
